package memhook

import (
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/ngrok/lyricsync/procmem"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// ErrModuleNotFound indicates the target process does not have the lyric
// module loaded, or has exited.
var ErrModuleNotFound = errors.New("module not found")

// Target identifies where the lyric lives.
type Target struct {
	ProcessName string
	ModuleName  string
	Chain       OffsetChain
	ReadSize    int
	Encoding    string
}

// DefaultTarget returns the target for the Kuwo desktop lyric.
func DefaultTarget() Target {
	return Target{
		ProcessName: "kwmusic.exe",
		ModuleName:  "UIDeskLyric.dll",
		Chain:       DefaultChain,
		ReadSize:    DefaultReadSize,
		Encoding:    DefaultEncoding,
	}
}

// OpenFunc opens a process by name. procmem.Open is the default.
type OpenFunc func(name string) (procmem.Process, error)

// Hook reads the current lyric out of the target process. It attaches lazily
// and reattaches after the player restarts.
//
// Hook is not safe for concurrent use, except for Close.
type Hook struct {
	target Target
	enc    encoding.Encoding
	open   OpenFunc
	l      log15.Logger

	mu   sync.Mutex
	proc procmem.Process
}

// HookOption configures a Hook.
type HookOption func(h *Hook)

// WithOpenFunc replaces the function used to attach to the target process.
func WithOpenFunc(open OpenFunc) HookOption {
	return func(h *Hook) {
		h.open = open
	}
}

// WithHookLogger sets the logger used by the hook. By default nothing is
// logged.
func WithHookLogger(l log15.Logger) HookOption {
	return func(h *Hook) {
		h.l = l
	}
}

// NewHook validates target and returns a Hook for it. It does not attach to
// the process; that happens on the first read.
func NewHook(target Target, opts ...HookOption) (*Hook, error) {
	if len(target.Chain.Offsets) == 0 {
		return nil, ErrInvalidChain
	}
	if target.ReadSize <= 0 {
		target.ReadSize = DefaultReadSize
	}
	if target.Encoding == "" {
		target.Encoding = DefaultEncoding
	}
	enc, err := LookupEncoding(target.Encoding)
	if err != nil {
		return nil, err
	}

	noopLogger := log15.New()
	noopLogger.SetHandler(log15.DiscardHandler())
	h := &Hook{
		target: target,
		enc:    enc,
		open:   procmem.Open,
		l:      noopLogger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// CurrentLyric resolves and decodes the lyric line the player is showing. An
// empty string means the player shows nothing.
func (h *Hook) CurrentLyric() (string, error) {
	addr, proc, err := h.resolve(h.target.Chain)
	if err != nil {
		return "", err
	}
	raw, err := proc.ReadBytes(addr, h.target.ReadSize)
	if err != nil {
		return "", errors.Wrap(err, "reading lyric buffer")
	}
	return Extract(raw, h.enc), nil
}

// ReadCounter resolves chain in the lyric module and reads the uint32 it
// points at.
func (h *Hook) ReadCounter(chain OffsetChain) (uint32, error) {
	addr, proc, err := h.resolve(chain)
	if err != nil {
		return 0, err
	}
	return ReadUint32(proc, addr)
}

func (h *Hook) resolve(chain OffsetChain) (uint64, procmem.Process, error) {
	proc, err := h.attach()
	if err != nil {
		return 0, nil, err
	}

	mods := proc.Modules()
	if len(mods) == 0 {
		// a live process always has its own image loaded
		h.l.Info("target process is gone, detaching", "pid", proc.Pid())
		h.detach()
		return 0, nil, errors.Wrapf(ErrModuleNotFound, "process %q exited", h.target.ProcessName)
	}
	mod, ok := procmem.FindModule(mods, h.target.ModuleName)
	if !ok {
		return 0, nil, errors.Wrapf(ErrModuleNotFound, "%q not loaded", h.target.ModuleName)
	}

	addr, err := Resolve(proc, mod.Base, chain)
	if err != nil {
		return 0, nil, err
	}
	h.l.Debug("resolved pointer chain", "module", mod.Name, "base", mod.Base, "chain", chain, "addr", addr)
	return addr, proc, nil
}

func (h *Hook) attach() (procmem.Process, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.proc != nil {
		return h.proc, nil
	}
	proc, err := h.open(h.target.ProcessName)
	if err != nil {
		return nil, err
	}
	h.l.Info("attached to target process", "name", h.target.ProcessName, "pid", proc.Pid())
	h.proc = proc
	return proc, nil
}

func (h *Hook) detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.proc == nil {
		return
	}
	if err := h.proc.Close(); err != nil {
		h.l.Warn("error closing process handle", "err", err)
	}
	h.proc = nil
}

// Close releases the process handle, if any. The Hook attaches again on the
// next read.
func (h *Hook) Close() error {
	h.detach()
	return nil
}
