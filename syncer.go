package lyricsync

import (
	"context"
	"fmt"
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/ngrok/lyricsync/memhook"
	"github.com/ngrok/lyricsync/multicast"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"k8s.io/utils/clock"
)

// Role is fixed for the life of a Syncer.
type Role = multicast.Role

const (
	RoleMaster = multicast.RoleMaster
	RoleSlave  = multicast.RoleSlave
)

// ErrNetworkInit is returned by New when the multicast channel cannot be
// opened. The Syncer does not start in that case.
var ErrNetworkInit = multicast.ErrNetworkInit

// LyricSource produces the line the player is currently showing. The default
// for a master is a memhook.Hook.
type LyricSource interface {
	CurrentLyric() (string, error)
	Close() error
}

// Transport moves envelopes between master and slaves. The default is a
// multicast.Channel.
type Transport interface {
	Publish(env multicast.Envelope) error
	Poll() (multicast.Envelope, bool, error)
	Close() error
}

// LyricHandler is told about each new lyric line. On a slave it is called for
// every line received that differs from the previous one; on a master, for
// every line it publishes. It runs on the Syncer's tick goroutine and must not
// call Close.
type LyricHandler func(text string, durationMs uint32)

// Syncer runs one side of lyric distribution on a fixed tick.
//
// A master reads the player's lyric each tick and publishes it when it
// changes. A slave takes one envelope from its mailbox each tick and hands it
// to the LyricHandler when its text differs from the last one handed over;
// an identical line is never repeated however long ago it was shown.
type Syncer struct {
	cfg  Config
	role Role
	id   string

	clock     clock.WithTicker
	source    LyricSource
	transport Transport
	onLyric   LyricHandler
	lock      *masterLock

	stateLock sync.Mutex
	state     syncerState

	// Only touched from the tick goroutine.
	lastText    string
	haveLast    bool
	failing     bool
	lastErrKind ErrorKind

	closeOnce sync.Once
	stopC     chan struct{}
	// doneC is closed when the tick loop has returned.
	doneC chan struct{}

	l log15.Logger
}

// Option is an option function for Syncer.
type Option func(s *Syncer)

// WithLogger configures the logger to use for lyricsync operations.
// By default, nothing will be logged.
func WithLogger(l log15.Logger) Option {
	return func(s *Syncer) {
		s.l = l
	}
}

// WithClock replaces the clock that drives ticks and timestamps.
func WithClock(c clock.WithTicker) Option {
	return func(s *Syncer) {
		s.clock = c
	}
}

// WithLyricSource replaces the master's lyric source. The Syncer takes
// ownership and closes it. Slaves ignore it.
func WithLyricSource(src LyricSource) Option {
	return func(s *Syncer) {
		s.source = src
	}
}

// WithTransport replaces the multicast channel. The Syncer takes ownership
// and closes it.
func WithTransport(t Transport) Option {
	return func(s *Syncer) {
		s.transport = t
	}
}

// WithOnLyricChanged sets the handler told about new lines.
func WithOnLyricChanged(h LyricHandler) Option {
	return func(s *Syncer) {
		s.onLyric = h
	}
}

// New starts a Syncer in the given role.
//
// A master takes the host's master lock (see Config.LockDir) and prepares its
// lyric source; the player does not have to be running yet. Both roles then
// open the transport. If that fails, New returns an error wrapping
// ErrNetworkInit and nothing is left running.
func New(ctx context.Context, cfg Config, role Role, opts ...Option) (*Syncer, error) {
	if role != RoleMaster && role != RoleSlave {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.LyricDurationMs < 1 {
		cfg.LyricDurationMs = 1
	}

	noopLogger := log15.New()
	noopLogger.SetHandler(log15.DiscardHandler())
	s := &Syncer{
		cfg:   cfg,
		role:  role,
		id:    xid.New().String(),
		clock: clock.RealClock{},
		state: syncerStateUninitialized,
		stopC: make(chan struct{}),
		doneC: make(chan struct{}),
		l:     noopLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.l = s.l.New("role", role, "id", s.id)

	if err := s.init(ctx); err != nil {
		s.release()
		return nil, err
	}
	s.mustTransitionTo(runningState(role))
	s.l.Info("syncer running", "tick", cfg.TickInterval)

	go s.run()
	return s, nil
}

func (s *Syncer) init(ctx context.Context) error {
	if s.role == RoleMaster {
		if s.cfg.LockDir != "" {
			lock, err := acquireMasterLock(s.l, s.cfg.LockDir)
			if err != nil {
				return err
			}
			s.lock = lock
		}
		if s.source == nil {
			hook, err := memhook.NewHook(s.cfg.Target, memhook.WithHookLogger(s.l))
			if err != nil {
				return errors.Wrap(err, "invalid lyric target")
			}
			s.source = hook
		}
	} else if s.source != nil {
		// a slave never reads the player
		s.source.Close()
		s.source = nil
	}

	if s.transport == nil {
		ch, err := multicast.Open(ctx, s.cfg.Network, s.role, multicast.WithLogger(s.l))
		if err != nil {
			return err
		}
		s.transport = ch
	}
	return nil
}

// release closes whatever init managed to set up.
func (s *Syncer) release() error {
	var firstErr error
	if s.transport != nil {
		if err := s.transport.Close(); err != nil {
			firstErr = err
		}
	}
	if s.source != nil {
		if err := s.source.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.lock != nil {
		if err := s.lock.Release(); err != nil {
			s.l.Warn("error releasing master lock", "err", err)
		}
	}
	return firstErr
}

// ID identifies this Syncer's envelopes on the wire.
func (s *Syncer) ID() string {
	return s.id
}

// Role returns the role the Syncer was started with.
func (s *Syncer) Role() Role {
	return s.role
}

func (s *Syncer) currentState() syncerState {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	return s.state
}

// Running reports whether the Syncer is ticking.
func (s *Syncer) Running() bool {
	st := s.currentState()
	return st == syncerStateRunningMaster || st == syncerStateRunningSlave
}

func (s *Syncer) transitionTo(state syncerState) error {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	return s.state.transitionTo(state)
}

func (s *Syncer) mustTransitionTo(state syncerState) {
	if err := s.transitionTo(state); err != nil {
		panic(fmt.Sprintf("BUG: error transitioning to %q: %v", state, err))
	}
}

func (s *Syncer) run() {
	defer close(s.doneC)
	ticker := s.clock.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopC:
			return
		case <-ticker.C():
			s.tick()
		}
	}
}

func (s *Syncer) tick() {
	switch s.currentState() {
	case syncerStateRunningMaster:
		s.masterTick()
	case syncerStateRunningSlave:
		s.slaveTick()
	}
}

func (s *Syncer) masterTick() {
	text, err := s.source.CurrentLyric()
	if err != nil {
		s.noteFailure(err)
		return
	}
	s.noteSuccess()
	if s.haveLast && text == s.lastText {
		return
	}

	env := multicast.NewEnvelope(text, s.cfg.LyricDurationMs)
	env.Timestamp = s.clock.Now()
	env.Source = s.id
	if err := s.transport.Publish(env); err != nil {
		// last stays put so the next tick tries again
		s.l.Warn("could not publish lyric", "kind", KindOf(err), "err", err)
		return
	}
	s.lastText, s.haveLast = text, true
	s.notify(text, env.DurationMs)
}

func (s *Syncer) slaveTick() {
	env, ok, err := s.transport.Poll()
	if err != nil {
		s.l.Debug("poll failed", "err", err)
		return
	}
	if !ok {
		return
	}
	if s.haveLast && env.Text == s.lastText {
		return
	}
	s.lastText, s.haveLast = env.Text, true
	s.notify(env.Text, env.DurationMs)
}

func (s *Syncer) notify(text string, durationMs uint32) {
	s.l.Debug("lyric changed", "text", text, "duration", durationMs)
	if s.onLyric != nil {
		s.onLyric(text, durationMs)
	}
}

// noteFailure logs a failed read once per change of failure kind, then keeps
// quiet until reads succeed or fail differently. The player being closed
// would otherwise log every tick.
func (s *Syncer) noteFailure(err error) {
	kind := KindOf(err)
	if s.failing && kind == s.lastErrKind {
		s.l.Debug("no lyric", "kind", kind, "err", err)
		return
	}
	s.failing, s.lastErrKind = true, kind
	s.l.Warn("no lyric", "kind", kind, "err", err)
}

func (s *Syncer) noteSuccess() {
	if s.failing {
		s.l.Info("reading lyrics again")
		s.failing = false
	}
}

// Done returns a channel which is closed once the Syncer has stopped ticking.
func (s *Syncer) Done() <-chan struct{} {
	return s.doneC
}

// Close stops ticking, then closes the transport and the lyric source and
// releases the master lock. It is safe to call more than once; only the first
// call does anything.
func (s *Syncer) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mustTransitionTo(syncerStateClosed)
		close(s.stopC)
		<-s.doneC
		err = s.release()
		s.l.Info("syncer closed")
	})
	return err
}
