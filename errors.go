package lyricsync

import (
	"github.com/ngrok/lyricsync/internal/proto"
	"github.com/ngrok/lyricsync/memhook"
	"github.com/ngrok/lyricsync/multicast"
	"github.com/ngrok/lyricsync/procmem"
	"github.com/pkg/errors"
)

// ErrorKind classifies the errors a Syncer and its parts report.
//
// Only KindNetworkInitFailure is fatal, and only from New. Every other kind is
// specific to one tick or one datagram: it is logged and the next tick or
// datagram proceeds as usual.
type ErrorKind int

const (
	// KindUnknown is any error not produced by this module, and nil.
	KindUnknown ErrorKind = iota
	// KindProcessNotFound means the player is not running.
	KindProcessNotFound
	// KindModuleNotFound means the lyric module is not loaded, or the player
	// exited while attached.
	KindModuleNotFound
	// KindPointerReadFailure means a hop of the pointer chain was unreadable.
	KindPointerReadFailure
	// KindReadFailure means the lyric buffer itself was unreadable.
	KindReadFailure
	// KindInvalidChain means the configured chain has no offsets.
	KindInvalidChain
	// KindDecodeFailure means the configured text encoding is unknown.
	KindDecodeFailure
	// KindNetworkInitFailure means the multicast socket could not be set up.
	KindNetworkInitFailure
	// KindSendFailure means a lyric datagram could not be sent.
	KindSendFailure
	// KindReceiveParseFailure means a received datagram was not a lyric.
	KindReceiveParseFailure
	// KindMasterRunning means another master holds this host's master lock.
	KindMasterRunning
)

var kindNames = map[ErrorKind]string{
	KindUnknown:             "Unknown",
	KindProcessNotFound:     "ProcessNotFound",
	KindModuleNotFound:      "ModuleNotFound",
	KindPointerReadFailure:  "PointerReadFailure",
	KindReadFailure:         "ReadFailure",
	KindInvalidChain:        "InvalidChain",
	KindDecodeFailure:       "DecodeFailure",
	KindNetworkInitFailure:  "NetworkInitFailure",
	KindSendFailure:         "SendFailure",
	KindReceiveParseFailure: "ReceiveParseFailure",
	KindMasterRunning:       "MasterRunning",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// kindSentinels is checked in order and the first match wins. A failed
// pointer hop records the underlying read error in its message without
// wrapping it, so it only ever matches ErrPointerReadFailure.
var kindSentinels = []struct {
	err  error
	kind ErrorKind
}{
	{procmem.ErrProcessNotFound, KindProcessNotFound},
	{memhook.ErrModuleNotFound, KindModuleNotFound},
	{memhook.ErrPointerReadFailure, KindPointerReadFailure},
	{memhook.ErrInvalidChain, KindInvalidChain},
	{memhook.ErrDecodeFailure, KindDecodeFailure},
	{procmem.ErrReadFailure, KindReadFailure},
	{multicast.ErrNetworkInit, KindNetworkInitFailure},
	{multicast.ErrSendFailure, KindSendFailure},
	{multicast.ErrReceiveParse, KindReceiveParseFailure},
	{proto.ErrMalformed, KindReceiveParseFailure},
	{ErrMasterRunning, KindMasterRunning},
}

// KindOf classifies err. It returns KindUnknown for nil and for errors from
// outside this module.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindUnknown
}
