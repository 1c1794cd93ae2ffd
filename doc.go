// Package lyricsync mirrors a media player's desktop lyric across machines on
// a LAN.
//
// One process per host runs as the master. It reads the line the player is
// currently showing straight out of the player's memory, following a fixed
// pointer chain from the base of the lyric module, and multicasts it whenever
// it changes. Any number of slaves join the same group and hand each new line
// to a display callback.
//
// Delivery is best effort. A slave that misses a datagram simply shows the
// next line when it arrives, and a slave never repeats the line it is already
// showing.
//
// A master holds a host-wide lock for as long as it runs, so a second master
// on the same machine fails to start with ErrMasterRunning.
package lyricsync
