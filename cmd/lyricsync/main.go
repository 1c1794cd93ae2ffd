// Command lyricsync mirrors the desktop lyric of a running player to other
// machines on the local network.
//
// Run "lyricsync master" next to the player and "lyricsync slave" wherever the
// lyric should appear.
package main

import (
	"github.com/tebeka/atexit"
)

func main() {
	code := 0
	if err := newRootCmd().Execute(); err != nil {
		code = 1
	}
	atexit.Exit(code)
}
