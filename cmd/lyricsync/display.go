package main

import (
	"context"
	"fmt"
	"io"
	"time"
)

type lyricLine struct {
	text     string
	duration time.Duration
}

// consoleDisplay prints lyric lines to a writer. Show is called on the
// syncer's tick goroutine and never blocks; a line that arrives while the
// previous one is still queued replaces it.
type consoleDisplay struct {
	w     io.Writer
	lines chan lyricLine
}

func newConsoleDisplay(w io.Writer) *consoleDisplay {
	return &consoleDisplay{w: w, lines: make(chan lyricLine, 1)}
}

func (d *consoleDisplay) Show(text string, durationMs uint32) {
	line := lyricLine{text: text, duration: time.Duration(durationMs) * time.Millisecond}
	for {
		select {
		case d.lines <- line:
			return
		default:
		}
		select {
		case <-d.lines:
		default:
		}
	}
}

// Run prints lines until ctx is done. A line is cleared once its duration
// passes without a replacement.
func (d *consoleDisplay) Run(ctx context.Context) error {
	expire := time.NewTimer(time.Hour)
	expire.Stop()
	showing := false
	for {
		select {
		case <-ctx.Done():
			expire.Stop()
			return ctx.Err()
		case line := <-d.lines:
			expire.Stop()
			if line.text == "" {
				if showing {
					fmt.Fprintln(d.w)
				}
				showing = false
				continue
			}
			fmt.Fprintf(d.w, "%s  %s\n", time.Now().Format("15:04:05"), line.text)
			showing = true
			expire.Reset(line.duration)
		case <-expire.C:
			if showing {
				fmt.Fprintln(d.w)
				showing = false
			}
		}
	}
}
