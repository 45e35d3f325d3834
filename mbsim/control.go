package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/rolfl/mbsim"
)

// playbackControl is the part of *mbsim.Playback the signal loop drives
type playbackControl interface {
	State() mbsim.State
	Pause()
	Resume()
}

// waitForStop toggles pause on every pause signal and returns on a stop signal. A completed playback keeps its last
// row applied and served, unless exitOnComplete is set, in which case completion also returns.
func waitForStop(pb playbackControl, done <-chan struct{}, pause, stop <-chan os.Signal, exitOnComplete bool) {
	for {
		select {
		case <-done:
			pterm.Success.Println("Playback complete")
			if exitOnComplete {
				return
			}
			pterm.Info.Println("Serving the last row, interrupt to exit")
			// a closed channel is always ready, stop selecting on it
			done = nil
		case <-pause:
			switch pb.State() {
			case mbsim.Playing:
				pb.Pause()
				pterm.Warning.Println("Paused")
			case mbsim.Paused:
				pb.Resume()
				pterm.Info.Println("Resumed")
			}
		case s := <-stop:
			pterm.Warning.Printf("Received %v, stopping\n", s)
			return
		}
	}
}
