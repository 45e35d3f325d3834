//go:build unix

package main

import (
	"os"
	"syscall"
)

// pauseSignals toggle a running playback between playing and paused
var pauseSignals = []os.Signal{syscall.SIGUSR1}
