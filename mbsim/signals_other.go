//go:build !unix

package main

import "os"

// no pause toggle off unix, the playback can only be stopped
var pauseSignals []os.Signal
