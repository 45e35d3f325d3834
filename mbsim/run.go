package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/rolfl/mbsim"
)

type RunCommand struct {
	Port           int    `short:"p" long:"port" description:"Modbus TCP port, overrides the scenario"`
	Loops          int    `short:"l" long:"loops" default:"-1" description:"Passes over the value log, overrides the scenario (0 plays forever)"`
	Bind           string `short:"b" long:"bind" default:"0.0.0.0" description:"Address to listen on"`
	Unit           int    `short:"u" long:"unit" default:"255" description:"Unit id to answer as, 255 answers every unit"`
	Swap           string `long:"swap" default:"cdab" description:"Float32 register layout"`
	Timeout        int    `short:"t" long:"timeout" default:"120" description:"Idle client timeout (in seconds)"`
	LogFormat      string `long:"log-format" default:"text" choice:"text" choice:"json" description:"Log record format"`
	Quiet          bool   `short:"q" long:"quiet" description:"Do not print row changes"`
	ExitOnComplete bool   `long:"exit-on-complete" description:"Exit when the last loop completes"`
	Args           struct {
		File string `positional-arg-name:"scenario"`
	} `positional-args:"yes" required:"yes"`
}

func (c *RunCommand) Execute(args []string) error {
	cfg, err := mbsim.ParseFile(c.Args.File)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.Loops >= 0 {
		cfg.Loops = c.Loops
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		printProblems(problems)
		return fmt.Errorf("%v has %v problem(s), not starting", c.Args.File, len(problems))
	}

	swap, err := mbsim.ParseSwapMode(c.Swap)
	if err != nil {
		return err
	}

	logger, closer, err := mbsim.NewLogger(cfg, os.Stderr, c.LogFormat)
	if err != nil {
		return err
	}
	defer closer.Close()

	mem := mbsim.NewMemory(mbsim.LayoutFor(cfg.Model))
	regs, err := mbsim.NewRegisterMap(mem, swap)
	if err != nil {
		return err
	}

	server, err := mbsim.NewServer(mbsim.ServerConfig{
		URL:     mbsim.ListenURL(c.Bind, cfg.Port),
		Timeout: time.Duration(c.Timeout) * time.Second,
	}, map[int]*mbsim.Memory{c.Unit: mem}, logger)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Close()

	playback, err := mbsim.NewPlayback(regs, cfg.Model, cfg.Loops, mbsim.WithLogger(logger))
	if err != nil {
		return err
	}

	done := make(chan struct{})
	var once sync.Once
	playback.OnStateChanged(func(s mbsim.State) {
		if s == mbsim.Stopped {
			once.Do(func() { close(done) })
		}
	})
	if !c.Quiet {
		rows := cfg.Model.Rows
		playback.OnRowChanged(func(row int) {
			r := rows[row]
			if r.Ref != "" {
				pterm.Info.Printf("Row %v/%v (%v), next in %vms\n", row+1, len(rows), r.Ref, r.Delay)
			} else {
				pterm.Info.Printf("Row %v/%v, next in %vms\n", row+1, len(rows), r.Delay)
			}
		})
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)
	pause := make(chan os.Signal, 1)
	if len(pauseSignals) > 0 {
		signal.Notify(pause, pauseSignals...)
		defer signal.Stop(pause)
	}

	pterm.Success.Printf("Serving %v on %v\n", c.Args.File, mbsim.ListenURL(c.Bind, cfg.Port))
	playback.Start()

	waitForStop(playback, done, pause, stop, c.ExitOnComplete)
	playback.Close()
	return nil
}
