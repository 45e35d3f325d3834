package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

type CLICommand struct {
	Check   CheckCommand   `command:"check" alias:"validate" description:"Parse and validate a scenario file"`
	Address AddressCommand `command:"address" alias:"addr" description:"Parse address assignments"`
	Run     RunCommand     `command:"run" alias:"serve" description:"Play a scenario to Modbus TCP clients"`
	Read    ReadCommand    `command:"read" alias:"get" description:"Read values from a running simulator"`
}

func main() {
	clicmd := CLICommand{}

	parser := flags.NewParser(&clicmd, flags.HelpFlag|flags.PassDoubleDash)

	_, err := parser.Parse()

	if err != nil {
		fmt.Println(err)
		if ferr, ok := err.(*flags.Error); ok && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
