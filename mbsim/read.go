package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/goburrow/modbus"
	"github.com/pterm/pterm"
	"github.com/rolfl/mbsim"
)

type ReadCommand struct {
	Units   []string `short:"u" long:"unit" description:"Unit(s) to contact, as tcp:host:port:unit" required:"true" env:"MBSIM_UNIT" env-delim:","`
	Timeout int      `short:"t" long:"timeout" default:"5" description:"Timeout (in seconds)"`
	Args    struct {
		Addresses []string `required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *ReadCommand) Execute(args []string) error {
	addresses, err := addressRanges(c.Args.Addresses)
	if err != nil {
		return err
	}
	timeout := time.Second * time.Duration(c.Timeout)

	for _, access := range c.Units {
		host, unit, err := target(access)
		if err != nil {
			return err
		}
		handler := modbus.NewTCPClientHandler(host)
		handler.Timeout = timeout
		handler.SlaveId = unit
		if err := handler.Connect(); err != nil {
			pterm.Error.Printf("%v: Failed: %v\n", access, err)
			continue
		}
		client := modbus.NewClient(handler)

		for _, rng := range addresses {
			got, err := readRange(client, rng)
			if err != nil {
				pterm.Error.Printf("%v %v: Failed: %v\n", access, rng, err)
			} else {
				pterm.Success.Printf("%v %v: %v\n", access, rng, strings.Join(got, " "))
			}
		}
		handler.Close()
	}
	return nil
}

func readRange(client modbus.Client, rng addressedRange) ([]string, error) {
	address := uint16(rng.address.Address)
	quantity := uint16(rng.quantity())
	switch rng.address.Space {
	case mbsim.HoldingRegister:
		data, err := client.ReadHoldingRegisters(address, quantity)
		if err != nil {
			return nil, err
		}
		return decodeRegisters(data, rng.address.Type), nil
	case mbsim.InputRegister:
		data, err := client.ReadInputRegisters(address, quantity)
		if err != nil {
			return nil, err
		}
		return decodeRegisters(data, rng.address.Type), nil
	case mbsim.Coil:
		data, err := client.ReadCoils(address, quantity)
		if err != nil {
			return nil, err
		}
		return decodeBits(data, rng.count), nil
	case mbsim.DiscreteInput:
		data, err := client.ReadDiscreteInputs(address, quantity)
		if err != nil {
			return nil, err
		}
		return decodeBits(data, rng.count), nil
	}
	return nil, fmt.Errorf("unknown address space %v", rng.address.Space)
}
