package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rolfl/mbsim"
)

type AddressCommand struct {
	Args struct {
		Tokens []string `required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *AddressCommand) Execute(args []string) error {
	data := pterm.TableData{{"Token", "Address", "Space", "Type", "Occupies"}}
	failed := 0
	for _, tok := range c.Args.Tokens {
		a, err := mbsim.ParseAddress(tok)
		if err != nil {
			pterm.Error.Println(err)
			failed++
			continue
		}
		occupies := fmt.Sprint(a.Address)
		if a.End() != a.Address {
			occupies = fmt.Sprintf("%v-%v", a.Address, a.End())
		}
		data = append(data, []string{tok, a.String(), a.Space.String(), a.Type.String(), occupies})
	}
	if len(data) > 1 {
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%v of %v addresses could not be parsed", failed, len(c.Args.Tokens))
	}
	return nil
}
