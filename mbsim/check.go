package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rolfl/mbsim"
)

type CheckCommand struct {
	Quiet bool `short:"q" long:"quiet" description:"Only report problems"`
	Args  struct {
		File string `positional-arg-name:"scenario"`
	} `positional-args:"yes" required:"yes"`
}

func (c *CheckCommand) Execute(args []string) error {
	cfg, err := mbsim.ParseFile(c.Args.File)
	if err != nil {
		return err
	}

	if !c.Quiet {
		if err := printScenario(cfg); err != nil {
			return err
		}
	}

	problems := cfg.Validate()
	if len(problems) > 0 {
		printProblems(problems)
		return fmt.Errorf("%v has %v problem(s)", c.Args.File, len(problems))
	}
	pterm.Success.Printf("%v is valid\n", c.Args.File)
	return nil
}

func printScenario(cfg *mbsim.RunConfig) error {
	loops := fmt.Sprint(cfg.Loops)
	if cfg.Loops == 0 {
		loops = "forever"
	}
	globals := pterm.TableData{
		{"Parameter", "Value"},
		{"version", cfg.Version},
		{"port", fmt.Sprint(cfg.Port)},
		{"loops", loops},
		{"logfile", cfg.LogFile},
		{"debug", fmt.Sprint(cfg.Debug)},
	}
	for _, name := range cfg.Params.Names() {
		v, _ := cfg.Params.Get(name)
		globals = append(globals, []string{name, v})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(globals).Render(); err != nil {
		return err
	}

	if cfg.Model == nil {
		return nil
	}
	columns := pterm.TableData{{"Column", "Description", "Assignment", "Kind"}}
	for _, col := range cfg.Model.Columns {
		columns = append(columns, []string{fmt.Sprint(col.Index), col.Description, col.Assignment, col.Kind.String()})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(columns).Render(); err != nil {
		return err
	}
	pterm.Info.Printf("%v data rows\n", len(cfg.Model.Rows))
	return nil
}
