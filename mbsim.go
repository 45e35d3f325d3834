/*
Package mbsim simulates a Modbus field device by playing a scripted time series of values into a Modbus register map.

A scenario is a line-oriented, comma-separated text file with two sections. The global section carries run parameters,
and the value log section is a table whose columns are bound to Modbus addresses and whose rows are applied one after
the other, each row waiting for its own delay before the next one is applied:

	# simulation server configuration file
	version,1.2,configuration format version
	port,502,Modbus TCP port
	loops,0,0 plays forever
	#VALUE LOG
	Tag,Delay,Pressure,Pump running
	REF,DELAY,H100F,C5B
	start,1000,1.5,1
	stop,500,0,0

Addresses are written in a compact `<space><address><type>` notation: H (holding register), I (input register),
C (coil) or D (discrete input), the decimal address, then U (unsigned 16), S (signed 16), F (float 32, two registers)
or B (bit, coils and discretes only).

Loading a scenario is a two step affair: parsing rejects structurally broken files, and validation returns a list of
problems that the caller can show before deciding to play:

	cfg, err := mbsim.ParseFile("scenario.csv")
	if err != nil {
		return err
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		return fmt.Errorf("invalid scenario: %v", problems)
	}

The values are written in to a Memory instance, which is also what the Modbus TCP Server answers requests from:

	mem := mbsim.NewMemory(mbsim.LayoutFor(cfg.Model))
	regs, _ := mbsim.NewRegisterMap(mem, mbsim.SwapWords)
	server, _ := mbsim.NewServer(mbsim.ServerConfig{URL: "tcp://0.0.0.0:502"}, mbsim.ServeAllUnits(mem), logger)
	server.Start()

	playback, _ := mbsim.NewPlayback(regs, cfg.Model, cfg.Loops)
	playback.OnRowChanged(func(row int) { fmt.Printf("row %v\n", row) })
	playback.Start()

The Playback instance drives the rows from a timer, and can be paused, resumed and stopped from any goroutine.
*/
package mbsim

const (
	// ConfigHeader is the marker that must open every scenario file
	ConfigHeader = "# simulation server configuration file"
	// ValueLogMarker ends the global section, the data section starts on the next line
	ValueLogMarker = "#VALUE LOG"
	// ConfigVersion is the newest scenario format version this package understands
	ConfigVersion = "1.2"
)
