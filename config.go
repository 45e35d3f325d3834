package mbsim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Defaults for a scenario that does not name them
const (
	DefaultVersion = "1"
	DefaultPort    = 502
	DefaultLoops   = 1
)

// Parameters holds the global parameters the run configuration does not use itself, keyed by lower case name
type Parameters map[string]string

// Get looks a parameter up by name, case-insensitive
func (p Parameters) Get(name string) (string, bool) {
	v, ok := p[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// Names returns the parameter names in sorted order
func (p Parameters) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (p Parameters) set(name, value string) {
	p[strings.ToLower(name)] = value
}

// RunConfig is a parsed scenario file
type RunConfig struct {
	Version string
	Port    int
	// Loops is the number of times the rows are played, 0 plays forever
	Loops   int
	LogFile string
	Debug   bool
	Params  Parameters
	// Model is nil when the file has no value log section
	Model *Model
}

// NewRunConfig returns a RunConfig holding the defaults
func NewRunConfig() *RunConfig {
	return &RunConfig{
		Version: DefaultVersion,
		Port:    DefaultPort,
		Loops:   DefaultLoops,
		Debug:   true,
		Params:  make(Parameters),
	}
}

// Validate checks the configuration and its model, returning a human readable line per problem
func (c *RunConfig) Validate() []string {
	errs := []string{}

	if !versionCompatible(c.Version, ConfigVersion) {
		errs = append(errs, fmt.Sprintf("Configuration version '%v' is not compatible with application version '%v'", c.Version, ConfigVersion))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("Port %v is out of valid range (1-65535)", c.Port))
	}
	if c.Loops < 0 {
		errs = append(errs, fmt.Sprintf("Loops value %v cannot be negative", c.Loops))
	}

	if c.Model == nil {
		errs = append(errs, fmt.Sprintf("No data rows found (no %v section)", ValueLogMarker))
	} else {
		errs = append(errs, c.Model.Validate()...)
	}

	return errs
}

// versionCompatible accepts versions like "1", "1.1" or "1.2.a". The major part must parse and be no newer than
// the application's, and when the majors match the minor must be no newer either. An unparseable minor is accepted.
func versionCompatible(config, app string) bool {
	cfgParts := strings.Split(strings.TrimSpace(config), ".")
	appParts := strings.Split(app, ".")

	cfgMajor, err := strconv.Atoi(cfgParts[0])
	if err != nil {
		return false
	}
	appMajor, err := strconv.Atoi(appParts[0])
	if err != nil {
		return false
	}
	if cfgMajor != appMajor {
		return cfgMajor < appMajor
	}

	if len(cfgParts) > 1 && len(appParts) > 1 {
		cfgMinor, err := strconv.Atoi(cfgParts[1])
		if err != nil {
			return true
		}
		appMinor, err := strconv.Atoi(appParts[1])
		if err != nil {
			return true
		}
		return cfgMinor <= appMinor
	}
	return true
}
