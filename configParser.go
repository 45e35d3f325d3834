package mbsim

import (
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseFile reads and parses a scenario file. All failures are MalformedConfig errors, a missing file
// also satisfies errors.Is(err, fs.ErrNotExist).
func ParseFile(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapConfig(err, "Configuration file %v could not be read", path)
	}
	return ParseString(string(data))
}

// Parse reads a scenario from r
func Parse(r io.Reader) (*RunConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapConfig(err, "Configuration could not be read")
	}
	return ParseString(string(data))
}

/*
ParseString parses scenario text. The first non-blank line must be the ConfigHeader. Lines up to the
ValueLogMarker are global parameters of the form `name,value,description`, and lines starting with # are comments.
The lines after the marker are the value log.

Parsing never range-checks the parameters, call Validate on the result for that.
*/
func ParseString(text string) (*RunConfig, error) {
	lines := splitLines(text)

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start == len(lines) {
		return nil, MalformedConfigErrorF("Configuration file is empty")
	}
	if !hasPrefixFold(strings.TrimSpace(lines[start]), ConfigHeader) {
		return nil, MalformedConfigErrorF("Invalid configuration file format. First line must be '%v'", ConfigHeader)
	}

	config := NewRunConfig()
	for i := start + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if hasPrefixFold(line, ValueLogMarker) {
			model, err := parseDataSection(lines[i+1:], i+1)
			if err != nil {
				return nil, wrapConfig(err, "Error parsing data section")
			}
			config.Model = model
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		config.parseGlobal(splitFields(line))
	}

	return config, nil
}

func (c *RunConfig) parseGlobal(fields []string) {
	name := strings.ToLower(field(fields, 0))
	value := field(fields, 1)
	if name == "" || value == "" {
		return
	}

	switch name {
	case "version":
		c.Version = value
	case "port":
		if port, err := strconv.Atoi(value); err == nil {
			c.Port = port
		}
	case "loops":
		if loops, err := strconv.Atoi(value); err == nil {
			c.Loops = loops
		}
	case "logfile":
		c.LogFile = value
	case "debug":
		c.Debug = parseBool(value)
	default:
		// step, step delay, vib1 and friends are simulation parameters for other tools
		c.Params.set(name, value)
	}
}
