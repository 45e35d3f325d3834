package mbsim

/*
this file contains some utility functions
*/

import (
	"fmt"
	"strings"
)

// splitFields splits a scenario line on commas. A double quote toggles the quoted state, and commas
// inside quotes are kept. The quotes themselves are dropped.
func splitFields(line string) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false
	for _, c := range line {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}
	return append(fields, current.String())
}

// field returns fields[i] trimmed, or "" when the line is short.
func field(fields []string, i int) string {
	if i < len(fields) {
		return strings.TrimSpace(fields[i])
	}
	return ""
}

// parseBool accepts 1/true/yes and 0/false/no, case-insensitive. Anything else is true.
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "false", "no":
		return false
	}
	return true
}

// splitLines breaks file text in to physical lines, tolerating a BOM and CRLF endings.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	// a trailing newline does not start another line
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// getWord retrieves a 16-bit word in standard Modbus layout (bigendian) from a byte slice.
func getWord(data []byte, index int) uint16 {
	return uint16(data[index])<<8 | uint16(data[index+1])
}

// checkAddress validates that an address and length is covered by the available data
func checkAddress(name string, address, count, limit int) error {
	if address >= 0 && count >= 0 && address+count <= limit {
		return nil
	}
	plural := "s"
	if count == 1 {
		plural = ""
	}
	return &AddressRangeError{fmt.Sprintf("%v: unable to get %v item%v from %v with limit of %v", name, count, plural, address, limit)}
}

// AddressRangeError is returned when a read reaches beyond the allocated memory
type AddressRangeError struct {
	msg string
}

func (err *AddressRangeError) Error() string {
	return err.msg
}
