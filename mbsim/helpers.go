package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rolfl/mbsim"
)

type addressedRange struct {
	address mbsim.Address
	count   int
}

func (r addressedRange) String() string {
	if r.count == 1 {
		return r.address.String()
	}
	return fmt.Sprintf("%v:%v", r.address, r.count)
}

// quantity is the number of registers, or bits, the range covers
func (r addressedRange) quantity() int {
	return r.count * r.address.Type.Words()
}

// addressRanges parses arguments like H100U or H10F:4, where the count is in values of the address's type
func addressRanges(refs []string) ([]addressedRange, error) {
	ret := []addressedRange{}
	for _, ref := range refs {
		parts := strings.Split(ref, ":")
		if len(parts) > 2 {
			return nil, fmt.Errorf("expect address or address:count - not: %v", ref)
		}
		add, err := mbsim.ParseAddress(parts[0])
		if err != nil {
			return nil, err
		}
		cnt := 1
		if len(parts) > 1 {
			cnt, err = strconv.Atoi(parts[1])
			if err != nil {
				return nil, err
			}
		}
		rng := addressedRange{add, cnt}
		if cnt < 1 || add.Address+rng.quantity() > 65536 {
			return nil, fmt.Errorf("illegal count %v for %v", cnt, add)
		}
		ret = append(ret, rng)
	}
	return ret, nil
}

// target parses tcp:host:port:unit
func target(access string) (string, byte, error) {
	parts := strings.Split(access, ":")
	if parts[0] != "tcp" || len(parts) != 4 {
		return "", 0, fmt.Errorf("expect exactly 4 parts for TCP client access tcp:host:port:unit - not: %v", access)
	}
	unit, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", 0, err
	}
	if unit < 0 || unit > 255 {
		return "", 0, fmt.Errorf("illegal unit %v", unit)
	}
	return strings.Join(parts[1:3], ":"), byte(unit), nil
}

// decodeRegisters formats big-endian register data as values of dataType. Float32 takes the high word first.
func decodeRegisters(data []byte, dataType mbsim.DataType) []string {
	ret := []string{}
	switch dataType {
	case mbsim.Float32:
		for i := 0; i+4 <= len(data); i += 4 {
			f := math.Float32frombits(binary.BigEndian.Uint32(data[i:]))
			ret = append(ret, strconv.FormatFloat(float64(f), 'g', -1, 32))
		}
	case mbsim.Signed16:
		for i := 0; i+2 <= len(data); i += 2 {
			ret = append(ret, strconv.Itoa(int(int16(binary.BigEndian.Uint16(data[i:])))))
		}
	default:
		for i := 0; i+2 <= len(data); i += 2 {
			ret = append(ret, strconv.Itoa(int(binary.BigEndian.Uint16(data[i:]))))
		}
	}
	return ret
}

// decodeBits unpacks count bits, least significant bit of the first byte first
func decodeBits(data []byte, count int) []string {
	ret := make([]string, 0, count)
	for i := 0; i < count && i/8 < len(data); i++ {
		if data[i/8]&(1<<(i%8)) != 0 {
			ret = append(ret, "1")
		} else {
			ret = append(ret, "0")
		}
	}
	return ret
}

func printProblems(problems []string) {
	for _, p := range problems {
		pterm.Error.Println(p)
	}
}
