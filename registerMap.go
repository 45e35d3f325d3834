package mbsim

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// SwapMode is the byte and word order used to lay a 32-bit value over two registers. A, B, C and D are the
// bytes of the value from most to least significant.
type SwapMode uint8

const (
	// NoSwap is ABCD. Not implemented yet.
	NoSwap SwapMode = iota
	// SwapBytes is BADC. Not implemented yet.
	SwapBytes
	// SwapWords writes the high-order word at the address and the low-order word at address+1, the only
	// layout the encoder implements.
	SwapWords
	// SwapBoth is DCBA. Not implemented yet.
	SwapBoth
)

// DefaultSwapMode is the layout NewRegisterMap callers should use unless a device needs something else
const DefaultSwapMode = SwapWords

func (m SwapMode) String() string {
	switch m {
	case NoSwap:
		return "NoSwap"
	case SwapBytes:
		return "SwapBytes"
	case SwapWords:
		return "SwapWords"
	case SwapBoth:
		return "SwapBoth"
	}
	return fmt.Sprintf("SwapMode(%d)", m)
}

// Supported reports whether the float encoder implements the mode
func (m SwapMode) Supported() bool {
	return m == SwapWords
}

// ParseSwapMode accepts the mode names and the ABCD style layouts, case-insensitive
func ParseSwapMode(s string) (SwapMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noswap", "none", "abcd":
		return NoSwap, nil
	case "swapbytes", "bytes", "badc":
		return SwapBytes, nil
	case "swapwords", "words", "cdab":
		return SwapWords, nil
	case "swapboth", "both", "dcba":
		return SwapBoth, nil
	}
	return 0, fmt.Errorf("unknown swap mode %q", s)
}

/*
RegisterMap encodes scenario values in to a unit's register Surface. It owns no memory itself.

Values that do not parse for their type are dropped and the register keeps what it had. Addresses are not range
checked: writing outside the surface panics, so the surface must be allocated to cover every address that will be
written (see LayoutFor).
*/
type RegisterMap struct {
	surface Surface
	swap    SwapMode
}

// NewRegisterMap wraps surface. It fails with ErrUnsupportedSwapMode for modes the encoder does not implement.
func NewRegisterMap(surface Surface, swap SwapMode) (*RegisterMap, error) {
	if !swap.Supported() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSwapMode, swap)
	}
	return &RegisterMap{surface, swap}, nil
}

// SwapMode is the 32-bit layout in use
func (r *RegisterMap) SwapMode() SwapMode {
	return r.swap
}

// Atomic runs fn with the surface locked, when the surface is a sync.Locker. Do not call Atomic from within fn.
func (r *RegisterMap) Atomic(fn func()) {
	if l, ok := r.surface.(sync.Locker); ok {
		l.Lock()
		defer l.Unlock()
	}
	fn()
}

// WriteHolding encodes value as dataType at a holding register address
func (r *RegisterMap) WriteHolding(address int, value string, dataType DataType) {
	r.writeRegister(r.surface.Holdings(), address, value, dataType)
}

// WriteInput encodes value as dataType at an input register address
func (r *RegisterMap) WriteInput(address int, value string, dataType DataType) {
	r.writeRegister(r.surface.Inputs(), address, value, dataType)
}

// WriteCoil sets or clears a coil. Integers are true when non-zero, otherwise true/false are accepted.
func (r *RegisterMap) WriteCoil(address int, value string) {
	writeBit(r.surface.Coils(), address, value)
}

// WriteDiscrete sets or clears a discrete input, with the same value rules as WriteCoil
func (r *RegisterMap) WriteDiscrete(address int, value string) {
	writeBit(r.surface.Discretes(), address, value)
}

// Write dispatches to the write function for the address's space
func (r *RegisterMap) Write(a Address, value string) {
	switch a.Space {
	case HoldingRegister:
		r.WriteHolding(a.Address, value, a.Type)
	case InputRegister:
		r.WriteInput(a.Address, value, a.Type)
	case Coil:
		r.WriteCoil(a.Address, value)
	case DiscreteInput:
		r.WriteDiscrete(a.Address, value)
	}
}

// Clear zeroes all four spaces
func (r *RegisterMap) Clear() {
	clear(r.surface.Holdings())
	clear(r.surface.Inputs())
	clear(r.surface.Coils())
	clear(r.surface.Discretes())
}

func (r *RegisterMap) writeRegister(registers []uint16, address int, value string, dataType DataType) {
	switch dataType {
	case Unsigned16:
		// ParseUint has no sign, ParseInt below accepts "+"
		if v, err := strconv.ParseUint(strings.TrimPrefix(value, "+"), 10, 16); err == nil {
			registers[address] = uint16(v)
		}
	case Signed16:
		if v, err := strconv.ParseInt(value, 10, 16); err == nil {
			registers[address] = uint16(int16(v))
		}
	case Float32:
		if v, err := strconv.ParseFloat(value, 32); err == nil {
			first, second := r.floatWords(float32(v))
			registers[address] = first
			registers[address+1] = second
		}
	}
}

// floatWords lays the IEEE-754 bits of v over two registers, in address order.
func (r *RegisterMap) floatWords(v float32) (uint16, uint16) {
	bits := math.Float32bits(v)
	abcd := []byte{byte(bits >> 24), byte(bits >> 16), byte(bits >> 8), byte(bits)}
	// only SwapWords gets past NewRegisterMap: AB at the address, CD after it
	return getWord(abcd, 0), getWord(abcd, 2)
}

func writeBit(packed []byte, address int, value string) {
	on, ok := parseBit(value)
	if !ok {
		return
	}
	mask := byte(1 << (address % 8))
	if on {
		packed[address/8] |= mask
	} else {
		packed[address/8] &^= mask
	}
}

func parseBit(value string) (bool, bool) {
	if i, err := strconv.Atoi(value); err == nil {
		return i != 0, true
	}
	switch {
	case strings.EqualFold(value, "true"):
		return true, true
	case strings.EqualFold(value, "false"):
		return false, true
	}
	return false, false
}
