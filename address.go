package mbsim

import (
	"fmt"
	"strconv"
	"strings"
)

// Space is one of the four Modbus memory regions
type Space uint8

const (
	// HoldingRegister is the read/write 16-bit register space (H)
	HoldingRegister Space = iota
	// InputRegister is the read-only 16-bit register space (I)
	InputRegister
	// Coil is the read/write bit space (C)
	Coil
	// DiscreteInput is the read-only bit space (D)
	DiscreteInput
)

// DataType is the encoding of a value in its Space
type DataType uint8

const (
	// Unsigned16 is a single register holding 0..65535 (U)
	Unsigned16 DataType = iota
	// Signed16 is a single register holding -32768..32767 as two's complement (S)
	Signed16
	// Float32 is an IEEE-754 single spanning the register at the address and the one after it (F)
	Float32
	// Bit is a single coil or discrete input (B)
	Bit
)

const maxAddress = 65535

var spaceCodes = map[byte]Space{'H': HoldingRegister, 'I': InputRegister, 'C': Coil, 'D': DiscreteInput}
var typeCodes = map[byte]DataType{'U': Unsigned16, 'S': Signed16, 'F': Float32, 'B': Bit}

// Code is the single letter used for the space in address tokens
func (s Space) Code() byte {
	return "HICD?"[min(int(s), 4)]
}

func (s Space) String() string {
	switch s {
	case HoldingRegister:
		return "HoldingRegister"
	case InputRegister:
		return "InputRegister"
	case Coil:
		return "Coil"
	case DiscreteInput:
		return "DiscreteInput"
	}
	return fmt.Sprintf("Space(%d)", s)
}

// IsBit is true for the coil and discrete input spaces
func (s Space) IsBit() bool {
	return s == Coil || s == DiscreteInput
}

// Code is the single letter used for the type in address tokens
func (t DataType) Code() byte {
	return "USFB?"[min(int(t), 4)]
}

func (t DataType) String() string {
	switch t {
	case Unsigned16:
		return "Unsigned16"
	case Signed16:
		return "Signed16"
	case Float32:
		return "Float32"
	case Bit:
		return "Bit"
	}
	return fmt.Sprintf("DataType(%d)", t)
}

// Words is the number of 16-bit registers a value of this type occupies
func (t DataType) Words() int {
	if t == Float32 {
		return 2
	}
	return 1
}

// Address is a parsed address assignment such as H100U
type Address struct {
	Space   Space
	Address int
	Type    DataType
}

/*
ParseAddress parses an address assignment of the form [H|I|C|D][0-65535][U|S|F|B]. The token is trimmed and
case-insensitive. Coils and discrete inputs must use the B type, and registers must not.

	H100U   holding register 100, unsigned
	I200S   input register 200, signed
	H10F    holding registers 10 and 11, float
	C50B    coil 50
*/
func ParseAddress(token string) (Address, error) {
	tok := strings.ToUpper(strings.TrimSpace(token))
	if tok == "" {
		return Address{}, MalformedAddressErrorF(token, "address assignment cannot be empty")
	}
	if len(tok) < 3 {
		return Address{}, MalformedAddressErrorF(token, "invalid address assignment format: '%v'", tok)
	}

	spaceChar := tok[0]
	space, ok := spaceCodes[spaceChar]
	if !ok {
		return Address{}, MalformedAddressErrorF(token, "invalid address space: '%c'. Must be H, I, C, or D", spaceChar)
	}

	typeChar := tok[len(tok)-1]
	dataType, ok := typeCodes[typeChar]
	if !ok {
		return Address{}, MalformedAddressErrorF(token, "invalid data type: '%c'. Must be U, S, F, or B", typeChar)
	}

	if space.IsBit() && dataType != Bit {
		return Address{}, MalformedAddressErrorF(token, "address space %c must use Bit (B) data type", spaceChar)
	}
	if !space.IsBit() && dataType == Bit {
		return Address{}, MalformedAddressErrorF(token, "address space %c cannot use Bit (B) data type. Use U, S, or F", spaceChar)
	}

	middle := tok[1 : len(tok)-1]
	address, err := strconv.Atoi(middle)
	if err != nil || address < 0 || address > maxAddress {
		return Address{}, MalformedAddressErrorF(token, "invalid address: '%v'. Must be 0-%v", middle, maxAddress)
	}

	return Address{space, address, dataType}, nil
}

// MustParseAddress is ParseAddress that panics, for tests and literals
func MustParseAddress(token string) Address {
	a, err := ParseAddress(token)
	if err != nil {
		panic(err)
	}
	return a
}

// String formats the address in its canonical token form, the inverse of ParseAddress
func (a Address) String() string {
	return fmt.Sprintf("%c%d%c", a.Space.Code(), a.Address, a.Type.Code())
}

// End is the last register (or bit) the address occupies
func (a Address) End() int {
	return a.Address + a.Type.Words() - 1
}
