package mbsim

import "sync"

// Layout is the size of each space in a Memory: registers for holdings and inputs, bits for coils and discretes
type Layout struct {
	Holdings  int
	Inputs    int
	Coils     int
	Discretes int
}

// FullLayout covers every address in every space
var FullLayout = Layout{maxAddress + 1, maxAddress + 1, maxAddress + 1, maxAddress + 1}

// LayoutFor returns the smallest layout that holds every addressed column of the model
func LayoutFor(model *Model) Layout {
	l := Layout{}
	if model == nil {
		return l
	}
	for _, c := range model.AddressedColumns() {
		size := min(c.Address.End(), maxAddress) + 1
		switch c.Address.Space {
		case HoldingRegister:
			l.Holdings = max(l.Holdings, size)
		case InputRegister:
			l.Inputs = max(l.Inputs, size)
		case Coil:
			l.Coils = max(l.Coils, size)
		case DiscreteInput:
			l.Discretes = max(l.Discretes, size)
		}
	}
	return l
}

// Surface is the raw register memory of one unit that a RegisterMap writes through. Coils and discretes are
// packed 8 to a byte, least significant bit first.
type Surface interface {
	Holdings() []uint16
	Inputs() []uint16
	Coils() []byte
	Discretes() []byte
}

/*
Memory is the register memory of one Modbus unit. It is a Surface, and also a sync.Locker: writers hold the lock
while they change it. The Read functions take a read lock and are what the Server uses to answer requests.
*/
type Memory struct {
	mu        sync.RWMutex
	holdings  []uint16
	inputs    []uint16
	coils     []byte
	discretes []byte
	layout    Layout
}

// NewMemory allocates memory for the layout
func NewMemory(layout Layout) *Memory {
	return &Memory{
		holdings:  make([]uint16, layout.Holdings),
		inputs:    make([]uint16, layout.Inputs),
		coils:     make([]byte, (layout.Coils+7)/8),
		discretes: make([]byte, (layout.Discretes+7)/8),
		layout:    layout,
	}
}

// Layout returns the sizes the memory was allocated with
func (m *Memory) Layout() Layout {
	return m.layout
}

func (m *Memory) Holdings() []uint16 {
	return m.holdings
}

func (m *Memory) Inputs() []uint16 {
	return m.inputs
}

func (m *Memory) Coils() []byte {
	return m.coils
}

func (m *Memory) Discretes() []byte {
	return m.discretes
}

func (m *Memory) Lock() {
	m.mu.Lock()
}

func (m *Memory) Unlock() {
	m.mu.Unlock()
}

// ReadHoldings copies count holding registers starting at address
func (m *Memory) ReadHoldings(address, count int) ([]uint16, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return readWords("Holding", m.holdings, address, count)
}

// ReadInputs copies count input registers starting at address
func (m *Memory) ReadInputs(address, count int) ([]uint16, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return readWords("Input", m.inputs, address, count)
}

// ReadCoils unpacks count coils starting at address
func (m *Memory) ReadCoils(address, count int) ([]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return readBits("Coil", m.coils, m.layout.Coils, address, count)
}

// ReadDiscretes unpacks count discrete inputs starting at address
func (m *Memory) ReadDiscretes(address, count int) ([]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return readBits("Discrete", m.discretes, m.layout.Discretes, address, count)
}

func readWords(name string, words []uint16, address, count int) ([]uint16, error) {
	if err := checkAddress(name, address, count, len(words)); err != nil {
		return nil, err
	}
	return append(make([]uint16, 0, count), words[address:address+count]...), nil
}

func readBits(name string, packed []byte, limit, address, count int) ([]bool, error) {
	if err := checkAddress(name, address, count, limit); err != nil {
		return nil, err
	}
	bits := make([]bool, count)
	for c := range bits {
		a := address + c
		bits[c] = packed[a/8]&(1<<(a%8)) != 0
	}
	return bits, nil
}
