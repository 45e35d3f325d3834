package mbsim

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/simonvetter/modbus"
)

// ServerConfig configures the Modbus TCP listener
type ServerConfig struct {
	// URL is the listen address, e.g. tcp://0.0.0.0:502
	URL string
	// Timeout closes idle client connections, zero uses the transport default
	Timeout time.Duration
	// MaxClients limits concurrent connections, zero uses the transport default
	MaxClients uint
}

// ListenURL builds a tcp:// URL for a bind address and port. An empty bind listens on all interfaces.
func ListenURL(bind string, port int) string {
	if bind == "" {
		bind = "0.0.0.0"
	}
	return "tcp://" + net.JoinHostPort(bind, strconv.Itoa(port))
}

// AllUnits is the unit id that answers for any unit without a Memory of its own
const AllUnits = 0xFF

// ServeAllUnits is a convenience function to map a Memory instance on to all unitID addresses.
func ServeAllUnits(mem *Memory) map[int]*Memory {
	return map[int]*Memory{AllUnits: mem}
}

/*
Server answers Modbus TCP read requests from the Memory of each unit. The Modbus protocol handling is done by the
transport library, the Server only resolves requests against memory. Write requests are refused with an
illegal function exception: the register contents belong to the playback.
*/
type Server struct {
	url   string
	mb    *modbus.ModbusServer
	units map[uint8]*Memory
	log   *slog.Logger
}

// NewServer prepares a server for the given unit memories. Call Start to begin listening.
func NewServer(cfg ServerConfig, units map[int]*Memory, logger *slog.Logger) (*Server, error) {
	if len(units) == 0 {
		return nil, errors.New("server needs at least one unit")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{url: cfg.URL, units: make(map[uint8]*Memory), log: logger}
	for u, mem := range units {
		if u < 0 || u > 255 {
			return nil, fmt.Errorf("unit id %v out of range 0-255", u)
		}
		if mem == nil {
			return nil, fmt.Errorf("unit %v has no memory", u)
		}
		s.units[uint8(u)] = mem
	}

	mb, err := modbus.NewServer(&modbus.ServerConfiguration{
		URL:        cfg.URL,
		Timeout:    cfg.Timeout,
		MaxClients: cfg.MaxClients,
	}, s)
	if err != nil {
		return nil, err
	}
	s.mb = mb
	return s, nil
}

// Start begins accepting connections
func (s *Server) Start() error {
	if err := s.mb.Start(); err != nil {
		return err
	}
	s.log.Info("Modbus TCP server started", "url", s.url)
	return nil
}

// Close stops listening and drops all client connections
func (s *Server) Close() error {
	err := s.mb.Stop()
	s.log.Info("Modbus TCP server stopped", "url", s.url)
	return err
}

func (s *Server) memory(unit uint8) (*Memory, error) {
	if mem, ok := s.units[unit]; ok {
		return mem, nil
	}
	if mem, ok := s.units[AllUnits]; ok {
		return mem, nil
	}
	s.log.Debug("Request for unknown unit", "unit", unit)
	return nil, modbus.ErrGWTargetFailedToRespond
}

// reject logs and refuses a write request
func (s *Server) reject(kind string, client string, unit uint8, addr uint16) error {
	s.log.Debug("Refused write request", "space", kind, "client", client, "unit", unit, "address", addr)
	return modbus.ErrIllegalFunction
}

// mapReadError converts a memory read failure in to the Modbus exception the transport sends.
func (s *Server) mapReadError(err error) error {
	var rangeErr *AddressRangeError
	if errors.As(err, &rangeErr) {
		s.log.Debug("Read outside memory", "error", err)
		return modbus.ErrIllegalDataAddress
	}
	return modbus.ErrServerDeviceFailure
}

// HandleCoils serves coil reads
func (s *Server) HandleCoils(req *modbus.CoilsRequest) ([]bool, error) {
	if req.IsWrite {
		return nil, s.reject("coil", req.ClientAddr, req.UnitId, req.Addr)
	}
	mem, err := s.memory(req.UnitId)
	if err != nil {
		return nil, err
	}
	res, err := mem.ReadCoils(int(req.Addr), int(req.Quantity))
	if err != nil {
		return nil, s.mapReadError(err)
	}
	return res, nil
}

// HandleDiscreteInputs serves discrete input reads
func (s *Server) HandleDiscreteInputs(req *modbus.DiscreteInputsRequest) ([]bool, error) {
	mem, err := s.memory(req.UnitId)
	if err != nil {
		return nil, err
	}
	res, err := mem.ReadDiscretes(int(req.Addr), int(req.Quantity))
	if err != nil {
		return nil, s.mapReadError(err)
	}
	return res, nil
}

// HandleHoldingRegisters serves holding register reads
func (s *Server) HandleHoldingRegisters(req *modbus.HoldingRegistersRequest) ([]uint16, error) {
	if req.IsWrite {
		return nil, s.reject("holding", req.ClientAddr, req.UnitId, req.Addr)
	}
	mem, err := s.memory(req.UnitId)
	if err != nil {
		return nil, err
	}
	res, err := mem.ReadHoldings(int(req.Addr), int(req.Quantity))
	if err != nil {
		return nil, s.mapReadError(err)
	}
	return res, nil
}

// HandleInputRegisters serves input register reads
func (s *Server) HandleInputRegisters(req *modbus.InputRegistersRequest) ([]uint16, error) {
	mem, err := s.memory(req.UnitId)
	if err != nil {
		return nil, err
	}
	res, err := mem.ReadInputs(int(req.Addr), int(req.Quantity))
	if err != nil {
		return nil, s.mapReadError(err)
	}
	return res, nil
}
