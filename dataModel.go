package mbsim

import (
	"fmt"
	"strings"
)

// ColumnKind classifies a value log column by its assignment
type ColumnKind uint8

const (
	// Ignored columns have a blank assignment and are documentation only
	Ignored ColumnKind = iota
	// TimeDelta is the column holding the delay, in milliseconds, before the next row
	TimeDelta
	// RowReference is the column holding an optional tag for the row
	RowReference
	// AddressedValue columns are bound to a Modbus address
	AddressedValue
)

func (k ColumnKind) String() string {
	switch k {
	case Ignored:
		return "Ignored"
	case TimeDelta:
		return "TimeDelta"
	case RowReference:
		return "RowReference"
	case AddressedValue:
		return "AddressedValue"
	}
	return fmt.Sprintf("ColumnKind(%d)", k)
}

// Column is one column of the value log
type Column struct {
	Index       int
	Description string
	Assignment  string
	Kind        ColumnKind
	// Address is only meaningful for AddressedValue columns
	Address Address
}

// Row is one line of the value log. Values only holds the addressed columns the row gave a value for.
// A column with Present false inherits whatever was applied before it.
type Row struct {
	Number  int
	Delay   int
	Ref     string
	Values  map[int]string
	Present map[int]bool
}

func newRow(number int) *Row {
	return &Row{Number: number, Values: make(map[int]string), Present: make(map[int]bool)}
}

// Value returns the raw text the row holds for a column
func (r *Row) Value(column int) (string, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// IsPresent reports whether the row supplied an explicit value for the column
func (r *Row) IsPresent(column int) bool {
	return r.Present[column]
}

// Model is the parsed value log: column definitions and rows in playback order
type Model struct {
	Columns []Column
	Rows    []*Row
	// DelayColumn and RefColumn are -1 when absent
	DelayColumn int
	RefColumn   int
}

// NewModel returns an empty model
func NewModel() *Model {
	return &Model{DelayColumn: -1, RefColumn: -1}
}

// AddressedColumns returns the columns bound to a Modbus address, in column order
func (m *Model) AddressedColumns() []Column {
	ret := make([]Column, 0, len(m.Columns))
	for _, c := range m.Columns {
		if c.Kind == AddressedValue {
			ret = append(ret, c)
		}
	}
	return ret
}

// Validate checks the structural invariants of the model. It returns a human readable line per problem,
// and an empty result when the model can be played.
func (m *Model) Validate() []string {
	errs := []string{}

	if len(m.Columns) == 0 {
		return append(errs, "No columns defined in data section")
	}

	addressed := m.AddressedColumns()
	if len(addressed) == 0 {
		errs = append(errs, "No Modbus address columns defined")
	}
	if m.DelayColumn == -1 {
		errs = append(errs, "DeltaTime column not found. At least one column must be marked as 'DeltaTime'")
	}
	if len(m.Rows) == 0 {
		errs = append(errs, "No data rows found")
	}

	// (space, address) pairs, in the order they are first seen
	type key struct {
		space   Space
		address int
	}
	order := []key{}
	users := make(map[key][]int)
	for _, c := range addressed {
		k := key{c.Address.Space, c.Address.Address}
		if _, ok := users[k]; !ok {
			order = append(order, k)
		}
		users[k] = append(users[k], c.Index)
		if c.Address.End() > maxAddress {
			errs = append(errs, fmt.Sprintf("Column %v: %v needs register %v which is beyond %v", c.Index, c.Address, c.Address.End(), maxAddress))
		}
	}
	for _, k := range order {
		if cols := users[k]; len(cols) > 1 {
			names := make([]string, len(cols))
			for i, c := range cols {
				names[i] = fmt.Sprintf("Column %v", c)
			}
			errs = append(errs, fmt.Sprintf("Duplicate Modbus address %c%v used in: %v", k.space.Code(), k.address, strings.Join(names, ", ")))
		}
	}

	refs := []string{}
	rows := make(map[string][]int)
	for _, r := range m.Rows {
		if r.Delay < 0 {
			errs = append(errs, fmt.Sprintf("Negative DeltaTime value %v at row %v", r.Delay, r.Number))
		}
		if r.Ref == "" {
			continue
		}
		if _, ok := rows[r.Ref]; !ok {
			refs = append(refs, r.Ref)
		}
		rows[r.Ref] = append(rows[r.Ref], r.Number)
	}
	for _, ref := range refs {
		if nums := rows[ref]; len(nums) > 1 {
			strs := make([]string, len(nums))
			for i, n := range nums {
				strs[i] = fmt.Sprint(n)
			}
			errs = append(errs, fmt.Sprintf("Duplicate Ref value '%v' found in rows: %v", ref, strings.Join(strs, ", ")))
		}
	}

	return errs
}
