package mbsim

import (
	"strconv"
	"strings"
)

// parseDataSection parses the lines that follow the #VALUE LOG marker. first is the 0-based index of the
// first of those lines in the file, used to give rows their file line number.
func parseDataSection(lines []string, first int) (*Model, error) {
	if len(lines) == 0 {
		return nil, MalformedConfigErrorF("No data section found after %v marker", ValueLogMarker)
	}
	descriptions := splitFields(lines[0])
	if len(lines) < 2 {
		return nil, MalformedConfigErrorF("Missing second header line (address assignments)")
	}
	assignments := splitFields(lines[1])

	model := NewModel()
	count := max(len(descriptions), len(assignments))
	for i := 0; i < count; i++ {
		column, err := parseColumn(i, field(descriptions, i), field(assignments, i))
		if err != nil {
			return nil, err
		}
		model.Columns = append(model.Columns, column)
		switch column.Kind {
		case TimeDelta:
			model.DelayColumn = i
		case RowReference:
			model.RefColumn = i
		}
	}

	for i := 2; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		row, err := parseRow(line, model.Columns, first+i+1)
		if err != nil {
			return nil, err
		}
		model.Rows = append(model.Rows, row)
	}

	return model, nil
}

func parseColumn(index int, description, assignment string) (Column, error) {
	column := Column{Index: index, Description: description, Assignment: assignment}
	switch strings.ToUpper(assignment) {
	case "":
		column.Kind = Ignored
	case "DELTATIME", "DELAY":
		column.Kind = TimeDelta
	case "REF", "ID", "TAG":
		column.Kind = RowReference
	default:
		address, err := ParseAddress(assignment)
		if err != nil {
			return column, err.(*Error).atColumn(index)
		}
		column.Kind = AddressedValue
		column.Address = address
	}
	return column, nil
}

func parseRow(line string, columns []Column, number int) (*Row, error) {
	fields := splitFields(line)
	row := newRow(number)

	for _, column := range columns {
		if column.Kind == Ignored {
			continue
		}
		i := column.Index
		value := field(fields, i)
		present := value != ""
		row.Present[i] = present
		if !present {
			continue
		}

		switch column.Kind {
		case TimeDelta:
			delay, err := strconv.Atoi(value)
			if err != nil {
				return nil, MalformedRowErrorF(number, i, value, "Invalid DeltaTime value '%v' at row %v, column %v. Must be an integer", value, number, i)
			}
			row.Delay = delay
		case RowReference:
			row.Ref = value
		default:
			row.Values[i] = value
		}
	}
	return row, nil
}
