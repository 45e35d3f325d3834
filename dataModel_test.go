package mbsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseModel(t *testing.T, data string) *Model {
	t.Helper()
	cfg, err := ParseString("# simulation server configuration file\n#VALUE LOG\n" + data)
	require.NoError(t, err)
	require.NotNil(t, cfg.Model)
	return cfg.Model
}

func TestModelValidate(t *testing.T) {
	cases := map[string]struct {
		data string
		want []string
	}{
		"valid": {
			data: "a,b,c\nREF,DELAY,H1U\nx,10,1\ny,10,2\n",
			want: []string{},
		},
		"no delay column": {
			data: "a,b\nREF,H1U\nx,1\n",
			want: []string{"DeltaTime column not found. At least one column must be marked as 'DeltaTime'"},
		},
		"no addresses": {
			data: "a,b\nDELAY,\n10,note\n",
			want: []string{"No Modbus address columns defined"},
		},
		"no rows": {
			data: "a,b\nDELAY,H1U\n# nothing yet\n",
			want: []string{"No data rows found"},
		},
		"duplicate address": {
			data: "a,b,c,d\nDELAY,H10U,H10S,I10U\n10,1,2,3\n",
			want: []string{"Duplicate Modbus address H10 used in: Column 1, Column 2"},
		},
		"float overlap is allowed": {
			data: "a,b,c\nDELAY,H10F,H11U\n10,1,2\n",
			want: []string{},
		},
		"float past the end": {
			data: "a,b\nDELAY,I65535F\n10,1\n",
			want: []string{"Column 1: I65535F needs register 65536 which is beyond 65535"},
		},
		"duplicate refs": {
			data: "r,d,v\nTAG,DELAY,C1B\nx,1,1\ny,1,0\nx,1,1\n,1,0\n,1,1\n",
			want: []string{"Duplicate Ref value 'x' found in rows: 5, 7"},
		},
		"negative delay": {
			data: "d,v\nDELAY,C1B\n-5,1\n",
			want: []string{"Negative DeltaTime value -5 at row 5"},
		},
		"everything missing": {
			data: "a\n\n",
			want: []string{"No Modbus address columns defined", "DeltaTime column not found. At least one column must be marked as 'DeltaTime'", "No data rows found"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseModel(t, tc.data).Validate())
		})
	}
}

func TestModelValidateNoColumns(t *testing.T) {
	assert.Equal(t, []string{"No columns defined in data section"}, NewModel().Validate())
}

func TestRunConfigValidate(t *testing.T) {
	cfg := NewRunConfig()
	assert.Equal(t, []string{"No data rows found (no #VALUE LOG section)"}, cfg.Validate())

	cfg.Model = parseModel(t, "a,b\nDELAY,H1U\n10,1\n")
	assert.Empty(t, cfg.Validate())

	cfg.Port = 0
	cfg.Version = "1.3"
	assert.Equal(t, []string{
		"Configuration version '1.3' is not compatible with application version '1.2'",
		"Port 0 is out of valid range (1-65535)",
	}, cfg.Validate())
}

func TestAddressedColumns(t *testing.T) {
	m := parseModel(t, "a,b,c,d,e\nREF,H1U,,DELAY,C2B\n")
	cols := m.AddressedColumns()
	require.Len(t, cols, 2)
	assert.Equal(t, 1, cols[0].Index)
	assert.Equal(t, 4, cols[1].Index)
	assert.Equal(t, 3, m.DelayColumn)
	assert.Equal(t, 0, m.RefColumn)
}
