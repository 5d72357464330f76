package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSchemaUnion(t *testing.T) {
	records := []Record{
		{Fields: map[string]string{"A": "x", "B": "y"}},
		{Fields: map[string]string{"A": "z", "C": "w"}},
	}

	schema := BuildSchema(records, []string{"A"})
	require.Equal(t, []string{"A", "B", "C"}, schema)
}

func TestBuildSchemaPreferredOrderWins(t *testing.T) {
	records := []Record{
		{Fields: map[string]string{"zz": "1", "name": "n", "addr": "a"}},
	}

	schema := BuildSchema(records, []string{"name", "addr", "missing"})
	require.Equal(t, []string{"name", "addr", "zz"}, schema)
}

func TestBuildSchemaRestSorted(t *testing.T) {
	records := []Record{
		{Fields: map[string]string{"delta": "", "bravo": "", "alpha": ""}},
	}

	schema := BuildSchema(records, nil)
	require.Equal(t, []string{"alpha", "bravo", "delta"}, schema)
}

func TestBuildSchemaEmpty(t *testing.T) {
	require.Empty(t, BuildSchema(nil, []string{"A"}))
}
