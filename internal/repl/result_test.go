package repl

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sidosera/ttl/internal/executor"
)

func TestFormat(t *testing.T) {
	cr := CommandResult{
		Query: "SELECT * FROM catalog://runtime",
		Frame: &executor.DataFrame{
			Columns: []string{"value", "key", "n"},
			Rows: []executor.Record{
				{"key": "a", "value": "<1>", "n": int64(9007199254740993)},
				{"key": "b", "value": nil, "n": int32(7)},
			},
		},
	}
	want := `Query: SELECT * FROM catalog://runtime

2 rows
[
  {
    "value": "<1>",
    "key": "a",
    "n": "9007199254740993"
  },
  {
    "value": null,
    "key": "b",
    "n": 7
  }
]`
	require.Equal(t, want, Format(cr, 5))
}

func TestFormatPreviewLimit(t *testing.T) {
	df := &executor.DataFrame{Columns: []string{"x"}}
	for i := 0; i < 8; i++ {
		df.Rows = append(df.Rows, executor.Record{"x": big.NewInt(int64(i))})
	}
	out := Format(CommandResult{Query: "q", Frame: df}, 5)
	require.Contains(t, out, "\n8 rows\n")
	require.Contains(t, out, `"x": "4"`)
	require.NotContains(t, out, `"x": "5"`)
}

func TestFormatNonFiniteFloats(t *testing.T) {
	cr := CommandResult{
		Query: "q",
		Frame: &executor.DataFrame{
			Columns: []string{"a", "b", "c", "d"},
			Rows: []executor.Record{
				{"a": math.NaN(), "b": math.Inf(1), "c": float32(math.Inf(-1)), "d": 1.5},
			},
		},
	}
	want := `Query: q

1 rows
[
  {
    "a": "NaN",
    "b": "+Inf",
    "c": "-Inf",
    "d": 1.5
  }
]`
	require.Equal(t, want, Format(cr, 5))
}

func TestFormatEmpty(t *testing.T) {
	require.Equal(t, "Query: q\n\n0 rows\n[]", Format(CommandResult{Query: "q", Frame: &executor.DataFrame{}}, 5))
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "unknown_schema", OutcomeUnknownSchema.String())
	require.Equal(t, "outcome(99)", Outcome(99).String())
}
