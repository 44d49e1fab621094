package repl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"

	"github.com/sidosera/ttl/internal/executor"
)

// Outcome says how far a submitted line got.
type Outcome int

const (
	// OutcomeFailed accompanies an error from the backing store.
	OutcomeFailed Outcome = iota
	OutcomeEmpty
	OutcomeExecuted
	OutcomeNoSchema
	OutcomeUnknownSchema
	OutcomeMacroNotFound
	OutcomeNoCatalog
	OutcomeUnsafeArgument
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeEmpty:
		return "empty"
	case OutcomeExecuted:
		return "executed"
	case OutcomeNoSchema:
		return "no_schema"
	case OutcomeUnknownSchema:
		return "unknown_schema"
	case OutcomeMacroNotFound:
		return "macro_not_found"
	case OutcomeNoCatalog:
		return "no_catalog"
	case OutcomeUnsafeArgument:
		return "unsafe_argument"
	}
	return "outcome(" + strconv.Itoa(int(o)) + ")"
}

// CommandResult pairs the submitted text, before expansion or rewrite,
// with the frame it produced.
type CommandResult struct {
	Query string
	Frame *executor.DataFrame
}

// Result describes what Execute did with one line.
type Result struct {
	Outcome Outcome
	// Command is set only for OutcomeExecuted.
	Command *CommandResult
	// Schema is the detected routing schema, when one was found.
	Schema     string
	Macro      string
	Argument   string
	Suggestion string
}

// Executed reports whether a query ran.
func (r Result) Executed() bool { return r.Outcome == OutcomeExecuted }

// Message is the operator-facing text for a rejected line. It is empty for
// executed and empty lines.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeNoSchema:
		return "Could not detect schema from query"
	case OutcomeUnknownSchema:
		return "No executor for schema: " + r.Schema
	case OutcomeNoCatalog:
		return "No executor for schema: " + executor.CatalogSchema
	case OutcomeMacroNotFound:
		msg := "Unknown macro: " + r.Macro
		if r.Suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %s?)", r.Suggestion)
		}
		return msg
	case OutcomeUnsafeArgument:
		return fmt.Sprintf("Refusing macro argument %q: quotes, semicolons, backslashes and comments are not allowed", r.Argument)
	}
	return ""
}

// Format renders cr as
//
//	Query: <text>
//
//	<n> rows
//	<json preview of at most limit rows>
//
// Integer fields that may exceed 53 bits are written as decimal strings,
// and so are NaN and the infinities.
func Format(cr CommandResult, limit int) string {
	rows := cr.Frame.Len()
	preview := make([]orderedRow, 0, min(rows, max(limit, 0)))
	for i := 0; i < rows && i < limit; i++ {
		preview = append(preview, orderedRow{cols: columnsOf(cr.Frame), rec: cr.Frame.Rows[i]})
	}
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(preview); err != nil {
		body.Reset()
		fmt.Fprint(&body, cr.Frame.Rows[:len(preview)])
	}
	return fmt.Sprintf("Query: %s\n\n%d rows\n%s", cr.Query, rows, bytes.TrimRight(body.Bytes(), "\n"))
}

func columnsOf(df *executor.DataFrame) []string {
	if len(df.Columns) > 0 {
		return df.Columns
	}
	if len(df.Rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(df.Rows[0]))
	for c := range df.Rows[0] {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// orderedRow marshals a record with its keys in column order.
type orderedRow struct {
	cols []string
	rec  executor.Record
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := marshal(displayValue(r.rec[c]))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func displayValue(v any) any {
	switch t := v.(type) {
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case uint64:
		return strconv.FormatUint(t, 10)
	case *big.Int:
		return t.String()
	case []byte:
		return string(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'g', -1, 64)
		}
	case float32:
		if f := float64(t); math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 32)
		}
	}
	return v
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
