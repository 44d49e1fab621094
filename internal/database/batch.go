package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sidosera/ttl/internal/executor"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SplitStatements splits text on semicolons that are outside quoted
// literals, comments and trigger bodies. Comments are dropped; an
// unterminated block comment runs to the end of text. Empty statements are
// dropped.
func SplitStatements(text string) []string {
	var out []string
	var cur strings.Builder
	var quote byte
	var st stmtState

	flush := func() {
		stmt := strings.TrimSpace(cur.String())
		if stmt != "" {
			out = append(out, stmt)
		}
		cur.Reset()
		st = stmtState{}
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case quote != 0:
			// a doubled quote toggles out and back in, which keeps it literal
			if ch == quote {
				quote = 0
			}
		case isWordByte(ch):
			j := i
			for j < len(text) && isWordByte(text[j]) {
				j++
			}
			st.word(text[i:j])
			cur.WriteString(text[i:j])
			i = j - 1
			continue
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
		case ch == '-' && i+1 < len(text) && text[i+1] == '-':
			for i < len(text) && text[i] != '\n' {
				i++
			}
			cur.WriteByte('\n')
			continue
		case ch == '/' && i+1 < len(text) && text[i+1] == '*':
			if end := strings.Index(text[i+2:], "*/"); end >= 0 {
				i += 2 + end + 1
			} else {
				i = len(text)
			}
			cur.WriteByte(' ')
			continue
		case ch == ';' && st.splittable():
			flush()
			continue
		}
		cur.WriteByte(ch)
	}
	flush()
	return out
}

// stmtState follows the keywords of the statement being scanned. Inside
// CREATE TRIGGER the body runs from BEGIN to its matching END, and CASE
// expressions in it close with END too.
type stmtState struct {
	words   int
	first   string
	trigger bool
	depth   int
	cases   int
}

func (s *stmtState) word(w string) {
	u := strings.ToUpper(w)
	s.words++
	if s.words == 1 {
		s.first = u
	}
	if !s.trigger {
		s.trigger = s.first == "CREATE" && s.words <= 3 && u == "TRIGGER"
		return
	}
	switch u {
	case "BEGIN":
		s.depth++
	case "CASE":
		s.cases++
	case "END":
		if s.cases > 0 {
			s.cases--
		} else if s.depth > 0 {
			s.depth--
		}
	}
}

func (s *stmtState) splittable() bool {
	return !s.trigger || s.depth == 0
}

func isWordByte(ch byte) bool {
	return ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

// RunBatch executes every statement of text in order on q, draining each
// result set, and returns the frame of the last one. With args the text is
// treated as a single statement.
func RunBatch(ctx context.Context, q Querier, text string, args ...any) (*executor.DataFrame, error) {
	stmts := []string{text}
	if len(args) == 0 {
		stmts = SplitStatements(text)
	}
	last := &executor.DataFrame{}
	for i, stmt := range stmts {
		df, err := runOne(ctx, q, stmt, args...)
		if err != nil {
			if len(stmts) > 1 {
				return nil, fmt.Errorf("statement %d: %w", i+1, err)
			}
			return nil, err
		}
		last = df
	}
	return last, nil
}

// runOne drains the result even for statements without a result set; some
// drivers only step the statement while rows are read.
func runOne(ctx context.Context, q Querier, stmt string, args ...any) (*executor.DataFrame, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	return ScanFrame(rows)
}

// ScanFrame materializes rows into a DataFrame and closes them. Columns are
// only reported when at least one row was returned.
func ScanFrame(rows *sql.Rows) (*executor.DataFrame, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	df := &executor.DataFrame{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(executor.Record, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		df.Rows = append(df.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(df.Rows) > 0 {
		df.Columns = cols
	}
	return df, nil
}
