// Package repl turns one submitted line into a routed query: macro
// expansion, schema detection and rewrite, executor dispatch.
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/sidosera/ttl/internal/catalog/repository"
	"github.com/sidosera/ttl/internal/executor"
	"github.com/sidosera/ttl/internal/logging"
)

const (
	DefaultMacroPrefix = "/"
	DefaultPreviewRows = 5

	maxSuggestDistance = 2
)

var (
	schemaRe      = regexp.MustCompile(`(?i)(?:FROM|INTO|UPDATE)\s+(\w+)://`)
	placeholderRe = regexp.MustCompile(`\$(\d+)`)
	argSepRe      = regexp.MustCompile(`\s+`)
)

// ArgumentPolicy decides which macro arguments may be substituted.
type ArgumentPolicy int

const (
	// ArgumentsStrict rejects arguments that could close a literal or
	// start another statement.
	ArgumentsStrict ArgumentPolicy = iota
	// ArgumentsLiteral substitutes arguments verbatim.
	ArgumentsLiteral
)

// Engine executes submitted lines against a Runtime. It is meant to be
// driven by one caller at a time.
type Engine struct {
	rt          *executor.Runtime
	logger      *slog.Logger
	prefix      string
	previewRows int
	policy      ArgumentPolicy
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = logging.OrNop(l) } }

// WithMacroPrefix sets the character that marks a macro invocation.
func WithMacroPrefix(p string) Option {
	return func(e *Engine) {
		if p != "" {
			e.prefix = p
		}
	}
}

// WithPreviewRows caps the rows FormatResult prints.
func WithPreviewRows(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.previewRows = n
		}
	}
}

func WithArgumentPolicy(p ArgumentPolicy) Option { return func(e *Engine) { e.policy = p } }

// New returns an Engine routing through rt.
func New(rt *executor.Runtime, opts ...Option) *Engine {
	e := &Engine{
		rt:          rt,
		logger:      logging.NewNop(),
		prefix:      DefaultMacroPrefix,
		previewRows: DefaultPreviewRows,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Runtime returns the executors the engine routes to.
func (e *Engine) Runtime() *executor.Runtime { return e.rt }

// StripSchema finds the first FROM, INTO or UPDATE followed by
// "<schema>://" and rewrites every "<schema>://" in query to "<schema>.".
func StripSchema(query string) (schema, sql string, ok bool) {
	m := schemaRe.FindStringSubmatch(query)
	if m == nil {
		return "", "", false
	}
	schema = m[1]
	return schema, strings.ReplaceAll(query, schema+"://", schema+"."), true
}

// ExpandMacro expands a prefixed command into its stored template. ok is
// false when the command cannot be expanded; Execute reports why.
func (e *Engine) ExpandMacro(ctx context.Context, command string) (query string, ok bool, err error) {
	query, rej, err := e.expand(ctx, command)
	if err != nil || rej != nil {
		return "", false, err
	}
	return query, true, nil
}

func (e *Engine) expand(ctx context.Context, command string) (string, *Result, error) {
	// The name starts right after the prefix, so "/ sv" names the empty
	// macro rather than sv.
	fields := argSepRe.Split(strings.TrimRightFunc(strings.TrimPrefix(command, e.prefix), unicode.IsSpace), -1)
	name, args := fields[0], fields[1:]

	cat, ok := e.rt.Catalog()
	if !ok {
		return "", &Result{Outcome: OutcomeNoCatalog, Macro: name}, nil
	}
	if e.policy == ArgumentsStrict {
		for _, a := range args {
			if unsafeArgument(a) {
				return "", &Result{Outcome: OutcomeUnsafeArgument, Macro: name, Argument: a}, nil
			}
		}
	}

	macros := repository.NewMacroRepo(cat)
	m, err := macros.Get(ctx, name)
	if err != nil {
		return "", nil, fmt.Errorf("lookup macro %s: %w", name, err)
	}
	if m == nil {
		return "", &Result{Outcome: OutcomeMacroNotFound, Macro: name, Suggestion: e.suggest(ctx, macros, name)}, nil
	}
	return Substitute(m.Query, args), nil, nil
}

// Substitute replaces each $i with args[i-1] in one pass, so $1 never
// matches inside $10 and substituted text is never rescanned. Placeholders
// without an argument stay as they are.
func Substitute(template string, args []string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(ph string) string {
		i, err := strconv.Atoi(ph[1:])
		if err != nil || i < 1 || i > len(args) {
			return ph
		}
		return args[i-1]
	})
}

func unsafeArgument(a string) bool {
	return strings.ContainsAny(a, `'";\`) || strings.Contains(a, "--")
}

func (e *Engine) suggest(ctx context.Context, macros *repository.MacroRepo, name string) string {
	if name == "" {
		return ""
	}
	names, err := macros.Names(ctx)
	if err != nil {
		return ""
	}
	best, bestDist := "", maxSuggestDistance+1
	for _, n := range names {
		if d := levenshtein.ComputeDistance(name, n); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// Execute runs one submitted line. Routing rejections come back as a
// Result with a non-executed Outcome and a nil error; only a failure of the
// backing store is returned as an error, normally an *executor.EngineError.
func (e *Engine) Execute(ctx context.Context, line string) (Result, error) {
	command := strings.TrimSpace(line)
	if command == "" {
		return Result{Outcome: OutcomeEmpty}, nil
	}
	log := e.logger.With("command_id", uuid.NewString())

	query := command
	if strings.HasPrefix(query, e.prefix) {
		expanded, rej, err := e.expand(ctx, query)
		if err != nil {
			log.Debug("macro expansion failed", "error", err)
			return Result{}, err
		}
		if rej != nil {
			log.Debug("command rejected", "outcome", rej.Outcome, "macro", rej.Macro)
			return *rej, nil
		}
		query = expanded
	}

	schema, sql, ok := StripSchema(query)
	if !ok {
		log.Debug("command rejected", "outcome", OutcomeNoSchema)
		return Result{Outcome: OutcomeNoSchema}, nil
	}
	exec, ok := e.rt.Lookup(schema)
	if !ok {
		log.Debug("command rejected", "outcome", OutcomeUnknownSchema, "schema", schema)
		return Result{Outcome: OutcomeUnknownSchema, Schema: schema}, nil
	}

	log.Debug("dispatch", "schema", schema)
	df, err := exec.Query(ctx, sql)
	if err != nil {
		var ee *executor.EngineError
		if !errors.As(err, &ee) {
			err = &executor.EngineError{Schema: schema, Query: sql, Err: err}
		}
		log.Debug("command failed", "schema", schema, "error", err)
		return Result{Schema: schema}, err
	}
	log.Debug("command executed", "schema", schema, "rows", df.Len())
	return Result{
		Outcome: OutcomeExecuted,
		Schema:  schema,
		Command: &CommandResult{Query: command, Frame: df},
	}, nil
}

// FormatResult renders cr with the engine's preview size.
func (e *Engine) FormatResult(cr CommandResult) string {
	return Format(cr, e.previewRows)
}
