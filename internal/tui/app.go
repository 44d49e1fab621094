// Package tui is the interactive front end: the pane layout read from the
// catalog, an input line with history recall, and the last command's
// output.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sidosera/ttl/internal/catalog/repository"
	"github.com/sidosera/ttl/internal/executor"
	"github.com/sidosera/ttl/internal/history"
	"github.com/sidosera/ttl/internal/logging"
	"github.com/sidosera/ttl/internal/pane"
	"github.com/sidosera/ttl/internal/repl"
)

// QuitCommand ends the session.
const QuitCommand = "/q"

// Deps are the collaborators the App drives.
type Deps struct {
	Engine  *repl.Engine
	Catalog executor.Executor
	History *history.History
	Logger  *slog.Logger
}

// App is the bubbletea model.
type App struct {
	ctx     context.Context
	engine  *repl.Engine
	history *history.History
	panes   *repository.PaneRepo
	runtime *repository.RuntimeRepo
	logger  *slog.Logger
	keys    keyMap

	input   textinput.Model
	tree    *pane.Node
	focused string
	message string
	busy    bool
	width   int
	height  int
}

// CatalogChangedMsg asks the App to reload the layout. Send it from a
// catalog subscription.
type CatalogChangedMsg struct{}

type layoutMsg struct {
	tree    *pane.Node
	focused string
}

type resultMsg string

type historyMsg struct {
	command string
	ok      bool
}

type errMsg struct{ error }

func New(ctx context.Context, deps Deps) *App {
	in := textinput.New()
	in.Prompt = promptStyle.Render("> ")
	in.Focus()
	return &App{
		ctx:     ctx,
		engine:  deps.Engine,
		history: deps.History,
		panes:   repository.NewPaneRepo(deps.Catalog),
		runtime: repository.NewRuntimeRepo(deps.Catalog),
		logger:  logging.OrNop(deps.Logger),
		keys:    defaultKeyMap(),
		input:   in,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.loadLayout())
}

func (a *App) loadLayout() tea.Cmd {
	return func() tea.Msg {
		panes, err := a.panes.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		if err := pane.Validate(panes); err != nil {
			return errMsg{err}
		}
		focused, err := a.runtime.FocusedPane(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return layoutMsg{tree: pane.Build(panes, focused), focused: focused}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.input.Width = max(0, m.Width-4)
		return a, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(m, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(m, a.keys.Submit):
			return a.submit()
		case key.Matches(m, a.keys.Prev):
			return a, a.navigate(history.Up)
		case key.Matches(m, a.keys.Next):
			return a, a.navigate(history.Down)
		}
	case CatalogChangedMsg:
		return a, a.loadLayout()
	case layoutMsg:
		a.tree, a.focused = m.tree, m.focused
		return a, nil
	case historyMsg:
		if m.ok {
			a.input.SetValue(m.command)
			a.input.CursorEnd()
		}
		return a, nil
	case resultMsg:
		a.busy = false
		a.message = string(m)
		return a, nil
	case errMsg:
		a.message = "Error: " + m.Error()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(a.input.Value())
	if line == "" || a.busy {
		return a, nil
	}
	a.input.Reset()
	if line == QuitCommand {
		a.message = "Bye."
		return a, tea.Quit
	}
	a.busy = true
	return a, a.runCmd(line)
}

func (a *App) runCmd(line string) tea.Cmd {
	return func() tea.Msg {
		return resultMsg(Run(a.ctx, a.engine, a.history, a.logger, line))
	}
}

// Run records line in history, executes it and returns the text to show.
// History is skipped when h is nil.
func Run(ctx context.Context, e *repl.Engine, h *history.History, logger *slog.Logger, line string) string {
	if h != nil {
		if err := h.Add(ctx, line); err != nil {
			logging.OrNop(logger).Warn("history append failed", "error", err)
		}
	}
	res, err := e.Execute(ctx, line)
	if err != nil {
		var ee *executor.EngineError
		if errors.As(err, &ee) {
			return "Error: " + ee.Err.Error()
		}
		return "Error: " + err.Error()
	}
	if res.Executed() {
		return e.FormatResult(*res.Command)
	}
	return res.Message()
}

func (a *App) navigate(dir history.Direction) tea.Cmd {
	if a.history == nil {
		return nil
	}
	return func() tea.Msg {
		cmd, ok, err := a.history.Navigate(a.ctx, dir)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg{command: cmd, ok: ok}
	}
}

func (a *App) View() string {
	input := a.input.View()
	var status []string
	if a.message != "" {
		status = strings.Split(messageStyle.Render(a.message), "\n")
	}
	if a.width <= 0 || a.height <= 0 {
		return strings.Join(append([]string{input}, status...), "\n")
	}

	// output may take at most a third of the screen
	limit := max(1, a.height/3)
	if len(status) > limit {
		status = status[len(status)-limit:]
	}
	paneHeight := a.height - 1 - len(status)

	parts := make([]string, 0, 3)
	if paneHeight > 0 {
		parts = append(parts, a.renderPanes(a.width, paneHeight))
	}
	parts = append(parts, padRight(input, a.width))
	parts = append(parts, status...)
	return strings.Join(parts, "\n")
}

func (a *App) renderPanes(width, height int) string {
	if a.tree == nil {
		return fit("no root pane", width, height)
	}
	return fit(layoutWidget(a.tree).Render(width, height), width, height)
}
