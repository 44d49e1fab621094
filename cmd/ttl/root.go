package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sidosera/ttl/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "ttl",
	Short: "ttl is a terminal REPL that routes SQL to schemas",
	Long: `ttl reads commands of the form "SELECT * FROM <schema>://<table>" and runs
them against the executor registered for <schema>. The built-in "catalog"
schema holds the pane layout, focus, history and macros of the session.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return runPipe(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout())
		}
		return runTUI(cmd.Context(), s)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default $TTL_CONFIG or ~/.config/ttl/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "override log.level (debug, info, warn, error)")
}

func runTUI(ctx context.Context, s *session) error {
	app := tui.New(ctx, tui.Deps{
		Engine:  s.engine,
		Catalog: s.catalog,
		History: s.history,
		Logger:  s.logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribe := s.catalog.Subscribe(func() { p.Send(tui.CatalogChangedMsg{}) })
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// runPipe treats every input line as a submitted command.
func runPipe(ctx context.Context, s *session, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == tui.QuitCommand {
			fmt.Fprintln(out, "Bye.")
			return nil
		}
		fmt.Fprintln(out, tui.Run(ctx, s.engine, s.history, s.logger, line))
	}
	return sc.Err()
}
