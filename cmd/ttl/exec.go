package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sidosera/ttl/internal/executor"
)

var execCmd = &cobra.Command{
	Use:   "exec <command>...",
	Short: "Run commands non-interactively and print their results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		var failed error
		for _, line := range args {
			if err := s.history.Add(cmd.Context(), line); err != nil {
				s.logger.Warn("history append failed", "error", err)
			}
			res, err := s.engine.Execute(cmd.Context(), line)
			if err != nil {
				var ee *executor.EngineError
				if errors.As(err, &ee) {
					fmt.Fprintf(out, "Error: %v\n", ee.Err)
					failed = errors.Join(failed, err)
					continue
				}
				return err
			}
			if res.Executed() {
				fmt.Fprintln(out, s.engine.FormatResult(*res.Command))
			} else if msg := res.Message(); msg != "" {
				fmt.Fprintln(out, msg)
			}
		}

		if show, _ := cmd.Flags().GetBool("history"); show {
			entries, err := s.history.List(cmd.Context(), 0)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%d\t%s\t%s\n", e.ID, e.Timestamp.Format(time.RFC3339), e.Command)
			}
		}
		return failed
	},
}

func init() {
	execCmd.Flags().Bool("history", false, "print the session history after running")
	rootCmd.AddCommand(execCmd)
}
