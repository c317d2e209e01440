package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/prompt-workshop-api/internal/dto"
)

func newSessionsCmd(factory serviceFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and open or close workshop sessions",
	}

	cmd.AddCommand(newSessionsListCmd(factory))
	cmd.AddCommand(newSessionStateCmd(factory, "open", "Open a session for submissions", func(req *dto.UpdateSessionRequest) {
		open := true
		req.IsOpen = &open
	}))
	cmd.AddCommand(newSessionStateCmd(factory, "close", "Close a session", func(req *dto.UpdateSessionRequest) {
		closed := false
		req.IsOpen = &closed
	}))
	cmd.AddCommand(newSessionStateCmd(factory, "toggle", "Flip the open state of a session", func(req *dto.UpdateSessionRequest) {
		req.Toggle = true
	}))

	return cmd
}

func newSessionsListCmd(factory serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := factory(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			sessions, err := svc.sessions.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tOPEN\tCREATED")
			for _, session := range sessions {
				fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", session.ID, session.Name, session.IsOpen, session.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newSessionStateCmd(factory serviceFactory, use, short string, apply func(*dto.UpdateSessionRequest)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid session id %q", args[0])
			}

			svc, err := factory(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			req := dto.UpdateSessionRequest{ID: uint(id)}
			apply(&req)

			session, err := svc.sessions.Update(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to update session %d: %w", id, err)
			}

			state := "closed"
			if session.IsOpen {
				state = "open"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %d (%s) is now %s\n", session.ID, session.Name, state)
			return nil
		},
	}
}
