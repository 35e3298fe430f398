package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tgienger/double/internal/logging"
	"github.com/tgienger/double/internal/models"
	"github.com/tgienger/double/internal/reply"
	"github.com/tgienger/double/internal/scheduler"
	"github.com/tgienger/double/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		rt, err := newServices(ctx, cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer rt.Close(ctx)
		rt.engine.Start(ctx)

		sched, err := scheduler.New(cfg.CheckIns, func(kind string) { rt.engine.CheckIn(ctx, kind) }, rt.log)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		return server.Serve(ctx, cfg.Server.Addr, server.NewRouter(rt.engine, rt.log), rt.log)
	},
}

var sayCmd = &cobra.Command{
	Use:   "say <message...>",
	Short: "Send one message and print the replies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := cliServices(cmd)
		if err != nil {
			return err
		}
		defer rt.Close(ctx)

		out := cmd.OutOrStdout()
		printMessages(out, rt.engine.Start(ctx))
		res, ok := rt.engine.Send(ctx, strings.Join(args, " "))
		if !ok {
			return errors.New("message is empty")
		}
		printMessages(out, res.Messages)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print task statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cliServices(cmd)
		if err != nil {
			return err
		}
		defer rt.Close(cmd.Context())

		out := cmd.OutOrStdout()
		s := rt.engine.Snapshot()
		fmt.Fprintln(out, reply.Stats(reply.Snapshot{UserName: s.UserName, Stats: rt.engine.Stats()}))

		sched, err := scheduler.New(rt.cfg.CheckIns, func(string) {}, rt.log)
		if err != nil {
			return err
		}
		if kind, at, ok := sched.NextCheckIn(time.Now()); ok {
			fmt.Fprintf(out, "\n⏰ Next %s check-in: %s\n", kind, at.Format("Mon Jan 2 15:04"))
		}
		return nil
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List active tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := cliServices(cmd)
		if err != nil {
			return err
		}
		defer rt.Close(cmd.Context())

		out := cmd.OutOrStdout()
		active := rt.engine.Snapshot().ActiveTasks
		if len(active) == 0 {
			fmt.Fprintln(out, "No active tasks.")
			return nil
		}
		for i, t := range active {
			fmt.Fprintf(out, "%d. %s (due %s)\n", i+1, t.Text, t.DueDate.Format("Mon Jan 2 15:04"))
		}
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <query...>",
	Short: "Complete the active task best matching the query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := cliServices(cmd)
		if err != nil {
			return err
		}
		defer rt.Close(ctx)

		query := strings.Join(args, " ")
		task, ok := rt.engine.MatchTask(query)
		if !ok {
			return fmt.Errorf("no active task matches %q", query)
		}
		res, err := rt.engine.CompleteTask(ctx, task.ID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printMessages(out, res.Messages)
		printMessages(out, rt.engine.Emit(ctx, res.FollowUps))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the saved session and start over",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, logCloser, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer logCloser.Close()

		st, err := openStore(cfg.Storage, logging.Component(log, "store"))
		if err != nil {
			return err
		}
		if c, ok := st.(io.Closer); ok {
			defer c.Close()
		}

		if err := st.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("reset session: %w", err)
		}
		log.Info().Str("backend", cfg.Storage.Backend).Msg("session cleared")
		fmt.Fprintln(cmd.OutOrStdout(), "Session cleared. Run double to start over.")
		return nil
	},
}

// cliServices builds a runtime for one-shot commands, logging to stderr
func cliServices(cmd *cobra.Command) (*services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newServices(cmd.Context(), cfg, cmd.ErrOrStderr())
}

func printMessages(w io.Writer, msgs []models.Message) {
	for _, m := range msgs {
		name := "Double"
		if m.Sender == models.SenderUser {
			name = "You"
		}
		fmt.Fprintf(w, "%s: %s\n", name, m.Text)
	}
}
