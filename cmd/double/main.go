package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tgienger/double/internal/db"
	"github.com/tgienger/double/internal/engine"
	"github.com/tgienger/double/internal/scheduler"
	"github.com/tgienger/double/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	envFile string
	backend string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "double",
	Short: "Double - your conversational productivity companion",
	Long: `Double is a chat companion that turns what you tell it into tasks,
celebrates what you finish and keeps an eye on your progress.

Configuration:
  1. --config flag (explicit path)
  2. $XDG_CONFIG_HOME/double/config.yaml

Environment Variables:
  DOUBLE_STORAGE      - storage backend (sqlite, redis, memory)
  DOUBLE_DB_PATH      - SQLite database path
  DOUBLE_REDIS_ADDR   - Redis address
  DOUBLE_ADDR         - HTTP listen address for serve
  DOUBLE_LOG_LEVEL    - log level
  DOUBLE_REPLY_DELAY  - typing delay before replies`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/double/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&backend, "storage", "", "storage backend: sqlite, redis, memory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(resetCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadEnv loads the dotenv file if it exists
func loadEnv() error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	return nil
}

// runTUI runs the chat interface
func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout belongs to the alt screen; logs go to a file
	if cfg.Logging.File == "" {
		dir, err := db.DataDir()
		if err != nil {
			return err
		}
		cfg.Logging.File = filepath.Join(dir, "double.log")
	}

	rt, err := newServices(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	var p *tea.Program
	d := engine.NewDispatcher(rt.engine, func(ev engine.Event) {
		p.Send(ui.EventMsg(ev))
	}, engine.DispatcherOptions{
		ReplyDelay:    cfg.Assistant.ReplyDelay,
		FollowUpDelay: cfg.Assistant.FollowUpDelay,
		Logger:        &rt.log,
	})

	rt.engine.Start(ctx)
	app := ui.NewApp(ctx, rt.engine, d)
	p = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			rt.log.Error().Err(err).Msg("dispatcher stopped")
		}
	}()

	sched, err := scheduler.New(cfg.CheckIns, func(kind string) { d.CheckIn(kind) }, rt.log)
	if err != nil {
		return err
	}
	sched.Start()

	_, runErr := p.Run()
	cancel()
	<-done
	sched.Stop()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("running application: %w", runErr)
	}
	return nil
}
