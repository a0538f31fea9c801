package main

import (
	"fmt"
	"log/slog"
	"os"

	"council/internal/assistant"
	"council/internal/config"
	"council/internal/logger"
	"council/internal/storage"
	"council/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	envFile string
	dbPath  string
	model   string
	logPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "council",
	Short:         "Terminal chat client with a conversation sidebar",
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default ~/.council/conversations.db)")
	rootCmd.Flags().StringVar(&model, "model", "", "chat completion model")
	rootCmd.Flags().StringVar(&logPath, "log-file", "", "log file path (default ~/.council/council.log)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	if err := logger.Init(cfg.LogPath, cfg.Debug); err != nil {
		return err
	}
	defer logger.Close()

	db, err := storage.NewDatabase(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	slog.Info("starting", "model", cfg.Model, "db", cfg.DBPath)

	m := ui.NewModel(assistant.New(cfg.APIKey, cfg.Model), db)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

// applyFlags lets explicitly set flags win over the environment
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("db") {
		cfg.DBPath = dbPath
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = model
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogPath = logPath
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = debug
	}
}
