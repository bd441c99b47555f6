package main

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultConfigPath  = "/data/config.yaml"
	defaultBackupsPath = "/data/backups"
)

var (
	configPath  string
	backupsPath string
)

func setupLogging() {
	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(filepath.Dir(configPath), "logs", "backup.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	log.SetFlags(log.LstdFlags)
}

var rootCmd = &cobra.Command{
	Use:   "notion-backup",
	Short: "Back up Notion workspaces to JSON, markdown, and local files",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backup immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspace, _ := cmd.Flags().GetString("workspace")
		config, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		return runBackup(config, workspace, backupsPath)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run backups on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		return runScheduler(config, func(c *Config) {
			if err := runBackup(c, "", backupsPath); err != nil {
				log.Printf("Scheduled backup failed: %v", err)
			}
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&backupsPath, "backups", defaultBackupsPath, "directory holding per-workspace backups")
	runCmd.Flags().StringP("workspace", "w", "", "back up only the named workspace")
	rootCmd.AddCommand(runCmd, serveCmd)
}

func main() {
	// Tokens commonly live in a local .env during development; a missing
	// file is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
