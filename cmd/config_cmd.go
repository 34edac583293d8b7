package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Driver:  %s\n", cfg.Storage.Driver)
	fmt.Printf("    Timeout: %ds\n", cfg.Storage.TimeoutSec)
	fmt.Printf("    Mirror:  %v\n", cfg.Storage.Mirror)
	fmt.Println()

	fmt.Println("  [Gist]")
	if id := config.GetGistID(cfg); id != "" {
		fmt.Printf("    ID:       %s\n", id)
	} else {
		fmt.Println("    ID:       not configured")
	}
	if token := config.GetGistToken(cfg); token != "" {
		fmt.Printf("    Token:    %s\n", maskToken(token))
	} else {
		fmt.Println("    Token:    not configured")
	}
	fmt.Printf("    Filename: %s\n", cfg.Gist.Filename)
	fmt.Println()

	fmt.Println("  [S3]")
	if cfg.S3.Bucket != "" {
		fmt.Printf("    Object: s3://%s/%s\n", cfg.S3.Bucket, cfg.S3.Key)
	} else {
		fmt.Println("    Bucket: not configured")
	}
	fmt.Printf("    Region: %s\n", cfg.S3.Region)
	if cfg.S3.Endpoint != "" {
		fmt.Printf("    Endpoint: %s (path style %v)\n", cfg.S3.Endpoint, cfg.S3.PathStyle)
	}
	fmt.Println()

	fmt.Println("  [Local]")
	fmt.Printf("    History: %s (keep %d)\n", config.HistoryPath(cfg), cfg.Local.Keep)
	fmt.Printf("    Backup:  %s\n", config.BackupPath(cfg))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	if len(cfg.Server.CORSOrigins) > 0 {
		fmt.Printf("    CORS:    %s\n", strings.Join(cfg.Server.CORSOrigins, ", "))
	}
	fmt.Println()

	fmt.Println("  Run `habitboard setup` to reconfigure.")
	return nil
}

func maskToken(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
