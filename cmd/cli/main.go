package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vkotov/finbook/internal/infrastructure/config"
	"github.com/vkotov/finbook/internal/infrastructure/postgres"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finbook-cli",
		Short: "Finbook CLI tool",
		Long:  `A command line interface for managing a Finbook deployment.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Finbook API")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated endpoints")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Migration commands
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	var migrationsPath string
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Path to migration files")

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(migrationsPath, false)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(migrationsPath, true)
		},
	})

	// Integrity commands
	integrityCmd := &cobra.Command{
		Use:   "integrity",
		Short: "Balance integrity checks",
	}

	integrityCmd.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Check all accounts for balance drift",
		Run: func(cmd *cobra.Command, args []string) {
			integrityReport()
		},
	})

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(integrityCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runMigrations(path string, down bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if down {
		err = postgres.RunMigrationsDown(cfg.DatabaseURL, path)
	} else {
		err = postgres.RunMigrations(cfg.DatabaseURL, path)
	}
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations applied")
}

func integrityReport() {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/integrity/report", nil)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Integrity report FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result struct {
		TotalAccounts      int `json:"total_accounts"`
		ConsistentAccounts int `json:"consistent_accounts"`
		Drifted            []struct {
			AccountID  string `json:"account_id"`
			Difference string `json:"difference"`
		} `json:"drifted"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Accounts checked: %d\n", result.TotalAccounts)
	fmt.Printf("Consistent:       %d\n", result.ConsistentAccounts)

	if len(result.Drifted) == 0 {
		fmt.Println("All balances consistent")
		return
	}

	fmt.Printf("Drifted accounts: %d\n", len(result.Drifted))
	for _, d := range result.Drifted {
		fmt.Printf("  %s drift=%s\n", d.AccountID, d.Difference)
	}
	os.Exit(1)
}
