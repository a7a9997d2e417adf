// Package main provides the resumectl command: the resume-studio API server and a client for it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/actions"
	"github.com/jonathan/resume-studio/internal/client"
	"github.com/jonathan/resume-studio/internal/config"
	"github.com/jonathan/resume-studio/internal/workspace"
)

var (
	configPath string
	apiURL     string
	tokenFile  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "resumectl",
	Short: "Resume Studio server and client",
	Long: `Resume Studio stores structured resumes, validates them for publishing, and shares them publicly.

Use "serve" to run the API. The other commands talk to a running API; the session
token from "login" is kept in a file so later commands reuse it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (flags override its values)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the resume API (defaults to RESUME_API_URL or "+config.DefaultAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Where the session token is stored (defaults to RESUME_TOKEN_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings resolves configuration in order of precedence: flags, environment,
// config file, built-in defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded config from: %s\n", configPath)
		}
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if cmd.Flags().Changed("token-file") {
		cfg.TokenFile = tokenFile
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newClient builds an API client whose session token lives in the configured token file.
func newClient(cmd *cobra.Command) (*client.Client, config.Config, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, cfg, err
	}
	var session actions.SessionStore = actions.NewMemorySessionStore("")
	if cfg.TokenFile != "" {
		session = actions.NewFileSessionStore(cfg.TokenFile)
	}
	c, err := client.New(cfg.APIURL, session, client.DefaultOptions())
	if err != nil {
		return nil, cfg, err
	}
	if cfg.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Using API at %s\n", cfg.APIURL)
	}
	return c, cfg, nil
}

// newWorkspace wraps a client in a workspace so status changes and submissions
// go through the same validation as interactive editing.
func newWorkspace(cmd *cobra.Command) (*workspace.Workspace, config.Config, error) {
	c, cfg, err := newClient(cmd)
	if err != nil {
		return nil, cfg, err
	}
	return workspace.New(c), cfg, nil
}
