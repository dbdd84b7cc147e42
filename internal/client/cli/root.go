// Package cli implements the recetapp command-line client.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recetapp/recetapp/internal/client/api"
	"github.com/recetapp/recetapp/internal/client/discover"
	"github.com/recetapp/recetapp/internal/client/groups"
	"github.com/recetapp/recetapp/internal/client/localstore"
	"github.com/recetapp/recetapp/internal/client/session"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	ServerURL  string
	DBPath     string
	Verbose    bool

	// HTTPClient is used for every outbound call when set.
	HTTPClient *http.Client
}

// app is built once per invocation, before the selected command runs.
type app struct {
	cfg      Config
	store    *localstore.Store
	session  *session.Session
	groups   *groups.Manager
	discover *discover.Client
}

// NewRootCommand creates the root command for the recetapp CLI.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}
	a := &app{}

	cmd := &cobra.Command{
		Use:           "recetapp",
		Short:         "RecetApp - tus recetas desde la terminal",
		Long:          "Cliente de RecetApp: gestiona tus recetas en el servidor y tus grupos en este equipo.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+DefaultConfigPath()+")")
	cmd.PersistentFlags().StringVar(&opts.ServerURL, "server", "", "RecetApp server URL")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "local database file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newRegisterCommand(a))
	cmd.AddCommand(newLoginCommand(a))
	cmd.AddCommand(newLogoutCommand(a))
	cmd.AddCommand(newRecipesCommand(a))
	cmd.AddCommand(newGroupsCommand(a))
	cmd.AddCommand(newDiscoverCommand(a))
	cmd.AddCommand(newAccountCommand(a))

	return cmd
}

func (a *app) open(cmd *cobra.Command, opts *RootOptions) error {
	path, explicit := opts.ConfigPath, opts.ConfigPath != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	cfg, err := LoadConfig(path, explicit)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("server") {
		cfg.ServerURL = opts.ServerURL
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = opts.DBPath
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	store, err := localstore.Open(cfg.DBPath)
	if err != nil {
		return err
	}

	client, err := api.New(cfg.ServerURL, opts.HTTPClient)
	if err != nil {
		store.Close()
		return err
	}
	sess, err := session.New(cmd.Context(), client, store)
	if err != nil {
		store.Close()
		return err
	}

	a.store = store
	a.session = sess
	a.groups = groups.NewManager(store)
	a.discover = discover.NewClient(opts.HTTPClient, logger, cfg.SpoonacularBaseURL, cfg.SpoonacularAPIKey)

	logger.Debug("client_ready", "server", cfg.ServerURL, "db", cfg.DBPath)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
