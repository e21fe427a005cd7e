package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	storage "github.com/alexanderramin/atelier/internal/app"
	"github.com/alexanderramin/atelier/internal/config"
	"github.com/alexanderramin/atelier/internal/domain"
	"github.com/alexanderramin/atelier/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds what the commands and the TUI need. Entities is opened lazily
// from Config by the root command unless a caller (tests) sets it first.
type App struct {
	Config   config.Config
	Entities service.EntityService
	Observer service.UseCaseObserver

	// In is read by confirmation prompts; nil means os.Stdin.
	In io.Reader
	// IsInteractive decides whether a bare "atelier" starts the TUI.
	IsInteractive func() bool

	store *storage.Store
	// ownLog is set when open created Observer from Config.LogPath.
	ownLog bool
	log    io.Closer
}

// StoreDescription names the active persistence variant for display.
func (a *App) StoreDescription() string {
	if a.store == nil {
		return ""
	}
	return a.store.Description
}

// Close releases the store opened by the root command, if any. Services
// supplied by the caller are left alone.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	if a.log != nil {
		err = errors.Join(err, a.log.Close())
	}
	a.closeLog()
	a.store = nil
	a.Entities = nil
	return err
}

func (a *App) closeLog() {
	if a.ownLog {
		a.Observer = nil
	}
	a.ownLog = false
	a.log = nil
}

func (a *App) stdin() io.Reader {
	if a.In != nil {
		return a.In
	}
	return os.Stdin
}

// open loads configuration (defaults, file, env, then flags), starts the
// use-case log and opens the selected store.
func (a *App) open(ctx context.Context, flags *pflag.FlagSet) error {
	if a.Entities != nil {
		return nil
	}

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	applyFlags(&cfg, flags)

	if a.Observer == nil {
		obs, closer, err := openLog(cfg.LogPath)
		if err != nil {
			return err
		}
		a.Observer, a.log, a.ownLog = obs, closer, true
	}

	store, err := storage.OpenStore(ctx, cfg)
	if err != nil {
		if a.log != nil {
			a.log.Close()
		}
		a.closeLog()
		return err
	}
	a.Config = cfg
	a.store = store
	a.Entities = service.NewEntityService(store.Repo, a.Observer)
	return nil
}

func applyFlags(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("backend") {
		v, _ := flags.GetString("backend")
		cfg.Backend = config.Backend(v)
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("flat-driver") {
		v, _ := flags.GetString("flat-driver")
		cfg.FlatDriver = config.FlatDriver(v)
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
}

// NewRootCmd creates the top-level "atelier" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "atelier",
		Short:         "Track clients, their instruments and workshop notes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.open(cmd.Context(), cmd.Flags())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive == nil || !app.IsInteractive() {
				return cmd.Help()
			}
			return runTUI(app)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ~/.atelier/config.yaml)")
	flags.String("backend", "", fmt.Sprintf("persistence variant: %s or %s", config.BackendSQLite, config.BackendFlat))
	flags.String("db", "", "SQLite database path for the sqlite backend")
	flags.String("flat-driver", "", "key store behind the flat backend: file, sqlite, s3 or memory")
	flags.String("data-dir", "", "data directory for the flat backend")

	for _, kind := range domain.Kinds {
		root.AddCommand(newEntityCmd(app, kind))
	}
	root.AddCommand(
		newExportCmd(app),
		newImportCmd(app),
		newTreeCmd(app),
		newTUICmd(app),
	)

	return root
}
