// Package cli implements canvasctl, the administration tool for a
// pixel-canvas database.
//
// Commands open the Postgres database named by the server configuration
// (see internal/config), so the same config file and PIXEL_* variables
// drive both binaries.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/rogerio-castellano/pixel-canvas/internal/auth"
	"github.com/rogerio-castellano/pixel-canvas/internal/config"
	"github.com/rogerio-castellano/pixel-canvas/internal/db"
	"github.com/rogerio-castellano/pixel-canvas/internal/repo"
	"github.com/rogerio-castellano/pixel-canvas/internal/service"
	"github.com/spf13/cobra"
)

const appName = "canvasctl"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var ErrNeedsPostgres = errors.New("canvasctl works on a postgres store, set database.url")

// Backend is the storage a command runs against. DB is nil for in-memory
// backends, which cannot run migrations.
type Backend struct {
	DB       *sql.DB
	Users    repo.UserRepository
	Canvases repo.CanvasRepository
	Stats    repo.StatsRepository
	Accounts *service.AccountService
	Canvas   *service.CanvasService
}

func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

// Opener builds the Backend for a loaded configuration.
type Opener func(ctx context.Context, cfg *config.Config) (*Backend, error)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
	open       Opener
}

// New creates a CLI that logs to w and opens the configured Postgres database.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		open: OpenPostgres,
	}
}

// SetOpener replaces how commands obtain their Backend.
func (c *CLI) SetOpener(open Opener) {
	c.open = open
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Administer a pixel-canvas database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $PIXEL_CONFIG)")

	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.usersCommand())
	root.AddCommand(c.canvasesCommand())
	root.AddCommand(c.seedCommand())
	root.AddCommand(c.setPasswordCommand())

	return root
}

// backend opens storage for one command. The caller closes it.
func (c *CLI) backend(ctx context.Context) (*Backend, error) {
	return c.open(ctx, c.cfg)
}

// OpenPostgres connects to cfg.Database.URL and wires the Postgres
// repositories and services.
func OpenPostgres(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.Store != config.StorePostgres {
		return nil, ErrNeedsPostgres
	}
	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		if errors.Is(err, db.ErrMissingURL) {
			return nil, ErrNeedsPostgres
		}
		return nil, err
	}

	users := repo.NewPostgresUserRepository(database)
	canvases := repo.NewPostgresCanvasRepository(database)
	return &Backend{
		DB:       database,
		Users:    users,
		Canvases: canvases,
		Stats:    repo.NewPostgresStatsRepository(database),
		Accounts: service.NewAccountService(users, auth.NewMemoryStore(), cfg.Reset.TTL),
		Canvas:   service.NewCanvasService(canvases, cfg.Canvas.MaxDimension, cfg.Canvas.DefaultSize),
	}, nil
}
