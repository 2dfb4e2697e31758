package cli

import (
	"bufio"
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/miniwallet/internal/client/api"
	"github.com/dmitrijs2005/miniwallet/internal/client/config"
	"github.com/dmitrijs2005/miniwallet/internal/client/platform"
	"github.com/dmitrijs2005/miniwallet/internal/client/session"
	"github.com/dmitrijs2005/miniwallet/internal/client/storage"
	"github.com/dmitrijs2005/miniwallet/internal/client/wallet"
	"github.com/dmitrijs2005/miniwallet/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config       *config.Config
	apiClient    *api.Client
	session      *session.Manager
	orchestrator *wallet.Orchestrator
	Mode         Mode
	reader       *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	apiClient := api.NewClient(c.BaseURL, c.RequestTimeout, logger)
	creds := platform.NewEnvSource("")
	sess := session.NewManager(apiClient, creds, session.NewSQLiteStore(db), logger)
	orch := wallet.NewOrchestrator(sess, wallet.Config{
		Mint:     c.Mint,
		Decimals: c.TokenDecimals,
		Network:  c.Network,
	}, logger)

	return &App{
		config:       c,
		apiClient:    apiClient,
		session:      sess,
		orchestrator: orch,
		reader:       bufio.NewReader(os.Stdin),
	}, nil
}

func (app *App) setMode(mode Mode) {
	if app.Mode != mode {
		app.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	status, _ := a.session.Status()
	return status == session.StatusAuthenticated
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.apiClient.Ping(pingCtx)
			cancel()

			if err != nil {
				if a.Mode == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
