package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/despensa/internal/api"
	"github.com/five82/despensa/internal/config"
	"github.com/five82/despensa/internal/logging"
	"github.com/five82/despensa/internal/prefs"
	"github.com/five82/despensa/internal/state"
	"github.com/five82/despensa/internal/ui"
)

// Options configure the despensa application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/despensa/prefs.toml
	PollEvery  int    // seconds; zero uses default
	LogLevel   string // overrides log_level from the config file
	Version    string
}

// Run boots the despensa TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	logger := logging.Setup(cfg.LogLevel, logFile)

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("load prefs failed", slog.Any("error", err))
	}

	clientOpts := []api.Option{api.WithTimeout(cfg.Timeout), api.WithLogger(logger)}
	if opts.Version != "" {
		clientOpts = append(clientOpts, api.WithUserAgent("despensa/"+opts.Version))
	}
	client, err := api.NewClient(cfg.APIURL, clientOpts...)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	categorias := state.NewCategoriaStore(client, logger)
	produtos := state.NewProdutoStore(client, logger)
	listas := state.NewListaStore(client, logger)

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}
	StartRefresher(ctx, interval, logger, categorias, produtos)

	logger.Info("starting",
		slog.String("api_url", client.BaseURL()),
		slog.Int64("usuario_id", cfg.UsuarioID),
		slog.Duration("poll", interval))

	return ui.Run(ui.Options{
		Context:    ctx,
		Categorias: categorias,
		Produtos:   produtos,
		Listas:     listas,
		UsuarioID:  cfg.UsuarioID,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  prefsPath,
		LastListID: userPrefs.LastListID,
		LogPath:    cfg.LogFile,
		Logger:     logger,
	})
}
