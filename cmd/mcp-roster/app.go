package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ruminaider/mcp-roster/internal/config"
	"github.com/ruminaider/mcp-roster/internal/credentials"
	"github.com/ruminaider/mcp-roster/internal/logging"
	"github.com/ruminaider/mcp-roster/internal/notify"
	"github.com/ruminaider/mcp-roster/internal/paths"
	"github.com/ruminaider/mcp-roster/internal/remote"
	"github.com/ruminaider/mcp-roster/internal/servers"
	"github.com/ruminaider/mcp-roster/internal/sync"
)

// app holds everything a command needs, opened from the data directory.
type app struct {
	settings config.Settings
	log      *zap.Logger
	repo     *servers.Repository
	manager  *servers.Manager
	tokens   credentials.Store // the stored token, without the env override
	store    credentials.Store
	closers  []func() error
	board    *notify.Board
	client   *remote.Client
	orch     *sync.Orchestrator
}

func openApp() (*app, error) {
	settings, err := config.LoadSettings(paths.SettingsFile())
	if err != nil {
		return nil, err
	}

	level := settings.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logging.New(paths.LogFile(), level)
	if err != nil {
		return nil, err
	}

	a := &app{
		settings: settings,
		log:      log,
		board:    notify.NewBoard(),
	}

	a.repo = servers.NewRepository(paths.ServersFile())
	entries, err := a.repo.Load()
	if err != nil {
		log.Error("loading servers", zap.Error(err))
		return nil, errors.Join(err, a.Close())
	}
	a.manager, err = servers.NewManager(entries)
	if err != nil {
		err = fmt.Errorf("%s: %w", a.repo.Path(), err)
		log.Error("loading servers", zap.Error(err))
		return nil, errors.Join(err, a.Close())
	}

	if ephemeral {
		a.tokens = credentials.NewMemoryStore()
	} else {
		bolt, err := credentials.OpenBoltStore(paths.CredentialsFile())
		if err != nil {
			log.Error("opening credential store", zap.Error(err))
			return nil, errors.Join(err, a.Close())
		}
		a.tokens = bolt
		a.closers = append(a.closers, bolt.Close)
	}
	a.store = credentials.WithEnv(a.tokens)

	a.client, err = remote.NewClient(settings.ProviderURL,
		remote.WithTimeout(settings.RequestTimeout),
		remote.WithUserAgent("mcp-roster/"+version),
		remote.WithLogger(log.Named("remote")),
	)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	notifier := notify.Multi{a.board, notify.Log{L: log.Named("notify")}}
	a.orch = sync.New(a.store, a.client, a.manager, notifier, log.Named("sync"))

	collectionLog := log.Named("servers")
	a.manager.Observe(servers.Observer{
		OnAdd: func(e servers.Entry) {
			collectionLog.Debug("server added", zap.String("id", e.ID), zap.String("name", e.Name))
		},
		OnUpdateOrder: func(order []servers.Entry) {
			collectionLog.Debug("server order changed", zap.Int("servers", len(order)))
		},
		OnSelect: func(e *servers.Entry) {
			if e == nil {
				collectionLog.Debug("selection cleared")
				return
			}
			collectionLog.Debug("server selected", zap.String("id", e.ID))
		},
	})

	log.Debug("opened", zap.String("data_dir", paths.DataDir()),
		zap.String("provider", a.client.Provider()),
		zap.Int("servers", a.manager.Len()),
		zap.Bool("ephemeral", ephemeral))
	return a, nil
}

// save persists the collection in its current order, keeping servers that
// other processes saved since this one loaded.
func (a *app) save() error {
	absorbed, err := a.repo.Persist(a.manager)
	if err != nil {
		a.log.Error("saving servers", zap.Error(err))
		return err
	}
	if len(absorbed) > 0 {
		a.log.Info("kept servers saved by another process", zap.Int("count", len(absorbed)))
	}
	return nil
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	_ = a.log.Sync()
	return errors.Join(errs...)
}

// withApp opens the app, runs fn and closes it.
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	return errors.Join(fn(a), a.Close())
}
