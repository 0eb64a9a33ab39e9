package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/archive"
	"github.com/sells-group/prospect-cli/internal/export"
	"github.com/sells-group/prospect-cli/internal/insight"
	"github.com/sells-group/prospect-cli/internal/lists"
	"github.com/sells-group/prospect-cli/internal/monitoring"
	"github.com/sells-group/prospect-cli/internal/outreach"
	"github.com/sells-group/prospect-cli/internal/promote"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/hook"
	"github.com/sells-group/prospect-cli/pkg/peopledata"
)

// appEnv bundles the wired services every command pulls from.
type appEnv struct {
	Store     store.Store
	Archiver  *archive.Archiver
	Lists     *lists.Reconciler
	Hooks     *hook.Client
	Provider  peopledata.Client
	Insights  *insight.Service
	Outreach  *outreach.Service
	Exporter  *export.Exporter
	Collector *monitoring.Collector
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "prospect.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv opens the store and wires the services. Settings stored through the
// dashboard are overlaid on the file configuration here, once.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	applied, err := cfg.Resolve(ctx, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	if applied > 0 {
		zap.L().Debug("settings overlaid on config", zap.Int("applied", applied))
	}

	hooks := hook.NewClient(cfg.Hooks)

	var providerOpts []peopledata.Option
	if cfg.Provider.BaseURL != "" {
		providerOpts = append(providerOpts, peopledata.WithBaseURL(cfg.Provider.BaseURL))
	}
	if cfg.Provider.RatePerSec > 0 {
		providerOpts = append(providerOpts,
			peopledata.WithRateLimit(rate.Limit(cfg.Provider.RatePerSec), 2))
	}

	return &appEnv{
		Store:     st,
		Archiver:  archive.NewArchiver(st),
		Lists:     lists.NewReconciler(st),
		Hooks:     hooks,
		Provider:  peopledata.NewClient(cfg.Provider.APIKey, providerOpts...),
		Insights:  insight.NewService(st, hooks),
		Outreach:  outreach.NewService(st, hooks),
		Exporter:  export.NewExporter(st),
		Collector: monitoring.NewCollector(st),
	}, nil
}

func (e *appEnv) Promoter(opts promote.Options) *promote.Promoter {
	return promote.New(e.Store, e.Archiver, e.Lists, e.Hooks, opts)
}

func (e *appEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}
