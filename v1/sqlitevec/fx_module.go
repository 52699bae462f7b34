package sqlitevec

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/recordstore/v1/logger"
	"github.com/Aleph-Alpha/recordstore/v1/metrics"
)

// FXModule defines the Fx module for the sqlitevec store.
// This module integrates the store into an Fx-based application by providing
// the Store factory and registering its lifecycle hooks.
//
// The module:
//  1. Provides a *Store built from the Config and logger available in the
//     dependency injection container, with the metrics collector attached
//     when one is present
//  2. Invokes RegisterStoreLifecycle to close the database handle during
//     application shutdown
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    metrics.FXModule, // Optional: attaches operation metrics
//	    sqlitevec.FXModule,
//	    fx.Provide(func() sqlitevec.Config {
//	        cfg := sqlitevec.DefaultConfig()
//	        cfg.Path = "/var/lib/app/records.db"
//	        return cfg
//	    }),
//	    // other modules...
//	)
//
// Dependencies required by this module:
// - A sqlitevec.Config instance must be available in the dependency injection container
// - A *logger.Logger instance must be available in the dependency injection container
// - A *metrics.Metrics instance is optional; when present the store reports
//   operation counts, durations and written row totals to it
var FXModule = fx.Module("sqlitevec",
	fx.Provide(NewStoreWithDI),
	fx.Invoke(RegisterStoreLifecycle),
)

// StoreParams groups the dependencies needed to build the store.
type StoreParams struct {
	fx.In

	Config  Config
	Logger  *logger.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

// NewStoreWithDI creates the store using dependency injection. The metrics
// collector is attached when the container provides one; without it the
// store runs with tracing and logging only.
//
// Under the hood this delegates to NewStore and WithMetrics; it exists so
// the FXModule can treat the metrics dependency as optional.
func NewStoreWithDI(params StoreParams) (*Store, error) {
	store, err := NewStore(context.Background(), params.Config, params.Logger)
	if err != nil {
		return nil, err
	}
	if params.Metrics != nil {
		store.WithMetrics(params.Metrics)
	}
	return store, nil
}

// RegisterStoreLifecycle closes the store's database handle when the
// application terminates.
//
// Parameters:
//   - lc: The Fx lifecycle controller
//   - store: The store instance to be managed
//
// Note: This function is automatically invoked by the FXModule and does not
// need to be called directly in application code.
func RegisterStoreLifecycle(lc fx.Lifecycle, store *Store) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
}
