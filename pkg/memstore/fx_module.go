package memstore

import (
	"context"
	"sync"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the memory-record store.
// This module integrates the store into an Fx-based application by providing
// the MemoryStore factory and registering its lifecycle hooks.
//
// The module:
//  1. Provides a *MemoryStore built from the Config and Logger available in
//     the dependency injection container
//  2. Invokes RegisterMemoryStoreLifecycle to run the connection monitoring
//     goroutines and shut the store down during application termination
//
// Dependencies required by this module:
// - A memstore.Config instance must be available in the dependency injection container
// - A memstore.Logger instance must be available in the dependency injection container
var FXModule = fx.Module("memstore",
	fx.Provide(
		NewMemoryStore,
	),
	fx.Invoke(RegisterMemoryStoreLifecycle),
)

// RegisterMemoryStoreLifecycle starts the connection monitor and reconnection
// goroutines when the application starts and stops them, then closes the
// database handle, when it terminates.
//
// Note: This function is automatically invoked by the FXModule and does not
// need to be called directly in application code.
func RegisterMemoryStoreLifecycle(lifecycle fx.Lifecycle, store *MemoryStore, logger Logger) {
	wg := &sync.WaitGroup{}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				store.MonitorConnection(context.Background())
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				store.RetryConnection(context.Background(), logger)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := store.Shutdown()
			wg.Wait()
			return err
		},
	})
}
