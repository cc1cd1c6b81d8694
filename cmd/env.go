package main

import (
	"context"

	"github.com/sells-group/proposal-analyzer/internal/analysis"
	"github.com/sells-group/proposal-analyzer/internal/store"
)

// analysisEnv holds the store and pipeline used by the analyze and serve
// commands.
type analysisEnv struct {
	Store    store.Store
	Pipeline *analysis.Pipeline
}

// Close releases resources held by the environment.
func (e *analysisEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initAnalysis validates the config for mode, opens and migrates the report
// index, and builds the Pipeline. Callers should defer env.Close().
func initAnalysis(ctx context.Context, mode string) (*analysisEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	p, err := analysis.New(cfg, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &analysisEnv{Store: st, Pipeline: p}, nil
}

// initStore opens the configured report index and runs its migration.
func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store)
}
