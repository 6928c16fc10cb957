package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/elearn/internal/activity"
	"github.com/at-ishikawa/elearn/internal/app"
	"github.com/at-ishikawa/elearn/internal/config"
	"github.com/at-ishikawa/elearn/internal/database"
	"github.com/at-ishikawa/elearn/internal/repository"
	"github.com/at-ishikawa/elearn/internal/result"
	"github.com/at-ishikawa/elearn/internal/seed"
	"github.com/at-ishikawa/elearn/internal/store"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// newFetcher picks the seed source: the HTTP base URL, then a local
// directory, then the documents built into the binary.
func newFetcher(cfg config.SeedConfig) (seed.Fetcher, func()) {
	switch {
	case cfg.BaseURL != "":
		fetcher := seed.NewHTTPFetcher(seed.HTTPConfig{
			BaseURL:       cfg.BaseURL,
			Timeout:       cfg.Timeout,
			RetryAttempts: cfg.RetryAttempts,
			RetryDelay:    cfg.RetryDelay,
		}, slog.Default())
		return fetcher, func() {
			if err := fetcher.Close(); err != nil {
				slog.Default().Warn("failed to close the seed client", slog.Any("error", err))
			}
		}
	case cfg.Directory != "":
		return seed.NewLocalDirFetcher(cfg.Directory), func() {}
	default:
		return seed.NewDirFetcher(seed.Embedded()), func() {}
	}
}

// openManager loads the configuration and builds the data context for one
// command invocation. The returned function releases every resource.
func openManager(ctx context.Context, output io.Writer) (*app.Manager, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loadConfig() > %w", err)
	}

	backend, closeStore, err := database.OpenStore(ctx, *cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database.OpenStore() > %w", err)
	}
	fetcher, closeFetcher := newFetcher(cfg.Seed)

	manager, err := app.New(ctx, app.Options{
		Origin:   store.NewOrigin(backend),
		Fetcher:  fetcher,
		CacheTTL: cfg.Cache.TTL,
		Activity: activity.Config{
			Capacity:  cfg.Activity.Capacity,
			IPAddress: cfg.Activity.IPAddress,
			UserAgent: cfg.Activity.UserAgent,
		},
		Logger: slog.Default(),
		Output: output,
	})
	if err != nil {
		closeFetcher()
		_ = closeStore()
		return nil, nil, fmt.Errorf("app.New() > %w", err)
	}

	return manager, func() {
		manager.Close()
		closeFetcher()
		if err := closeStore(); err != nil {
			slog.Default().Warn("failed to close the store", slog.Any("error", err))
		}
	}, nil
}

// printResult writes the Result envelope of (data, err) as indented JSON and
// returns err so that the command exits with a failure status.
func printResult[T any](w io.Writer, data T, err error) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if encodeErr := encoder.Encode(result.From(data, err)); encodeErr != nil {
		return fmt.Errorf("encoder.Encode() > %w", encodeErr)
	}
	return err
}

// parseRecord decodes a JSON object given on the command line.
func parseRecord(data string) (repository.Record, error) {
	if data == "" {
		return nil, nil
	}
	decoder := json.NewDecoder(strings.NewReader(data))
	decoder.UseNumber()
	var record repository.Record
	if err := decoder.Decode(&record); err != nil {
		return nil, fmt.Errorf("invalid --data: %w", err)
	}
	return record, nil
}
