package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/wardtracker/internal/domain/providers"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/mongodb"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
	"github.com/zatekoja/wardtracker/pkg/config"
)

// Connect builds a fan-out over every enabled backend that can be reached.
// A backend that fails to connect is left out and its failure is reported in
// the returned error; the Fanout still covers the others. The Fanout is nil
// when no backend is available. The returned close func releases the backend
// connections and is always safe to call.
func Connect(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*Fanout, func(context.Context) error, error) {
	var (
		backends []providers.RecordMirror
		closers  []func(context.Context) error
		failures []error
	)
	closeAll := func(ctx context.Context) error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c(ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Mongo.Enabled {
		backend, closeMongo, err := connectMongo(ctx, &cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("MongoDB mirror unavailable, continuing without it")
			failures = append(failures, err)
		} else {
			closers = append(closers, closeMongo)
			backends = append(backends, backend)
			log.Info().Str("database", cfg.Mongo.Database).Msg("MongoDB mirror enabled")
		}
	}

	if cfg.Typesense.Enabled {
		backend, err := connectTypesense(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense mirror unavailable, continuing without it")
			failures = append(failures, err)
		} else {
			backends = append(backends, backend)
			log.Info().Str("url", cfg.Typesense.URL).Msg("Typesense mirror enabled")
		}
	}

	err := errors.Join(failures...)
	if len(backends) == 0 {
		log.Info().Msg("No mirror backends available; writes go to the primary store only")
		return nil, closeAll, err
	}
	return NewFanout(metrics, backends...), closeAll, err
}

func connectMongo(ctx context.Context, cfg *config.MongoConfig) (*MongoMirror, func(context.Context) error, error) {
	mongoClient, err := mongodb.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb mirror: %w", err)
	}

	mongoMirror := NewMongoMirror(mongoClient.Database())
	if err := mongoMirror.EnsureIndexes(ctx); err != nil {
		_ = mongoClient.Close(ctx)
		return nil, nil, fmt.Errorf("mongodb mirror indexes: %w", err)
	}
	return mongoMirror, mongoClient.Close, nil
}

func connectTypesense(ctx context.Context, cfg *config.TypesenseConfig) (*TypesenseMirror, error) {
	tsClient, err := typesense.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("typesense mirror: %w", err)
	}
	if err := tsClient.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("typesense mirror schema: %w", err)
	}
	return NewTypesenseMirror(tsClient), nil
}
