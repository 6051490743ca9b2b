package main

import (
	"context"
	"errors"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/zatekoja/wardtracker/internal/adapters/events"
	"github.com/zatekoja/wardtracker/internal/adapters/mirror"
	"github.com/zatekoja/wardtracker/internal/application/services"
	"github.com/zatekoja/wardtracker/internal/domain/providers"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/redis"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
	"github.com/zatekoja/wardtracker/pkg/config"
)

// replication holds the secondary side of the write path. Either field may
// be nil: the API serves from the primary store whatever is reachable here.
type replication struct {
	mirror  providers.RecordMirror
	bus     providers.EventBus
	closers []func(context.Context) error
}

func (r *replication) mode() string {
	switch {
	case r.mirror == nil:
		return "disabled"
	case r.bus != nil:
		return config.MirrorModeEvents
	default:
		return config.MirrorModeInline
	}
}

// Close releases the event bus and backend connections, newest first
func (r *replication) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// connectReplication connects the mirror backends and, in events mode, the
// Redis event bus. Unreachable backends are logged and skipped, and a Redis
// failure falls back to inline mirroring.
func connectReplication(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) *replication {
	rep := &replication{}

	fanout, closeMirror, err := mirror.Connect(ctx, cfg, metrics)
	rep.closers = append(rep.closers, closeMirror)
	if err != nil {
		zlog.Warn().Err(err).Msg("Mirror degraded at startup; run cmd/resync once it recovers")
	}
	if fanout == nil {
		return rep
	}
	rep.mirror = fanout

	if cfg.Mirror.Mode != config.MirrorModeEvents {
		return rep
	}

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		zlog.Warn().Err(err).Msg("Redis unavailable, falling back to inline mirroring")
		return rep
	}
	bus := events.NewRedisEventBus(redisClient)
	rep.bus = bus
	rep.closers = append(rep.closers,
		func(context.Context) error { return redisClient.Close() },
		func(context.Context) error { return bus.Close() },
	)
	return rep
}

// startMirrorWorker subscribes the worker in events mode. It returns nil when
// there is no bus or the subscription fails; the replicator then mirrors
// inline because published events reach no subscriber.
func startMirrorWorker(rep *replication, replicator *services.MirrorReplicator, timeout time.Duration) *services.MirrorWorker {
	if rep.bus == nil {
		return nil
	}
	worker := services.NewMirrorWorker(replicator, rep.bus, timeout)
	if err := worker.Start(); err != nil {
		zlog.Warn().Err(err).Msg("Mirror worker could not subscribe; record events will be mirrored inline")
		return nil
	}
	return worker
}
