package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/providers"
	"github.com/zatekoja/wardtracker/internal/infrastructure/observability"
)

// replicationBacklog is how many committed writes may wait for the mirror
// before Replicate starts to block
const replicationBacklog = 512

type pendingEvent struct {
	ctx   context.Context
	event *entities.RecordEvent
}

// MirrorReplicator copies committed writes into the mirror. Writes are queued
// and applied in commit order by a single background goroutine, so the
// caller's response never waits on the mirror. With an event bus each write
// is published for the mirror worker, and only applied directly when
// publishing fails.
type MirrorReplicator struct {
	mirror  providers.RecordMirror
	bus     providers.EventBus
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	queue   chan pendingEvent
	pending sync.WaitGroup
	done    chan struct{}
}

// NewMirrorReplicator creates a replicator. Either mirror or bus may be nil;
// with both nil every call is a no-op.
func NewMirrorReplicator(mirror providers.RecordMirror, bus providers.EventBus, timeout time.Duration) *MirrorReplicator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	r := &MirrorReplicator{
		mirror:  mirror,
		bus:     bus,
		timeout: timeout,
		done:    make(chan struct{}),
	}
	if mirror == nil && bus == nil {
		r.closed = true
		close(r.done)
		return r
	}
	r.queue = make(chan pendingEvent, replicationBacklog)
	go r.run()
	return r
}

// Replicate implements Replicator. The event is queued on a context detached
// from the request's cancellation so a client disconnect cannot abort it.
func (r *MirrorReplicator) Replicate(ctx context.Context, event *entities.RecordEvent) {
	if r.mirror == nil && r.bus == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.process(ctx, event)
		return
	}
	r.pending.Add(1)
	r.queue <- pendingEvent{ctx: ctx, event: event}
}

// Wait blocks until every write queued so far has been handled
func (r *MirrorReplicator) Wait() {
	r.pending.Wait()
}

// Close drains the queue and stops the background goroutine. Writes
// replicated afterwards are handled on the caller's goroutine.
func (r *MirrorReplicator) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *MirrorReplicator) run() {
	defer close(r.done)
	for item := range r.queue {
		r.process(item.ctx, item.event)
		r.pending.Done()
	}
}

func (r *MirrorReplicator) process(ctx context.Context, event *entities.RecordEvent) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	logger := observability.LoggerFromContext(ctx)

	if r.bus != nil {
		err := r.bus.Publish(ctx, providers.EventChannelRecords, event)
		if err == nil {
			return
		}
		logger.Warn().Err(err).Str("event_id", event.ID).Msg("Record event not delivered, mirroring inline")
	}

	if r.mirror == nil {
		return
	}
	if err := r.Apply(ctx, event); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", string(event.Type)).
			Str("mrn", event.PatientMRN).
			Msg("Mirror replication failed; primary store is authoritative")
	}
}

// Apply performs the mirror writes an event calls for
func (r *MirrorReplicator) Apply(ctx context.Context, event *entities.RecordEvent) error {
	if r.mirror == nil {
		return nil
	}

	switch event.Type {
	case entities.RecordEventPatientAdmitted:
		if event.Patient == nil {
			return fmt.Errorf("%s event %s carries no patient", event.Type, event.ID)
		}
		return r.mirror.InsertPatient(ctx, event.Patient)

	case entities.RecordEventPatientUpdated, entities.RecordEventPatientDischarged:
		if event.Patient == nil {
			return fmt.Errorf("%s event %s carries no patient", event.Type, event.ID)
		}
		errs := []error{r.mirror.ReplacePatient(ctx, event.Patient)}
		for _, note := range event.Notes {
			errs = append(errs, r.mirror.InsertNote(ctx, note))
		}
		return errors.Join(errs...)

	case entities.RecordEventNoteAdded:
		var errs []error
		for _, note := range event.Notes {
			errs = append(errs, r.mirror.InsertNote(ctx, note))
		}
		return errors.Join(errs...)

	default:
		return fmt.Errorf("unknown record event type %q", event.Type)
	}
}
