package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/providers"
)

// MirrorWorker applies record events from the event bus to the mirror
type MirrorWorker struct {
	replicator *MirrorReplicator
	eventBus   providers.EventBus
	timeout    time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewMirrorWorker creates a new mirror worker
func NewMirrorWorker(replicator *MirrorReplicator, eventBus providers.EventBus, timeout time.Duration) *MirrorWorker {
	ctx, cancel := context.WithCancel(context.Background())
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MirrorWorker{
		replicator: replicator,
		eventBus:   eventBus,
		timeout:    timeout,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start subscribes to record events and processes them in the background
func (w *MirrorWorker) Start() error {
	eventChan, err := w.eventBus.Subscribe(w.ctx, providers.EventChannelRecords)
	if err != nil {
		return fmt.Errorf("failed to subscribe to record events: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processEvents(eventChan)
	}()
	log.Info().Str("channel", providers.EventChannelRecords).Msg("Mirror worker started")
	return nil
}

// Stop stops the worker and waits for the event in flight
func (w *MirrorWorker) Stop() {
	w.cancel()
	w.wg.Wait()
	log.Info().Msg("Mirror worker stopped")
}

func (w *MirrorWorker) processEvents(eventChan <-chan *entities.RecordEvent) {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			w.handleEvent(event)
		}
	}
}

func (w *MirrorWorker) handleEvent(event *entities.RecordEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.replicator.Apply(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Str("mrn", event.PatientMRN).
			Msg("Mirror worker failed to apply record event")
		return
	}
	log.Debug().Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("Record event mirrored")
}
