package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"golang.org/x/sync/errgroup"
)

// NoteSource fetches one patient's notes
type NoteSource interface {
	ListNotes(ctx context.Context, mrn string) ([]*entities.MedicalNote, error)
}

// ExtractedPatient is a patient together with their notes
type ExtractedPatient struct {
	*entities.Patient
	Notes []*entities.MedicalNote `json:"notes"`
}

// noteFetchLimit caps the note requests a batch has in flight at once
const noteFetchLimit = 8

// newNoteLoader batches note lookups by MRN. The loader's cache collapses
// repeated MRNs into one key. The API has no bulk endpoint, so each distinct
// MRN still costs one request; a batch issues them concurrently, at most
// noteFetchLimit at a time.
func newNoteLoader(source NoteSource) *dataloader.Loader[string, []*entities.MedicalNote] {
	return dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[[]*entities.MedicalNote] {
		results := make([]*dataloader.Result[[]*entities.MedicalNote], len(keys))
		var g errgroup.Group
		g.SetLimit(noteFetchLimit)
		for i, mrn := range keys {
			g.Go(func() error {
				notes, err := source.ListNotes(ctx, mrn)
				if err != nil {
					results[i] = &dataloader.Result[[]*entities.MedicalNote]{Error: fmt.Errorf("notes for %s: %w", mrn, err)}
					return nil
				}
				results[i] = &dataloader.Result[[]*entities.MedicalNote]{Data: notes}
				return nil
			})
		}
		_ = g.Wait()
		return results
	})
}

// Extract returns the patients whose admission day lies in [from, to], each
// with their notes, in the order the patients were given
func Extract(ctx context.Context, patients []*entities.Patient, from, to time.Time, loc *time.Location, source NoteSource) ([]ExtractedPatient, error) {
	start, end := label(from), label(to)
	if end.Before(start) {
		return nil, fmt.Errorf("extract range ends (%s) before it starts (%s)", end.Format(DayLayout), start.Format(DayLayout))
	}

	matched := make([]*entities.Patient, 0)
	for _, p := range patients {
		admitted := civil(p.AdmissionDate, loc)
		if !admitted.Before(start) && !admitted.After(end) {
			matched = append(matched, p)
		}
	}

	loader := newNoteLoader(source)
	thunks := make([]dataloader.Thunk[[]*entities.MedicalNote], len(matched))
	for i, p := range matched {
		thunks[i] = loader.Load(ctx, p.MRN)
	}

	extracted := make([]ExtractedPatient, 0, len(matched))
	for i, p := range matched {
		notes, err := thunks[i]()
		if err != nil {
			return nil, err
		}
		extracted = append(extracted, ExtractedPatient{Patient: p, Notes: notes})
	}
	return extracted, nil
}
