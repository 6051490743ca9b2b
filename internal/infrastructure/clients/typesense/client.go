package typesense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/wardtracker/pkg/config"
	"github.com/zatekoja/wardtracker/pkg/retry"
)

const (
	PatientsCollection = "ward_patients"
	NotesCollection    = "ward_notes"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := newTypesenseClient(cfg)

	err := retry.Do(ctx, retry.DefaultConfig(), "typesense",
		func(ctx context.Context) error {
			healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			healthy, err := client.Health(healthCtx, 2*time.Second)
			if err == nil && !healthy {
				err = errors.New("typesense reports unhealthy")
			}
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("Typesense not reachable yet")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("Connected to Typesense")
	return &Client{client: client}, nil
}

// NewClientWithoutHealthCheck builds a client without waiting for the server
func NewClientWithoutHealthCheck(cfg *config.TypesenseConfig) *Client {
	return &Client{client: newTypesenseClient(cfg)}
}

func newTypesenseClient(cfg *config.TypesenseConfig) *typesense.Client {
	return typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the mirror collections exist
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	existing := make(map[string]bool, len(collections))
	for _, col := range collections {
		existing[col.Name] = true
	}

	for _, schema := range []*api.CollectionSchema{patientsSchema(), notesSchema()} {
		if existing[schema.Name] {
			log.Debug().Str("collection", schema.Name).Msg("Typesense collection already exists")
			continue
		}
		if _, err := c.client.Collections().Create(ctx, schema); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", schema.Name, err)
		}
		log.Info().Str("collection", schema.Name).Msg("Created Typesense collection")
	}
	return nil
}

func patientsSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: PatientsCollection,
		Fields: []api.Field{
			{Name: "mrn", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "age", Type: "int32"},
			{Name: "gender", Type: "string", Facet: pointer.True()},
			{Name: "diagnosis", Type: "string"},
			{Name: "admission_date", Type: "int64"},
			{Name: "discharge_date", Type: "int64", Optional: pointer.True()},
			{Name: "status", Type: "string", Facet: pointer.True()},
			{Name: "specialty", Type: "string", Facet: pointer.True()},
			{Name: "assigned_doctor", Type: "string", Optional: pointer.True()},
		},
		DefaultSortingField: pointer.String("admission_date"),
	}
}

func notesSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: NotesCollection,
		Fields: []api.Field{
			{Name: "note_id", Type: "int64"},
			{Name: "patient_mrn", Type: "string", Facet: pointer.True()},
			{Name: "date", Type: "int64"},
			{Name: "note", Type: "string"},
			{Name: "user", Type: "string", Facet: pointer.True()},
		},
		DefaultSortingField: pointer.String("date"),
	}
}
