package database

import (
	"context"
	_ "embed"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/postgres"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL for the primary store
func Schema() string {
	return schemaSQL
}

// EnsureSchema creates the ward tables and indexes when they are missing.
// Every statement is idempotent, so it is safe to run on each start.
func EnsureSchema(ctx context.Context, client *postgres.Client) error {
	tx, err := client.BeginTx(ctx)
	if err != nil {
		return translateError(err, "failed to begin schema bootstrap", nil)
	}
	defer tx.Rollback()

	for _, stmt := range schemaStatements(schemaSQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return translateError(err, "failed to apply schema", nil)
		}
	}

	if err := tx.Commit(); err != nil {
		return translateError(err, "failed to commit schema", nil)
	}

	log.Info().Msg("Primary store schema ensured")
	return nil
}

// schemaStatements splits the DDL on statement terminators. The schema holds
// no functions or string literals containing ';'.
func schemaStatements(ddl string) []string {
	var stmts []string
	for _, part := range strings.Split(ddl, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
