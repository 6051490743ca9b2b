//go:build integration

package integration

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zatekoja/wardtracker/internal/adapters/database"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/mongodb"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/redis"
	"github.com/zatekoja/wardtracker/pkg/config"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func requireEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if os.Getenv(key) == "" {
			t.Skipf("Skipping integration test: %s not set", key)
		}
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// newTestPostgresClient connects, applies the schema and empties both tables
func newTestPostgresClient(t *testing.T) *postgres.Client {
	t.Helper()
	requireEnv(t, "TEST_DB_HOST")

	cfg := &config.DatabaseConfig{
		Host:         getEnv("TEST_DB_HOST", "localhost"),
		Port:         getEnvAsInt("TEST_DB_PORT", 5432),
		User:         getEnv("TEST_DB_USER", "postgres"),
		Password:     getEnv("TEST_DB_PASSWORD", "postgres"),
		Database:     getEnv("TEST_DB_NAME", "wardtracker_test"),
		SSLMode:      getEnv("TEST_DB_SSLMODE", "disable"),
		MaxOpenConns: 20,
		MaxIdleConns: 5,
	}

	ctx := testContext(t)
	client, err := postgres.NewClient(ctx, cfg)
	require.NoError(t, err, "Failed to create postgres client")
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, database.EnsureSchema(ctx, client))
	_, err = client.DB().ExecContext(ctx, `TRUNCATE TABLE medical_notes, patients RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return client
}

// newTestMongoClient connects and drops the test database afterwards
func newTestMongoClient(t *testing.T) *mongodb.Client {
	t.Helper()
	requireEnv(t, "TEST_MONGO_URI")

	cfg := &config.MongoConfig{
		Enabled:  true,
		URI:      os.Getenv("TEST_MONGO_URI"),
		Database: getEnv("TEST_MONGO_DATABASE", "wardtracker_test"),
	}

	ctx := testContext(t)
	client, err := mongodb.NewClient(ctx, cfg)
	require.NoError(t, err, "Failed to create mongo client")
	require.NoError(t, client.Database().Drop(ctx))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Database().Drop(ctx)
		_ = client.Close(ctx)
	})
	return client
}

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	requireEnv(t, "TEST_REDIS_HOST")

	cfg := &config.RedisConfig{
		Enabled:  true,
		Host:     getEnv("TEST_REDIS_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_REDIS_PORT", 6379),
		Password: getEnv("TEST_REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("TEST_REDIS_DB", 0),
	}

	client, err := redis.NewClient(testContext(t), cfg)
	require.NoError(t, err, "Failed to create redis client")
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func admission(mrn string, specialty entities.Specialty, admitted time.Time) *entities.NewPatient {
	age := 52
	return &entities.NewPatient{
		MRN:           mrn,
		Name:          "Patient " + mrn,
		Age:           &age,
		Gender:        entities.GenderFemale,
		Diagnosis:     "Community acquired pneumonia",
		AdmissionDate: entities.At(admitted),
		Specialty:     specialty,
	}
}
