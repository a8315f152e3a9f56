package db

import (
	"testing"

	"github.com/pomotrack/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to postgres", url: "", want: BackendPostgres},
		{name: "postgres", url: "postgres://u:p@localhost:5432/db", want: BackendPostgres},
		{name: "postgresql", url: "postgresql://localhost/db", want: BackendPostgres},
		{name: "mongo", url: "mongodb://localhost:27017", want: BackendMongo},
		{name: "mongo srv", url: "mongodb+srv://cluster.example.net", want: BackendMongo},
		{name: "unknown", url: "mysql://localhost/db", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Backend(config.DatabaseConfig{URL: tc.url})
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPostgresURL(t *testing.T) {
	dsn := PostgresURL(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "tracker",
		Password: "p@ss",
		DBName:   "pomo",
		UseSSL:   true,
	})
	assert.Equal(t, "postgres://tracker:p%40ss@db:5433/pomo?sslmode=require", dsn)

	override := PostgresURL(config.DatabaseConfig{URL: " postgres://x@y/z ", Host: "ignored"})
	assert.Equal(t, "postgres://x@y/z", override)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
