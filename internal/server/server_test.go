package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pomotrack/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_RequiresSessionSecret(t *testing.T) {
	cfg := config.Defaults()

	_, err := New(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestNew_InvalidTimezone(t *testing.T) {
	cfg := config.Defaults()
	cfg.Session.Secret = "s"
	cfg.ReportTimezone = "Mars/Olympus_Mons"

	_, err := New(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}

func TestNew_UnsupportedDatabase(t *testing.T) {
	cfg := config.Defaults()
	cfg.Session.Secret = "s"
	cfg.Database.URL = "mysql://localhost/pomotrack"

	_, err := New(context.Background(), cfg, quietLogger())
	require.Error(t, err)
}

func TestCloseResources_ReverseOrder(t *testing.T) {
	s := &Server{logger: quietLogger()}
	var order []string
	s.addCloser("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	s.addCloser("second", func(context.Context) error {
		order = append(order, "second")
		return errors.New("already closed")
	})

	s.closeResources(context.Background())
	assert.Equal(t, []string{"second", "first"}, order)

	s.closeResources(context.Background())
	assert.Len(t, order, 2)
}
