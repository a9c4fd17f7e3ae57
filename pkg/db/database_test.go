package db

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint
	Name string
}

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestOpen_LogsThroughSlogAndSkipsNotFound(t *testing.T) {
	buf := captureDefault(t)

	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, db.AutoMigrate(&widget{}))

	var w widget
	err = db.First(&w, 42).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, buf.Len())

	require.Error(t, db.Exec("SELECT * FROM missing_table").Error)
	require.NotZero(t, buf.Len())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.SplitN(buf.Bytes(), []byte("\n"), 2)[0], &line))
	assert.Equal(t, "gorm", line["msg"])
	assert.Contains(t, line["detail"], "missing_table")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	assert.ErrorContains(t, err, "unknown DB_DRIVER")
}
