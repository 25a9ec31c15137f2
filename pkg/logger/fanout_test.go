package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	err     error
	records *[]slog.Record
	level   slog.Level
}

func (h recordingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return h.err
}

func (h recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestFanout(t *testing.T) {
	t.Parallel()

	var infos, errs []slog.Record
	boom := errors.New("boom")
	h := newFanoutHandler(
		recordingHandler{records: &infos, level: slog.LevelInfo, err: boom},
		recordingHandler{records: &errs, level: slog.LevelError},
	)

	ctx := context.Background()
	require.True(t, h.Enabled(ctx, slog.LevelInfo))
	require.False(t, h.Enabled(ctx, slog.LevelDebug))

	err := h.Handle(ctx, slog.NewRecord(time.Time{}, slog.LevelInfo, "info", 0))
	require.ErrorIs(t, err, boom)

	err = h.Handle(ctx, slog.NewRecord(time.Time{}, slog.LevelError, "error", 0))
	require.ErrorIs(t, err, boom)

	require.Len(t, infos, 2)
	require.Len(t, errs, 1)
	require.Equal(t, "error", errs[0].Message)
}
