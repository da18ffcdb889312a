package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T, level slog.Level) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 4) {
		assert.Contains(t, lines[0], "level=DEBUG msg=dbg a=1")
		assert.Contains(t, lines[1], "level=INFO msg=inf b=2")
		assert.Contains(t, lines[2], "level=WARN msg=wrn c=3")
		assert.Contains(t, lines[3], "level=ERROR msg=err d=4")
	}
}

func TestSlogLogger_BelowLevelIsDropped(t *testing.T) {
	log, buf := newTestLogger(t, slog.LevelWarn)
	ctx := ContextWith(context.Background(), "request_id", "r-1")

	log.Debug(ctx, "remote call")
	log.Info(ctx, "ledger loaded")
	assert.Empty(t, buf.String())
}

func TestSlogLogger_WithAndContextAttributes(t *testing.T) {
	log, buf := newTestLogger(t, slog.LevelDebug)

	ctx := ContextWith(context.Background(), "request_id", "r-1")
	ctx = ContextWith(ctx, "tenant", "ig-1")
	log.With("component", "gateway").Info(ctx, "remote call", "status", 200)

	out := buf.String()
	for _, want := range []string{"component=gateway", "status=200", "request_id=r-1", "tenant=ig-1"} {
		assert.Contains(t, out, want)
	}
}

func TestContextWith_NoArgsKeepsContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, ContextWith(ctx))
	assert.Nil(t, attrsFrom(ctx))
}
