package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestInitWithoutLogExporterUsesStdoutOnly(t *testing.T) {
	Init("test-service", true)

	mh, ok := Log.Handler().(*multiHandler)
	if !ok {
		t.Fatalf("handler is %T, want *multiHandler", Log.Handler())
	}
	if len(mh.handlers) != 1 {
		t.Errorf("handlers = %d, want 1 (stdout only when no log exporter is configured)", len(mh.handlers))
	}
}

type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestMultiHandlerFansOut(t *testing.T) {
	first := &recordingHandler{}
	second := &recordingHandler{}
	log := slog.New(&multiHandler{handlers: []slog.Handler{first, second}})

	log.Info("ride created", "ride_id", "r1")

	if len(first.records) != 1 || len(second.records) != 1 {
		t.Errorf("records = %d/%d, want 1/1", len(first.records), len(second.records))
	}
}
