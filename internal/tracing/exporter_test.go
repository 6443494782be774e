package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var records []SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	_, err = os.Stat(tracePath)
	require.NoError(t, err, "trace file should be created with parent dirs")
	require.NoError(t, exporter.Shutdown(context.Background()))
}

func TestFileExporter_WritesRecords(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(tracePath, nil, 0600))

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	stub := tracetest.SpanStub{
		Name:       SpanBuild,
		StartTime:  start,
		EndTime:    start.Add(1500 * time.Microsecond),
		Status:     sdktrace.Status{Code: codes.Error, Description: "compilation error"},
		Attributes: []attribute.KeyValue{attribute.String(AttrBuildID, "b-1"), attribute.Int(AttrResourceCount, 3)},
		Events: []sdktrace.Event{
			{Name: "define", Time: start},
		},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 1)
	rec := records[0]
	require.Equal(t, SpanBuild, rec.Name)
	require.Equal(t, "ERROR", rec.Status)
	require.Equal(t, "compilation error", rec.StatusMsg)
	require.InDelta(t, 1.5, rec.DurationMs, 0.001)
	require.Equal(t, "b-1", rec.Attributes[AttrBuildID])
	require.EqualValues(t, 3, rec.Attributes[AttrResourceCount])
	require.Len(t, rec.Events, 1)
	require.Empty(t, rec.ParentSpanID)
}

func TestFileExporter_AppendsAcrossExporters(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	for _, name := range []string{"first", "second"} {
		exporter, err := NewFileExporter(tracePath)
		require.NoError(t, err)
		stub := tracetest.SpanStub{Name: name, StartTime: time.Now(), EndTime: time.Now()}
		require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
		require.NoError(t, exporter.Shutdown(context.Background()))
	}

	records := readRecords(t, tracePath)
	require.Len(t, records, 2)
	require.Equal(t, "first", records[0].Name)
	require.Equal(t, "second", records[1].Name)
}

func TestFileExporter_ShutdownTwiceAndExportAfter(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)

	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: "late"}
	require.Error(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
}

func TestStatusName(t *testing.T) {
	require.Equal(t, "OK", statusName(codes.Ok))
	require.Equal(t, "ERROR", statusName(codes.Error))
	require.Equal(t, "UNSET", statusName(codes.Unset))
}
