package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	shutdown, err := install(context.Background(), Options{ServiceName: "bookstore-test"},
		sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	return recorder
}

func TestInitTracer(t *testing.T) {
	shutdown, err := InitTracer(Options{ServiceName: "bookstore-test", Endpoint: "localhost:4317"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_ChildSharesTraceID(t *testing.T) {
	recorder := setupRecorder(t)

	ctx, parent := StartSpan(context.Background(), "order", "CreateOrder")
	childCtx, child := StartSpan(ctx, "inventory", "ReserveCopies")

	assert.Equal(t, ExtractTraceID(ctx), ExtractTraceID(childCtx))
	assert.NotEqual(t, ExtractSpanID(ctx), ExtractSpanID(childCtx))
	assert.Len(t, ExtractTraceID(ctx), 32)

	child.End()
	parent.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "ReserveCopies", ended[0].Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
}

func TestEndSpan_RecordsError(t *testing.T) {
	recorder := setupRecorder(t)

	_, span := StartSpan(context.Background(), "rental", "CreateRental")
	EndSpan(span, errors.New("no rentable copy"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "no rentable copy", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 1)
}

func TestExtractTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))
	assert.Empty(t, ExtractSpanID(context.Background()))
}
