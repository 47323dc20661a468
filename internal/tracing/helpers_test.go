package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordSpans installs an in-memory span recorder for the test's lifetime.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return recorder
}

func singleSpan(t *testing.T, recorder *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want 1", len(spans))
	}
	return spans[0]
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[string]string {
	attrs := make(map[string]string)
	for _, attr := range span.Attributes() {
		attrs[string(attr.Key)] = attr.Value.Emit()
	}
	return attrs
}

func TestStartDBSpan(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		operation DBOperation
		wantName  string
	}{
		{name: "item lookup", table: "content_items", operation: DBOperationQuery, wantName: "query content_items"},
		{name: "view insert", table: "views", operation: DBOperationInsert, wantName: "insert views"},
		{name: "item patch", table: "content_items", operation: DBOperationUpdate, wantName: "update content_items"},
		{name: "unfollow", table: "follows", operation: DBOperationDelete, wantName: "delete follows"},
		{name: "exec without table", table: "", operation: DBOperationExec, wantName: "exec"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := recordSpans(t)

			_, endSpan := StartDBSpan(context.Background(), tt.table, tt.operation)
			endSpan(nil)

			span := singleSpan(t, recorder)
			if span.Name() != tt.wantName {
				t.Errorf("span name = %q, want %q", span.Name(), tt.wantName)
			}

			attrs := spanAttrs(span)
			if attrs["db.system"] != "postgresql" {
				t.Errorf("db.system = %q, want postgresql", attrs["db.system"])
			}
			if attrs["db.operation"] != string(tt.operation) {
				t.Errorf("db.operation = %q, want %q", attrs["db.operation"], tt.operation)
			}
			table, hasTable := attrs["db.sql.table"]
			if tt.table == "" && hasTable {
				t.Errorf("unexpected db.sql.table = %q", table)
			}
			if tt.table != "" && table != tt.table {
				t.Errorf("db.sql.table = %q, want %q", table, tt.table)
			}
		})
	}
}

func TestStartDBSpan_RecordsError(t *testing.T) {
	recorder := recordSpans(t)
	queryErr := errors.New("pq: connection refused")

	_, endSpan := StartDBSpan(context.Background(), "content_items", DBOperationQuery)
	endSpan(queryErr)

	span := singleSpan(t, recorder)
	if span.Status().Code.String() != "Error" {
		t.Errorf("status = %s, want Error", span.Status().Code)
	}
	if span.Status().Description != queryErr.Error() {
		t.Errorf("description = %q, want %q", span.Status().Description, queryErr.Error())
	}
}

func TestStartSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, endSpan := StartSpan(context.Background(), "feed.resolve")
	endSpan(nil)

	span := singleSpan(t, recorder)
	if span.Name() != "feed.resolve" {
		t.Errorf("span name = %q, want feed.resolve", span.Name())
	}
	if code := span.Status().Code.String(); code != "Unset" && code != "Ok" {
		t.Errorf("status = %s, want Unset or Ok", code)
	}
}

func TestStartSpan_RecordsError(t *testing.T) {
	recorder := recordSpans(t)

	_, endSpan := StartSpan(context.Background(), "feed.resolve")
	endSpan(errors.New("ranking failed"))

	span := singleSpan(t, recorder)
	if span.Status().Code.String() != "Error" {
		t.Errorf("status = %s, want Error", span.Status().Code)
	}
}

func TestAddEvent(t *testing.T) {
	recorder := recordSpans(t)

	tracer := otel.Tracer("agora")
	ctx, span := tracer.Start(context.Background(), "feed.resolve")
	AddEvent(ctx, "feed.page_served",
		attribute.Int("page", 2),
		attribute.Int("items", 20),
	)
	span.End()

	events := singleSpan(t, recorder).Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Name != "feed.page_served" {
		t.Errorf("event name = %q, want feed.page_served", events[0].Name)
	}
	if len(events[0].Attributes) != 2 {
		t.Errorf("event attributes = %d, want 2", len(events[0].Attributes))
	}
}

func TestSetAttributes(t *testing.T) {
	recorder := recordSpans(t)

	tracer := otel.Tracer("agora")
	ctx, span := tracer.Start(context.Background(), "feed.resolve")
	SetAttributes(ctx,
		attribute.String("viewer_id", "user-42"),
		attribute.String("kind", "event"),
	)
	span.End()

	attrs := spanAttrs(singleSpan(t, recorder))
	if attrs["viewer_id"] != "user-42" {
		t.Errorf("viewer_id = %q, want user-42", attrs["viewer_id"])
	}
	if attrs["kind"] != "event" {
		t.Errorf("kind = %q, want event", attrs["kind"])
	}
}
