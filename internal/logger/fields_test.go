package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  mode  ", Value: "  match  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "mode" || fields[0].String != "match" {
		t.Fatalf("unexpected mode field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestRequestFields(t *testing.T) {
	fields := RequestFields("match", "/match", "local_file")
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldMode || fields[0].String != "match" {
		t.Fatalf("unexpected mode field: %+v", fields[0])
	}

	if fields[1].Key != FieldEndpoint || fields[1].String != "/match" {
		t.Fatalf("unexpected endpoint field: %+v", fields[1])
	}

	if fields[2].Key != FieldSource || fields[2].String != "local_file" {
		t.Fatalf("unexpected source field: %+v", fields[2])
	}

	refine := RequestFields("refine", "/refine-jd", "")
	if len(refine) != 2 {
		t.Fatalf("expected empty source to be dropped, got %d fields", len(refine))
	}
}

func TestWithMode(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithMode(zap.New(core), "improve").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if got := entries[0].ContextMap()[FieldMode]; got != "improve" {
		t.Fatalf("expected mode field to be improve, got %q", got)
	}

	// Ensure logging with the fallback logger does not panic.
	WithMode(nil, "match").Info("another log")
}
