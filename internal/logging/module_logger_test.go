package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

type recordingLogger struct {
	fields map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := make(map[string]any, len(r.fields)+len(fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{fields: merged}
}

type recordingProvider struct {
	requested []string
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	p.requested = append(p.requested, name)
	return &recordingLogger{fields: map[string]any{}}
}

func TestModuleLoggerAttachesModuleField(t *testing.T) {
	provider := &recordingProvider{}

	logger := ModuleLogger(provider, "vaultmedia.scan")

	rec, ok := logger.(*recordingLogger)
	if !ok {
		t.Fatalf("expected recording logger, got %T", logger)
	}
	if rec.fields["module"] != "vaultmedia.scan" {
		t.Fatalf("expected module field, got %#v", rec.fields)
	}
	if len(provider.requested) != 1 || provider.requested[0] != "vaultmedia.scan" {
		t.Fatalf("expected provider lookup by module name, got %#v", provider.requested)
	}
}

func TestModuleLoggerNilProviderFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "")
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	// Must be safe to use without a provider.
	logger.Info("noop entry")
}

func TestClientLoggerScopesServiceName(t *testing.T) {
	provider := &recordingProvider{}

	ClientLogger(provider, "recraft")

	if len(provider.requested) != 1 || provider.requested[0] != "vaultmedia.client.recraft" {
		t.Fatalf("expected scoped client namespace, got %#v", provider.requested)
	}
}

func TestWithDocumentContextSkipsEmptyValues(t *testing.T) {
	base := &recordingLogger{fields: map[string]any{}}

	logger := WithDocumentContext(base, "notes/today.md", "")

	rec := logger.(*recordingLogger)
	if rec.fields["document_path"] != "notes/today.md" {
		t.Fatalf("expected document path field, got %#v", rec.fields)
	}
	if _, ok := rec.fields["reference_kind"]; ok {
		t.Fatalf("expected empty kind to be omitted, got %#v", rec.fields)
	}
}

func TestContextFieldsRoundTrip(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"batch": "b-1"})
	ctx = ContextWithFields(ctx, map[string]any{"item": 4})

	fields := ContextFields(ctx)
	if fields["batch"] != "b-1" || fields["item"] != 4 {
		t.Fatalf("expected merged context fields, got %#v", fields)
	}

	fields["batch"] = "mutated"
	if ContextFields(ctx)["batch"] != "b-1" {
		t.Fatal("expected defensive copy of context fields")
	}
}
