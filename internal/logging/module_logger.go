package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

const (
	rootModule    = "vaultmedia"
	scanModule    = "vaultmedia.scan"
	convertModule = "vaultmedia.convert"
	clientModule  = "vaultmedia.client"
	cacheModule   = "vaultmedia.cache"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ScanLogger returns the logger namespace reserved for the batch scanner.
func ScanLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, scanModule)
}

// ConvertLogger returns the logger namespace reserved for reference conversion.
func ConvertLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, convertModule)
}

// ClientLogger returns the logger namespace reserved for upstream REST clients.
func ClientLogger(provider interfaces.LoggerProvider, service string) interfaces.Logger {
	name := clientModule
	if trimmed := strings.TrimSpace(service); trimmed != "" {
		name = clientModule + "." + trimmed
	}
	return ModuleLogger(provider, name)
}

// CacheLogger returns the logger namespace reserved for cache retention.
func CacheLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cacheModule)
}

// WithDocumentContext enriches the provided logger with common scan/convert
// fields such as document path and reference kind. Empty values are ignored.
func WithDocumentContext(logger interfaces.Logger, path, kind string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields["document_path"] = trimmed
	}
	if trimmed := strings.TrimSpace(kind); trimmed != "" {
		fields["reference_kind"] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
