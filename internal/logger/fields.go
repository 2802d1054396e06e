package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldMode is the structured log field key for the analysis mode.
	FieldMode = "mode"
	// FieldEndpoint is the structured log field key for the service endpoint path.
	FieldEndpoint = "endpoint"
	// FieldSource is the structured log field key for the resume source kind.
	FieldSource = "source"
	// FieldPhase is the structured log field key for the workflow phase.
	FieldPhase = "phase"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// RequestFields describes an analysis request. Empty values are dropped.
func RequestFields(mode, endpoint, source string) []zap.Field {
	return StringFields(
		StringField{Key: FieldMode, Value: mode},
		StringField{Key: FieldEndpoint, Value: endpoint},
		StringField{Key: FieldSource, Value: source},
	)
}

// WithMode attaches the analysis mode to the provided logger.
func WithMode(logger *zap.Logger, mode string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldMode, Value: mode})...)
}
