package logger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRequester is the structured log field key for the user a search runs for.
	FieldRequester = "requester_id"
	// FieldSession is the structured log field key for the search session identifier.
	FieldSession = "session_id"
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
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SessionFields returns the fields identifying a search session.
// A zero requester or empty session id is left out.
func SessionFields(requesterID int64, sessionID string) []zap.Field {
	requester := ""
	if requesterID != 0 {
		requester = strconv.FormatInt(requesterID, 10)
	}

	return StringFields(
		StringField{Key: FieldRequester, Value: requester},
		StringField{Key: FieldSession, Value: sessionID},
	)
}

// WithSession attaches the session fields to the provided logger.
func WithSession(logger *zap.Logger, requesterID int64, sessionID string) *zap.Logger {
	return WithFields(logger, SessionFields(requesterID, sessionID)...)
}
