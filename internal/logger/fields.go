package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldCandidate is the structured log field key for a candidate identifier.
	FieldCandidate = "candidate_id"
	// FieldStage is the structured log field key for the pipeline stage name.
	FieldStage = "stage"
	// FieldAction is the structured log field key for the terminal action taken.
	FieldAction = "action"
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

// CandidateFields returns standard zap fields describing a candidate within
// a pipeline stage. Empty values are ignored to keep entries compact.
func CandidateFields(id, stage string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCandidate, Value: id},
		StringField{Key: FieldStage, Value: stage},
	)
}
