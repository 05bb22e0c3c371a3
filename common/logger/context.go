package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs
// within a context.
type LogFields struct {
	NegotiationID *int64
	TenantEmail   *string
	Status        *string
	Component     string // e.g. "leaseline.engine", "leaseline.estimator"
}

// WithLogFields enriches context with structured log fields. Multiple calls
// merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context. Returns empty LogFields
// if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.NegotiationID != nil {
		result.NegotiationID = next.NegotiationID
	}
	if next.TenantEmail != nil {
		result.TenantEmail = next.TenantEmail
	}
	if next.Status != nil {
		result.Status = next.Status
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value, for setting LogFields
// inline.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Useful for logging tenant messages without flooding records.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
