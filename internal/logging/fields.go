package logging

// Standardized structured logging keys.
const (
	FieldComponent     = "component"
	FieldRunID         = "run_id"
	FieldOperation     = "operation"
	FieldVideo         = "video"
	FieldSubtitle      = "subtitle"
	FieldOutput        = "output"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldErrorKind     = "error_kind"
	FieldImpact        = "impact"
	FieldFrame         = "frame"
	FieldFrameTotal    = "frame_total"
	FieldPercent       = "percent"
	FieldCorrelationID = "correlation_id"
)
