package log

// Canonical field name constants for structured logging.
const (
	FieldService    = "service"
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldOperation  = "operation"
	FieldGeneration = "generation"

	FieldMode     = "mode"
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	FieldStatus    = "status"
	FieldEndpoint  = "endpoint"
	FieldErrorKind = "error_kind"
	FieldDetail    = "detail"
	FieldDuration  = "duration"
	FieldPath      = "path"
)
