package logger

// Standard field names used across the service so log output stays queryable.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldAccountID = "account_id"
	FieldMediaID   = "media_id"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldStatus    = "status"
	FieldMethod    = "method"
	FieldPath      = "path"
)
