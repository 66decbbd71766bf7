package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldOwnerID    = "owner_id"
	FieldTxID       = "id"
	FieldKind       = "kind"
	FieldCategory   = "category"
	FieldPeriod     = "period"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentSession  = "session"
	ComponentStore    = "store"
	ComponentDocstore = "docstore"
	ComponentReport   = "report"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentStorage  = "storage"
)
