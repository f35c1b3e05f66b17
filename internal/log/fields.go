package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldUserID     = "user_id"
	FieldCommand    = "command"
	FieldExpression = "expression"
	FieldAmount     = "amount"
	FieldBalance    = "balance"
	FieldMessageID  = "message_id"
	FieldQueue      = "queue"
	FieldExchange   = "exchange"
	FieldBackend    = "backend"
)

// Components defines standard component names.
const (
	ComponentApp        = "app"
	ComponentDispatcher = "dispatcher"
	ComponentLedger     = "ledger"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentBackend    = "backend"
)
