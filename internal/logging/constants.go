package logging

// Standardized field names for structured logging.
const (
	FieldFile          = "file_path"
	FieldEncoding      = "encoding"
	FieldParser        = "parser"
	FieldBank          = "bank"
	FieldOwner         = "owner_id"
	FieldTransactionID = "transaction_id"
	FieldHash          = "transaction_hash"
	FieldAuditID       = "audit_id"
	FieldCategory      = "category"
	FieldReason        = "reason"
	FieldConfidence    = "confidence"
	FieldLine          = "line"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldCount         = "count"
	FieldImported      = "imported"
	FieldSkipped       = "skipped"
	FieldIgnored       = "ignored"
	FieldErrors        = "errors"
	FieldSize          = "size_bytes"
)
