package logging

// Field names for structured logging.
const (
	FieldError    = "error"
	FieldPath     = "path"
	FieldBytes    = "bytes"
	FieldVersion  = "version"
	FieldCommit   = "commit"
	FieldBuilt    = "built"
	FieldMode     = "mode"
	FieldWidth    = "width"
	FieldRevision = "revision"
	FieldWindow   = "window"
	FieldReason   = "reason"
	FieldBlocks   = "blocks"
	FieldLines    = "lines"
	FieldNode     = "node"
	FieldOffset   = "offset"
	FieldElapsed  = "elapsed"
)
