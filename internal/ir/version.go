package ir

// Version constants for the store schema and engine.
const (
	// SchemaVersion is the store schema version recorded with every sync run.
	SchemaVersion = "1"

	// EngineVersion is the tracksync engine version.
	EngineVersion = "0.1.0"
)
