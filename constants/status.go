package constants

// RunStatus is the canonical status for rows in processing_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusQueued  RunStatus = "QUEUED"   // accepted, not started
	RunStatusRunning RunStatus = "RUNNING"  // in progress
	RunStatusParseOK RunStatus = "PARSE_OK" // stage 1 completed (items recovered)
	RunStatusOK      RunStatus = "OK"       // all outputs written
	RunStatusFailed  RunStatus = "FAILED"   // terminal failure
)
