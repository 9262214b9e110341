package domain

import "time"

// ErrCodeExhausted is the terminal error code after all strategies failed.
const ErrCodeExhausted = "ALL_STRATEGIES_FAILED"

// SnapshotRef points at a locally persisted rendering of the target page.
type SnapshotRef struct {
	Path     string `json:"path"`
	FinalURL string `json:"finalUrl"`
}

// ArtifactRef points at a persisted report artifact.
type ArtifactRef struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// AttemptRecord is one entry of the append-only attempt log.
// Never mutated after creation.
type AttemptRecord struct {
	Strategy     string     `json:"strategy"`
	AttemptIndex int        `json:"attemptIndex"`
	Success      bool       `json:"success"`
	ErrorClass   ErrorClass `json:"errorClass,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   time.Time  `json:"finishedAt"`
}

// AuditOutcome is the single externally visible result of one orchestration run.
type AuditOutcome struct {
	Success      bool   `json:"success"`
	StrategyUsed string `json:"strategyUsed,omitempty"`
	AttemptIndex int    `json:"attemptIndex,omitempty"`
	Message      string `json:"message,omitempty"`

	Artifact *ArtifactRef `json:"artifact,omitempty"`
	Report   *RawReport   `json:"report,omitempty"`

	// Failure envelope.
	ErrorCode      string          `json:"errorCode,omitempty"`
	AttemptLog     []AttemptRecord `json:"attemptLog,omitempty"`
	Retryable      bool            `json:"retryable"`
	Recommendation string          `json:"recommendation,omitempty"`
}
