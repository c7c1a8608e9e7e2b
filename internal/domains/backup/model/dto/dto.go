package dto

import (
	"innkeeper/internal/domains/backup/ndjson"
)

// RestoreMode selects the executor's terminal behavior. Each mode is an
// explicit state, not a flag combination.
type RestoreMode string

const (
	ModeDryRun     RestoreMode = "dry-run"
	ModeCreateOnly RestoreMode = "create-only"
	ModeOverwrite  RestoreMode = "overwrite"
)

func (m RestoreMode) Valid() bool {
	switch m {
	case ModeDryRun, ModeCreateOnly, ModeOverwrite:
		return true
	}

	return false
}

// RestoreTarget selects which key namespace a restore lands in.
type RestoreTarget string

const (
	TargetDefault RestoreTarget = "default"
	TargetSandbox RestoreTarget = "restore-sandbox"
)

func (t RestoreTarget) Valid() bool {
	switch t {
	case TargetDefault, TargetSandbox:
		return true
	}

	return false
}

type RestoreRequest struct {
	Content          []byte        `validate:"required"`
	Mode             RestoreMode   `validate:"required"`
	Target           RestoreTarget `validate:"required"`
	SandboxID        string        `validate:"omitempty,sandboxid"`
	ConfirmOverwrite bool
	ConfirmText      string
	// Normalize defaults to true; raw writes are only honored in the sandbox.
	Normalize *bool
}

type Classification string

const (
	ClassificationCreate   Classification = "create"
	ClassificationConflict Classification = "conflict"
	ClassificationInvalid  Classification = "invalid"
)

// PlanEntry classifies one uploaded record against the target prefix. Index
// points back into the parsed record list.
type PlanEntry struct {
	Index          int            `json:"index"`
	ID             string         `json:"id,omitempty"`
	Key            string         `json:"key,omitempty"`
	Classification Classification `json:"classification"`
	Reason         string         `json:"reason,omitempty"`
}

// RestorePlan is the dry-run result and the conflict-detection primitive the
// executor consumes, so preview output and real writes can never diverge.
type RestorePlan struct {
	TargetPrefix string      `json:"targetPrefix"`
	Entries      []PlanEntry `json:"entries"`
	Creates      int         `json:"creates"`
	Conflicts    int         `json:"conflicts"`
	Invalids     int         `json:"invalids"`
}

// RestoreSummary is the complete operation report returned to the caller.
type RestoreSummary struct {
	Mode         RestoreMode `json:"mode"`
	DryRun       bool        `json:"dryRun"`
	TargetPrefix string      `json:"targetPrefix"`
	SandboxID    string      `json:"sandboxId,omitempty"`

	Created     int `json:"created"`
	Overwritten int `json:"overwritten"`
	Skipped     int `json:"skipped"`
	Invalid     int `json:"invalid"`
	Failed      int `json:"failed"`

	CreatedIDs     []string `json:"createdIds"`
	OverwrittenIDs []string `json:"overwrittenIds"`
	SkippedIDs     []string `json:"skippedIds"`
	InvalidIDs     []string `json:"invalidIds"`
	FailedIDs      []string `json:"failedIds"`

	ParseErrors []ndjson.ParseError `json:"parseErrors"`
	Plan        *RestorePlan        `json:"plan,omitempty"`
}

// ExportStats annotates an export download via response headers.
type ExportStats struct {
	ExportedCount int      `json:"exportedCount"`
	KeyCount      int      `json:"keyCount"`
	FailedKeys    []string `json:"failedKeys"`
}

// OperationEvent is published to the operations topic after a completed
// export or write-mode restore.
type OperationEvent struct {
	TenantID  string `json:"tenantId"`
	Operation string `json:"operation"`
	Mode      string `json:"mode,omitempty"`
	At        string `json:"at"`
	Detail    any    `json:"detail,omitempty"`
}
