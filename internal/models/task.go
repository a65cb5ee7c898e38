package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority classifies a task's urgency. S through C form an ordered urgency
// scale; DEV and IDEA are parking-lot buckets outside that scale.
type Priority string

const (
	PriorityS    Priority = "S"
	PriorityA    Priority = "A"
	PriorityB    Priority = "B"
	PriorityC    Priority = "C"
	PriorityDev  Priority = "DEV"
	PriorityIdea Priority = "IDEA"
)

// UnrankedPriorityRank is the ordinal assigned to priorities outside the S-C
// urgency scale, so they sort after every ranked priority.
const UnrankedPriorityRank = 4

// Rank returns the sort ordinal for the priority: S=0, A=1, B=2, C=3.
// DEV, IDEA and anything unrecognized sort after the ranked scale.
func (p Priority) Rank() int {
	switch p {
	case PriorityS:
		return 0
	case PriorityA:
		return 1
	case PriorityB:
		return 2
	case PriorityC:
		return 3
	default:
		return UnrankedPriorityRank
	}
}

// Ranked reports whether p is part of the S-C urgency scale.
func (p Priority) Ranked() bool {
	return p.Rank() < UnrankedPriorityRank
}

// Valid reports whether p is one of the six enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityS, PriorityA, PriorityB, PriorityC, PriorityDev, PriorityIdea:
		return true
	default:
		return false
	}
}

// ParsePriority maps a classifier- or user-supplied string to a Priority.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if p.Valid() {
		return p, true
	}
	return "", false
}

// Status is the lifecycle state of a task. Transitions are unrestricted;
// deleted is a soft-delete marker distinct from hard row deletion.
type Status string

const (
	StatusUnprocessed Status = "unprocessed"
	StatusInProgress  Status = "in_progress"
	StatusDone        Status = "done"
	StatusOnHold      Status = "on_hold"
	StatusWatching    Status = "watching"
	StatusReverted    Status = "reverted"
	StatusDeleted     Status = "deleted"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUnprocessed, StatusInProgress, StatusDone, StatusOnHold,
		StatusWatching, StatusReverted, StatusDeleted:
		return true
	default:
		return false
	}
}

// Active reports whether a task with this status belongs to the default
// inbox view. done, deleted, on_hold and watching are filtered out.
func (s Status) Active() bool {
	switch s {
	case StatusDone, StatusDeleted, StatusOnHold, StatusWatching:
		return false
	default:
		return true
	}
}

// statusLabels maps statuses to the Japanese labels shown in chat and on the
// dashboard. Domain code compares Status values, never these strings.
var statusLabels = map[Status]string{
	StatusUnprocessed: "未処理",
	StatusInProgress:  "進行中",
	StatusDone:        "完了",
	StatusOnHold:      "保留",
	StatusWatching:    "静観",
	StatusReverted:    "戻し",
	StatusDeleted:     "削除",
}

// Label returns the Japanese display label for the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ManualEntryCategory marks tasks inserted by the dashboard quick-add
// fallback when classification fails.
const ManualEntryCategory = "手動登録"

// Task is the sole domain entity: one actionable item owned by a chat user.
type Task struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	Priority  Priority  `json:"priority"`
	Status    Status    `json:"status"`
	SortOrder *int      `json:"sort_order,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
