package reconcile

import (
	"github.com/google/uuid"

	"github.com/tasuku-app/tasuku/internal/models"
)

// EffectKind discriminates what a drag-and-drop gesture means.
type EffectKind int

const (
	// EffectNone: self-drop, cancelled gesture, or unknown target.
	EffectNone EffectKind = iota
	// EffectSetStatus: dropped onto a status zone.
	EffectSetStatus
	// EffectSetPriority: dropped onto a priority column. Status resets to
	// unprocessed, mirroring the chat reprioritize command.
	EffectSetPriority
	// EffectAdoptTarget: dropped onto a task in a different column; the
	// dragged task adopts the target's priority and status and moves next
	// to it.
	EffectAdoptTarget
	// EffectReorder: dropped onto a task in the same column; only the
	// ordering changes.
	EffectReorder
)

// String returns the wire name of the effect kind.
func (k EffectKind) String() string {
	switch k {
	case EffectSetStatus:
		return "set_status"
	case EffectSetPriority:
		return "set_priority"
	case EffectAdoptTarget:
		return "adopt_target"
	case EffectReorder:
		return "reorder"
	default:
		return "none"
	}
}

// Effect is the resolved outcome of a drop gesture.
type Effect struct {
	Kind     EffectKind
	Status   models.Status
	Priority models.Priority
	// Order is the full active list order (task IDs) after repositioning,
	// set for EffectAdoptTarget and EffectReorder.
	Order []uuid.UUID
}

// zoneStatuses maps the fixed drop-zone tokens to statuses.
var zoneStatuses = map[string]models.Status{
	"done":     models.StatusDone,
	"trash":    models.StatusDeleted,
	"pending":  models.StatusOnHold,
	"watch":    models.StatusWatching,
	"progress": models.StatusInProgress,
}

// ResolveDrop decides the effect of dropping the dragged task onto target.
// target is a zone token, a priority column id, or another task's id; list
// is the current active list in display order.
func ResolveDrop(dragged *models.Task, target string, list []*models.Task) Effect {
	if target == "" || target == dragged.ID.String() {
		return Effect{Kind: EffectNone}
	}

	if status, ok := zoneStatuses[target]; ok {
		return Effect{Kind: EffectSetStatus, Status: status}
	}

	if priority, ok := models.ParsePriority(target); ok {
		return Effect{Kind: EffectSetPriority, Priority: priority}
	}

	targetID, err := uuid.Parse(target)
	if err != nil {
		return Effect{Kind: EffectNone}
	}

	var targetTask *models.Task
	for _, t := range list {
		if t.ID == targetID {
			targetTask = t
			break
		}
	}
	if targetTask == nil {
		return Effect{Kind: EffectNone}
	}

	order := moveBefore(list, dragged.ID, targetID)
	if targetTask.Priority == dragged.Priority && targetTask.Status == dragged.Status {
		return Effect{Kind: EffectReorder, Order: order}
	}

	return Effect{
		Kind:     EffectAdoptTarget,
		Priority: targetTask.Priority,
		Status:   targetTask.Status,
		Order:    order,
	}
}

// moveBefore repositions the dragged task immediately before the target in
// the list order.
func moveBefore(list []*models.Task, draggedID, targetID uuid.UUID) []uuid.UUID {
	order := make([]uuid.UUID, 0, len(list)+1)
	for _, t := range list {
		if t.ID == draggedID {
			continue
		}
		if t.ID == targetID {
			order = append(order, draggedID)
		}
		order = append(order, t.ID)
	}
	return order
}
