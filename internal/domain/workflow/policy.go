package workflow

import (
	"time"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

const (
	// DefaultEditWindow is how long an author may edit their own status update
	DefaultEditWindow = time.Hour

	// DefaultUndoWindow is how long an author may delete their own status update
	DefaultUndoWindow = 5 * time.Minute
)

// HistoryPolicy holds the time boxes for mutating status history entries
type HistoryPolicy struct {
	EditWindow time.Duration
	UndoWindow time.Duration
}

// DefaultHistoryPolicy returns the standard one hour edit and five minute undo windows
func DefaultHistoryPolicy() HistoryPolicy {
	return HistoryPolicy{
		EditWindow: DefaultEditWindow,
		UndoWindow: DefaultUndoWindow,
	}
}

// EditableUntil returns the edit deadline for an update created at t
func (p HistoryPolicy) EditableUntil(t time.Time) time.Time {
	return t.Add(p.EditWindow)
}

// CanEdit reports whether the actor may change the update at time now
func (p HistoryPolicy) CanEdit(update *entity.StatusUpdate, actor *entity.User, now time.Time) bool {
	if update == nil || actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return update.UpdatedBy == actor.Name && !now.After(update.EditableUntil)
}

// CanUndo reports whether the actor may delete the update at time now
func (p HistoryPolicy) CanUndo(update *entity.StatusUpdate, actor *entity.User, now time.Time) bool {
	if update == nil || actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return update.UpdatedBy == actor.Name && now.Sub(update.Timestamp) <= p.UndoWindow
}
