package services

import (
	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

// TaskScope restricts which task rows a caller may see or mutate. It is the
// single authorization primitive in the system: every store and analytics
// path must compose it into its query, and single-row access checks go
// through Allows. Admins get an unrestricted scope.
type TaskScope struct {
	restricted bool
	creatorID  uint
}

// ScopeFor derives the caller's task scope from their role.
func ScopeFor(caller models.Caller) TaskScope {
	if caller.IsAdmin() {
		return TaskScope{}
	}
	return TaskScope{restricted: true, creatorID: caller.ID}
}

// Apply narrows a query with the scope predicate. Unrestricted scopes return
// the query unchanged.
func (s TaskScope) Apply(db *gorm.DB) *gorm.DB {
	if !s.restricted {
		return db
	}
	return db.Where("tasks.creator_id = ?", s.creatorID)
}

// JoinCondition returns the predicate as a SQL fragment for use inside a
// LEFT JOIN ON clause, where a WHERE would incorrectly drop unmatched catalog
// rows. The fragment starts with " AND" so it can be appended to a join.
func (s TaskScope) JoinCondition() (string, []interface{}) {
	if !s.restricted {
		return "", nil
	}
	return " AND tasks.creator_id = ?", []interface{}{s.creatorID}
}

// Unrestricted reports whether the scope imposes no predicate at all, which
// is only true for admins. Admin-only operations key off this.
func (s TaskScope) Unrestricted() bool {
	return !s.restricted
}

// Allows reports whether a single already-loaded task is inside the scope.
func (s TaskScope) Allows(task models.Task) bool {
	return !s.restricted || task.CreatorID == s.creatorID
}
