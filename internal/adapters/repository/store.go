// Package repository keeps analysis sessions in memory.
package repository

import (
	"context"
	"time"

	"github.com/okian/engage/internal/domain/analytics"
	"github.com/okian/engage/internal/domain/types"
)

// Session is the state of one user's analysis: the loaded dataset, the current
// settings, the latest charts and the charts saved to the workbook.
type Session struct {
	ID        string
	Engine    *analytics.Engine
	Settings  analytics.Settings
	Charts    []types.Chart
	Workbook  []types.WorkbookEntry
	CreatedAt time.Time
	UpdatedAt time.Time
}

// clone copies the slices so callers never share them with the store.
func (s Session) clone() Session {
	s.Charts = append([]types.Chart(nil), s.Charts...)
	s.Workbook = append([]types.WorkbookEntry(nil), s.Workbook...)
	s.Settings.TrendCategories = append([]string(nil), s.Settings.TrendCategories...)
	s.Settings.Cohort.Majors = append([]string(nil), s.Settings.Cohort.Majors...)
	return s
}

// Store provides access to sessions.
type Store interface {
	// Create opens a session over engine with the given settings.
	// Returns ErrTooManySessions when the store is full.
	Create(ctx context.Context, engine *analytics.Engine, settings analytics.Settings) (Session, error)

	// Get returns a copy of the session.
	// Returns ErrSessionNotFound if the id is unknown.
	Get(ctx context.Context, id string) (Session, error)

	// Update applies fn to a copy of the session and stores the result when fn succeeds.
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)

	// Delete drops a session.
	Delete(ctx context.Context, id string) error

	// Count returns the number of open sessions.
	Count(ctx context.Context) int
}
