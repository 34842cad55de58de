package database

import "github.com/prose66/InvestigationWorkbench/internal/model"

// TimelineRow is one exported event joined to its query-run metadata.
type TimelineRow struct {
	Event      *model.Event
	QueryName  string
	ExecutedAt string
	TimeStart  string
	TimeEnd    string
}

// Store defines every database operation the workbench needs, so the
// command layer depends on the interface rather than a concrete
// backend.
type Store interface {
	// Cases
	CreateCase(caseID, title, createdAt string) error

	// Query runs
	CreateRun(run *model.QueryRun) error
	GetRun(caseID, runID string) (*model.QueryRun, error)
	FindRunByHash(caseID, fileHash string) (*model.QueryRun, error)
	ListPendingRuns(caseID string) ([]*model.QueryRun, error)
	MarkRunIngested(caseID, runID string, rowCount int, ingestedAt string) error

	// Events and overflow fields
	InsertEvents(events []*model.Event) (int, error)
	StageExtras(fields []*model.ExtraField) error
	ResolveExtras(caseID, runID string) error
	CountEvents(caseID string) (int64, error)
	ListExtras(caseID string) ([]*model.ExtraField, error)

	// Export
	QueryTimeline(caseID string) ([]*TimelineRow, error)

	// Lifecycle
	Close() error
	Path() string
}
