package repositories

import (
	"context"

	"carepay/internal/models"
)

// DisputeFilter narrows admin dispute listings. Search matches title and
// description, case insensitively.
type DisputeFilter struct {
	Status      models.DisputeStatus
	Priority    string
	DisputeType string
	Severity    string
	AssignedTo  uint
	Search      string
	Limit       int
	Offset      int
}

// DisputeStats is the admin dashboard aggregate.
type DisputeStats struct {
	Total         int64            `json:"total"`
	Open          int64            `json:"open"`
	Closed        int64            `json:"closed"`
	ByStatus      map[string]int64 `json:"by_status"`
	ByPriority    map[string]int64 `json:"by_priority"`
	RefundedTotal int64            `json:"refunded_total"`
}

// DisputeRepository persists disputes and their insert-only logs. Timeline,
// evidence and internal note rows are append-only; nothing updates or deletes
// them.
type DisputeRepository interface {
	Create(dispute *models.Dispute) error
	// GetByID loads the dispute with evidence and timeline; internal notes
	// are loaded only when withNotes is set.
	GetByID(id uint, withNotes bool) (*models.Dispute, error)
	Update(dispute *models.Dispute) error

	AppendTimeline(entry *models.DisputeTimelineEntry) error
	AppendEvidence(evidence *models.DisputeEvidence) error
	AppendInternalNote(note *models.DisputeInternalNote) error

	List(ctx context.Context, filter DisputeFilter) ([]models.Dispute, int64, error)
	ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Dispute, int64, error)
	Stats(ctx context.Context) (*DisputeStats, error)
}
