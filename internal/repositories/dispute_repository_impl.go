package repositories

import (
	"context"
	"fmt"

	"carepay/internal/models"

	"gorm.io/gorm"
)

type disputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) DisputeRepository {
	return &disputeRepository{db: db}
}

func (r *disputeRepository) Create(dispute *models.Dispute) error {
	if err := r.db.Create(dispute).Error; err != nil {
		return fmt.Errorf("failed to create dispute: %w", err)
	}
	return nil
}

func (r *disputeRepository) GetByID(id uint, withNotes bool) (*models.Dispute, error) {
	query := r.db.
		Preload("Evidence", func(db *gorm.DB) *gorm.DB {
			return db.Order("uploaded_at ASC")
		}).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("performed_at ASC")
		})
	if withNotes {
		query = query.Preload("InternalNotes", func(db *gorm.DB) *gorm.DB {
			return db.Order("added_at ASC")
		})
	}

	var dispute models.Dispute
	if err := query.First(&dispute, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("failed to get dispute: %w", err)
	}
	return &dispute, nil
}

func (r *disputeRepository) Update(dispute *models.Dispute) error {
	// Save without touching the owned log slices; those only grow through
	// the Append methods.
	err := r.db.Omit("Evidence", "Timeline", "InternalNotes").Save(dispute).Error
	if err != nil {
		return fmt.Errorf("failed to update dispute: %w", err)
	}
	return nil
}

func (r *disputeRepository) AppendTimeline(entry *models.DisputeTimelineEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append timeline entry: %w", err)
	}
	return nil
}

func (r *disputeRepository) AppendEvidence(evidence *models.DisputeEvidence) error {
	if err := r.db.Create(evidence).Error; err != nil {
		return fmt.Errorf("failed to append evidence: %w", err)
	}
	return nil
}

func (r *disputeRepository) AppendInternalNote(note *models.DisputeInternalNote) error {
	if err := r.db.Create(note).Error; err != nil {
		return fmt.Errorf("failed to append internal note: %w", err)
	}
	return nil
}

func (r *disputeRepository) List(ctx context.Context, filter DisputeFilter) ([]models.Dispute, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Dispute{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.DisputeType != "" {
		query = query.Where("dispute_type = ?", filter.DisputeType)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.AssignedTo != 0 {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count disputes: %w", err)
	}

	var disputes []models.Dispute
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&disputes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list disputes: %w", err)
	}
	return disputes, total, nil
}

func (r *disputeRepository) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Dispute, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Dispute{}).
		Where("complainant_id = ? OR respondent_id = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count disputes: %w", err)
	}

	var disputes []models.Dispute
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&disputes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list disputes: %w", err)
	}
	return disputes, total, nil
}

func (r *disputeRepository) Stats(ctx context.Context) (*DisputeStats, error) {
	stats := &DisputeStats{
		ByStatus:   make(map[string]int64),
		ByPriority: make(map[string]int64),
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var statusBuckets []bucket
	err := r.db.WithContext(ctx).
		Model(&models.Dispute{}).
		Select("status as key, COUNT(*) as count").
		Group("status").
		Scan(&statusBuckets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate dispute statuses: %w", err)
	}
	for _, b := range statusBuckets {
		stats.ByStatus[b.Key] = b.Count
		stats.Total += b.Count
		if models.DisputeStatus(b.Key).Terminal() {
			stats.Closed += b.Count
		} else {
			stats.Open += b.Count
		}
	}

	var priorityBuckets []bucket
	err = r.db.WithContext(ctx).
		Model(&models.Dispute{}).
		Select("priority as key, COUNT(*) as count").
		Group("priority").
		Scan(&priorityBuckets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate dispute priorities: %w", err)
	}
	for _, b := range priorityBuckets {
		stats.ByPriority[b.Key] = b.Count
	}

	err = r.db.WithContext(ctx).
		Model(&models.Dispute{}).
		Where("status = ?", models.DisputeRefundCompleted).
		Select("COALESCE(SUM(decision_refund_amount), 0)").
		Scan(&stats.RefundedTotal).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum refunded amounts: %w", err)
	}

	return stats, nil
}
