package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"paperarchive/internal/model"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *model.PaperAuditEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create audit entry failed: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByPaperID(ctx context.Context, paperID string) ([]model.PaperAuditEntry, error) {
	var entries []model.PaperAuditEntry
	if err := r.db.WithContext(ctx).Where("paper_id = ?", paperID).Order("occurred_at ASC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list audit entries failed: %w", err)
	}
	return entries, nil
}
