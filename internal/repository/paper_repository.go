package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"paperarchive/internal/model"
)

// PaperFilter narrows a catalog query. Nil fields are not filtered.
type PaperFilter struct {
	Year          *int
	Semester      *int
	Branch        *model.Branch
	QuestionType  *model.QuestionType
	TitleContains string
}

type PaperRepository struct {
	db *gorm.DB
}

func NewPaperRepository(db *gorm.DB) *PaperRepository {
	return &PaperRepository{db: db}
}

func (r *PaperRepository) Create(ctx context.Context, paper *model.QuestionPaper) error {
	if err := r.db.WithContext(ctx).Create(paper).Error; err != nil {
		return fmt.Errorf("create question paper failed: %w", err)
	}
	return nil
}

func (r *PaperRepository) GetByID(ctx context.Context, id string) (*model.QuestionPaper, error) {
	var paper model.QuestionPaper
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&paper).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get question paper failed: %w", err)
	}
	return &paper, nil
}

// List orders by curriculum position: year, then semester, then newest upload.
func (r *PaperRepository) List(ctx context.Context, filter PaperFilter) ([]model.QuestionPaper, error) {
	var papers []model.QuestionPaper
	q := applyFilter(r.db.WithContext(ctx), filter)
	if err := q.Order("year DESC").Order("semester DESC").Order("uploaded_at DESC").Find(&papers).Error; err != nil {
		return nil, fmt.Errorf("list question papers failed: %w", err)
	}
	return papers, nil
}

// Search orders by newest upload only.
func (r *PaperRepository) Search(ctx context.Context, filter PaperFilter) ([]model.QuestionPaper, error) {
	var papers []model.QuestionPaper
	q := applyFilter(r.db.WithContext(ctx), filter)
	if err := q.Order("uploaded_at DESC").Find(&papers).Error; err != nil {
		return nil, fmt.Errorf("search question papers failed: %w", err)
	}
	return papers, nil
}

// UpdateDescription rewrites the descriptive columns and updated_at. File
// columns are excluded from the statement.
func (r *PaperRepository) UpdateDescription(ctx context.Context, paper *model.QuestionPaper) error {
	err := r.db.WithContext(ctx).
		Model(&model.QuestionPaper{}).
		Where("id = ?", paper.ID).
		Select("title", "year", "semester", "branch", "question_type", "updated_at").
		Updates(map[string]any{
			"title":         paper.Title,
			"year":          paper.Year,
			"semester":      paper.Semester,
			"branch":        paper.Branch,
			"question_type": paper.QuestionType,
			"updated_at":    paper.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("update question paper failed: %w", err)
	}
	return nil
}

// DeleteByID reports whether a row was removed.
func (r *PaperRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.QuestionPaper{})
	if res.Error != nil {
		return false, fmt.Errorf("delete question paper failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func applyFilter(q *gorm.DB, filter PaperFilter) *gorm.DB {
	if filter.Year != nil {
		q = q.Where("year = ?", *filter.Year)
	}
	if filter.Semester != nil {
		q = q.Where("semester = ?", *filter.Semester)
	}
	if filter.Branch != nil {
		q = q.Where("branch = ?", *filter.Branch)
	}
	if filter.QuestionType != nil {
		q = q.Where("question_type = ?", *filter.QuestionType)
	}
	if text := strings.TrimSpace(filter.TitleContains); text != "" {
		// fold both sides in SQL; Go and the database disagree outside ASCII
		q = q.Where("LOWER(title) LIKE LOWER(?) ESCAPE '!'", "%"+escapeLike(text)+"%")
	}
	return q
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
