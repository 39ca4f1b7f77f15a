// Package history is the append-only log of generated artifacts. Rows are
// created per generation and hard-deleted by their owner; there is no update
// path.
package history

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/salesreport/internal/models"
)

var (
	ErrMissingFields = errors.New("email and output are required")
	ErrNotFound      = errors.New("history entry not found")
)

const defaultPageSize = 20

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Save appends one entry. Format and type fall back to their column defaults
// when empty.
func (s *Service) Save(ctx context.Context, entry *models.History) error {
	entry.Email = strings.ToLower(strings.TrimSpace(entry.Email))
	if entry.Email == "" || entry.Output == "" {
		return ErrMissingFields
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}
	s.log.Debugw("history saved", "email", entry.Email, "type", entry.Type, "id", entry.ID)
	return nil
}

// List returns the user's entries newest first together with the total row
// count, so clients can paginate. A non-positive limit gets the default page
// size; type filters when set.
func (s *Service) List(ctx context.Context, email string, artifactType string, limit, offset int) ([]models.History, int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	q := s.db.WithContext(ctx).Model(&models.History{}).Where("email = ?", email)
	if artifactType != "" {
		q = q.Where("type = ?", artifactType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.History
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Delete removes one entry. The email guard keeps users from deleting each
// other's rows; a non-matching pair reports ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res := s.db.WithContext(ctx).
		Where("id = ? AND email = ?", id, email).
		Delete(&models.History{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.log.Infow("history deleted", "email", email, "id", id)
	return nil
}
