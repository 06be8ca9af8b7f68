package tips

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
)

// TipDTO is the transport shape for a technical article.
type TipDTO struct {
	ID        uuid.UUID         `json:"id"`
	Category  enums.TipCategory `json:"category"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
}

// CreateTipRequest publishes a new article.
type CreateTipRequest struct {
	Category string `json:"category" validate:"required,oneof=Market Management Storage Strategy"`
	Title    string `json:"title" validate:"required,max=160"`
	Content  string `json:"content" validate:"required"`
}

// Repository exposes tip persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tips repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every article, newest first. Category filters when non-empty.
func (r *Repository) List(ctx context.Context, category enums.TipCategory) ([]models.Tip, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var rows []models.Tip
	err := query.Find(&rows).Error
	return rows, err
}

// Create inserts an article.
func (r *Repository) Create(ctx context.Context, tip *models.Tip) error {
	return r.db.WithContext(ctx).Create(tip).Error
}

// Service defines the behavior needed by the tips controller.
type Service interface {
	List(ctx context.Context, category string) ([]TipDTO, error)
	Create(ctx context.Context, req CreateTipRequest) (*TipDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a tips service around the repo.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tips repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, category string) ([]TipDTO, error) {
	var filter enums.TipCategory
	if category != "" {
		parsed, err := enums.ParseTipCategory(category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tip category")
		}
		filter = parsed
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tips")
	}
	out := make([]TipDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, TipDTO{
			ID:        row.ID,
			Category:  row.Category,
			Title:     row.Title,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req CreateTipRequest) (*TipDTO, error) {
	category, err := enums.ParseTipCategory(req.Category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tip category")
	}

	tip := &models.Tip{
		ID:       uuid.New(),
		Category: category,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := s.repo.Create(ctx, tip); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tip")
	}
	return &TipDTO{
		ID:        tip.ID,
		Category:  tip.Category,
		Title:     tip.Title,
		Content:   tip.Content,
		CreatedAt: tip.CreatedAt,
	}, nil
}
