package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerylCAtieno/docvault-api/internal/models"
	"github.com/BerylCAtieno/docvault-api/internal/repository"
	"github.com/BerylCAtieno/docvault-api/internal/sanitizer"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

type CategoryService interface {
	List(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	logger *utils.Logger
}

func NewCategoryService(repo repository.CategoryRepository, logger *utils.Logger) CategoryService {
	return &categoryService{
		repo:   repo,
		logger: logger,
	}
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", "error", err)
		return nil, utils.NewInternalError("Failed to list categories")
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = sanitizer.NormalizeVendor(name)
	if name == "" {
		return nil, utils.NewBadRequestError("Category name is required")
	}
	if strings.EqualFold(name, models.TypeOther) {
		return nil, utils.NewConflictError("Other is always available")
	}

	category := &models.Category{
		ID:        utils.GenerateID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.NewConflictError(fmt.Sprintf("Category %q already exists", name))
		}
		s.logger.Error("Failed to create category", "error", err, "name", name)
		return nil, utils.NewInternalError("Failed to create category")
	}

	s.logger.Info("Category created", "id", category.ID, "name", name)

	return category, nil
}

// Delete removes the category only. Documents keep their stored type and
// display as Other from then on.
func (s *categoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NewNotFoundError("Category not found")
		}
		s.logger.Error("Failed to delete category", "error", err, "id", id)
		return utils.NewInternalError("Failed to delete category")
	}

	s.logger.Info("Category deleted", "id", id)
	return nil
}
