package sync

import (
	"context"
	"fmt"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

// SyncCategories returns the user's categories with type and color resolved,
// serving the cache when its token matches the remote one.
func (s *Service) SyncCategories(ctx context.Context) ([]model.CategoryWithType, error) {
	snap := s.loadSnapshot(ctx)
	local := snap.CategoriesToken()

	if local != "" && snap.Categories != nil {
		fresh, err := s.isFresh(ctx, model.PartitionCategories, local)
		if err != nil {
			return nil, err
		}
		if fresh {
			s.logger.Debug("Cache hit", "partition", model.PartitionCategories)
			return snap.Categories, nil
		}
	}

	s.logger.Debug("Cache miss", "partition", model.PartitionCategories)
	return s.fetchCategories(ctx, "")
}

// fetchCategories reads the category partition and writes it through to the
// cache under token, or under the current remote token when token is empty.
func (s *Service) fetchCategories(ctx context.Context, token string) ([]model.CategoryWithType, error) {
	categories, err := s.store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	typed, err := model.WithTypes(categories)
	if err != nil {
		return nil, err
	}

	if token == "" {
		if token, err = s.ensureToken(ctx, model.PartitionCategories); err != nil {
			return nil, err
		}
	}

	if err := s.cache.UpdateCategories(ctx, typed, token); err != nil {
		return nil, err
	}

	s.logger.Info("Synced categories", "count", len(typed))
	return typed, nil
}

// refreshCategories mints a new categories token and refetches the partition.
func (s *Service) refreshCategories(ctx context.Context) error {
	token, err := s.bumpToken(ctx, model.PartitionCategories)
	if err != nil {
		return err
	}
	_, err = s.fetchCategories(ctx, token)
	return err
}

// CreateCategory writes a new category. An empty ID is generated.
func (s *Service) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	if c.ID == "" {
		c.ID = s.opts.newID()
	}
	c.UserID = s.userID
	if err := model.ValidateCategory(c); err != nil {
		return nil, err
	}

	if err := s.checkHierarchy(ctx, c); err != nil {
		return nil, err
	}

	if err := s.store.SetCategory(ctx, c, false); err != nil {
		return nil, err
	}
	if err := s.refreshCategories(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Created category", "category_id", c.ID, "title", c.Title)
	return &c, nil
}

// UpdateCategory merges c into the stored category.
func (s *Service) UpdateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	c.UserID = s.userID
	if err := model.ValidateCategory(c); err != nil {
		return nil, err
	}

	existing, err := s.store.GetCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("category %s: %w", c.ID, common.ErrNotFound)
	}
	if c.ParentCategoryID == "" {
		c.ParentCategoryID = existing.ParentCategoryID
	}
	if err := s.checkHierarchy(ctx, c); err != nil {
		return nil, err
	}

	if err := s.store.SetCategory(ctx, c, true); err != nil {
		return nil, err
	}
	if err := s.refreshCategories(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Updated category", "category_id", c.ID)
	return &c, nil
}

// DeleteCategory removes a category. The three base categories cannot be deleted.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if model.IsBaseCategory(id) {
		return common.NewUserError(fmt.Sprintf("category %s is a base category and cannot be deleted", id), nil)
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	if err := s.refreshCategories(ctx); err != nil {
		return err
	}

	s.logger.Info("Deleted category", "category_id", id)
	return nil
}

// EnsureBaseCategories creates any of the three base categories that are
// missing remotely.
func (s *Service) EnsureBaseCategories(ctx context.Context) error {
	created := 0
	for _, base := range model.BaseCategories(s.userID) {
		existing, err := s.store.GetCategory(ctx, base.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.store.SetCategory(ctx, base, false); err != nil {
			return err
		}
		created++
	}

	if created == 0 {
		return nil
	}

	s.logger.Info("Created base categories", "count", created)
	return s.refreshCategories(ctx)
}

// checkHierarchy rejects a write that would close a loop in the parent chain.
func (s *Service) checkHierarchy(ctx context.Context, c model.Category) error {
	categories, err := s.store.GetCategories(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range categories {
		if categories[i].ID == c.ID {
			categories[i] = c
			replaced = true
		}
	}
	if !replaced {
		categories = append(categories, c)
	}

	_, err = model.WithTypes(categories)
	return err
}
