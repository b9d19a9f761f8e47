package collections

import (
	"context"

	"github.com/Veraticus/the-spice-must-sync/internal/docstore"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// GetCategories returns every category of the user.
func (s *Store) GetCategories(ctx context.Context) ([]model.Category, error) {
	docs, err := s.docs.List(ctx, s.CategoriesPath())
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Category](docs, categoriesCollection)
}

// GetCategory returns the category with id, or nil when it does not exist.
func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	doc, err := s.docs.Get(ctx, docstore.Join(s.CategoriesPath(), id))
	if err != nil || doc == nil {
		return nil, err
	}
	var c model.Category
	if err := docstore.FromDocument(doc, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetCategory writes c. With merge, fields absent from c's encoding are kept.
func (s *Store) SetCategory(ctx context.Context, c model.Category, merge bool) error {
	var opts []service.SetOption
	if merge {
		opts = append(opts, service.WithMerge())
	}
	return s.put(ctx, docstore.Join(s.CategoriesPath(), c.ID), c, opts...)
}

// DeleteCategory removes the category with id.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, docstore.Join(s.CategoriesPath(), id))
}
