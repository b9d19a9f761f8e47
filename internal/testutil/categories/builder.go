package categories

import (
	"context"
	"fmt"
	"testing"

	"github.com/Veraticus/the-spice-must-sync/internal/collections"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// Spec declares one category of a test tree.
type Spec struct {
	ID     string
	Title  string
	Parent string
	Color  string
	Type   model.CategoryType
}

// Builder provides a fluent interface for constructing test category trees.
type Builder interface {
	// WithoutBaseCategories drops the three base categories from the tree.
	WithoutBaseCategories() Builder
	// WithCategory adds a single category.
	WithCategory(spec Spec) Builder
	// WithFixture adds every category of a fixture.
	WithFixture(fixture Fixture) Builder
	// Build returns the categories without writing them anywhere.
	Build() []model.Category
	// Seed writes the categories to docs and returns them.
	Seed(ctx context.Context, docs service.DocumentStore) ([]model.Category, error)
}

type builder struct {
	t      *testing.T
	userID string
	specs  []Spec
	noBase bool
}

// NewBuilder creates a builder for userID's tree.
func NewBuilder(t *testing.T, userID string) Builder {
	t.Helper()
	return &builder{t: t, userID: userID}
}

func (b *builder) WithoutBaseCategories() Builder {
	b.noBase = true
	return b
}

func (b *builder) WithCategory(spec Spec) Builder {
	b.t.Helper()
	if spec.ID == "" {
		b.t.Fatalf("category spec %q has no ID", spec.Title)
	}
	b.specs = append(b.specs, spec)
	return b
}

func (b *builder) WithFixture(fixture Fixture) Builder {
	b.specs = append(b.specs, fixture.Specs()...)
	return b
}

func (b *builder) Build() []model.Category {
	var out []model.Category
	if !b.noBase {
		out = append(out, model.BaseCategories(b.userID)...)
	}

	seen := make(map[string]bool, len(out)+len(b.specs))
	for _, c := range out {
		seen[c.ID] = true
	}
	for _, spec := range b.specs {
		if seen[spec.ID] {
			b.t.Fatalf("duplicate category %q in test tree", spec.ID)
		}
		seen[spec.ID] = true
		out = append(out, model.Category{
			ID:               spec.ID,
			Title:            spec.Title,
			ParentCategoryID: spec.Parent,
			Color:            spec.Color,
			Type:             spec.Type,
			UserID:           b.userID,
			Active:           true,
		})
	}
	return out
}

func (b *builder) Seed(ctx context.Context, docs service.DocumentStore) ([]model.Category, error) {
	cats := b.Build()
	store := collections.New(docs, b.userID, nil)
	for _, c := range cats {
		if err := store.SetCategory(ctx, c, false); err != nil {
			return nil, fmt.Errorf("failed to seed category %q: %w", c.ID, err)
		}
	}
	return cats, nil
}
