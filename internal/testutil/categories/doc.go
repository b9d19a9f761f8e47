// Package categories builds category trees for tests and seeds them into a
// remote document store.
//
// Trees are declared with a fluent builder on top of the three base
// categories:
//
//	cats, err := categories.NewBuilder(t, "user-1").
//		WithFixture(categories.FixtureHousehold).
//		WithCategory(categories.Spec{ID: "pets", Title: "Pets", Parent: model.ExpensesCategoryID}).
//		Seed(ctx, docs)
//
// Fixtures cover the shapes the sync tests need: a household tree with
// colored and uncolored branches, and a deliberately cyclic tree.
package categories
