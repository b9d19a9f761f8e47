package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
)

func household() []Category {
	cats := BaseCategories("u1")
	return append(cats,
		Category{ID: "food", Title: "Food", ParentCategoryID: ExpensesCategoryID, Color: "#ffaa00"},
		Category{ID: "groceries", Title: "Groceries", ParentCategoryID: "food"},
		Category{ID: "salary", Title: "Salary", ParentCategoryID: IncomesCategoryID},
		Category{ID: "side", Title: "Side gig", ParentCategoryID: "salary", Type: CategoryTypeInvestment},
		Category{ID: "orphan", Title: "Orphan", ParentCategoryID: "deleted"},
	)
}

func TestDetermineType(t *testing.T) {
	cats := household()
	byID := indexCategories(cats)

	tests := []struct {
		id   string
		want CategoryType
	}{
		{ExpensesCategoryID, CategoryTypeExpense},
		{IncomesCategoryID, CategoryTypeIncome},
		{InvestmentsCategoryID, CategoryTypeInvestment},
		{"groceries", CategoryTypeExpense},
		{"salary", CategoryTypeIncome},
		{"side", CategoryTypeInvestment},
		{"orphan", CategoryTypeExpense},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := DetermineType(byID[tt.id], cats)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetermineColor(t *testing.T) {
	cats := household()
	byID := indexCategories(cats)

	got, err := DetermineColor(byID["groceries"], cats)
	require.NoError(t, err)
	assert.Equal(t, "#ffaa00", got)

	got, err = DetermineColor(byID["side"], cats)
	require.NoError(t, err)
	assert.Equal(t, "#168d3a", got)

	got, err = DetermineColor(byID["orphan"], cats)
	require.NoError(t, err)
	assert.Equal(t, DefaultCategoryColor, got)
}

func TestWithTypes_Cycle(t *testing.T) {
	cats := []Category{
		{ID: "a", ParentCategoryID: "b"},
		{ID: "b", ParentCategoryID: "c"},
		{ID: "c", ParentCategoryID: "a"},
	}

	out, err := WithTypes(cats)
	require.ErrorIs(t, err, common.ErrCycleDetected)
	assert.Nil(t, out)

	var cycle *common.CycleDetectedError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycle.Chain)
}

func TestWithTypes_StopsAtNearestTypedAncestor(t *testing.T) {
	cats := []Category{
		{ID: "leaf", ParentCategoryID: "typed"},
		{ID: "typed", ParentCategoryID: "x", Type: CategoryTypeIncome, Color: "#111111"},
	}
	out, err := WithTypes(cats)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, CategoryTypeIncome, out[0].Type)
	assert.Equal(t, "#111111", out[0].Color)
}

func TestBaseCategories(t *testing.T) {
	bases := BaseCategories("u1")
	require.Len(t, bases, 3)
	for _, c := range bases {
		assert.True(t, IsBaseCategory(c.ID))
		assert.Equal(t, "u1", c.UserID)
		assert.NotEmpty(t, c.Color)
	}
	assert.False(t, IsBaseCategory("food"))
}

func TestBuildCategoryTree(t *testing.T) {
	roots := BuildCategoryTree(household())

	titles := make([]string, 0, len(roots))
	for _, r := range roots {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"Expenses", "Incomes", "Investments"}, titles)

	expenses := roots[0]
	require.Len(t, expenses.Children, 1)
	assert.Equal(t, "food", expenses.Children[0].ID)
	require.Len(t, expenses.Children[0].Children, 1)
	assert.Equal(t, "groceries", expenses.Children[0].Children[0].ID)
}

func TestCategoryTypeString(t *testing.T) {
	assert.Equal(t, "expense", CategoryTypeExpense.String())
	assert.Equal(t, "income", CategoryTypeIncome.String())
	assert.Equal(t, "investment", CategoryTypeInvestment.String())
	assert.Equal(t, "CategoryType(9)", CategoryType(9).String())
}

func TestWithTypes_ResolvedValuesSurviveJSON(t *testing.T) {
	budget := 250.0
	cats := household()
	cats = append(cats, Category{ID: "dining", Title: "Dining", ParentCategoryID: "food", Budget: &budget, Icon: "fork", Active: true})

	typed, err := WithTypes(cats)
	require.NoError(t, err)

	raw, err := json.Marshal(typed)
	require.NoError(t, err)
	var decoded []CategoryWithType
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, typed, decoded)

	byID := make(map[string]CategoryWithType, len(decoded))
	for _, c := range decoded {
		byID[c.ID] = c
	}
	assert.Equal(t, "#ffaa00", byID["food"].Color)
	assert.Equal(t, "#ffaa00", byID["dining"].Color)
	assert.Equal(t, CategoryTypeExpense, byID["dining"].Type)
	assert.Equal(t, CategoryTypeInvestment, byID["side"].Type)
}

func TestWithTypes_LeavesInputUntouched(t *testing.T) {
	cats := []Category{
		{ID: "root", Type: CategoryTypeIncome, Color: "#111111"},
		{ID: "leaf", ParentCategoryID: "root"},
	}
	_, err := WithTypes(cats)
	require.NoError(t, err)
	assert.Empty(t, cats[1].Color)
	assert.Zero(t, cats[1].Type)
}
