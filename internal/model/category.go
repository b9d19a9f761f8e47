// Package model defines the documents stored in the remote store and the local cache.
package model

import (
	"fmt"
	"slices"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
)

// CategoryType classifies a category tree as expense, income or investment.
type CategoryType int

const (
	// CategoryTypeExpense is the default type for categories under Expenses.
	CategoryTypeExpense CategoryType = 1
	// CategoryTypeIncome is the type of categories under Incomes.
	CategoryTypeIncome CategoryType = 2
	// CategoryTypeInvestment is the type of categories under Investments.
	CategoryTypeInvestment CategoryType = 3
)

// DefaultCategoryColor is used when no category in the parent chain has a color.
const DefaultCategoryColor = "#808080"

func (t CategoryType) String() string {
	switch t {
	case CategoryTypeExpense:
		return "expense"
	case CategoryTypeIncome:
		return "income"
	case CategoryTypeInvestment:
		return "investment"
	default:
		return fmt.Sprintf("CategoryType(%d)", int(t))
	}
}

// Category is a node of the user's category tree, linked to its parent by ParentCategoryID.
type Category struct {
	Budget           *float64     `json:"budget,omitempty"`
	ID               string       `json:"id" validate:"required"`
	Title            string       `json:"title"`
	UserID           string       `json:"userId"`
	Color            string       `json:"color,omitempty"`
	Icon             string       `json:"icon,omitempty"`
	ParentCategoryID string       `json:"parentCategoryId,omitempty"`
	Type             CategoryType `json:"type,omitempty" validate:"omitempty,oneof=1 2 3"`
	ExcludeFromStat  bool         `json:"excludeFromStat,omitempty"`
	Active           bool         `json:"active"`
}

// CategoryWithType is a category whose Type and Color hold the values
// resolved through its parent chain instead of its own, possibly empty, ones.
type CategoryWithType struct {
	Category
}

// Base category IDs. These three roots are created for every user.
const (
	ExpensesCategoryID    = "533d4482-df54-47e5-b8d8-000000000001"
	IncomesCategoryID     = "533d4482-df54-47e5-b8d8-000000000002"
	InvestmentsCategoryID = "533d4482-df54-47e5-b8d8-000000000003"
)

var baseCategoryTypes = map[string]CategoryType{
	ExpensesCategoryID:    CategoryTypeExpense,
	IncomesCategoryID:     CategoryTypeIncome,
	InvestmentsCategoryID: CategoryTypeInvestment,
}

// BaseCategories returns the three root categories owned by userID.
func BaseCategories(userID string) []Category {
	return []Category{
		{ID: ExpensesCategoryID, Title: "Expenses", Color: "#f99595", Icon: "cart-o", UserID: userID, Active: true},
		{ID: IncomesCategoryID, Title: "Incomes", Color: "#168d3a", Icon: "paid", UserID: userID, Active: true},
		{ID: InvestmentsCategoryID, Title: "Investments", Color: "#0906a7", Icon: "balance-o", UserID: userID, Active: true},
	}
}

// IsBaseCategory reports whether id is one of the three root categories.
func IsBaseCategory(id string) bool {
	_, ok := baseCategoryTypes[id]
	return ok
}

// ownType returns the type a category defines itself, if any.
func ownType(c Category) (CategoryType, bool) {
	if t, ok := baseCategoryTypes[c.ID]; ok {
		return t, true
	}
	if c.Type != 0 {
		return c.Type, true
	}
	return 0, false
}

// walkParents visits the category and then each ancestor until visit returns
// true or the chain ends. A repeated ID yields a CycleDetectedError.
func walkParents(c Category, byID map[string]Category, visit func(Category) bool) error {
	seen := make(map[string]bool)
	var chain []string
	current := c
	for {
		if seen[current.ID] {
			return &common.CycleDetectedError{Chain: append(chain, current.ID)}
		}
		seen[current.ID] = true
		chain = append(chain, current.ID)

		if visit(current) {
			return nil
		}
		if current.ParentCategoryID == "" {
			return nil
		}
		parent, ok := byID[current.ParentCategoryID]
		if !ok {
			return nil
		}
		current = parent
	}
}

func indexCategories(categories []Category) map[string]Category {
	byID := make(map[string]Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return byID
}

// DetermineType resolves the type of c from itself or its nearest typed ancestor.
func DetermineType(c Category, categories []Category) (CategoryType, error) {
	return determineType(c, indexCategories(categories))
}

func determineType(c Category, byID map[string]Category) (CategoryType, error) {
	result := CategoryTypeExpense
	err := walkParents(c, byID, func(node Category) bool {
		if t, ok := ownType(node); ok {
			result = t
			return true
		}
		return false
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// DetermineColor resolves the display color of c from itself or its nearest colored ancestor.
func DetermineColor(c Category, categories []Category) (string, error) {
	return determineColor(c, indexCategories(categories))
}

func determineColor(c Category, byID map[string]Category) (string, error) {
	result := DefaultCategoryColor
	err := walkParents(c, byID, func(node Category) bool {
		if node.Color != "" {
			result = node.Color
			return true
		}
		return false
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// WithTypes resolves type and color for every category. It fails on the first
// cycle found, so a malformed tree never yields a partial result.
func WithTypes(categories []Category) ([]CategoryWithType, error) {
	byID := indexCategories(categories)
	out := make([]CategoryWithType, 0, len(categories))
	for _, c := range categories {
		t, err := determineType(c, byID)
		if err != nil {
			return nil, err
		}
		color, err := determineColor(c, byID)
		if err != nil {
			return nil, err
		}
		c.Type = t
		c.Color = color
		out = append(out, CategoryWithType{Category: c})
	}
	return out, nil
}

// CategoryNode is a category with its children, used for tree displays.
type CategoryNode struct {
	ID       string
	Title    string
	Children []*CategoryNode
}

// BuildCategoryTree arranges categories into root nodes. Categories whose parent
// is missing from the list are dropped, as are nodes that sit on a parent cycle.
func BuildCategoryTree(categories []Category) []*CategoryNode {
	nodes := make(map[string]*CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &CategoryNode{ID: c.ID, Title: c.Title}
	}

	var roots []*CategoryNode
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentCategoryID == "" {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[c.ParentCategoryID]; ok && parent != node {
			parent.Children = append(parent.Children, node)
		}
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*CategoryNode) {
	slices.SortFunc(nodes, func(a, b *CategoryNode) int {
		switch {
		case a.Title < b.Title:
			return -1
		case a.Title > b.Title:
			return 1
		default:
			return 0
		}
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}
