package categories

import "github.com/Veraticus/the-spice-must-sync/internal/model"

// Fixture IDs.
const (
	FoodID      = "food"
	GroceriesID = "groceries"
	DiningID    = "dining"
	SalaryID    = "salary"
	BonusID     = "bonus"
	ETFID       = "etf"

	LoopAID = "loop-a"
	LoopBID = "loop-b"
)

// FoodColor is the own color of the Food category in FixtureHousehold.
const FoodColor = "#ffaa00"

// Fixture is a predefined set of categories.
type Fixture interface {
	// Name returns the fixture's descriptive name.
	Name() string
	// Specs returns the categories of the fixture, parents before children.
	Specs() []Spec
}

type fixture struct {
	name  string
	specs []Spec
}

func (f *fixture) Name() string  { return f.name }
func (f *fixture) Specs() []Spec { return f.specs }

var (
	// FixtureHousehold is a small tree under every base category. Food has an
	// own color that Groceries inherits; Dining sits under Food with its own
	// type override left unset.
	FixtureHousehold Fixture = &fixture{
		name: "Household",
		specs: []Spec{
			{ID: FoodID, Title: "Food", Parent: model.ExpensesCategoryID, Color: FoodColor},
			{ID: GroceriesID, Title: "Groceries", Parent: FoodID},
			{ID: DiningID, Title: "Dining", Parent: FoodID},
			{ID: SalaryID, Title: "Salary", Parent: model.IncomesCategoryID},
			{ID: BonusID, Title: "Bonus", Parent: SalaryID},
			{ID: ETFID, Title: "ETF", Parent: model.InvestmentsCategoryID},
		},
	}

	// FixtureCycle contains two categories that are each other's parent.
	FixtureCycle Fixture = &fixture{
		name: "Cycle",
		specs: []Spec{
			{ID: LoopAID, Title: "Loop A", Parent: LoopBID},
			{ID: LoopBID, Title: "Loop B", Parent: LoopAID},
		},
	}
)
