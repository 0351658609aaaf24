package models

// Category represents a fixed expense category.
type Category string

const (
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryEntertainment  Category = "entertainment"
	CategoryShopping       Category = "shopping"
	CategoryUtilities      Category = "utilities"
	CategoryHealthcare     Category = "healthcare"
	CategoryEducation      Category = "education"
	CategoryTravel         Category = "travel"
	CategorySubscriptions  Category = "subscriptions"
	CategoryGroceries      Category = "groceries"
	CategoryRent           Category = "rent"
	CategoryOther          Category = "other"

	// CategoryTotal is the sentinel for a whole-month budget. It is valid
	// for budgets only, never for expenses.
	CategoryTotal Category = "total"
)

// ExpenseCategories lists every category an expense may use.
var ExpenseCategories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryShopping,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryEducation,
	CategoryTravel,
	CategorySubscriptions,
	CategoryGroceries,
	CategoryRent,
	CategoryOther,
}

// IsValidExpenseCategory reports whether c is a valid category for an expense.
func (c Category) IsValidExpenseCategory() bool {
	for _, cat := range ExpenseCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// IsValidBudgetCategory reports whether c is a valid category for a budget.
// Budgets additionally accept the "total" sentinel.
func (c Category) IsValidBudgetCategory() bool {
	return c == CategoryTotal || c.IsValidExpenseCategory()
}
