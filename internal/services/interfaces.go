package services

import (
	"time"

	"spendwise/internal/models"
	"spendwise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpdateProfile(userID uint, name, email string) (*models.User, error)
	UpdatePassword(userID uint, currentPassword, newPassword string) error
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	Category  *models.Category
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount *float64
	MaxAmount *float64
	Search    string
	Sort      string
}

// ExpenseUpdate holds the updatable fields of an expense. Nil pointers leave
// the current value untouched.
type ExpenseUpdate struct {
	Amount        *float64
	Category      *models.Category
	Description   *string
	Date          *time.Time
	PaymentMethod *models.PaymentMethod
	Notes         *string
	IsRecurring   *bool
}

// CategoryTotal is the per-category aggregation result: the sum of expense
// amounts and the number of transactions within a date range.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Total    float64         `json:"total"`
	Count    int64           `json:"count"`
}

// MonthlyTotal is the per-month aggregation result for one calendar year.
type MonthlyTotal struct {
	Month int     `json:"month"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// Period identifies one calendar month.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// MonthOverMonth compares the current month's spending with the previous one.
type MonthOverMonth struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// ExpenseSummary holds headline numbers for the stats endpoint.
type ExpenseSummary struct {
	TotalSpent       float64        `json:"totalSpent"`
	TransactionCount int64          `json:"transactionCount"`
	AvgExpense       float64        `json:"avgExpense"`
	DailyAverage     float64        `json:"dailyAverage"`
	MonthOverMonth   MonthOverMonth `json:"monthOverMonth"`
}

// ExpenseStats is the full payload of the expense statistics endpoint.
type ExpenseStats struct {
	Summary           ExpenseSummary   `json:"summary"`
	CategoryBreakdown []CategoryTotal  `json:"categoryBreakdown"`
	MonthlyTrend      []MonthlyTotal   `json:"monthlyTrend"`
	RecentExpenses    []models.Expense `json:"recentExpenses"`
	Period            Period           `json:"period"`
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID uint, amount float64, category models.Category, description string, date time.Time, paymentMethod models.PaymentMethod, notes string, isRecurring bool) (*models.Expense, error)
	GetUserExpenses(userID uint, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(userID, expenseID uint) (*models.Expense, error)
	UpdateExpense(userID, expenseID uint, update ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(userID, expenseID uint) error
	GetCategoryTotals(userID uint, start, end time.Time) ([]CategoryTotal, error)
	GetMonthlyTotals(userID uint, year int) ([]MonthlyTotal, error)
	GetExpenseStats(userID uint, month, year int) (*ExpenseStats, error)
}

// BudgetStatus joins a budget with the actual spending for its period.
// It is computed fresh on every request and never persisted.
type BudgetStatus struct {
	models.Budget
	Spent        float64 `json:"spent"`
	Remaining    float64 `json:"remaining"`
	Percentage   float64 `json:"percentage"`
	IsOverBudget bool    `json:"isOverBudget"`
	IsNearLimit  bool    `json:"isNearLimit"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	UpsertBudget(userID uint, category models.Category, limit float64, month, year, alertThreshold int, notes string) (*models.Budget, error)
	GetUserBudgets(userID uint, month, year int) ([]models.Budget, error)
	UpdateBudget(userID, budgetID uint, limit *float64, alertThreshold *int, notes *string) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	GetBudgetStatus(userID uint, month, year int) ([]BudgetStatus, error)
	CopyFromPreviousMonth(userID uint, month, year int) ([]models.Budget, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
