package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db             *gorm.DB
	expenseService ExpenseServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, expenseService ExpenseServicer) BudgetServicer {
	return &budgetService{db: db, expenseService: expenseService}
}

// UpsertBudget creates a budget for (category, month, year) or updates the
// existing one in place. The conflict target is the compound unique index, so
// concurrent submissions for the same period cannot create duplicates.
func (s *budgetService) UpsertBudget(
	userID uint,
	category models.Category,
	limit float64,
	month, year, alertThreshold int,
	notes string,
) (*models.Budget, error) {
	if !category.IsValidBudgetCategory() {
		return nil, apperrors.ErrInvalidCategory
	}
	if alertThreshold == 0 {
		alertThreshold = 80
	}

	budget := &models.Budget{
		UserID:         userID,
		Category:       category,
		Limit:          limit,
		Month:          month,
		Year:           year,
		AlertThreshold: alertThreshold,
		Notes:          notes,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "category"}, {Name: "month"}, {Name: "year"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"limit", "alert_threshold", "notes", "updated_at"}),
	}).Create(budget).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Re-read so the caller sees the stored row (the upsert path does not
	// populate the primary key on conflict).
	var stored models.Budget
	err = s.db.Where("user_id = ? AND category = ? AND month = ? AND year = ?",
		userID, category, month, year).First(&stored).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &stored, nil
}

// GetUserBudgets returns all budgets for the user in the given period.
func (s *budgetService) GetUserBudgets(userID uint, month, year int) ([]models.Budget, error) {
	var budgets []models.Budget
	err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	return budgets, nil
}

// getBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) getBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's limit, threshold, or notes.
func (s *budgetService) UpdateBudget(userID, budgetID uint, limit *float64, alertThreshold *int, notes *string) (*models.Budget, error) {
	budget, err := s.getBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if limit != nil {
		updates["limit"] = *limit
	}
	if alertThreshold != nil {
		updates["alert_threshold"] = *alertThreshold
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget removes a budget. The delete is unscoped: a soft-deleted row
// would still occupy the (user, category, month, year) unique index and block
// re-creating the budget for the same period.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.getBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetStatus joins the period's budgets with actual category spending.
// Each budget gets spent/remaining/percentage plus the over-budget and
// near-limit flags. The "total" sentinel budget is measured against the grand
// total across all categories. A category with spending but no budget row is
// not reported.
func (s *budgetService) GetBudgetStatus(userID uint, month, year int) ([]BudgetStatus, error) {
	budgets, err := s.GetUserBudgets(userID, month, year)
	if err != nil {
		return nil, err
	}

	start, end := monthRange(month, year)
	categoryTotals, err := s.expenseService.GetCategoryTotals(userID, start, end)
	if err != nil {
		return nil, err
	}

	spendingByCategory := make(map[models.Category]float64, len(categoryTotals))
	var totalSpent float64
	for _, ct := range categoryTotals {
		spendingByCategory[ct.Category] = ct.Total
		totalSpent += ct.Total
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		spent := spendingByCategory[budget.Category]
		if budget.Category == models.CategoryTotal {
			spent = totalSpent
		}

		var percentage float64
		if budget.Limit > 0 {
			percentage = round2(spent / budget.Limit * 100)
		}

		statuses = append(statuses, BudgetStatus{
			Budget:       budget,
			Spent:        spent,
			Remaining:    budget.Limit - spent,
			Percentage:   percentage,
			IsOverBudget: spent > budget.Limit,
			IsNearLimit:  percentage >= float64(budget.AlertThreshold) && percentage < 100,
		})
	}

	return statuses, nil
}

// CopyFromPreviousMonth copies the previous period's budgets into (month,
// year). Categories that already have a budget in the target period are left
// untouched. Returns all budgets now present for the copied categories.
func (s *budgetService) CopyFromPreviousMonth(userID uint, month, year int) ([]models.Budget, error) {
	prevMonth := month - 1
	prevYear := year
	if prevMonth < 1 {
		prevMonth = 12
		prevYear = year - 1
	}

	prevBudgets, err := s.GetUserBudgets(userID, prevMonth, prevYear)
	if err != nil {
		return nil, err
	}
	if len(prevBudgets) == 0 {
		return nil, apperrors.ErrNoPreviousBudgets
	}

	copied := make([]models.Budget, 0, len(prevBudgets))
	for _, prev := range prevBudgets {
		var existing models.Budget
		err := s.db.Where("user_id = ? AND category = ? AND month = ? AND year = ?",
			userID, prev.Category, month, year).First(&existing).Error
		if err == nil {
			copied = append(copied, existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		budget := models.Budget{
			UserID:         userID,
			Category:       prev.Category,
			Limit:          prev.Limit,
			Month:          month,
			Year:           year,
			AlertThreshold: prev.AlertThreshold,
		}
		if err := s.db.Create(&budget).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		copied = append(copied, budget)
	}

	return copied, nil
}
