package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// monthRange returns the first and last instants of the given calendar month:
// day one at 00:00:00 through the last day at 23:59:59 local time.
func monthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, -1)
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, time.Local)
	return start, end
}

// round2 rounds to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// CreateExpense records a new expense transaction.
func (s *expenseService) CreateExpense(
	userID uint,
	amount float64,
	category models.Category,
	description string,
	date time.Time,
	paymentMethod models.PaymentMethod,
	notes string,
	isRecurring bool,
) (*models.Expense, error) {
	if !category.IsValidExpenseCategory() {
		return nil, apperrors.ErrInvalidCategory
	}
	if date.IsZero() {
		date = time.Now()
	}
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCash
	}

	expense := &models.Expense{
		UserID:        userID,
		Amount:        amount,
		Category:      category,
		Description:   description,
		Date:          date,
		PaymentMethod: paymentMethod,
		Notes:         notes,
		IsRecurring:   isRecurring,
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return expense, nil
}

// GetUserExpenses returns a paginated list of expenses with optional filters.
func (s *expenseService) GetUserExpenses(
	userID uint,
	page pagination.PageRequest,
	filter ExpenseFilter,
) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if filter.Category != nil {
		base = base.Where("category = ?", *filter.Category)
	}
	if filter.StartDate != nil {
		base = base.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		base = base.Where("date <= ?", *filter.EndDate)
	}
	if filter.MinAmount != nil {
		base = base.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		base = base.Where("amount <= ?", *filter.MaxAmount)
	}
	if filter.Search != "" {
		base = base.Where("LOWER(description) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	order := "date DESC"
	switch filter.Sort {
	case "date":
		order = "date ASC"
	case "amount":
		order = "amount ASC"
	case "-amount":
		order = "amount DESC"
	}

	var expenses []models.Expense
	if err := base.Order(order).Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetExpenseByID returns an expense by ID if it belongs to the user.
func (s *expenseService) GetExpenseByID(userID, expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense updates an existing expense's fields.
func (s *expenseService) UpdateExpense(userID, expenseID uint, update ExpenseUpdate) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Amount != nil {
		updates["amount"] = *update.Amount
	}
	if update.Category != nil {
		if !update.Category.IsValidExpenseCategory() {
			return nil, apperrors.ErrInvalidCategory
		}
		updates["category"] = *update.Category
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Date != nil {
		updates["date"] = *update.Date
	}
	if update.PaymentMethod != nil {
		updates["payment_method"] = *update.PaymentMethod
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}
	if update.IsRecurring != nil {
		updates["is_recurring"] = *update.IsRecurring
	}

	if len(updates) > 0 {
		if err := s.db.Model(expense).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return expense, nil
}

// DeleteExpense soft-deletes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID uint) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetCategoryTotals groups the user's expenses within [start, end] by category
// and sums amounts and counts, ordered by total spend descending. Categories
// with no expenses in range are omitted; an inverted range yields an empty
// result, not an error.
func (s *expenseService) GetCategoryTotals(userID uint, start, end time.Time) ([]CategoryTotal, error) {
	var totals []CategoryTotal
	err := s.db.Model(&models.Expense{}).
		Select("category, SUM(amount) AS total, COUNT(*) AS count").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Group("category").
		Order("total DESC").
		Scan(&totals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if totals == nil {
		totals = []CategoryTotal{}
	}
	return totals, nil
}

// GetMonthlyTotals sums the user's expenses per calendar month for the given
// year, ordered by month ascending. Month extraction is done in Go so the
// query stays portable between Postgres and SQLite.
func (s *expenseService) GetMonthlyTotals(userID uint, year int) ([]MonthlyTotal, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	yearEnd := time.Date(year, time.December, 31, 23, 59, 59, 999999999, time.Local)

	var expenses []models.Expense
	err := s.db.Model(&models.Expense{}).
		Select("date, amount").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, yearStart, yearEnd).
		Find(&expenses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var byMonth [13]MonthlyTotal
	for _, e := range expenses {
		m := int(e.Date.Month())
		byMonth[m].Total += e.Amount
		byMonth[m].Count++
	}

	totals := []MonthlyTotal{}
	for m := 1; m <= 12; m++ {
		if byMonth[m].Count == 0 {
			continue
		}
		byMonth[m].Month = m
		totals = append(totals, byMonth[m])
	}
	return totals, nil
}

// monthAggregate holds a single-month SQL aggregation result.
type monthAggregate struct {
	Total float64
	Count int64
}

// sumForRange returns the total amount and transaction count for the user's
// expenses within [start, end].
func (s *expenseService) sumForRange(userID uint, start, end time.Time) (monthAggregate, error) {
	var agg monthAggregate
	err := s.db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Scan(&agg).Error
	if err != nil {
		return monthAggregate{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return agg, nil
}

// GetExpenseStats builds the statistics payload for one month: headline
// totals, month-over-month comparison, daily average, category breakdown,
// the year's monthly trend, and the five most recent expenses.
func (s *expenseService) GetExpenseStats(userID uint, month, year int) (*ExpenseStats, error) {
	start, end := monthRange(month, year)
	prevStart := start.AddDate(0, -1, 0)
	_, prevEnd := monthRange(int(prevStart.Month()), prevStart.Year())

	current, err := s.sumForRange(userID, start, end)
	if err != nil {
		return nil, err
	}
	previous, err := s.sumForRange(userID, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	categoryTotals, err := s.GetCategoryTotals(userID, start, end)
	if err != nil {
		return nil, err
	}
	monthlyTotals, err := s.GetMonthlyTotals(userID, year)
	if err != nil {
		return nil, err
	}

	var recent []models.Expense
	if err := s.db.Where("user_id = ?", userID).Order("date DESC").Limit(5).Find(&recent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if recent == nil {
		recent = []models.Expense{}
	}

	var percentChange float64
	if previous.Total > 0 {
		percentChange = (current.Total - previous.Total) / previous.Total * 100
	}

	var avgExpense float64
	if current.Count > 0 {
		avgExpense = current.Total / float64(current.Count)
	}

	// Daily average uses days elapsed so far, capped at the month's length.
	daysInMonth := end.Day()
	daysPassed := time.Now().Day()
	if daysPassed > daysInMonth {
		daysPassed = daysInMonth
	}
	var dailyAverage float64
	if daysPassed > 0 {
		dailyAverage = current.Total / float64(daysPassed)
	}

	return &ExpenseStats{
		Summary: ExpenseSummary{
			TotalSpent:       current.Total,
			TransactionCount: current.Count,
			AvgExpense:       avgExpense,
			DailyAverage:     dailyAverage,
			MonthOverMonth: MonthOverMonth{
				Amount:     current.Total - previous.Total,
				Percentage: round2(percentChange),
			},
		},
		CategoryBreakdown: categoryTotals,
		MonthlyTrend:      monthlyTotals,
		RecentExpenses:    recent,
		Period:            Period{Month: month, Year: year},
	}, nil
}
