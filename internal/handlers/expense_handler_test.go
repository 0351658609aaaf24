package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/pagination"
	"spendwise/internal/services"
)

type mockExpenseService struct {
	createExpenseFn    func(userID uint, amount float64, category models.Category, description string, date time.Time, paymentMethod models.PaymentMethod, notes string, isRecurring bool) (*models.Expense, error)
	getUserExpensesFn  func(userID uint, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	getExpenseByIDFn   func(userID, expenseID uint) (*models.Expense, error)
	updateExpenseFn    func(userID, expenseID uint, update services.ExpenseUpdate) (*models.Expense, error)
	deleteExpenseFn    func(userID, expenseID uint) error
	getCategoryTotals  func(userID uint, start, end time.Time) ([]services.CategoryTotal, error)
	getMonthlyTotalsFn func(userID uint, year int) ([]services.MonthlyTotal, error)
	getExpenseStatsFn  func(userID uint, month, year int) (*services.ExpenseStats, error)
}

func (m *mockExpenseService) CreateExpense(userID uint, amount float64, category models.Category, description string, date time.Time, paymentMethod models.PaymentMethod, notes string, isRecurring bool) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, amount, category, description, date, paymentMethod, notes, isRecurring)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetUserExpenses(userID uint, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if m.getUserExpensesFn != nil {
		return m.getUserExpensesFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) GetExpenseByID(userID, expenseID uint) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(userID, expenseID uint, update services.ExpenseUpdate) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(userID, expenseID, update)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(userID, expenseID uint) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

func (m *mockExpenseService) GetCategoryTotals(userID uint, start, end time.Time) ([]services.CategoryTotal, error) {
	if m.getCategoryTotals != nil {
		return m.getCategoryTotals(userID, start, end)
	}
	return []services.CategoryTotal{}, nil
}

func (m *mockExpenseService) GetMonthlyTotals(userID uint, year int) ([]services.MonthlyTotal, error) {
	if m.getMonthlyTotalsFn != nil {
		return m.getMonthlyTotalsFn(userID, year)
	}
	return []services.MonthlyTotal{}, nil
}

func (m *mockExpenseService) GetExpenseStats(userID uint, month, year int) (*services.ExpenseStats, error) {
	if m.getExpenseStatsFn != nil {
		return m.getExpenseStatsFn(userID, month, year)
	}
	return &services.ExpenseStats{}, nil
}

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := injectUserID(1)
	r.POST("/expenses", auth, handler.CreateExpense)
	r.GET("/expenses", auth, handler.GetExpenses)
	r.GET("/expenses/stats", auth, handler.GetExpenseStats)
	r.GET("/expenses/:id", auth, handler.GetExpense)
	r.PUT("/expenses/:id", auth, handler.UpdateExpense)
	r.DELETE("/expenses/:id", auth, handler.DeleteExpense)
	return r
}

func TestCreateExpenseHandler(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		expenseSvc := &mockExpenseService{
			createExpenseFn: func(userID uint, amount float64, category models.Category, description string, date time.Time, pm models.PaymentMethod, notes string, recurring bool) (*models.Expense, error) {
				return &models.Expense{
					Base: models.Base{ID: 1}, UserID: userID, Amount: amount,
					Category: category, Description: description, Date: date, PaymentMethod: pm,
				}, nil
			},
		}
		handler := NewExpenseHandler(expenseSvc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/expenses",
			`{"amount":42.5,"category":"food","description":"Lunch","payment_method":"credit"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		data := result["data"].(map[string]interface{})
		if data["amount"] != 42.5 {
			t.Errorf("expected amount 42.5, got %v", data["amount"])
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/expenses",
			`{"amount":0,"category":"food","description":"Free"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on amount below one cent", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/expenses",
			`{"amount":0.001,"category":"food","description":"Rounding dust"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid category", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/expenses",
			`{"amount":10,"category":"gadgets","description":"Widget"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on total category", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/expenses",
			`{"amount":10,"category":"total","description":"Everything"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid payment method", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "POST", "/expenses",
			`{"amount":10,"category":"food","description":"Lunch","payment_method":"bitcoin"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestGetExpensesHandler(t *testing.T) {
	t.Run("returns paginated list", func(t *testing.T) {
		expenseSvc := &mockExpenseService{
			getUserExpensesFn: func(_ uint, page pagination.PageRequest, _ services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
				resp := pagination.NewPageResponse([]models.Expense{
					{Amount: 10, Category: models.CategoryFood},
				}, page.Page, page.PageSize, 1)
				return &resp, nil
			},
		}
		handler := NewExpenseHandler(expenseSvc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/expenses?page=1&page_size=20", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_items"] != 1.0 {
			t.Errorf("expected total_items 1, got %v", result["total_items"])
		}
	})

	t.Run("passes filters to service", func(t *testing.T) {
		var captured services.ExpenseFilter
		expenseSvc := &mockExpenseService{
			getUserExpensesFn: func(_ uint, _ pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
				captured = filter
				resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewExpenseHandler(expenseSvc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/expenses?category=food&min_amount=10&sort=-amount&search=coffee", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.Category == nil || *captured.Category != models.CategoryFood {
			t.Error("expected category filter to reach the service")
		}
		if captured.MinAmount == nil || *captured.MinAmount != 10 {
			t.Error("expected min amount filter to reach the service")
		}
		if captured.Sort != "-amount" || captured.Search != "coffee" {
			t.Errorf("expected sort/search to reach the service, got %q/%q", captured.Sort, captured.Search)
		}
	})

	t.Run("returns 400 on invalid sort", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/expenses?sort=sideways", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on oversized page_size", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/expenses?page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestGetExpenseHandler(t *testing.T) {
	t.Run("returns expense", func(t *testing.T) {
		expenseSvc := &mockExpenseService{
			getExpenseByIDFn: func(_, expenseID uint) (*models.Expense, error) {
				return &models.Expense{Base: models.Base{ID: expenseID}, Amount: 10}, nil
			},
		}
		handler := NewExpenseHandler(expenseSvc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/expenses/1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		expenseSvc := &mockExpenseService{
			getExpenseByIDFn: func(uint, uint) (*models.Expense, error) {
				return nil, apperrors.ErrExpenseNotFound
			},
		}
		handler := NewExpenseHandler(expenseSvc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/expenses/9999", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
	})
}

func TestUpdateExpenseHandler(t *testing.T) {
	t.Run("passes partial update", func(t *testing.T) {
		var captured services.ExpenseUpdate
		expenseSvc := &mockExpenseService{
			updateExpenseFn: func(_, expenseID uint, update services.ExpenseUpdate) (*models.Expense, error) {
				captured = update
				return &models.Expense{Base: models.Base{ID: expenseID}}, nil
			},
		}
		handler := NewExpenseHandler(expenseSvc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "PUT", "/expenses/1", `{"amount":25,"category":"travel"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.Amount == nil || *captured.Amount != 25 {
			t.Error("expected amount in update")
		}
		if captured.Category == nil || *captured.Category != models.CategoryTravel {
			t.Error("expected category in update")
		}
		if captured.Description != nil {
			t.Error("unset fields must stay nil")
		}
	})

	t.Run("returns 400 on invalid category", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "PUT", "/expenses/1", `{"category":"gadgets"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestDeleteExpenseHandler(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "DELETE", "/expenses/1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		expenseSvc := &mockExpenseService{
			deleteExpenseFn: func(uint, uint) error { return apperrors.ErrExpenseNotFound },
		}
		handler := NewExpenseHandler(expenseSvc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "DELETE", "/expenses/9999", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestGetExpenseStatsHandler(t *testing.T) {
	t.Run("returns stats payload", func(t *testing.T) {
		expenseSvc := &mockExpenseService{
			getExpenseStatsFn: func(_ uint, month, year int) (*services.ExpenseStats, error) {
				return &services.ExpenseStats{
					Summary: services.ExpenseSummary{
						TotalSpent:       300,
						TransactionCount: 2,
						AvgExpense:       150,
						MonthOverMonth:   services.MonthOverMonth{Amount: 100, Percentage: 50},
					},
					CategoryBreakdown: []services.CategoryTotal{},
					MonthlyTrend:      []services.MonthlyTotal{},
					RecentExpenses:    []models.Expense{},
					Period:            services.Period{Month: month, Year: year},
				}, nil
			},
		}
		handler := NewExpenseHandler(expenseSvc, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/expenses/stats?month=3&year=2024", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		data := result["data"].(map[string]interface{})
		summary := data["summary"].(map[string]interface{})
		if summary["totalSpent"] != 300.0 {
			t.Errorf("expected totalSpent 300, got %v", summary["totalSpent"])
		}
		mom := summary["monthOverMonth"].(map[string]interface{})
		if mom["percentage"] != 50.0 {
			t.Errorf("expected monthOverMonth percentage 50, got %v", mom["percentage"])
		}
	})

	t.Run("returns 400 on invalid year", func(t *testing.T) {
		handler := NewExpenseHandler(&mockExpenseService{}, &mockAuditService{})
		r := setupExpenseRouter(handler)

		rec := doRequest(r, "GET", "/expenses/stats?year=1999", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
