package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// UpsertBudgetRequest represents the request payload for setting a budget.
type UpsertBudgetRequest struct {
	Category       string  `json:"category" binding:"required,budget_category"`
	Limit          float64 `json:"limit" binding:"required,min=1"`
	Month          int     `json:"month" binding:"required,min=1,max=12"`
	Year           int     `json:"year" binding:"required,min=2020,max=2100"`
	AlertThreshold int     `json:"alert_threshold" binding:"omitempty,min=50,max=100"`
	Notes          string  `json:"notes" binding:"omitempty,max=200"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Limit          *float64 `json:"limit" binding:"omitempty,min=1"`
	AlertThreshold *int     `json:"alert_threshold" binding:"omitempty,min=50,max=100"`
	Notes          *string  `json:"notes" binding:"omitempty,max=200"`
}

// CopyBudgetsRequest represents the request payload for copying budgets
// from the previous month.
type CopyBudgetsRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2020,max=2100"`
}

// BudgetSummary holds the aggregate numbers of a budget status report.
// Totals cover category budgets only; the "total" sentinel is excluded.
type BudgetSummary struct {
	TotalBudget       float64 `json:"totalBudget"`
	TotalSpent        float64 `json:"totalSpent"`
	TotalRemaining    float64 `json:"totalRemaining"`
	OverallPercentage float64 `json:"overallPercentage"`
	OverBudgetCount   int     `json:"overBudgetCount"`
	NearLimitCount    int     `json:"nearLimitCount"`
}

// OverBudgetAlert identifies a category whose spending exceeded its limit.
type OverBudgetAlert struct {
	Category  models.Category `json:"category"`
	Overspent float64         `json:"overspent"`
}

// NearLimitAlert identifies a category that reached its alert threshold.
type NearLimitAlert struct {
	Category   models.Category `json:"category"`
	Percentage float64         `json:"percentage"`
}

// BudgetAlerts groups the alert lists of a budget status report.
type BudgetAlerts struct {
	OverBudget []OverBudgetAlert `json:"overBudget"`
	NearLimit  []NearLimitAlert  `json:"nearLimit"`
}

// BudgetStatusReport is the full payload of the budget status endpoint.
type BudgetStatusReport struct {
	Budgets []services.BudgetStatus `json:"budgets"`
	Summary BudgetSummary           `json:"summary"`
	Alerts  BudgetAlerts            `json:"alerts"`
	Period  services.Period         `json:"period"`
}

// buildBudgetStatusReport formats a budget status list into the report served
// by the status endpoint: summary totals over category budgets, an overall
// percentage, and the over-budget and near-limit alert lists.
func buildBudgetStatusReport(statuses []services.BudgetStatus, month, year int) BudgetStatusReport {
	report := BudgetStatusReport{
		Budgets: statuses,
		Alerts: BudgetAlerts{
			OverBudget: []OverBudgetAlert{},
			NearLimit:  []NearLimitAlert{},
		},
		Period: services.Period{Month: month, Year: year},
	}

	for _, st := range statuses {
		if st.Category != models.CategoryTotal {
			report.Summary.TotalBudget += st.Limit
			report.Summary.TotalSpent += st.Spent
		}
		if st.IsOverBudget {
			report.Summary.OverBudgetCount++
			report.Alerts.OverBudget = append(report.Alerts.OverBudget, OverBudgetAlert{
				Category:  st.Category,
				Overspent: st.Spent - st.Limit,
			})
		}
		if st.IsNearLimit {
			report.Summary.NearLimitCount++
			report.Alerts.NearLimit = append(report.Alerts.NearLimit, NearLimitAlert{
				Category:   st.Category,
				Percentage: st.Percentage,
			})
		}
	}

	report.Summary.TotalRemaining = report.Summary.TotalBudget - report.Summary.TotalSpent
	if report.Summary.TotalBudget > 0 {
		pct := report.Summary.TotalSpent / report.Summary.TotalBudget * 100
		report.Summary.OverallPercentage = math.Round(pct*100) / 100
	}

	return report
}

// UpsertBudget handles creating or updating a budget for a category/period.
// @Summary     Set a budget
// @Description Create a budget for a category and period, or update the existing one in place
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpsertBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created or updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) UpsertBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpsertBudget(
		userID, models.Category(req.Category), req.Limit, req.Month, req.Year, req.AlertThreshold, req.Notes,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPSERT_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"category": req.Category, "limit": req.Limit, "month": req.Month, "year": req.Year})

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": budget})
}

// GetBudgets handles listing budgets for a period.
// @Summary     Get budgets
// @Description Get the user's budgets for a month, defaulting to the current one
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month (1-12, defaults to current)"
// @Param       year  query int false "Year (defaults to current)"
// @Success     200 {object} []models.Budget "Budgets for the period"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetUserBudgets(userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(budgets), "data": budgets})
}

// GetBudgetStatus handles the budget status report endpoint.
// @Summary     Get budget status
// @Description Get budgets for a period joined with actual spending, plus summary totals and alerts
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month (1-12, defaults to current)"
// @Param       year  query int false "Year (defaults to current)"
// @Success     200 {object} BudgetStatusReport "Budget status report"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/status [get]
func (h *BudgetHandler) GetBudgetStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, year, err := parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statuses, err := h.budgetService.GetBudgetStatus(userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    buildBudgetStatusReport(statuses, month, year),
	})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Description Update an existing budget's limit, threshold, or notes
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, req.Limit, req.AlertThreshold, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Delete a budget by ID (soft delete)
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

// CopyFromPreviousMonth handles copying the previous month's budgets.
// @Summary     Copy budgets from previous month
// @Description Copy the previous month's budgets into the given period, keeping existing ones untouched
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CopyBudgetsRequest true "Target period"
// @Success     201 {object} []models.Budget "Budgets for the target period"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No budgets in previous month"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/copy [post]
func (h *BudgetHandler) CopyFromPreviousMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CopyBudgetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budgets, err := h.budgetService.CopyFromPreviousMonth(userID, req.Month, req.Year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "COPY_BUDGETS", "budget", 0, c.ClientIP(),
		map[string]interface{}{"month": req.Month, "year": req.Year, "count": len(budgets)})

	c.JSON(http.StatusCreated, gin.H{"success": true, "count": len(budgets), "data": budgets})
}
