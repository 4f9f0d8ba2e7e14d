package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/evenup/evenup-backend/internal/domain"
	"github.com/dafibh/evenup/evenup-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
	}
}

// CreateExpenseRequest represents the create expense request body.
// Amount is a decimal string such as "12.50".
type CreateExpenseRequest struct {
	Payer         string   `json:"payer"`
	Beneficiaries []string `json:"beneficiaries"`
	SplitAll      bool     `json:"splitAll"`
	Amount        string   `json:"amount"`
	Memo          string   `json:"memo"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID            string   `json:"id"`
	GroupID       string   `json:"groupId"`
	Payer         string   `json:"payer"`
	Beneficiaries []string `json:"beneficiaries"`
	SplitAll      bool     `json:"splitAll"`
	Amount        string   `json:"amount"`
	Share         string   `json:"share"`
	Memo          string   `json:"memo,omitempty"`
	CreatedAt     string   `json:"createdAt"`
}

// CreateExpense records an expense in a group
// @Summary Add an expense
// @Description Record that payer covered amount for the listed beneficiaries, or for every member when splitAll is set
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body CreateExpenseRequest true "Expense details"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /groups/{id}/expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	groupID, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid group ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount format", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	expense, err := h.expenseService.AddExpense(groupID, service.AddExpenseInput{
		Payer:         req.Payer,
		Beneficiaries: req.Beneficiaries,
		SplitAll:      req.SplitAll,
		Amount:        amount,
		Memo:          req.Memo,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}

	log.Info().
		Str("group_id", groupID.String()).
		Str("expense_id", expense.ID.String()).
		Msg("Expense recorded")

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// ListExpenses returns a group's expenses in entry order
// @Summary List expenses
// @Tags expenses
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {array} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /groups/{id}/expenses [get]
func (h *ExpenseHandler) ListExpenses(c echo.Context) error {
	groupID, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid group ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}

	expenses, err := h.expenseService.ListExpenses(groupID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	response := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		response[i] = toExpenseResponse(e)
	}

	return c.JSON(http.StatusOK, response)
}

// DeleteExpense removes an expense from a group
// @Summary Delete an expense
// @Tags expenses
// @Param id path string true "Group ID"
// @Param expenseId path string true "Expense ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /groups/{id}/expenses/{expenseId} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	groupID, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid group ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}
	expenseID, ok := parseUUIDParam(c, "expenseId")
	if !ok {
		return NewValidationError(c, "Invalid expense ID", []ValidationError{
			{Field: "expenseId", Message: "Must be a valid UUID"},
		})
	}

	if err := h.expenseService.DeleteExpense(groupID, expenseID); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// handleServiceError maps domain errors to appropriate HTTP responses
func (h *ExpenseHandler) handleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrGroupNotFound):
		return NewNotFoundError(c, "Group not found")
	case errors.Is(err, domain.ErrExpenseNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrPayerNotMember):
		return NewValidationError(c, "Payer must be a group member", []ValidationError{
			{Field: "payer", Message: "Must be a group member"},
		})
	case errors.Is(err, domain.ErrBeneficiaryNotMember):
		return NewValidationError(c, "Every beneficiary must be a group member", []ValidationError{
			{Field: "beneficiaries", Message: "Must all be group members"},
		})
	case errors.Is(err, domain.ErrNoBeneficiaries):
		return NewValidationError(c, "At least one beneficiary is required", []ValidationError{
			{Field: "beneficiaries", Message: "Select at least one member or set splitAll"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Amount must be greater than zero", []ValidationError{
			{Field: "amount", Message: "Must be greater than zero"},
		})
	case errors.Is(err, domain.ErrAmountTooLarge):
		return NewValidationError(c, "Amount too large", []ValidationError{
			{Field: "amount", Message: "Must not exceed " + domain.MaxAmount.String()},
		})
	case errors.Is(err, domain.ErrMemoTooLong):
		return NewValidationError(c, "Memo too long", []ValidationError{
			{Field: "memo", Message: "Memo must be 255 characters or less"},
		})
	default:
		log.Error().Err(err).Msg("Expense operation failed")
		return NewInternalError(c, "Expense operation failed")
	}
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            e.ID.String(),
		GroupID:       e.GroupID.String(),
		Payer:         e.Payer,
		Beneficiaries: e.Beneficiaries,
		SplitAll:      e.SplitAll,
		Amount:        e.Amount.StringFixed(2),
		Share:         e.Share().StringFixed(2),
		Memo:          e.Memo,
		CreatedAt:     formatTime(e.CreatedAt),
	}
}
