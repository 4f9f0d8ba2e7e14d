package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dafibh/evenup/evenup-backend/internal/domain"
	"github.com/dafibh/evenup/evenup-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SettlementHandler handles settlement HTTP requests
type SettlementHandler struct {
	settlementService *service.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// PaymentRequest is one payment in a stateless calculation.
// Amount is a decimal string such as "30.00".
type PaymentRequest struct {
	Payer         string   `json:"payer"`
	Beneficiaries []string `json:"beneficiaries"`
	Amount        string   `json:"amount"`
}

// CalculateRequest represents the JSON request for a stateless calculation
type CalculateRequest struct {
	Participants []string         `json:"participants"`
	Payments     []PaymentRequest `json:"payments"`
}

// BalanceResponse is a participant's net position: positive is owed, negative owes
type BalanceResponse struct {
	Member string `json:"member"`
	Amount string `json:"amount"`
}

// TransferResponse is a suggested payment
type TransferResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// SettlementResponse represents the JSON response for a calculation
type SettlementResponse struct {
	GroupID      string             `json:"groupId,omitempty"`
	Balances     []BalanceResponse  `json:"balances"`
	Transfers    []TransferResponse `json:"transfers"`
	Settled      bool               `json:"settled"`
	CalculatedAt string             `json:"calculatedAt"`
}

// Calculate settles an ad-hoc set of participants and payments
// @Summary Calculate a settlement
// @Description Computes net balances and the transfers that settle them. Nothing is stored.
// @Tags settlements
// @Accept json
// @Produce json
// @Param request body CalculateRequest true "Participants and payments"
// @Success 200 {object} SettlementResponse
// @Failure 400 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /settlements/calculate [post]
func (h *SettlementHandler) Calculate(c echo.Context) error {
	var req CalculateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := domain.SettlementInput{
		Participants: req.Participants,
		Payments:     make([]domain.SettlementPayment, len(req.Payments)),
	}
	for i, p := range req.Payments {
		amount, err := decimal.NewFromString(p.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount format", []ValidationError{
				{Field: fmt.Sprintf("payments[%d].amount", i), Message: "Must be a valid decimal number"},
			})
		}
		if amount.GreaterThan(domain.MaxAmount) {
			return NewValidationError(c, "Amount too large", []ValidationError{
				{Field: fmt.Sprintf("payments[%d].amount", i), Message: "Must not exceed " + domain.MaxAmount.String()},
			})
		}
		input.Payments[i] = domain.SettlementPayment{
			Payer:         p.Payer,
			Beneficiaries: p.Beneficiaries,
			Amount:        amount.InexactFloat64(),
		}
	}

	result, err := h.settlementService.Calculate(input)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, toSettlementResponse(result))
}

// SettleGroup runs the settlement over a group's recorded expenses
// @Summary Settle a group
// @Description Computes balances and transfers from every expense recorded in the group
// @Tags settlements
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} SettlementResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /groups/{id}/settle [post]
func (h *SettlementHandler) SettleGroup(c echo.Context) error {
	groupID, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid group ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}

	result, err := h.settlementService.SettleGroup(groupID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	log.Info().
		Str("group_id", groupID.String()).
		Int("transfers", len(result.Transfers)).
		Msg("Group settled")

	return c.JSON(http.StatusOK, toSettlementResponse(result))
}

// handleServiceError maps domain errors to appropriate HTTP responses
func (h *SettlementHandler) handleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrGroupNotFound):
		return NewNotFoundError(c, "Group not found")
	case errors.Is(err, domain.ErrNoExpenses):
		return NewConflictError(c, "Add at least one expense before settling")
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "), nil)
	default:
		log.Error().Err(err).Msg("Settlement failed")
		return NewInternalError(c, "Settlement failed")
	}
}

func toSettlementResponse(r *domain.SettlementResult) SettlementResponse {
	balances := make([]BalanceResponse, len(r.Balances))
	for i, b := range r.Balances {
		balances[i] = BalanceResponse{Member: b.Member, Amount: formatMoney(b.Amount)}
	}

	transfers := make([]TransferResponse, len(r.Transfers))
	for i, t := range r.Transfers {
		transfers[i] = TransferResponse{From: t.From, To: t.To, Amount: formatMoney(t.Amount)}
	}

	response := SettlementResponse{
		Balances:     balances,
		Transfers:    transfers,
		Settled:      r.IsSettled(),
		CalculatedAt: formatTime(r.CalculatedAt),
	}
	if r.GroupID != nil {
		response.GroupID = r.GroupID.String()
	}
	return response
}
