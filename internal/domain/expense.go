package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrPayerNotMember       = errors.New("payer is not a group member")
	ErrBeneficiaryNotMember = errors.New("beneficiary is not a group member")
	ErrNoBeneficiaries      = errors.New("expense needs at least one beneficiary")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrMemoTooLong          = errors.New("memo exceeds maximum length")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum")
)

// MaxMemoLength is the longest memo accepted on an expense
const MaxMemoLength = 255

// MaxAmount is the largest amount accepted on a single payment.
// Balances are settled in float64, so sums must stay well inside its range.
var MaxAmount = decimal.New(1, 12)

// Expense is one payment: Payer covered Amount on behalf of Beneficiaries,
// who share it equally. SplitAll records that the expense was entered
// for the whole group rather than for named members.
type Expense struct {
	ID            uuid.UUID       `json:"id"`
	GroupID       uuid.UUID       `json:"groupId"`
	Payer         string          `json:"payer"`
	Beneficiaries []string        `json:"beneficiaries"`
	SplitAll      bool            `json:"splitAll"`
	Amount        decimal.Decimal `json:"amount"`
	Memo          string          `json:"memo,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Share returns the amount each beneficiary owes for this expense
func (e *Expense) Share() decimal.Decimal {
	if len(e.Beneficiaries) == 0 {
		return decimal.Zero
	}
	return e.Amount.Div(decimal.NewFromInt(int64(len(e.Beneficiaries))))
}

// Clone returns a deep copy of the expense
func (e *Expense) Clone() *Expense {
	clone := *e
	clone.Beneficiaries = append([]string(nil), e.Beneficiaries...)
	return &clone
}
