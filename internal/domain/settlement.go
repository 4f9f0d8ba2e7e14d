package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoExpenses is returned when settling a group that has recorded nothing
var ErrNoExpenses = errors.New("group has no expenses to settle")

// SettlementPayment is a single payment in a settlement calculation request
type SettlementPayment struct {
	Payer         string   `json:"payer"`
	Beneficiaries []string `json:"beneficiaries"`
	Amount        float64  `json:"amount"`
}

// SettlementInput represents the input for a stateless settlement calculation
type SettlementInput struct {
	Participants []string            `json:"participants"`
	Payments     []SettlementPayment `json:"payments"`
}

// MemberBalance is a member's net position: positive is owed, negative owes
type MemberBalance struct {
	Member string  `json:"member"`
	Amount float64 `json:"amount"`
}

// Transfer is a suggested payment from a debtor to a creditor
type Transfer struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// SettlementResult represents the balances and transfers that settle them
type SettlementResult struct {
	GroupID      *uuid.UUID      `json:"groupId,omitempty"`
	Balances     []MemberBalance `json:"balances"`
	Transfers    []Transfer      `json:"transfers"`
	CalculatedAt time.Time       `json:"calculatedAt"`
}

// IsSettled reports whether nobody owes anybody
func (r *SettlementResult) IsSettled() bool {
	return len(r.Transfers) == 0
}
