package settlement

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance below which a balance counts as settled
const Epsilon = 1e-6

// Participant is a group member identified by display name
type Participant = string

// Payment is one payer covering Amount, split equally among Beneficiaries
type Payment struct {
	Payer         Participant
	Beneficiaries []Participant
	Amount        float64
}

// Balance is a single participant's net position.
// Positive means the participant is owed money, negative means they owe.
type Balance struct {
	Participant Participant
	Amount      float64
}

// BalanceSheet holds one balance per participant in participant order.
// The order is the tie-break used when matching equal amounts.
type BalanceSheet struct {
	entries []Balance
	index   map[Participant]int
}

func newBalanceSheet(participants []Participant) (BalanceSheet, error) {
	if len(participants) == 0 {
		return BalanceSheet{}, ErrNoParticipants
	}

	sheet := BalanceSheet{
		entries: make([]Balance, len(participants)),
		index:   make(map[Participant]int, len(participants)),
	}
	for i, p := range participants {
		if _, exists := sheet.index[p]; exists {
			return BalanceSheet{}, fmt.Errorf("%w: %q", ErrDuplicateParticipant, p)
		}
		sheet.index[p] = i
		sheet.entries[i] = Balance{Participant: p}
	}
	return sheet, nil
}

// Len returns the number of participants on the sheet
func (s BalanceSheet) Len() int {
	return len(s.entries)
}

// Get returns the balance of a participant and whether it is on the sheet
func (s BalanceSheet) Get(p Participant) (float64, bool) {
	i, ok := s.index[p]
	if !ok {
		return 0, false
	}
	return s.entries[i].Amount, true
}

// Entries returns a copy of the balances in participant order
func (s BalanceSheet) Entries() []Balance {
	out := make([]Balance, len(s.entries))
	copy(out, s.entries)
	return out
}

// Map returns the balances keyed by participant. Order is lost.
func (s BalanceSheet) Map() map[Participant]float64 {
	out := make(map[Participant]float64, len(s.entries))
	for _, e := range s.entries {
		out[e.Participant] = e.Amount
	}
	return out
}

// Total sums every balance. For a valid sheet this is zero within Epsilon.
func (s BalanceSheet) Total() float64 {
	var total float64
	for _, e := range s.entries {
		total += e.Amount
	}
	return total
}

func (s *BalanceSheet) add(p Participant, delta float64) {
	s.entries[s.index[p]].Amount += delta
}

// NewBalanceSheet builds a sheet from precomputed balances, keeping their order,
// so Match can be run without going through Accumulate.
func NewBalanceSheet(balances []Balance) (BalanceSheet, error) {
	participants := make([]Participant, len(balances))
	for i, b := range balances {
		participants[i] = b.Participant
	}
	sheet, err := newBalanceSheet(participants)
	if err != nil {
		return BalanceSheet{}, err
	}
	for i, b := range balances {
		sheet.entries[i].Amount = b.Amount
	}
	return sheet, nil
}

// Accumulate folds payments into a net balance per participant.
// Every payment is checked before any is applied, so a failed call never
// yields a partial sheet. Neither argument is modified.
func Accumulate(participants []Participant, payments []Payment) (BalanceSheet, error) {
	sheet, err := newBalanceSheet(participants)
	if err != nil {
		return BalanceSheet{}, err
	}

	for i, payment := range payments {
		if err := sheet.check(payment); err != nil {
			return BalanceSheet{}, fmt.Errorf("payment %d: %w", i, err)
		}
	}

	for i, payment := range payments {
		share := payment.Amount / float64(len(payment.Beneficiaries))
		for _, b := range payment.Beneficiaries {
			sheet.add(b, -share)
		}
		sheet.add(payment.Payer, payment.Amount)

		if p, ok := sheet.firstNonFinite(); ok {
			return BalanceSheet{}, fmt.Errorf("payment %d: %w: balance of %q overflows", i, ErrInvalidAmount, p)
		}
	}

	return sheet, nil
}

// firstNonFinite reports the first participant whose balance is Inf or NaN
func (s BalanceSheet) firstNonFinite() (Participant, bool) {
	for _, e := range s.entries {
		if !isFinite(e.Amount) {
			return e.Participant, true
		}
	}
	return "", false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (s BalanceSheet) check(payment Payment) error {
	if !isFinite(payment.Amount) || payment.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(payment.Beneficiaries) == 0 {
		return ErrEmptyBeneficiaries
	}
	if _, ok := s.index[payment.Payer]; !ok {
		return fmt.Errorf("%w: payer %q", ErrUnknownParticipant, payment.Payer)
	}
	for _, b := range payment.Beneficiaries {
		if _, ok := s.index[b]; !ok {
			return fmt.Errorf("%w: beneficiary %q", ErrUnknownParticipant, b)
		}
	}
	return nil
}
