package service

import (
	"strings"
	"unicode/utf8"

	"github.com/dafibh/evenup/evenup-backend/internal/domain"
	"github.com/dafibh/evenup/evenup-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseService handles expense recording within a group
type ExpenseService struct {
	groupRepo      domain.GroupRepository
	eventPublisher websocket.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(groupRepo domain.GroupRepository) *ExpenseService {
	return &ExpenseService{groupRepo: groupRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ExpenseService) publishEvent(groupID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(groupID, event)
	}
}

// AddExpenseInput contains input for recording an expense.
// When SplitAll is set the expense is shared by every member and
// Beneficiaries is ignored.
type AddExpenseInput struct {
	Payer         string
	Beneficiaries []string
	SplitAll      bool
	Amount        decimal.Decimal
	Memo          string
}

// AddExpense validates and records an expense
func (s *ExpenseService) AddExpense(groupID uuid.UUID, input AddExpenseInput) (*domain.Expense, error) {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return nil, err
	}

	payer := strings.TrimSpace(input.Payer)
	if !group.HasMember(payer) {
		return nil, domain.ErrPayerNotMember
	}

	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Amount.GreaterThan(domain.MaxAmount) {
		return nil, domain.ErrAmountTooLarge
	}

	memo := strings.TrimSpace(input.Memo)
	if utf8.RuneCountInString(memo) > domain.MaxMemoLength {
		return nil, domain.ErrMemoTooLong
	}

	beneficiaries, err := resolveBeneficiaries(group, input)
	if err != nil {
		return nil, err
	}

	expense := &domain.Expense{
		Payer:         payer,
		Beneficiaries: beneficiaries,
		SplitAll:      input.SplitAll,
		Amount:        input.Amount,
		Memo:          memo,
	}

	created, err := s.groupRepo.AddExpense(groupID, expense)
	if err != nil {
		return nil, err
	}

	s.publishEvent(groupID, websocket.ExpenseCreated(created))
	return created, nil
}

// resolveBeneficiaries expands SplitAll to the member list, otherwise
// trims names, drops blanks and repeats, and checks membership
func resolveBeneficiaries(group *domain.Group, input AddExpenseInput) ([]string, error) {
	if input.SplitAll {
		return append([]string(nil), group.Members...), nil
	}

	seen := make(map[string]struct{}, len(input.Beneficiaries))
	var out []string
	for _, b := range input.Beneficiaries {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if _, dup := seen[b]; dup {
			continue
		}
		if !group.HasMember(b) {
			return nil, domain.ErrBeneficiaryNotMember
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}

	if len(out) == 0 {
		return nil, domain.ErrNoBeneficiaries
	}
	return out, nil
}

// ListExpenses returns a group's expenses in the order they were recorded
func (s *ExpenseService) ListExpenses(groupID uuid.UUID) ([]*domain.Expense, error) {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return nil, err
	}
	return group.Expenses, nil
}

// DeleteExpense removes one expense from a group
func (s *ExpenseService) DeleteExpense(groupID, expenseID uuid.UUID) error {
	if err := s.groupRepo.DeleteExpense(groupID, expenseID); err != nil {
		return err
	}

	s.publishEvent(groupID, websocket.ExpenseDeleted(map[string]string{"id": expenseID.String()}))
	return nil
}
