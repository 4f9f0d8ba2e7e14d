package service

import (
	"fmt"
	"time"

	"github.com/dafibh/evenup/evenup-backend/internal/domain"
	"github.com/dafibh/evenup/evenup-backend/internal/settlement"
	"github.com/dafibh/evenup/evenup-backend/internal/websocket"
	"github.com/google/uuid"
)

// SettlementService computes balances and the transfers that settle them
type SettlementService struct {
	groupRepo      domain.GroupRepository
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(groupRepo domain.GroupRepository) *SettlementService {
	return &SettlementService{
		groupRepo: groupRepo,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *SettlementService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *SettlementService) publishEvent(groupID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(groupID, event)
	}
}

// Calculate settles an ad-hoc list of participants and payments without
// touching any stored group. Precondition failures are reported as
// domain.ErrInvalidInput wrapping the engine error.
func (s *SettlementService) Calculate(input domain.SettlementInput) (*domain.SettlementResult, error) {
	payments := make([]settlement.Payment, len(input.Payments))
	for i, p := range input.Payments {
		payments[i] = settlement.Payment{
			Payer:         p.Payer,
			Beneficiaries: p.Beneficiaries,
			Amount:        p.Amount,
		}
	}

	result, err := settlement.Calculate(input.Participants, payments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	return s.toDomainResult(result, nil), nil
}

// SettleGroup runs the settlement over a group's members and expenses
func (s *SettlementService) SettleGroup(groupID uuid.UUID) (*domain.SettlementResult, error) {
	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return nil, err
	}

	if len(group.Expenses) == 0 {
		return nil, domain.ErrNoExpenses
	}

	payments := make([]settlement.Payment, len(group.Expenses))
	for i, e := range group.Expenses {
		payments[i] = settlement.Payment{
			Payer:         e.Payer,
			Beneficiaries: e.Beneficiaries,
			Amount:        e.Amount.InexactFloat64(),
		}
	}

	result, err := settlement.Calculate(group.Members, payments)
	if err != nil {
		// stored groups are validated on every write, so this is a broken invariant
		return nil, fmt.Errorf("%w: group %s: %w", domain.ErrInternalError, groupID, err)
	}

	summary := s.toDomainResult(result, &groupID)
	s.publishEvent(groupID, websocket.SettlementCalculated(summary))
	return summary, nil
}

func (s *SettlementService) toDomainResult(result *settlement.Result, groupID *uuid.UUID) *domain.SettlementResult {
	entries := result.Balances.Entries()
	balances := make([]domain.MemberBalance, len(entries))
	for i, e := range entries {
		balances[i] = domain.MemberBalance{Member: e.Participant, Amount: e.Amount}
	}

	transfers := make([]domain.Transfer, len(result.Transfers))
	for i, t := range result.Transfers {
		transfers[i] = domain.Transfer{From: t.From, To: t.To, Amount: t.Amount}
	}

	return &domain.SettlementResult{
		GroupID:      groupID,
		Balances:     balances,
		Transfers:    transfers,
		CalculatedAt: s.now().UTC(),
	}
}
