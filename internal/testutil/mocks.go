package testutil

import (
	"sync"
	"time"

	"github.com/dafibh/evenup/evenup-backend/internal/domain"
	"github.com/dafibh/evenup/evenup-backend/internal/websocket"
	"github.com/google/uuid"
)

// MockGroupRepository is a mock implementation of domain.GroupRepository
type MockGroupRepository struct {
	Groups map[uuid.UUID]*domain.Group

	// Optional overrides for simulating failures
	CreateFn     func(group *domain.Group) (*domain.Group, error)
	AddExpenseFn func(groupID uuid.UUID, expense *domain.Expense) (*domain.Expense, error)
}

// NewMockGroupRepository creates a new MockGroupRepository
func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		Groups: make(map[uuid.UUID]*domain.Group),
	}
}

// AddGroup adds a group directly to the mock store
func (m *MockGroupRepository) AddGroup(group *domain.Group) {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	if group.Expenses == nil {
		group.Expenses = []*domain.Expense{}
	}
	m.Groups[group.ID] = group
}

// Create creates a new group
func (m *MockGroupRepository) Create(group *domain.Group) (*domain.Group, error) {
	if m.CreateFn != nil {
		return m.CreateFn(group)
	}
	stored := group.Clone()
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	stored.ExpiresAt = stored.CreatedAt.Add(time.Hour)
	m.AddGroup(stored)
	return stored.Clone(), nil
}

// GetByID retrieves a group by ID
func (m *MockGroupRepository) GetByID(id uuid.UUID) (*domain.Group, error) {
	if group, ok := m.Groups[id]; ok {
		return group.Clone(), nil
	}
	return nil, domain.ErrGroupNotFound
}

// UpdateName renames a group
func (m *MockGroupRepository) UpdateName(id uuid.UUID, name string) (*domain.Group, error) {
	group, ok := m.Groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	group.Name = name
	return group.Clone(), nil
}

// ReplaceMembers swaps the member list and clears expenses
func (m *MockGroupRepository) ReplaceMembers(id uuid.UUID, members []string) (*domain.Group, error) {
	group, ok := m.Groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	group.Members = append([]string(nil), members...)
	group.Expenses = []*domain.Expense{}
	return group.Clone(), nil
}

// Delete removes a group
func (m *MockGroupRepository) Delete(id uuid.UUID) error {
	if _, ok := m.Groups[id]; !ok {
		return domain.ErrGroupNotFound
	}
	delete(m.Groups, id)
	return nil
}

// AddExpense appends an expense to a group
func (m *MockGroupRepository) AddExpense(groupID uuid.UUID, expense *domain.Expense) (*domain.Expense, error) {
	if m.AddExpenseFn != nil {
		return m.AddExpenseFn(groupID, expense)
	}
	group, ok := m.Groups[groupID]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	stored := expense.Clone()
	stored.ID = uuid.New()
	stored.GroupID = groupID
	stored.CreatedAt = time.Now()
	group.Expenses = append(group.Expenses, stored)
	return stored.Clone(), nil
}

// DeleteExpense removes an expense from a group
func (m *MockGroupRepository) DeleteExpense(groupID, expenseID uuid.UUID) error {
	group, ok := m.Groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	for i, e := range group.Expenses {
		if e.ID == expenseID {
			group.Expenses = append(group.Expenses[:i], group.Expenses[i+1:]...)
			return nil
		}
	}
	return domain.ErrExpenseNotFound
}

// PublishedEvent is an event captured by MockEventPublisher
type PublishedEvent struct {
	GroupID uuid.UUID
	Event   websocket.Event
}

// MockEventPublisher records every published event
type MockEventPublisher struct {
	Events       []PublishedEvent
	ClosedGroups []uuid.UUID
	mu           sync.Mutex
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(groupID uuid.UUID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{GroupID: groupID, Event: event})
}

// CloseGroup records that the group's listeners were disconnected
func (m *MockEventPublisher) CloseGroup(groupID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClosedGroups = append(m.ClosedGroups, groupID)
}

// EventTypes returns the types of all recorded events in order
func (m *MockEventPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
