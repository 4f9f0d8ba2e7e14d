package memory

import (
	"sync"
	"time"

	"github.com/dafibh/evenup/evenup-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SweepInterval is how often expired groups are evicted
const SweepInterval = time.Minute

// GroupRepository implements domain.GroupRepository in process memory.
// Groups expire ttl after their last write. Stored groups are never handed
// out directly; every read and write returns a copy.
type GroupRepository struct {
	groups   map[uuid.UUID]*domain.Group
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewGroupRepository creates a GroupRepository and starts its sweeper
func NewGroupRepository(ttl time.Duration) *GroupRepository {
	r := &GroupRepository{
		groups: make(map[uuid.UUID]*domain.Group),
		ttl:    ttl,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}

	go r.sweepLoop()

	return r
}

// Create stores a new group
func (r *GroupRepository) Create(group *domain.Group) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	stored := group.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.Expenses == nil {
		stored.Expenses = []*domain.Expense{}
	}
	stored.CreatedAt = now
	r.touch(stored, now)

	r.groups[stored.ID] = stored
	return stored.Clone(), nil
}

// GetByID retrieves a live group
func (r *GroupRepository) GetByID(id uuid.UUID) (*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return group.Clone(), nil
}

// UpdateName renames a group
func (r *GroupRepository) UpdateName(id uuid.UUID, name string) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, err := r.get(id)
	if err != nil {
		return nil, err
	}
	group.Name = name
	r.touch(group, r.now())
	return group.Clone(), nil
}

// ReplaceMembers swaps the member list and drops every recorded expense,
// since existing expenses may reference members that no longer exist
func (r *GroupRepository) ReplaceMembers(id uuid.UUID, members []string) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, err := r.get(id)
	if err != nil {
		return nil, err
	}
	group.Members = append([]string(nil), members...)
	group.Expenses = []*domain.Expense{}
	r.touch(group, r.now())
	return group.Clone(), nil
}

// Delete removes a group
func (r *GroupRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.get(id); err != nil {
		return err
	}
	delete(r.groups, id)
	return nil
}

// AddExpense appends an expense to a group
func (r *GroupRepository) AddExpense(groupID uuid.UUID, expense *domain.Expense) (*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, err := r.get(groupID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	stored := expense.Clone()
	stored.ID = uuid.New()
	stored.GroupID = groupID
	stored.CreatedAt = now

	group.Expenses = append(group.Expenses, stored)
	r.touch(group, now)
	return stored.Clone(), nil
}

// DeleteExpense removes one expense from a group, keeping the order of the rest
func (r *GroupRepository) DeleteExpense(groupID, expenseID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, err := r.get(groupID)
	if err != nil {
		return err
	}

	for i, e := range group.Expenses {
		if e.ID == expenseID {
			group.Expenses = append(group.Expenses[:i], group.Expenses[i+1:]...)
			r.touch(group, r.now())
			return nil
		}
	}
	return domain.ErrExpenseNotFound
}

// Count returns the number of live groups
func (r *GroupRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	count := 0
	for _, g := range r.groups {
		if now.Before(g.ExpiresAt) {
			count++
		}
	}
	return count
}

// Sweep evicts expired groups and returns how many were removed
func (r *GroupRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, g := range r.groups {
		if !now.Before(g.ExpiresAt) {
			delete(r.groups, id)
			removed++
			log.Debug().Str("group_id", id.String()).Msg("Evicted expired group")
		}
	}
	return removed
}

// Stop stops the sweeper goroutine. Safe to call more than once.
func (r *GroupRepository) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
}

// get must be called with the lock held
func (r *GroupRepository) get(id uuid.UUID) (*domain.Group, error) {
	group, ok := r.groups[id]
	if !ok || !r.now().Before(group.ExpiresAt) {
		return nil, domain.ErrGroupNotFound
	}
	return group, nil
}

func (r *GroupRepository) touch(group *domain.Group, now time.Time) {
	group.UpdatedAt = now
	group.ExpiresAt = now.Add(r.ttl)
}

func (r *GroupRepository) sweepLoop() {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				log.Info().Int("removed", removed).Msg("Swept expired groups")
			}
		case <-r.stopCh:
			return
		}
	}
}

// Ensure GroupRepository implements domain.GroupRepository
var _ domain.GroupRepository = (*GroupRepository)(nil)
