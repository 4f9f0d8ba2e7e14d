package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrNoMembers          = errors.New("group needs at least one member")
	ErrTooManyMembers     = errors.New("group exceeds maximum member count")
	ErrMemberNameRequired = errors.New("member name is required")
	ErrMemberNameTooLong  = errors.New("member name exceeds maximum length")
	ErrDuplicateMember    = errors.New("member names must be unique")
)

// Group limits
const (
	MaxMembers          = 26
	MaxMemberNameLength = 64
	MaxGroupNameLength  = 255
)

// Group is a shared-expense session: a fixed set of members and the
// expenses recorded between them. Groups live in memory and expire.
type Group struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Members   []string   `json:"members"`
	Expenses  []*Expense `json:"expenses"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// Validate checks the group name and member list
func (g *Group) Validate() error {
	if utf8.RuneCountInString(g.Name) > MaxGroupNameLength {
		return ErrNameTooLong
	}
	return ValidateMembers(g.Members)
}

// HasMember reports whether name is one of the group's members
func (g *Group) HasMember(name string) bool {
	for _, m := range g.Members {
		if m == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out groups without sharing state
func (g *Group) Clone() *Group {
	clone := *g
	clone.Members = append([]string(nil), g.Members...)
	clone.Expenses = make([]*Expense, len(g.Expenses))
	for i, e := range g.Expenses {
		clone.Expenses[i] = e.Clone()
	}
	return &clone
}

// NormalizeMembers trims every name and validates the resulting list
func NormalizeMembers(names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.TrimSpace(n)
	}
	if err := ValidateMembers(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateMembers checks count, emptiness, length and uniqueness of member names
func ValidateMembers(members []string) error {
	if len(members) == 0 {
		return ErrNoMembers
	}
	if len(members) > MaxMembers {
		return ErrTooManyMembers
	}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m == "" {
			return ErrMemberNameRequired
		}
		if utf8.RuneCountInString(m) > MaxMemberNameLength {
			return ErrMemberNameTooLong
		}
		if _, dup := seen[m]; dup {
			return ErrDuplicateMember
		}
		seen[m] = struct{}{}
	}
	return nil
}

// GroupRepository stores group sessions
type GroupRepository interface {
	Create(group *Group) (*Group, error)
	GetByID(id uuid.UUID) (*Group, error)
	UpdateName(id uuid.UUID, name string) (*Group, error)
	ReplaceMembers(id uuid.UUID, members []string) (*Group, error)
	Delete(id uuid.UUID) error
	AddExpense(groupID uuid.UUID, expense *Expense) (*Expense, error)
	DeleteExpense(groupID, expenseID uuid.UUID) error
}
