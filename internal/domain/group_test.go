package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateMembers(t *testing.T) {
	tooMany := make([]string, MaxMembers+1)
	for i := range tooMany {
		tooMany[i] = string(rune('A' + i))
	}

	tests := []struct {
		name    string
		members []string
		wantErr error
	}{
		{
			name:    "valid members",
			members: []string{"Amy", "Ben"},
			wantErr: nil,
		},
		{
			name:    "single member",
			members: []string{"Solo"},
			wantErr: nil,
		},
		{
			name:    "maximum members",
			members: tooMany[:MaxMembers],
			wantErr: nil,
		},
		{
			name:    "no members",
			members: nil,
			wantErr: ErrNoMembers,
		},
		{
			name:    "too many members",
			members: tooMany,
			wantErr: ErrTooManyMembers,
		},
		{
			name:    "empty name",
			members: []string{"Amy", ""},
			wantErr: ErrMemberNameRequired,
		},
		{
			name:    "duplicate name",
			members: []string{"Amy", "Ben", "Amy"},
			wantErr: ErrDuplicateMember,
		},
		{
			name:    "name too long",
			members: []string{strings.Repeat("x", MaxMemberNameLength+1)},
			wantErr: ErrMemberNameTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMembers(tt.members)
			if err != tt.wantErr {
				t.Errorf("ValidateMembers() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeMembers_TrimsNames(t *testing.T) {
	members, err := NormalizeMembers([]string{"  Amy ", "Ben\t"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if members[0] != "Amy" || members[1] != "Ben" {
		t.Errorf("expected trimmed names, got %q", members)
	}
}

func TestNormalizeMembers_WhitespaceOnlyName(t *testing.T) {
	_, err := NormalizeMembers([]string{"Amy", "   "})
	if err != ErrMemberNameRequired {
		t.Errorf("expected ErrMemberNameRequired, got %v", err)
	}
}

func TestNormalizeMembers_DuplicateAfterTrim(t *testing.T) {
	_, err := NormalizeMembers([]string{"Amy", " Amy"})
	if err != ErrDuplicateMember {
		t.Errorf("expected ErrDuplicateMember, got %v", err)
	}
}

func TestGroupValidate_NameTooLong(t *testing.T) {
	g := Group{Name: strings.Repeat("n", MaxGroupNameLength+1), Members: []string{"Amy"}}
	if err := g.Validate(); err != ErrNameTooLong {
		t.Errorf("expected ErrNameTooLong, got %v", err)
	}
}

func TestGroupHasMember(t *testing.T) {
	g := Group{Members: []string{"Amy", "Ben"}}
	if !g.HasMember("Ben") {
		t.Error("expected Ben to be a member")
	}
	if g.HasMember("ben") {
		t.Error("member lookup should be case sensitive")
	}
}

func TestGroupClone_IsDeep(t *testing.T) {
	g := &Group{
		Members: []string{"Amy", "Ben"},
		Expenses: []*Expense{
			{Payer: "Amy", Beneficiaries: []string{"Amy", "Ben"}, Amount: decimal.NewFromInt(10)},
		},
	}

	clone := g.Clone()
	clone.Members[0] = "Zed"
	clone.Expenses[0].Beneficiaries[0] = "Zed"
	clone.Expenses[0].Payer = "Zed"

	if g.Members[0] != "Amy" {
		t.Errorf("clone shares member slice")
	}
	if g.Expenses[0].Beneficiaries[0] != "Amy" || g.Expenses[0].Payer != "Amy" {
		t.Errorf("clone shares expenses")
	}
}

func TestExpenseShare(t *testing.T) {
	e := Expense{Beneficiaries: []string{"A", "B", "C", "D"}, Amount: decimal.NewFromInt(90)}
	if got := e.Share().StringFixed(2); got != "22.50" {
		t.Errorf("expected share 22.50, got %s", got)
	}

	empty := Expense{Amount: decimal.NewFromInt(90)}
	if !empty.Share().IsZero() {
		t.Errorf("expected zero share without beneficiaries, got %s", empty.Share())
	}
}
