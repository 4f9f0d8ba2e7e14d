package service

import (
	"strings"
	"unicode/utf8"

	"github.com/dafibh/evenup/evenup-backend/internal/domain"
	"github.com/dafibh/evenup/evenup-backend/internal/websocket"
	"github.com/google/uuid"
)

// groupCloser is implemented by publishers that can drop a group's listeners
type groupCloser interface {
	CloseGroup(groupID uuid.UUID)
}

// GroupService handles group session business logic
type GroupService struct {
	groupRepo      domain.GroupRepository
	eventPublisher websocket.EventPublisher
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo domain.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *GroupService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *GroupService) publishEvent(groupID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(groupID, event)
	}
}

// CreateGroupInput contains input for creating a group
type CreateGroupInput struct {
	Name    string
	Members []string
}

// CreateGroup validates the member list and opens a new group session
func (s *GroupService) CreateGroup(input CreateGroupInput) (*domain.Group, error) {
	name := strings.TrimSpace(input.Name)
	if utf8.RuneCountInString(name) > domain.MaxGroupNameLength {
		return nil, domain.ErrNameTooLong
	}

	members, err := domain.NormalizeMembers(input.Members)
	if err != nil {
		return nil, err
	}

	group := &domain.Group{
		Name:     name,
		Members:  members,
		Expenses: []*domain.Expense{},
	}

	return s.groupRepo.Create(group)
}

// GetGroup retrieves a group with its members and expenses
func (s *GroupService) GetGroup(id uuid.UUID) (*domain.Group, error) {
	return s.groupRepo.GetByID(id)
}

// RenameGroup changes a group's display name
func (s *GroupService) RenameGroup(id uuid.UUID, name string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > domain.MaxGroupNameLength {
		return nil, domain.ErrNameTooLong
	}

	group, err := s.groupRepo.UpdateName(id, name)
	if err != nil {
		return nil, err
	}

	s.publishEvent(id, websocket.GroupUpdated(group))
	return group, nil
}

// ReplaceMembers sets a new member list. Recorded expenses are discarded
// because they may name members that are no longer in the group.
func (s *GroupService) ReplaceMembers(id uuid.UUID, members []string) (*domain.Group, error) {
	normalized, err := domain.NormalizeMembers(members)
	if err != nil {
		return nil, err
	}

	group, err := s.groupRepo.ReplaceMembers(id, normalized)
	if err != nil {
		return nil, err
	}

	s.publishEvent(id, websocket.GroupMembersChanged(group))
	return group, nil
}

// DeleteGroup discards a group session and disconnects its listeners
func (s *GroupService) DeleteGroup(id uuid.UUID) error {
	if err := s.groupRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent(id, websocket.GroupDeleted(map[string]string{"id": id.String()}))
	if closer, ok := s.eventPublisher.(groupCloser); ok {
		closer.CloseGroup(id)
	}
	return nil
}
