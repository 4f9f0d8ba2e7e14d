package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/evenup/evenup-backend/internal/domain"
	"github.com/dafibh/evenup/evenup-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// GroupHandler handles group session HTTP requests
type GroupHandler struct {
	groupService *service.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
	}
}

// CreateGroupRequest represents the create group request body
type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// RenameGroupRequest represents the rename group request body
type RenameGroupRequest struct {
	Name string `json:"name"`
}

// ReplaceMembersRequest represents the replace members request body
type ReplaceMembersRequest struct {
	Members []string `json:"members"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Members   []string          `json:"members"`
	Expenses  []ExpenseResponse `json:"expenses"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
	ExpiresAt string            `json:"expiresAt"`
}

// CreateGroup opens a new group session
// @Summary Create a group
// @Description Open a group session with between 1 and 26 uniquely named members
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group details"
// @Success 201 {object} GroupResponse
// @Failure 400 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /groups [post]
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	var req CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	group, err := h.groupService.CreateGroup(service.CreateGroupInput{
		Name:    req.Name,
		Members: req.Members,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}

	log.Info().Str("group_id", group.ID.String()).Int("members", len(group.Members)).Msg("Group created")

	return c.JSON(http.StatusCreated, toGroupResponse(group))
}

// GetGroup returns a group with its members and expenses
// @Summary Get a group
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} GroupResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /groups/{id} [get]
func (h *GroupHandler) GetGroup(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid group ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}

	group, err := h.groupService.GetGroup(id)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, toGroupResponse(group))
}

// RenameGroup changes a group's display name
// @Summary Rename a group
// @Tags groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body RenameGroupRequest true "New name"
// @Success 200 {object} GroupResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /groups/{id} [patch]
func (h *GroupHandler) RenameGroup(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid group ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}

	var req RenameGroupRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	group, err := h.groupService.RenameGroup(id, req.Name)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, toGroupResponse(group))
}

// ReplaceMembers sets a new member list and discards recorded expenses
// @Summary Replace group members
// @Description Replaces the member list. Every recorded expense is discarded.
// @Tags groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body ReplaceMembersRequest true "New member list"
// @Success 200 {object} GroupResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /groups/{id}/members [put]
func (h *GroupHandler) ReplaceMembers(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid group ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}

	var req ReplaceMembersRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	group, err := h.groupService.ReplaceMembers(id, req.Members)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	log.Info().Str("group_id", id.String()).Int("members", len(group.Members)).Msg("Group members replaced")

	return c.JSON(http.StatusOK, toGroupResponse(group))
}

// DeleteGroup discards a group session
// @Summary Delete a group
// @Tags groups
// @Param id path string true "Group ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /groups/{id} [delete]
func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid group ID", []ValidationError{
			{Field: "id", Message: "Must be a valid UUID"},
		})
	}

	if err := h.groupService.DeleteGroup(id); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// handleServiceError maps domain errors to appropriate HTTP responses
func (h *GroupHandler) handleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrGroupNotFound):
		return NewNotFoundError(c, "Group not found")
	case errors.Is(err, domain.ErrNoMembers):
		return NewValidationError(c, "At least one member is required", []ValidationError{
			{Field: "members", Message: "At least one member is required"},
		})
	case errors.Is(err, domain.ErrTooManyMembers):
		return NewValidationError(c, "Too many members", []ValidationError{
			{Field: "members", Message: "A group can have at most 26 members"},
		})
	case errors.Is(err, domain.ErrMemberNameRequired):
		return NewValidationError(c, "Member names cannot be empty", []ValidationError{
			{Field: "members", Message: "Member names cannot be empty"},
		})
	case errors.Is(err, domain.ErrMemberNameTooLong):
		return NewValidationError(c, "Member name too long", []ValidationError{
			{Field: "members", Message: "Member names must be 64 characters or less"},
		})
	case errors.Is(err, domain.ErrDuplicateMember):
		return NewValidationError(c, "Duplicate member name", []ValidationError{
			{Field: "members", Message: "Member names must be unique"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Group name too long", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	default:
		log.Error().Err(err).Msg("Group operation failed")
		return NewInternalError(c, "Group operation failed")
	}
}

func toGroupResponse(g *domain.Group) GroupResponse {
	expenses := make([]ExpenseResponse, len(g.Expenses))
	for i, e := range g.Expenses {
		expenses[i] = toExpenseResponse(e)
	}

	return GroupResponse{
		ID:        g.ID.String(),
		Name:      g.Name,
		Members:   g.Members,
		Expenses:  expenses,
		CreatedAt: formatTime(g.CreatedAt),
		UpdatedAt: formatTime(g.UpdatedAt),
		ExpiresAt: formatTime(g.ExpiresAt),
	}
}
