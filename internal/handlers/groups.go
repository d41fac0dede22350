package handlers

import (
	"errors"
	"strconv"

	"github.com/anthill-gaming/social/internal/middleware"
	"github.com/anthill-gaming/social/internal/models"
	"github.com/anthill-gaming/social/internal/services"
	"github.com/anthill-gaming/social/pkg/logger"
	"github.com/anthill-gaming/social/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type GroupsHandler struct {
	Groups *services.GroupService
	Audit  *services.AuditService
}

func NewGroupsHandler(groups *services.GroupService, audit *services.AuditService) *GroupsHandler {
	return &GroupsHandler{Groups: groups, Audit: audit}
}

type createGroupRequest struct {
	Name *string `json:"name"`
	Type string  `json:"type"`
}

func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	currentUserID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	groupType := models.GroupTypeMultiple
	if req.Type != "" {
		parsed, ok := models.ParseGroupType(req.Type)
		if !ok {
			return utils.Error(c, fiber.StatusBadRequest, "invalid group type")
		}
		groupType = parsed
	}

	group, err := h.Groups.CreateGroup(c.UserContext(), services.CreateGroupInput{
		Name:      req.Name,
		Type:      groupType,
		CreatorID: currentUserID,
	})
	switch {
	case errors.Is(err, services.ErrGroupNameTaken):
		return utils.Error(c, fiber.StatusConflict, "group name already taken")
	case errors.Is(err, services.ErrInvalidGroupType):
		return utils.Error(c, fiber.StatusBadRequest, "invalid group type")
	case errors.Is(err, services.ErrPersonalGroup):
		return utils.Error(c, fiber.StatusBadRequest, "personal groups are created by making friends")
	case err != nil:
		logger.ErrorWithUser(strconv.FormatInt(currentUserID, 10), "group_create_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating group")
	}

	logger.InfoWithUser(strconv.FormatInt(currentUserID, 10), "group_created", map[string]interface{}{
		"group_id":   group.ID,
		"group_type": group.Type.Label(),
	})
	recordAudit(c, h.Audit, services.AuditGroupCreate, &group.ID, map[string]interface{}{
		"group_type": string(group.Type),
	})

	return utils.Success(c, fiber.StatusCreated, group)
}

func (h *GroupsHandler) List(c *fiber.Ctx) error {
	currentUserID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groups, err := h.Groups.ListUserGroups(c.UserContext(), currentUserID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing groups")
	}

	return utils.Success(c, fiber.StatusOK, groups)
}

func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	groupID, ok, err := h.authorize(c)
	if !ok {
		return err
	}

	group, err := h.Groups.GetGroup(c.UserContext(), groupID)
	if errors.Is(err, services.ErrNotFound) {
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	}
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading group")
	}

	return utils.Success(c, fiber.StatusOK, group)
}

type updateGroupRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	groupID, ok, err := h.authorize(c)
	if !ok {
		return err
	}

	var req updateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == nil && req.Active == nil {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	group, err := h.Groups.UpdateGroup(c.UserContext(), groupID, services.UpdateGroupInput{
		Name:   req.Name,
		Active: req.Active,
	})
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	case errors.Is(err, services.ErrGroupNameTaken):
		return utils.Error(c, fiber.StatusConflict, "group name already taken")
	case err != nil:
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating group")
	}

	details := map[string]interface{}{}
	if req.Name != nil {
		details["name"] = *req.Name
	}
	if req.Active != nil {
		details["active"] = *req.Active
	}
	recordAudit(c, h.Audit, services.AuditGroupUpdate, &group.ID, details)

	return utils.Success(c, fiber.StatusOK, group)
}

func (h *GroupsHandler) Delete(c *fiber.Ctx) error {
	groupID, ok, err := h.authorize(c)
	if !ok {
		return err
	}

	if err := h.Groups.DeleteGroup(c.UserContext(), groupID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "group not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting group")
	}

	recordAudit(c, h.Audit, services.AuditGroupDelete, &groupID, nil)

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "group deleted"})
}

func (h *GroupsHandler) Memberships(c *fiber.Ctx) error {
	groupID, ok, err := h.authorize(c)
	if !ok {
		return err
	}

	query := services.MembershipQuery{}
	if raw := c.Query("userId"); raw != "" {
		userID, err := parseUserID(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid userId")
		}
		query.UserID = &userID
	}
	if raw := c.Query("active"); raw != "" {
		query.Active = utils.ParseOptionalBool(raw)
		if query.Active == nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid active flag")
		}
	}

	memberships, err := h.Groups.GetMemberships(c.UserContext(), groupID, query)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing memberships")
	}

	pagination := utils.ParsePagination(c)
	start, end := pagination.Window(len(memberships))
	return utils.Paginated(c, memberships[start:end], pagination.Page, pagination.Limit, int64(len(memberships)))
}

func (h *GroupsHandler) Messages(c *fiber.Ctx) error {
	groupID, ok, err := h.authorize(c)
	if !ok {
		return err
	}

	query := services.MessageQuery{}
	if raw := c.Query("senderId"); raw != "" {
		senderID, err := parseUserID(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid senderId")
		}
		query.SenderID = &senderID
	}
	if raw := c.Query("active"); raw != "" {
		query.Active = utils.ParseOptionalBool(raw)
		if query.Active == nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid active flag")
		}
	}

	messages, err := h.Groups.GetMessages(c.UserContext(), groupID, query)
	if err != nil {
		logger.Error("group_messages_failed", err, map[string]interface{}{
			"group_id": groupID,
		})
		return utils.Error(c, fiber.StatusBadGateway, "message service unavailable")
	}

	return utils.Success(c, fiber.StatusOK, messages)
}

type addMemberRequest struct {
	UserID          int64 `json:"userID"`
	NotifyByMessage *bool `json:"notifyByMessage"`
	NotifyByEmail   *bool `json:"notifyByEmail"`
}

func (h *GroupsHandler) AddMember(c *fiber.Ctx) error {
	groupID, ok, err := h.authorize(c)
	if !ok {
		return err
	}

	var req addMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserID <= 0 {
		return utils.Error(c, fiber.StatusBadRequest, "userID is required")
	}

	membership, err := h.Groups.AddMember(c.UserContext(), groupID, services.AddMemberInput{
		UserID:          req.UserID,
		NotifyByMessage: req.NotifyByMessage,
		NotifyByEmail:   req.NotifyByEmail,
	})
	switch {
	case errors.Is(err, services.ErrAlreadyMember):
		return utils.Error(c, fiber.StatusConflict, "user is already a member")
	case errors.Is(err, services.ErrPersonalGroup):
		return utils.Error(c, fiber.StatusConflict, "personal groups cannot take new members")
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	case err != nil:
		return utils.Error(c, fiber.StatusInternalServerError, "failed adding member")
	}

	recordAudit(c, h.Audit, services.AuditGroupMemberAdd, &groupID, map[string]interface{}{
		"target_user_id": req.UserID,
	})

	return utils.Success(c, fiber.StatusCreated, membership)
}

type updateMemberRequest struct {
	Active          *bool `json:"active"`
	NotifyByMessage *bool `json:"notifyByMessage"`
	NotifyByEmail   *bool `json:"notifyByEmail"`
}

func (h *GroupsHandler) UpdateMember(c *fiber.Ctx) error {
	groupID, ok, err := h.authorize(c)
	if !ok {
		return err
	}
	userID, err := parseUserID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req updateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Active == nil && req.NotifyByMessage == nil && req.NotifyByEmail == nil {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	membership, err := h.Groups.UpdateMembership(c.UserContext(), groupID, userID, services.UpdateMembershipInput{
		Active:          req.Active,
		NotifyByMessage: req.NotifyByMessage,
		NotifyByEmail:   req.NotifyByEmail,
	})
	if errors.Is(err, services.ErrNotFound) {
		return utils.Error(c, fiber.StatusNotFound, "member not found")
	}
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating member")
	}

	recordAudit(c, h.Audit, services.AuditGroupMemberUpdate, &groupID, map[string]interface{}{
		"target_user_id": userID,
	})

	return utils.Success(c, fiber.StatusOK, membership)
}

func (h *GroupsHandler) RemoveMember(c *fiber.Ctx) error {
	groupID, ok, err := h.authorize(c)
	if !ok {
		return err
	}
	userID, err := parseUserID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.Groups.RemoveMember(c.UserContext(), groupID, userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "member not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed removing member")
	}

	recordAudit(c, h.Audit, services.AuditGroupMemberRemove, &groupID, map[string]interface{}{
		"target_user_id": userID,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "member removed"})
}

func (h *GroupsHandler) Receiver(c *fiber.Ctx) error {
	groupID, ok, err := h.authorize(c)
	if !ok {
		return err
	}
	userID, err := parseUserID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	membership, err := h.Groups.GetMembership(c.UserContext(), groupID, userID)
	if errors.Is(err, services.ErrNotFound) {
		return utils.Error(c, fiber.StatusNotFound, "member not found")
	}
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading member")
	}

	receiver, err := h.Groups.GetReceiver(c.UserContext(), membership)
	if err != nil {
		logger.Error("group_receiver_failed", err, map[string]interface{}{
			"group_id": groupID,
			"user_id":  userID,
		})
		return utils.Error(c, fiber.StatusBadGateway, "user service unavailable")
	}

	return utils.Success(c, fiber.StatusOK, receiver)
}

// authorize requires the caller to hold an active membership in the group named
// by the :id param. When ok is false the response has been written and err is
// what the handler returns.
func (h *GroupsHandler) authorize(c *fiber.Ctx) (groupID uint, ok bool, err error) {
	currentUserID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return 0, false, utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err = parseGroupID(c.Params("id"))
	if err != nil {
		return 0, false, utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	membership, err := h.Groups.GetMembership(c.UserContext(), groupID, currentUserID)
	if errors.Is(err, services.ErrNotFound) || (err == nil && !membership.Active) {
		return 0, false, utils.Error(c, fiber.StatusForbidden, "group access denied")
	}
	if err != nil {
		return 0, false, utils.Error(c, fiber.StatusInternalServerError, "failed validating membership")
	}

	return groupID, true, nil
}
