package handlers

import (
	"errors"
	"strconv"

	"github.com/anthill-gaming/social/internal/middleware"
	"github.com/anthill-gaming/social/internal/services"
	"github.com/anthill-gaming/social/pkg/logger"
	"github.com/anthill-gaming/social/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type FriendsHandler struct {
	Friends *services.FriendService
	Audit   *services.AuditService
}

func NewFriendsHandler(friends *services.FriendService, audit *services.AuditService) *FriendsHandler {
	return &FriendsHandler{Friends: friends, Audit: audit}
}

type friendListResponse struct {
	UserID  int64   `json:"userID"`
	Friends []int64 `json:"friends"`
}

type friendCheckResponse struct {
	UserID     int64 `json:"userID"`
	AreFriends bool  `json:"areFriends"`
}

type makeFriendsRequest struct {
	UserID int64 `json:"userID"`
}

func (h *FriendsHandler) List(c *fiber.Ctx) error {
	currentUserID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	friends, err := h.Friends.GetFriends(c.UserContext(), currentUserID)
	if err != nil {
		logger.ErrorWithUser(strconv.FormatInt(currentUserID, 10), "friends_list_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing friends")
	}

	return utils.Success(c, fiber.StatusOK, friendListResponse{UserID: currentUserID, Friends: friends})
}

func (h *FriendsHandler) Check(c *fiber.Ctx) error {
	currentUserID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	otherID, err := parseUserID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	areFriends, err := h.Friends.AreFriends(c.UserContext(), currentUserID, otherID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking friendship")
	}

	return utils.Success(c, fiber.StatusOK, friendCheckResponse{UserID: otherID, AreFriends: areFriends})
}

func (h *FriendsHandler) Make(c *fiber.Ctx) error {
	currentUserID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req makeFriendsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserID <= 0 {
		return utils.Error(c, fiber.StatusBadRequest, "userID is required")
	}

	group, err := h.Friends.MakeFriends(c.UserContext(), currentUserID, req.UserID)
	switch {
	case errors.Is(err, services.ErrInvalidFriendPair):
		return utils.Error(c, fiber.StatusBadRequest, "cannot befriend yourself")
	case errors.Is(err, services.ErrAlreadyFriends):
		return utils.Error(c, fiber.StatusConflict, "already friends")
	case err != nil:
		logger.ErrorWithUser(strconv.FormatInt(currentUserID, 10), "friends_make_failed", err, map[string]interface{}{
			"friend_id": req.UserID,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed making friends")
	}

	recordAudit(c, h.Audit, services.AuditFriendMake, &group.ID, map[string]interface{}{
		"friend_id": req.UserID,
	})

	return utils.Success(c, fiber.StatusCreated, group)
}

func (h *FriendsHandler) Remove(c *fiber.Ctx) error {
	currentUserID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	otherID, err := parseUserID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	groupID, err := h.Friends.RemoveFriends(c.UserContext(), currentUserID, otherID)
	if errors.Is(err, services.ErrNotFound) {
		return utils.Error(c, fiber.StatusNotFound, "friendship not found")
	}
	if err != nil {
		logger.ErrorWithUser(strconv.FormatInt(currentUserID, 10), "friends_remove_failed", err, map[string]interface{}{
			"friend_id": otherID,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed removing friendship")
	}

	recordAudit(c, h.Audit, services.AuditFriendRemove, &groupID, map[string]interface{}{
		"friend_id": otherID,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "friendship removed", "groupID": groupID})
}
