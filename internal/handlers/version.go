package handlers

import (
	"github.com/anthill-gaming/social/internal/services"
	"github.com/anthill-gaming/social/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// Version is the server version, injected at build time:
//
//	go build -ldflags "-X github.com/anthill-gaming/social/internal/handlers.Version=1.2.3"
var Version = "dev"

const apiVersion = "v1"

type versionResponse struct {
	Version       string `json:"version"`
	APIVersion    string `json:"apiVersion"`
	FriendsCache  bool   `json:"friendsCache"`
	UniqueFriends bool   `json:"uniqueFriends"`
}

// VersionHandler reports the build plus how friendships are served.
type VersionHandler struct {
	FriendsCache  bool
	UniqueFriends bool
}

func NewVersionHandler(friends *services.FriendService) *VersionHandler {
	if friends == nil {
		return &VersionHandler{}
	}
	return &VersionHandler{
		FriendsCache:  friends.Cache != nil,
		UniqueFriends: friends.EnforceUniquePairs,
	}
}

func (h *VersionHandler) Get(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, versionResponse{
		Version:       Version,
		APIVersion:    apiVersion,
		FriendsCache:  h.FriendsCache,
		UniqueFriends: h.UniqueFriends,
	})
}

func Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
