package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anthill-gaming/social/internal/middleware"
	"github.com/anthill-gaming/social/internal/services"
	"github.com/gofiber/fiber/v2"
)

func parseGroupID(value string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid group id %q", value)
	}
	return uint(id), nil
}

func parseUserID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", value)
	}
	return id, nil
}

func recordAudit(c *fiber.Ctx, audit *services.AuditService, action string, resourceID *uint, details map[string]interface{}) {
	if audit == nil {
		return
	}
	entry := services.AuditEntry{
		Action:       action,
		ResourceType: "group",
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    c.IP(),
		RequestID:    middleware.GetRequestID(c),
	}
	if userID, ok := middleware.GetCurrentUserID(c); ok {
		entry.UserID = &userID
	}
	audit.LogAsync(entry)
}
