package handlers

import (
	"github.com/anthill-gaming/social/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func Register(app *fiber.App, friends *FriendsHandler, groups *GroupsHandler, audit *AuditHandler) {
	app.Get("/health", Health)

	api := app.Group("/api")
	api.Get("/version", NewVersionHandler(friends.Friends).Get)

	friendRoutes := api.Group("/friends", middleware.RequireAuth)
	friendRoutes.Get("/", friends.List)
	friendRoutes.Post("/", friends.Make)
	friendRoutes.Get("/:userId", friends.Check)
	friendRoutes.Delete("/:userId", friends.Remove)

	groupRoutes := api.Group("/groups", middleware.RequireAuth)
	groupRoutes.Post("/", groups.Create)
	groupRoutes.Get("/", groups.List)
	groupRoutes.Get("/:id", groups.Get)
	groupRoutes.Put("/:id", groups.Update)
	groupRoutes.Delete("/:id", groups.Delete)
	groupRoutes.Get("/:id/memberships", groups.Memberships)
	groupRoutes.Get("/:id/messages", groups.Messages)
	groupRoutes.Post("/:id/members", groups.AddMember)
	groupRoutes.Put("/:id/members/:userId", groups.UpdateMember)
	groupRoutes.Delete("/:id/members/:userId", groups.RemoveMember)
	groupRoutes.Get("/:id/members/:userId/receiver", groups.Receiver)

	api.Get("/audit/me", middleware.RequireAuth, audit.ExportMyLog)
}
