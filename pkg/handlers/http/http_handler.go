package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Moderation
	ModerateHandler   Handler
	QuickCheckHandler Handler
	StatusHandler     Handler

	// Blocklist administration
	ReloadBlocklistHandler Handler
}
