package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) ListNotices(c *fiber.Ctx) error {
	owner := handler.ownerOrGuest(c)
	return c.JSON(fiber.Map{"notices": handler.notices.List(owner.Key)})
}

func (handler *Handler) NoticeStream(c *fiber.Ctx) error {
	owner := handler.ownerOrGuest(c)
	ctx, cancel := context.WithCancel(context.Background())
	subscription, err := handler.notices.Subscribe(ctx, owner.Key)
	if err != nil {
		cancel()
		return handler.respondServiceError(c, err)
	}
	return handler.streamEvents(c, subscription, cancel, "notice")
}
