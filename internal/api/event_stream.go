package api

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/miffy/internal/realtime"
	"github.com/valyala/fasthttp"
)

const eventStreamKeepAlive = 25 * time.Second

// streamEvents writes every payload from the subscription as a server-sent
// event until the client goes away or the broker closes the subscription.
// release runs once the stream has ended.
func (handler *Handler) streamEvents(c *fiber.Ctx, subscription *realtime.Subscription, release context.CancelFunc, event string) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	logger := handler.logger.WithFields("event", event)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(writer *bufio.Writer) {
		defer release()
		defer subscription.Close()

		ticker := time.NewTicker(eventStreamKeepAlive)
		defer ticker.Stop()

		if _, err := writer.WriteString(": connected\n\n"); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}

		for {
			select {
			case payload, ok := <-subscription.C:
				if !ok {
					return
				}
				if err := writeServerEvent(writer, event, payload); err != nil {
					logger.Debugw("event stream closed", "error", err.Error())
					return
				}
			case <-ticker.C:
				if _, err := writer.WriteString(": ping\n\n"); err != nil {
					return
				}
			}
			if err := writer.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}

func writeServerEvent(writer *bufio.Writer, event string, payload []byte) error {
	if _, err := fmt.Fprintf(writer, "event: %s\n", event); err != nil {
		return err
	}
	for _, line := range strings.Split(string(payload), "\n") {
		if _, err := fmt.Fprintf(writer, "data: %s\n", line); err != nil {
			return err
		}
	}
	_, err := writer.WriteString("\n")
	return err
}
