package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// adaptor mounts a net/http handler on fiber.
func adaptor(h http.Handler) fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(h)
	return func(ctx *fiber.Ctx) error {
		handler(ctx.Context())
		return nil
	}
}
