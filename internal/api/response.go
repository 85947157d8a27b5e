package api

import "github.com/gofiber/fiber/v2"

// envelope is the uniform response shape for every HTTP path, success or
// failure.
type envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(envelope{
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// errorHandler renders fiber errors (and anything a handler returns) into
// the same envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "an unexpected error occurred"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		msg = e.Message
	}
	return respond(c, code, msg, nil)
}
