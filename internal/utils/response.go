package utils

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v3"
)

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Envelope merges "ok": true into the top-level fields of data, which must encode as a JSON object.
func Envelope(data any) (map[string]json.RawMessage, error) {
	body := map[string]json.RawMessage{}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode response: %w", err)
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("response is not an object: %w", err)
		}
	}
	body["ok"] = json.RawMessage("true")
	return body, nil
}

func JSON(c fiber.Ctx, status int, data any) error {
	body, err := Envelope(data)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(status).JSON(body)
}

func Error(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{
		OK:    false,
		Error: msg,
	})
}
