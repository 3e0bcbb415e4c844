package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerShape(t *testing.T) {
	app := New("Test Service")
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "kettle over")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Equal(t, "error", body["status"])
	require.EqualValues(t, fiber.StatusTeapot, body["code"])
	require.Equal(t, "kettle over", body["message"])
}

func TestPanicsBecomeErrorResponses(t *testing.T) {
	app := New("Test Service")
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("unexpected")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
