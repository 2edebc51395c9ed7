package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"gnsons/internal/repositories"
	"gnsons/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad", services.ErrValidation), fiber.StatusBadRequest},
		{services.ErrInvalidStatus, fiber.StatusBadRequest},
		{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{services.ErrTokenInvalid, fiber.StatusUnauthorized},
		{services.ErrSubjectNotFound, fiber.StatusUnauthorized},
		{services.ErrForbidden, fiber.StatusForbidden},
		{fmt.Errorf("order x: %w", repositories.ErrNotFound), fiber.StatusNotFound},
		{services.ErrAlreadyExists, fiber.StatusConflict},
		{repositories.ErrVersionConflict, fiber.StatusConflict},
		{services.ErrTransitionDenied, fiber.StatusConflict},
		{services.ErrTooLarge, fiber.StatusRequestEntityTooLarge},
		{fiber.NewError(fiber.StatusTooManyRequests, "slow down"), fiber.StatusTooManyRequests},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Post("/", func(c *fiber.Ctx) error {
		var req registerRequest
		return parseBody(c, &req)
	})

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope","password":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool              `json:"success"`
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Details, "email")
	assert.Contains(t, body.Details, "password")
	assert.Contains(t, body.Details, "name")
	assert.Equal(t, "failed on the 'min=6' rule", body.Details["password"])
}
