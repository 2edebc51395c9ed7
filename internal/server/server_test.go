package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gnsons/internal/config"
	"gnsons/internal/repositories"
	"gnsons/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app   *fiber.App
	store *repositories.Store
}

func newTestEnv(t *testing.T, tweak ...func(*config.Config)) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	store := repositories.NewGORMStore(db)

	cfg := &config.Config{
		DatabaseDriver:       repositories.DriverSQLite,
		JWTSecret:            "test-access-secret",
		RefreshTokenSecret:   "test-refresh-secret",
		AccessTokenTTL:       time.Hour,
		RefreshTokenTTL:      30 * 24 * time.Hour,
		UploadDir:            t.TempDir(),
		UploadMaxBytes:       5 * 1024 * 1024,
		RateLimitWindow:      15 * time.Minute,
		RateLimitMaxRequests: 1000,
		CORSOrigins:          "http://localhost:3000",
	}
	for _, fn := range tweak {
		fn(cfg)
	}

	app, err := server.New(server.Deps{Config: cfg, Store: store, Log: zap.NewNop()})
	require.NoError(t, err)
	return &testEnv{app: app, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	status, _ := e.do(t, "POST", "/api/auth/admin-register", "", fiber.Map{"email": "a@x.com", "password": "secret123", "name": "A"})
	require.Equal(t, fiber.StatusCreated, status)
	status, body := e.do(t, "POST", "/api/auth/admin-login", "", fiber.Map{"email": "a@x.com", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, status)
	return body["token"].(string)
}

func TestHealthAndNotFound(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, "GET", "/api/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", body["status"])

	status, body = env.do(t, "GET", "/api/nothing-here", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "not found")
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, "POST", "/api/auth/admin-register", "", fiber.Map{"email": "a@x.com", "password": "secret123", "name": "A"})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["success"])

	status, body = env.do(t, "POST", "/api/auth/admin-register", "", fiber.Map{"email": "A@x.com", "password": "secret123", "name": "A"})
	assert.Equal(t, fiber.StatusConflict, status)

	status, wrong := env.do(t, "POST", "/api/auth/admin-login", "", fiber.Map{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, unknown := env.do(t, "POST", "/api/auth/admin-login", "", fiber.Map{"email": "b@x.com", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, wrong, unknown)

	status, body = env.do(t, "POST", "/api/auth/admin-login", "", fiber.Map{"email": "a@x.com", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, status)
	token := body["token"].(string)
	refresh := body["refreshToken"].(string)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, refresh)
	assert.NotContains(t, body["admin"], "passwordHash")

	status, _ = env.do(t, "GET", "/api/auth/admin/current", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, body = env.do(t, "GET", "/api/auth/admin/current", "garbage", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", body["error"])

	status, body = env.do(t, "GET", "/api/auth/admin/current", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "a@x.com", body["admin"].(map[string]interface{})["email"])

	status, body = env.do(t, "POST", "/api/auth/refresh-token", "", fiber.Map{"refreshToken": refresh})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, body = env.do(t, "POST", "/api/auth/admin-register", "", fiber.Map{"email": "b@x.com", "password": "1", "name": "B"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["details"], "password")

	status, body = env.do(t, "POST", "/api/auth/admin-register", "", fiber.Map{"email": "not-an-email", "password": "secret123", "name": "B"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "valid email")
}

func TestRegisterTrimsEmailBeforeValidation(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, "POST", "/api/auth/admin-register", "", fiber.Map{"email": " A@x.com ", "password": "secret123", "name": "A"})
	require.Equal(t, fiber.StatusCreated, status)

	status, body := env.do(t, "POST", "/api/auth/admin-login", "", fiber.Map{"email": "a@x.com", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "a@x.com", body["admin"].(map[string]interface{})["email"])
}

func TestDeletedAdminTokenIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	status, body := env.do(t, "GET", "/api/auth/admin/current", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	id := body["admin"].(map[string]interface{})["id"].(string)

	require.NoError(t, env.store.Admins.Delete(context.Background(), id))

	status, _ = env.do(t, "GET", "/api/orders/admin/all", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestOrderLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	checkout := fiber.Map{
		"items":           []fiber.Map{{"productId": "p1", "name": "Watch", "price": 100, "quantity": 2}},
		"totalPrice":      200,
		"discountAmount":  20,
		"shippingAddress": "1 Main St",
		"paymentMethod":   "COD",
	}

	bad := fiber.Map{}
	for k, v := range checkout {
		bad[k] = v
	}
	bad["paymentMethod"] = "BITCOIN"
	status, body := env.do(t, "POST", "/api/orders", "", bad)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, body = env.do(t, "GET", "/api/orders/admin/all", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body["total"], "a rejected order persists nothing")

	status, body = env.do(t, "POST", "/api/orders", "", checkout)
	require.Equal(t, fiber.StatusCreated, status)
	order := body["order"].(map[string]interface{})
	assert.EqualValues(t, 180, order["finalPrice"])
	assert.Equal(t, "Pending", order["status"])
	assert.Equal(t, "guest", order["userId"])
	id := order["id"].(string)

	status, _ = env.do(t, "PUT", "/api/orders/"+id+"/status", "", fiber.Map{"status": "Shipped"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = env.do(t, "PUT", "/api/orders/"+id+"/status", token, fiber.Map{"status": "Lost"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	for i := 0; i < 2; i++ {
		status, body = env.do(t, "PUT", "/api/orders/"+id+"/status", token, fiber.Map{"status": "Shipped"})
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "Shipped", body["order"].(map[string]interface{})["status"])
	}

	status, body = env.do(t, "GET", "/api/orders/"+id, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Shipped", body["order"].(map[string]interface{})["status"])

	status, _ = env.do(t, "PUT", "/api/orders/missing/status", token, fiber.Map{"status": "Shipped"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCheckoutClearsCart(t *testing.T) {
	env := newTestEnv(t)

	item := fiber.Map{"userId": "user-1", "productId": "p1", "name": "Watch", "price": 50, "quantity": 2}
	env.do(t, "POST", "/api/cart/add", "", item)
	status, body := env.do(t, "POST", "/api/cart/add", "", item)
	require.Equal(t, fiber.StatusOK, status)
	cart := body["cart"].(map[string]interface{})
	items := cart["items"].([]interface{})
	require.Len(t, items, 1)
	assert.EqualValues(t, 4, items[0].(map[string]interface{})["quantity"])
	assert.EqualValues(t, 200, cart["total"])

	status, body = env.do(t, "POST", "/api/orders", "", fiber.Map{
		"userId":          "user-1",
		"items":           []fiber.Map{{"productId": "p1", "name": "Watch", "price": 50, "quantity": 4}},
		"totalPrice":      200,
		"shippingAddress": "1 Main St",
		"paymentMethod":   "JAZZCASH",
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["cartReset"].(map[string]interface{})["succeeded"])

	status, body = env.do(t, "GET", "/api/cart/user-1", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body["cart"].(map[string]interface{})["items"])

	status, body = env.do(t, "GET", "/api/orders/user/user-1", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["orders"], 1)

	status, _ = env.do(t, "POST", "/api/cart/add", "", fiber.Map{"productId": "p1", "quantity": 1})
	assert.Equal(t, fiber.StatusBadRequest, status, "a user id is required without a token")
}

func TestProductsAdminOnlyMutations(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	product := fiber.Map{"name": "Premium Leather Watch", "category": "Electronics", "price": 4500, "isFeatured": true}
	status, _ := env.do(t, "POST", "/api/products", "", product)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := env.do(t, "POST", "/api/products", token, product)
	require.Equal(t, fiber.StatusCreated, status)
	id := body["productId"].(string)

	status, body = env.do(t, "GET", "/api/products?featured=true&minPrice=1000", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, _ = env.do(t, "GET", "/api/products?minPrice=cheap", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = env.do(t, "GET", "/api/products/list/categories", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []interface{}{"Electronics"}, body["categories"])

	status, body = env.do(t, "PUT", "/api/products/"+id, token, fiber.Map{"price": 4000})
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 4000, body["product"].(map[string]interface{})["price"])

	status, _ = env.do(t, "DELETE", "/api/products/"+id, token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = env.do(t, "GET", "/api/products/"+id, "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestChatAndContact(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	status, body := env.do(t, "POST", "/api/chat/send", "", fiber.Map{"senderId": "u1", "recipientId": "admin", "message": "Is it in stock?"})
	require.Equal(t, fiber.StatusCreated, status)
	messageID := body["messageId"].(string)

	status, body = env.do(t, "GET", "/api/chat/conversation/u1-admin", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["messageCount"])

	status, _ = env.do(t, "GET", "/api/chat/admin/conversations", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, body = env.do(t, "GET", "/api/chat/admin/conversations", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, _ = env.do(t, "PUT", "/api/chat/"+messageID+"/read", token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body = env.do(t, "POST", "/api/contact", "", fiber.Map{"name": "Ali", "email": "ali@x.com", "message": "Do you deliver to Lahore?"})
	require.Equal(t, fiber.StatusCreated, status)
	contactID := body["contactId"].(string)

	status, _ = env.do(t, "POST", "/api/contact", "", fiber.Map{"name": "Ali", "email": "ali@x.com", "message": "short"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = env.do(t, "POST", "/api/contact", "", fiber.Map{"name": "Bob", "email": "Bob Smith <bob@x.com>", "message": "hello there, long enough"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = env.do(t, "PUT", "/api/contact/"+contactID+"/status", token, fiber.Map{"status": "replied"})
	assert.Equal(t, fiber.StatusOK, status)
	status, body = env.do(t, "GET", "/api/contact/admin/all", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])
}

func multipartRequest(t *testing.T, name string, content []byte) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/upload", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

	status, body := env.send(t, multipartRequest(t, "watch.png", png))
	require.Equal(t, fiber.StatusOK, status)
	url := body["imageUrl"].(string)
	assert.Contains(t, url, "/uploads/products-")

	resp, err := env.app.Test(httptest.NewRequest("GET", url, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	status, body = env.send(t, multipartRequest(t, "script.png", []byte("#!/bin/sh\necho hi\n")))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, _ = env.do(t, "DELETE", "/api/upload/watch.png", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.RateLimitMaxRequests = 3 })

	for i := 0; i < 3; i++ {
		status, _ := env.do(t, "GET", "/api/health", "", nil)
		require.Equal(t, fiber.StatusOK, status)
	}
	status, body := env.do(t, "GET", "/api/health", "", nil)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, false, body["success"])
}
