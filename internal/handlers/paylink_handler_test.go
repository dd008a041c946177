package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/quickpay/backend/internal/services"
	"github.com/stretchr/testify/assert"
)

func authedRequest(method, target string, body string, userID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	return req.WithContext(context.WithValue(req.Context(), "userID", userID))
}

func TestPayLinkHandler_GeneratePayLink(t *testing.T) {
	t.Run("returns code and image", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		handler := NewPayLinkHandler(services.NewPayLinkService(redisClient))

		redisMock.Regexp().ExpectSet(`paylink:.+`, `.+`, 24*time.Hour).SetVal("OK")

		w := httptest.NewRecorder()
		handler.GeneratePayLink(w, authedRequest("POST", "/api/v1/paylinks", `{"amount":"50.00"}`, "2"))

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["success"])
		assert.NotEmpty(t, response["code"])
		assert.NotEmpty(t, response["image"])
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("invalid amount", func(t *testing.T) {
		redisClient, _ := redismock.NewClientMock()
		handler := NewPayLinkHandler(services.NewPayLinkService(redisClient))

		w := httptest.NewRecorder()
		handler.GeneratePayLink(w, authedRequest("POST", "/api/v1/paylinks", `{"amount":"0"}`, "2"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing identity", func(t *testing.T) {
		redisClient, _ := redismock.NewClientMock()
		handler := NewPayLinkHandler(services.NewPayLinkService(redisClient))

		req := httptest.NewRequest("POST", "/api/v1/paylinks", bytes.NewBufferString(`{"amount":"50.00"}`))
		w := httptest.NewRecorder()
		handler.GeneratePayLink(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPayLinkHandler_RedeemPayLink(t *testing.T) {
	payload := map[string]any{
		"receiverId": 2,
		"amount":     5000,
		"createdAt":  1756339200,
		"nonce":      "abc123",
	}
	jsonData, _ := json.Marshal(payload)
	code := base64.URLEncoding.EncodeToString(jsonData)

	t.Run("resolves into receiver and amount", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		handler := NewPayLinkHandler(services.NewPayLinkService(redisClient))

		key := "paylink:" + code
		redisMock.ExpectGet(key).SetVal(string(jsonData))
		redisMock.ExpectDel(key).SetVal(1)

		body, _ := json.Marshal(map[string]string{"code": code})
		w := httptest.NewRecorder()
		handler.RedeemPayLink(w, authedRequest("POST", "/api/v1/paylinks/redeem", string(body), "1"))

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(2), response["receiverId"])
		assert.Equal(t, "50.00", response["amount"])
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("unknown code", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		handler := NewPayLinkHandler(services.NewPayLinkService(redisClient))

		redisMock.ExpectGet("paylink:stale").RedisNil()

		w := httptest.NewRecorder()
		handler.RedeemPayLink(w, authedRequest("POST", "/api/v1/paylinks/redeem", `{"code":"stale"}`, "1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("missing code", func(t *testing.T) {
		redisClient, _ := redismock.NewClientMock()
		handler := NewPayLinkHandler(services.NewPayLinkService(redisClient))

		w := httptest.NewRecorder()
		handler.RedeemPayLink(w, authedRequest("POST", "/api/v1/paylinks/redeem", `{}`, "1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
