package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
)

func TestPayLinkService_GeneratePayLink(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the payload and returns code plus QR image", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		service := NewPayLinkService(redisClient)

		redisMock.Regexp().ExpectSet(`paylink:.+`, `.+`, payLinkTTL).SetVal("OK")

		code, image, err := service.GeneratePayLink(ctx, 2, "50.00")
		assert.NoError(t, err)
		assert.NotEmpty(t, code)
		assert.NotEmpty(t, image)

		// The code itself decodes to the payment request.
		data, err := base64.URLEncoding.DecodeString(code)
		assert.NoError(t, err)

		var payload payLinkPayload
		assert.NoError(t, json.Unmarshal(data, &payload))
		assert.Equal(t, 2, payload.ReceiverID)
		assert.Equal(t, int64(5000), payload.Amount)
		assert.NotEmpty(t, payload.Nonce)

		// The image is a base64 PNG.
		img, err := base64.StdEncoding.DecodeString(image)
		assert.NoError(t, err)
		assert.Equal(t, "\x89PNG", string(img[:4]))

		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("invalid amount", func(t *testing.T) {
		redisClient, _ := redismock.NewClientMock()
		service := NewPayLinkService(redisClient)

		_, _, err := service.GeneratePayLink(ctx, 2, "-10.00")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("unavailable without redis", func(t *testing.T) {
		service := NewPayLinkService(nil)

		_, _, err := service.GeneratePayLink(ctx, 2, "50.00")
		assert.Error(t, err)
	})
}

func TestPayLinkService_RedeemPayLink(t *testing.T) {
	ctx := context.Background()

	payload := payLinkPayload{
		ReceiverID: 2,
		Amount:     5000,
		CreatedAt:  1756339200,
		Nonce:      "abc123",
	}
	jsonData, _ := json.Marshal(payload)
	code := base64.URLEncoding.EncodeToString(jsonData)
	key := "paylink:" + code

	t.Run("resolves and deletes the code", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		service := NewPayLinkService(redisClient)

		redisMock.ExpectGet(key).SetVal(string(jsonData))
		redisMock.ExpectDel(key).SetVal(1)

		receiverID, amount, err := service.RedeemPayLink(ctx, code)
		assert.NoError(t, err)
		assert.Equal(t, 2, receiverID)
		assert.Equal(t, int64(5000), amount)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("unknown or expired code", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		service := NewPayLinkService(redisClient)

		redisMock.ExpectGet("paylink:stale").RedisNil()

		_, _, err := service.RedeemPayLink(ctx, "stale")
		assert.ErrorIs(t, err, ErrPayLinkNotFound)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("unavailable without redis", func(t *testing.T) {
		service := NewPayLinkService(nil)

		_, _, err := service.RedeemPayLink(ctx, "anything")
		assert.Error(t, err)
	})
}
