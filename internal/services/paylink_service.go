package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"
)

// ErrPayLinkNotFound indicates the code is unknown, already redeemed or
// expired.
var ErrPayLinkNotFound = errors.New("invalid or expired payment link")

const payLinkTTL = 24 * time.Hour

// PayLinkService issues one-shot payment-request codes: a recipient fixes an
// amount, the counterparty scans the QR and redeems the code into a
// prefilled transfer request. Redeeming never moves money.
type PayLinkService struct {
	redis *redis.Client
}

type payLinkPayload struct {
	ReceiverID int    `json:"receiverId"`
	Amount     int64  `json:"amount"` // in cents
	CreatedAt  int64  `json:"createdAt"`
	Nonce      string `json:"nonce"`
}

func NewPayLinkService(redisClient *redis.Client) *PayLinkService {
	return &PayLinkService{redis: redisClient}
}

// GeneratePayLink stores a payment request under a random code and returns
// the code plus a base64 PNG QR image of it.
func (s *PayLinkService) GeneratePayLink(ctx context.Context, receiverID int, amountStr string) (string, string, error) {
	if s.redis == nil {
		return "", "", errors.New("payment links unavailable")
	}

	amount, err := ParseAmount(amountStr)
	if err != nil {
		return "", "", err
	}

	payload := payLinkPayload{
		ReceiverID: receiverID,
		Amount:     amount,
		CreatedAt:  time.Now().Unix(),
		Nonce:      generateNonce(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}

	code := base64.URLEncoding.EncodeToString(jsonData)

	key := fmt.Sprintf("paylink:%s", code)
	if err := s.redis.Set(ctx, key, jsonData, payLinkTTL).Err(); err != nil {
		return "", "", err
	}

	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", "", err
	}

	image := base64.StdEncoding.EncodeToString(buf.Bytes())

	return code, image, nil
}

// RedeemPayLink resolves a code into its payment request and deletes it, so
// a code can be redeemed at most once.
func (s *PayLinkService) RedeemPayLink(ctx context.Context, code string) (int, int64, error) {
	if s.redis == nil {
		return 0, 0, errors.New("payment links unavailable")
	}

	key := fmt.Sprintf("paylink:%s", code)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return 0, 0, ErrPayLinkNotFound
	}
	if err != nil {
		return 0, 0, err
	}

	var payload payLinkPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, 0, err
	}

	s.redis.Del(ctx, key)

	return payload.ReceiverID, payload.Amount, nil
}

func generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
