package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	old := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(old)
	fn()
	return buf.String()
}

func TestLogger_LogTransfer(t *testing.T) {
	logger := NewLogger()

	output := captureLog(t, func() {
		logger.LogTransfer("abc-123", 1, 2, 30000, "Completed")
	})

	assert.Contains(t, output, "AUDIT:")

	jsonPart := output[strings.Index(output, "{"):]
	var event Event
	assert.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(jsonPart)), &event))
	assert.Equal(t, "TRANSFER", event.EventType)
	assert.Equal(t, "abc-123", event.TransferID)
	assert.Equal(t, int64(30000), event.Amount)
	assert.Equal(t, "Completed", event.Status)
}

func TestLogger_LogError(t *testing.T) {
	logger := NewLogger()

	output := captureLog(t, func() {
		logger.LogError("", 1, errors.New("insufficient funds"))
	})

	assert.Contains(t, output, "AUDIT:")

	jsonPart := output[strings.Index(output, "{"):]
	var event Event
	assert.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(jsonPart)), &event))
	assert.Equal(t, "ERROR", event.EventType)
	assert.Equal(t, "FAILED", event.Status)
}
