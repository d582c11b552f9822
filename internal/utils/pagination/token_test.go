package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeChargeToken(t *testing.T) {
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2024, 12, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeChargeToken(ChargeCursor{DueDate: &due, CreatedAt: createdAt, ID: "c1"})
	assert.NotEmpty(t, token, "Token should not be empty")

	cursor, err := DecodeChargeToken(token)
	assert.NoError(t, err)
	if assert.NotNil(t, cursor.DueDate) {
		assert.Equal(t, due, *cursor.DueDate)
	}
	assert.Equal(t, createdAt, cursor.CreatedAt)
	assert.Equal(t, "c1", cursor.ID)

	// Undated charges round-trip with a nil due date
	undated := EncodeChargeToken(ChargeCursor{CreatedAt: createdAt, ID: "c2"})
	cursor, err = DecodeChargeToken(undated)
	assert.NoError(t, err)
	assert.Nil(t, cursor.DueDate)
	assert.Equal(t, "c2", cursor.ID)
}

func TestDecodeChargeTokenError(t *testing.T) {
	_, err := DecodeChargeToken("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	_, err = DecodeChargeToken(base64.StdEncoding.EncodeToString([]byte("only|two")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	_, err = DecodeChargeToken(base64.StdEncoding.EncodeToString([]byte("notadate|2023-05-15T14:30:45Z|c1")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "due date parse")

	_, err = DecodeChargeToken(base64.StdEncoding.EncodeToString([]byte("|2023-05-15T14:30:45Z|")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

func TestEncodeDecodeMultiFieldToken(t *testing.T) {
	token := EncodeMultiFieldToken("a", "b", "c")
	parts, err := DecodeMultiFieldToken(token)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, parts)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, ClampLimit(0, 20, 100))
	assert.Equal(t, 20, ClampLimit(-5, 20, 100))
	assert.Equal(t, 100, ClampLimit(500, 20, 100))
	assert.Equal(t, 7, ClampLimit(7, 20, 100))
}
