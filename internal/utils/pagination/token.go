package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// ChargeCursor is the keyset position of a charge in allocation order.
type ChargeCursor struct {
	DueDate   *time.Time // nil sorts last
	CreatedAt time.Time
	ID        string
}

// EncodeChargeToken creates a base64 token from the last charge of a page.
func EncodeChargeToken(c ChargeCursor) string {
	due := ""
	if c.DueDate != nil {
		due = c.DueDate.Format(timeFormat)
	}
	return EncodeMultiFieldToken(due, c.CreatedAt.Format(timeFormat), c.ID)
}

// DecodeChargeToken parses a token produced by EncodeChargeToken.
func DecodeChargeToken(token string) (ChargeCursor, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return ChargeCursor{}, err
	}
	if len(parts) != 3 {
		return ChargeCursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	var cursor ChargeCursor
	if parts[0] != "" {
		due, err := time.Parse(timeFormat, parts[0])
		if err != nil {
			return ChargeCursor{}, fmt.Errorf("invalid pagination token format (due date parse): %w", err)
		}
		cursor.DueDate = &due
	}
	cursor.CreatedAt, err = time.Parse(timeFormat, parts[1])
	if err != nil {
		return ChargeCursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	if parts[2] == "" {
		return ChargeCursor{}, fmt.Errorf("invalid pagination token format (missing id)")
	}
	cursor.ID = parts[2]
	return cursor, nil
}

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}

	tokenStr := string(decodedBytes)
	parts := strings.Split(tokenStr, "|")
	return parts, nil
}

// ClampLimit bounds a requested page size, substituting def for non-positive values.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
