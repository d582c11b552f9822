package coalesce_test

import (
	"encoding/json"
	"testing"

	"github.com/bbabel1/property-manager-sub016/internal/utils/coalesce"
	"github.com/stretchr/testify/assert"
)

var idKeys = coalesce.StringFields("Id", "id", "TransactionId", "transactionId", "BuildiumTransactionId", "buildiumTransactionId")

func TestFirstDefined_Priority(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   string
		ok     bool
	}{
		{"upper Id wins", map[string]any{"Id": "A", "id": "B", "TransactionId": "C"}, "A", true},
		{"falls through nil", map[string]any{"Id": nil, "id": "B"}, "B", true},
		{"falls through empty string", map[string]any{"id": "", "TransactionId": "C"}, "C", true},
		{"last key", map[string]any{"buildiumTransactionId": "Z"}, "Z", true},
		{"json number", map[string]any{"TransactionId": json.Number("123456789012")}, "123456789012", true},
		{"float number", map[string]any{"transactionId": float64(987654)}, "987654", true},
		{"nothing present", map[string]any{"Amount": 10}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coalesce.FirstDefined(tt.record, idKeys...)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoolField(t *testing.T) {
	got, ok := coalesce.FirstDefined(map[string]any{"isCleared": "true"}, coalesce.BoolField("IsCleared"), coalesce.BoolField("isCleared"))
	assert.True(t, ok)
	assert.True(t, got)

	_, ok = coalesce.FirstDefined(map[string]any{"IsCleared": "maybe"}, coalesce.BoolField("IsCleared"))
	assert.False(t, ok)
}
