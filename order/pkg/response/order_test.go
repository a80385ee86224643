package response

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderMarshalUsesSnakeCaseKeys(t *testing.T) {
	order := Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: StatusPlaced,
		OrderItems: []OrderItem{
			{ProductID: uuid.New(), Name: "Gold Ring", Price: decimal.NewFromInt(1000), Quantity: 1},
		},
		TotalItems: 1,
	}

	marshaled, err := json.Marshal(order)
	require.NoError(t, err)

	keys := map[string]any{}
	require.NoError(t, json.Unmarshal(marshaled, &keys))
	assert.Contains(t, keys, "user_id")
	assert.Contains(t, keys, "order_items")
	assert.Contains(t, keys, "total_items")
	assert.Contains(t, keys, "created_at")
	assert.Contains(t, keys, "updated_at")
	assert.NotContains(t, keys, "userId")

	items := keys["order_items"].([]any)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].(map[string]any), "product_id")
}
