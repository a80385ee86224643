package response

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMarshalUsesSnakeCaseKeys(t *testing.T) {
	user := User{
		ID:         uuid.New(),
		Name:       "Amelia",
		Email:      "amelia@example.com",
		IsVerified: true,
	}

	marshaled, err := json.Marshal(user)
	require.NoError(t, err)

	keys := map[string]any{}
	require.NoError(t, json.Unmarshal(marshaled, &keys))
	assert.Contains(t, keys, "is_verified")
	assert.Contains(t, keys, "created_at")
	assert.Contains(t, keys, "updated_at")
	assert.NotContains(t, keys, "isVerified")
}
