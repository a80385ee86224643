package response

import (
	"time"

	"github.com/google/uuid"
)

// User never carries the password hash; the repository strips it before the
// value leaves the service.
type User struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
