package auth

import "github.com/google/uuid"

// RegisterRequest carries a self-service registration.
type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Name     *string `json:"name,omitempty"`
}

// LoginRequest carries a credential pair. Presence checks live in the
// service so the wire messages stay endpoint-specific.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the wire shape returned on a successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// PendingUser is one row of the admin approval queue.
type PendingUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     *string   `json:"name"`
	Email    *string   `json:"email"`
	Role     string    `json:"role"`
}
