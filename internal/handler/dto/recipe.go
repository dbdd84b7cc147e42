// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/recetapp/recetapp/internal/model"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RemoveEmailRequest is the body of DELETE /api/users/remove-email.
type RemoveEmailRequest struct {
	Email string `json:"email"`
}

// RegisterResponse is returned by a successful registration.
type RegisterResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// UserResponse is the public shape of an account. The password hash is
// never included.
type UserResponse struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
}

// ToUserResponse converts a model.User to a UserResponse.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email}
}

// RecipeCreatedResponse is returned by POST /api/recipes.
type RecipeCreatedResponse struct {
	Message string        `json:"message"`
	ID      string        `json:"id"`
	Recipe  *model.Recipe `json:"recipe"`
}

// RecipeUpdatedResponse is returned by PUT /api/recipes/{id}.
type RecipeUpdatedResponse struct {
	Message string        `json:"message"`
	Recipe  *model.Recipe `json:"recipe"`
}
