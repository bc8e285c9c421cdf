package api

// Request DTOs

type RegisterRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

// Response DTOs

type ConnectResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}
