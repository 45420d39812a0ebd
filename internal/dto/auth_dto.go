package dto

import "github.com/emotionbox/emotionbox-server/internal/models"

type RegisterRequest struct {
	Username      string `json:"username"`
	Phone         string `json:"phone"`
	StudentID     string `json:"student_id,omitempty"`
	School        string `json:"school,omitempty"`
	Grade         string `json:"grade,omitempty"`
	Password      string `json:"password"`
	AnonymousName string `json:"anonymous_name,omitempty"`
	IsAnonymous   *bool  `json:"is_anonymous,omitempty"`
}

// LoginRequest accepts a phone number or a username in the phone field,
// matching the original client.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	User   *models.User `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

type UpdateProfileRequest struct {
	Username      string `json:"username,omitempty"`
	School        *string `json:"school,omitempty"`
	Grade         *string `json:"grade,omitempty"`
	AnonymousName string `json:"anonymous_name,omitempty"`
	IsAnonymous   *bool  `json:"is_anonymous,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ResetPasswordRequest struct {
	Phone            string `json:"phone"`
	NewPassword      string `json:"new_password"`
	VerificationCode string `json:"verification_code"`
}

type SendCodeRequest struct {
	Phone string `json:"phone"`
	Type  string `json:"type"`
}
