package dto

import commonDto "elimufund.com/backend/pkg/dto"

type SignupInput struct {
	FullName string `json:"fullName" binding:"required,max=80"`
	Email    string `json:"email" binding:"required,email,max=120"`
	UserType string `json:"userType" binding:"required,oneof=donor student"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthUserResponse is a user as seen by themselves, with their student profile when they have one.
type AuthUserResponse struct {
	commonDto.UserResponse
	StudentProfile *commonDto.StudentProfileResponse `json:"student_profile,omitempty"`
}

type AuthResponse struct {
	Message string            `json:"message"`
	User    *AuthUserResponse `json:"user"`
}

type SessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *AuthUserResponse `json:"user,omitempty"`
}
