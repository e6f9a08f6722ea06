package dto

import commonDto "elimufund.com/backend/pkg/dto"

type FollowResponse struct {
	Message     string `json:"message"`
	IsFollowing bool   `json:"is_following"`
}

type FollowingStatusResponse struct {
	IsFollowing bool `json:"is_following"`
	StudentID   uint `json:"student_id"`
}

type SupportersResponse struct {
	Supporters []commonDto.UserResponse `json:"supporters"`
	Count      int                      `json:"count"`
}
