package dto

import (
	"time"

	"github.com/yigit/eventsphere/internal/app/models"
)

// UserResponse is the public view of a user
type UserResponse struct {
	ID                        string    `json:"id" example:"65f1c0a2e4b0a1b2c3d4e5f6"`
	Name                      string    `json:"name" example:"Jane Doe"`
	Email                     string    `json:"email" example:"jane@example.com"`
	Username                  string    `json:"username" example:"48213377"`
	Role                      string    `json:"role" example:"user" enums:"user,admin"`
	Phone                     string    `json:"phone,omitempty"`
	ProfilePicture            string    `json:"profilePicture,omitempty"`
	Address                   string    `json:"address,omitempty"`
	ReceiveEmailNotifications bool      `json:"receiveEmailNotifications"`
	ReceiveSmsNotifications   bool      `json:"receiveSmsNotifications"`
	CreatedAt                 time.Time `json:"createdAt"`
}

// ToUserResponse maps a user model to its public view
func ToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:                        user.ID.Hex(),
		Name:                      user.Name,
		Email:                     user.Email,
		Username:                  user.Username,
		Role:                      string(user.Role),
		Phone:                     user.Phone,
		ProfilePicture:            user.ProfilePicture,
		Address:                   user.Address,
		ReceiveEmailNotifications: user.ReceiveEmailNotifications,
		ReceiveSmsNotifications:   user.ReceiveSmsNotifications,
		CreatedAt:                 user.CreatedAt,
	}
}

// UpdateProfileRequest represents the editable profile fields
type UpdateProfileRequest struct {
	Name                      string `json:"name" binding:"required,min=2,max=100"`
	Email                     string `json:"email" binding:"required,email"`
	Phone                     string `json:"phone" binding:"omitempty,max=30"`
	Address                   string `json:"address" binding:"omitempty,max=255"`
	ProfilePicture            string `json:"profilePicture" binding:"omitempty,max=2048"`
	ReceiveEmailNotifications *bool  `json:"receiveEmailNotifications"`
	ReceiveSmsNotifications   *bool  `json:"receiveSmsNotifications"`
}

// UserListResponse represents a page of users
type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	Pagination PaginationInfo  `json:"pagination"`
}

// UserStatsResponse summarises a user's event activity
type UserStatsResponse struct {
	OrganizedEvents int `json:"organizedEvents" example:"3"`
	AttendingEvents int `json:"attendingEvents" example:"7"`
}

// SubmitDeleteRequest asks for the caller's account to be removed
type SubmitDeleteRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}

// ResolveDeleteRequest is an admin decision on a pending delete request
type ResolveDeleteRequest struct {
	Action       string `json:"action" binding:"required,oneof=approve reject"`
	AdminComment string `json:"adminComment" binding:"omitempty,max=1000"`
}

// ChangeRoleRequest is an admin change of another account's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required" enums:"user,admin"`
}

// UserEventsResponse groups the events a user organizes and responded to
type UserEventsResponse struct {
	OrganizedEvents []*models.Event `json:"organizedEvents"`
	AttendingEvents []*models.Event `json:"attendingEvents"`
	MaybeEvents     []*models.Event `json:"maybeEvents"`
	PastEvents      []*models.Event `json:"pastEvents"`
}
