package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User defines the user model based on the 'users' table
type User struct {
	ID                        primitive.ObjectID `json:"id" db:"id" example:"65f1c0a2e4b0a1b2c3d4e5f6"`
	Name                      string             `json:"name" db:"name" example:"Jane Doe"`
	Email                     string             `json:"email" db:"email" example:"jane@example.com"`
	Username                  string             `json:"username" db:"username" example:"48213377"`
	PasswordHash              string             `json:"-" db:"password_hash"`
	Role                      RoleType           `json:"role" db:"role" example:"user"`
	ProfilePicture            string             `json:"profilePicture,omitempty" db:"profile_picture"`
	Phone                     string             `json:"phone,omitempty" db:"phone"`
	Address                   string             `json:"address,omitempty" db:"address"`
	ReceiveEmailNotifications bool               `json:"receiveEmailNotifications" db:"receive_email_notifications"`
	ReceiveSmsNotifications   bool               `json:"receiveSmsNotifications" db:"receive_sms_notifications"`
	CreatedAt                 time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt                 time.Time          `json:"updatedAt" db:"updated_at"`
}

// Actor returns the principal view of the user
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Email: u.Email, Role: u.Role}
}
