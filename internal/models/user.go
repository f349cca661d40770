package models

import "time"

// User represents an account of the grocery tracker.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // never serialized
	DisplayName  string    `json:"displayName" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserView is the public shape of a user returned by the API.
type UserView struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// View strips sensitive fields from the user.
func (u *User) View() UserView {
	return UserView{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
	}
}
