package models

import "time"

type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	GoogleID    *string    `json:"-"`
	Name        string     `json:"name"`
	AvatarURL   *string    `json:"avatar,omitempty"`
	DateOfBirth time.Time  `json:"dob"`
	PendingOTP  *string    `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (u *User) GetAvatarURL() string {
	if u.AvatarURL != nil {
		return *u.AvatarURL
	}
	return ""
}
