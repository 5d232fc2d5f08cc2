package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	ProfileImageURL *string    `json:"profileImageUrl,omitempty"`
	Bio             *string    `json:"bio,omitempty"`
	Title           *string    `json:"title,omitempty"`
	IsVerified      bool       `json:"isVerified"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// PublicProfile - поля пользователя, которые видят другие участники
type PublicProfile struct {
	ID              uuid.UUID `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	Title           *string   `json:"title,omitempty"`
	IsVerified      bool      `json:"isVerified"`
}

func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageURL: u.ProfileImageURL,
		Title:           u.Title,
		IsVerified:      u.IsVerified,
	}
}

func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

type UserWithStats struct {
	*User
	AvgRating      float64 `json:"avgRating"`
	TotalExchanges int     `json:"totalExchanges"`
	SkillsCount    int     `json:"skillsCount"`
}

type UserSession struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"userId"`
	RefreshTokenHash string     `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	RevokedAt        *time.Time `json:"revokedAt,omitempty"`
	RevokedReason    *string    `json:"revokedReason,omitempty"`
	IPAddress        *string    `json:"ipAddress,omitempty"`
	UserAgent        *string    `json:"userAgent,omitempty"`
}

const (
	SessionRevokedRefreshed = "refreshed"
	SessionRevokedLogout    = "logout"
)
