package domain

import "time"

type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Username  string    `json:"username" gorm:"uniqueIndex;size:30;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password  string    `json:"password,omitempty" gorm:"column:password_hash"` // omitted from responses when cleared
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// UserProfile holds preparedness preferences synced from devices. One row per
// user, upserted by user_id so a retried profile sync collapses into one write.
type UserProfile struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID           string    `json:"user_id" gorm:"uniqueIndex;type:uuid;not null"`
	DisplayName      string    `json:"display_name" gorm:"size:60"`
	Region           string    `json:"region" gorm:"size:120"`
	HouseholdSize    int       `json:"household_size" gorm:"default:1"`
	PreferredHazards string    `json:"preferred_hazards" gorm:"size:255"` // comma-separated hazard categories
	NotificationsOn  bool      `json:"notifications_on" gorm:"default:true"`
	AutoSyncEnabled  bool      `json:"auto_sync_enabled" gorm:"default:true"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// LeaderboardEntry is one row of the XP ranking. Rank is global, not
// page-relative, so a page deep in the list still shows true positions.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	XP       int    `json:"xp"`
	Level    int    `json:"level"`
}

type UpdateProfileRequest struct {
	DisplayName      *string `json:"display_name"`
	Region           *string `json:"region"`
	HouseholdSize    *int    `json:"household_size" validate:"omitempty,min=1,max=20"`
	PreferredHazards *string `json:"preferred_hazards"`
	NotificationsOn  *bool   `json:"notifications_on"`
	AutoSyncEnabled  *bool   `json:"auto_sync_enabled"`
}
