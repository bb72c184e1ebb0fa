package domain

import "time"

// UserRole represents the authorization role of a user.
type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleAdmin     UserRole = "admin"
	UserRoleModerator UserRole = "moderator"
)

// UserStatus represents the account status of a user.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"
)

// User is the authenticated account profile.
type User struct {
	ID       string     `json:"_id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Avatar   string     `json:"avatar,omitempty"`
	Role     UserRole   `json:"role"`
	Status   UserStatus `json:"status"`

	Profile     UserProfile     `json:"profile"`
	Preferences UserPreferences `json:"preferences"`
	Stats       UserStats       `json:"stats"`

	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// UserProfile holds optional personal details.
type UserProfile struct {
	Nickname string `json:"nickname,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Gender   string `json:"gender,omitempty"` // male, female, other
	Birthday string `json:"birthday,omitempty"`
	Location string `json:"location,omitempty"`
}

// UserPreferences holds viewing and notification preferences.
type UserPreferences struct {
	FavoriteGenres []string             `json:"favoriteGenres"`
	Language       string               `json:"language"`
	Notifications  NotificationSettings `json:"notifications"`
}

// NotificationSettings toggles notifications per channel.
type NotificationSettings struct {
	Email           bool `json:"email"`
	Push            bool `json:"push"`
	NewDramas       bool `json:"newDramas"`
	Recommendations bool `json:"recommendations"`
}

// UserStats holds aggregate usage counters.
type UserStats struct {
	TotalWatchTime int64 `json:"totalWatchTime"`
	DramasWatched  int64 `json:"dramasWatched"`
	FavoritesCount int64 `json:"favoritesCount"`
	CommentsCount  int64 `json:"commentsCount"`
}

// DisplayName returns the nickname when set, otherwise the username.
func (u *User) DisplayName() string {
	if u.Profile.Nickname != "" {
		return u.Profile.Nickname
	}
	return u.Username
}

// IsAdmin returns true for admin accounts.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// AuthResult is returned by login and register.
type AuthResult struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"` // seconds
}

// Availability is returned by the username/email availability checks.
type Availability struct {
	Available bool `json:"available"`
}
