package models

// User describes a platform account referenced by notifications and follows.
// Profile and credential management live outside this service; only the
// fields the notification core reads are modelled here.
type User struct {
	BaseModel

	Username       string `gorm:"uniqueIndex;not null" json:"username"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture"`

	// PushToken is the device registration token used by the push sink.
	PushToken string `gorm:"type:text" json:"-"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
