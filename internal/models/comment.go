package models

// Comment is the minimal comment row consulted when resolving the receiver
// of a reply notification. Full comment content and threading live in the
// comment service's own schema.
type Comment struct {
	BaseModel

	UserID   string  `gorm:"type:uuid;index;not null" json:"user_id"`
	PostID   string  `gorm:"type:uuid;index;not null" json:"post_id"`
	ParentID *string `gorm:"type:uuid;index" json:"parent_id"`
}
