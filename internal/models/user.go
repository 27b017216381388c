package models

// User represents the user model in the database
type User struct {
	Base
	Email           string        `gorm:"uniqueIndex;not null" json:"email"`
	Password        string        `gorm:"not null" json:"-"`
	Name            string        `gorm:"not null" json:"name"`
	ProfileImageURL string        `json:"profile_image_url,omitempty"`
	IsActive        bool          `gorm:"default:true" json:"is_active"`
	Transactions    []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
