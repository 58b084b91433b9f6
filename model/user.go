// Package model holds the persisted entities and the request/response
// shapes of the HTTP API.
package model

import "time"

// User is a registered person. Self-deletion only sets IsDeleted; the row
// and its credential stay until an admin removes them.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	FirstName  string     `gorm:"not null" json:"firstName"`
	SecondName string     `json:"secondName,omitempty"`
	Birthday   *time.Time `json:"birthday,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	IsDeleted  bool       `gorm:"not null;default:false" json:"-"`
}

// SecurityInfo is a user's login material, one-to-one with User by primary
// key. PasswordHash never serializes.
type SecurityInfo struct {
	UserID       uint   `gorm:"primaryKey" json:"userId"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password;not null" json:"-"`
	Role         Role   `gorm:"not null;default:USER" json:"role"`
}

// TableName keeps the original schema's table name.
func (SecurityInfo) TableName() string { return "security_info" }
