package entity

import (
	"time"
)

// User rows are owned by the identity service; this process only reads them.
type User struct {
	ID          string    `gorm:"primaryKey"`
	DisplayName string    `gorm:"not null"`
	IsMuted     bool      `gorm:"not null;default:false"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// Friendship rows come from the social graph service. A pair may have one
// row or two (one per direction); lookups match either orientation.
type Friendship struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index:idx_friend_pair,unique"`
	FriendID  string    `gorm:"not null;index:idx_friend_pair,unique"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
