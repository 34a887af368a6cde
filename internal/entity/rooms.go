package entity

import (
	"time"
)

// Room is the durable record for a direct chat between two users. One row
// per unordered pair; PairKey is the lexicographically normalized "a|b" key
// the unique index hangs off, so {A,B} and {B,A} hit the same row.
type Room struct {
	ID            int64     `gorm:"primaryKey"`
	PairKey       string    `gorm:"uniqueIndex;not null"`
	UserA         string    `gorm:"not null"`
	UserB         string    `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	LastMessageAt time.Time
	MessageCount  int64
}

type GroupRoom struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"not null"`
	OwnerID       string    `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	LastMessageAt time.Time
	MessageCount  int64
}

type GroupMember struct {
	ID       int64     `gorm:"primaryKey"`
	GroupID  int64     `gorm:"not null;index:idx_group_member,unique"`
	UserID   string    `gorm:"not null;index:idx_group_member,unique"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}
