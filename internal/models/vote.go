package models

import "time"

// Vote model - one row per (user, post) pair, enforced by a unique index
type Vote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_votes_user_post" json:"user_id"`
	PostID    int       `gorm:"not null;uniqueIndex:idx_votes_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
