package models

import "time"

type Post struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Category    Category  `gorm:"not null;index" json:"category"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Status      Status    `gorm:"not null;default:under_review;index" json:"status"`
	AuthorID    int       `gorm:"not null;index" json:"author_id"`
	Author      *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// VoteCount is not persisted; computed at query time
	VoteCount int64 `gorm:"->" json:"vote_count"`
	// HasVoted reports whether the requesting user voted on this post (computed)
	HasVoted bool `gorm:"->" json:"has_voted"`
}
