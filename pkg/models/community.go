package models

import "github.com/google/uuid"

// Post is a community feed entry
type Post struct {
	Base
	AuthorID uuid.UUID `gorm:"type:uuid;index;not null" json:"author_id"`
	Body     string    `gorm:"not null" json:"body"`
	MediaURL string    `json:"media_url,omitempty"`

	Author *User `gorm:"foreignKey:AuthorID" json:"-"`
}

// Reaction is a user's reaction to a post. One row per (post, user);
// reacting again replaces the kind rather than adding a second row.
type Reaction struct {
	Base
	PostID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_pair" json:"post_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_pair" json:"user_id"`
	Kind   string    `gorm:"size:20;not null" json:"kind"`

	Post *Post `gorm:"foreignKey:PostID" json:"-"`
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// Comment is a user's comment on a post
type Comment struct {
	Base
	PostID uuid.UUID `gorm:"type:uuid;index;not null" json:"post_id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Body   string    `gorm:"not null" json:"body"`

	Post *Post `gorm:"foreignKey:PostID" json:"-"`
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// CreatePostRequest creates a community post
type CreatePostRequest struct {
	Body string `json:"body" form:"body" validate:"required,min=1"`
}

// ReactRequest sets the caller's reaction on a post
type ReactRequest struct {
	Kind string `json:"kind" validate:"required,oneof=like fire clap muscle"`
}

// CreateCommentRequest comments on a post
type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}
