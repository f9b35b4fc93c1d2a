package community

import (
	"newsdesk/internal/domain/content"
	"newsdesk/internal/store"
)

const (
	StatusActive  = "active"
	StatusHidden  = "hidden"
	StatusFlagged = "flagged"
)

var Transitions = content.Transitions{
	StatusActive:  {StatusHidden, StatusFlagged},
	StatusFlagged: {StatusActive, StatusHidden},
	StatusHidden:  {StatusActive},
}

type Post struct {
	store.Base
	AuthorID      string   `gorm:"index;not null" json:"author_id"`
	AuthorName    string   `json:"author_name"`
	Content       string   `gorm:"not null" json:"content"`
	Images        []string `gorm:"serializer:json;type:jsonb" json:"images"`
	Topic         string   `gorm:"index" json:"topic"`
	Likes         int64    `gorm:"not null" json:"likes"`
	LikedBy       []string `gorm:"serializer:json;type:jsonb" json:"liked_by"`
	CommentsCount int64    `gorm:"not null" json:"comments_count"`
	FlaggedBy     []string `gorm:"serializer:json;type:jsonb" json:"flagged_by"`
	Pinned        bool     `gorm:"index" json:"pinned"`
	Status        string   `gorm:"index;not null" json:"status"`
}

func (Post) TableName() string { return "community_posts" }

func (p *Post) ResetCounters() {
	p.Likes = 0
	p.LikedBy = nil
	p.CommentsCount = 0
	p.FlaggedBy = nil
}

// Like adds uid to the likers. It reports false when uid already liked the post.
func (p *Post) Like(uid string) bool {
	for _, existing := range p.LikedBy {
		if existing == uid {
			return false
		}
	}
	p.LikedBy = append(p.LikedBy, uid)
	p.Likes = int64(len(p.LikedBy))
	return true
}

func (p *Post) Unlike(uid string) bool {
	for i, existing := range p.LikedBy {
		if existing == uid {
			p.LikedBy = append(p.LikedBy[:i], p.LikedBy[i+1:]...)
			p.Likes = int64(len(p.LikedBy))
			return true
		}
	}
	return false
}

// Flag records uid as a reporter and marks an active post flagged.
func (p *Post) Flag(uid string) {
	for _, existing := range p.FlaggedBy {
		if existing == uid {
			return
		}
	}
	p.FlaggedBy = append(p.FlaggedBy, uid)
	if p.Status == StatusActive {
		p.Status = StatusFlagged
	}
}
