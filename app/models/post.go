package models

import (
	"errors"
	"strings"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	if p.UpdatedAt != nil && p.UpdatedAt.IsZero() {
		return errors.New("updated_at cannot be zero when set")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = Now()
	}
	if strings.TrimSpace(p.Author) == "" {
		p.Author = DefaultAuthor
	}
	p.UpdatedAt = nil
	p.Likes = 0
}

// Touch stamps the post as updated at the current time.
func (p *Post) Touch() {
	now := Now()
	p.UpdatedAt = &now
}

// Like increments the like counter and returns the new value.
func (p *Post) Like() int {
	p.Likes++
	return p.Likes
}

// Unlike decrements the like counter, never going below zero.
func (p *Post) Unlike() int {
	if p.Likes > 0 {
		p.Likes--
	}
	return p.Likes
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	c := *p
	if p.UpdatedAt != nil {
		u := *p.UpdatedAt
		c.UpdatedAt = &u
	}
	return &c
}

// Updated reports whether the post has been edited since creation.
func (p *Post) Updated() bool {
	return p.UpdatedAt != nil
}

// CreatedTime returns the creation time as a time.Time.
func (p *Post) CreatedTime() time.Time {
	return p.CreatedAt.Time
}
