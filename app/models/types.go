package models

import "github.com/go-playground/validator/v10"

// validate is shared by every model in the package.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Field limits applied to posts.
const (
	MaxTitleLength   = 200
	MaxContentLength = 50000
	MaxAuthorLength  = 100

	DefaultAuthor = "Anonymous"
)

// Post represents a single blog entry as stored in the posts file.
type Post struct {
	ID        string     `json:"id" validate:"required"`
	Title     string     `json:"title" validate:"required,max=200"`
	Content   string     `json:"content" validate:"required,max=50000"`
	Author    string     `json:"author" validate:"required,max=100"`
	CreatedAt Timestamp  `json:"created_at" validate:"-"`
	UpdatedAt *Timestamp `json:"updated_at" validate:"-"`
	Likes     int        `json:"likes" validate:"gte=0"`
}

// Validator returns the validator instance used for post fields so that
// callers checking loose input apply the same rules as the struct tags.
func Validator() *validator.Validate {
	return validate
}
