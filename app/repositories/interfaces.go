package repositories

import "quill/app/models"

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(title, content, author string) (string, error)
	GetAll() ([]*models.Post, error)
	GetByID(id string) (*models.Post, error)
	Update(id, title, content, author string) error
	Delete(id string) error
	Like(id string) (int, error)
	Unlike(id string) (int, error)
	Count() (int, error)
	TotalLikes() (int, error)
	ListByAuthor(author string) ([]*models.Post, error)
	Close() error
}

// Importer loads fully formed posts, keeping their ids and timestamps.
// Posts whose id already exists are skipped.
type Importer interface {
	Import(posts []*models.Post) (int, error)
}
