package repositories

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"quill/app/models"

	"github.com/rs/zerolog/log"
)

var (
	_ PostRepository = (*JSONPostRepository)(nil)
	_ Importer       = (*JSONPostRepository)(nil)
)

// JSONPostRepository implements PostRepository on top of a single JSON file.
// Each mutation loads the whole collection, changes it in memory and
// rewrites the file.
type JSONPostRepository struct {
	path  string
	mutex sync.RWMutex
}

// NewJSONPostRepository opens the posts file at path, creating it with an
// empty collection when it does not exist yet.
func NewJSONPostRepository(path string) (*JSONPostRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StorageError{Op: "init", Path: path, Err: err}
	}

	if _, err := os.Stat(path); isMissing(err) {
		if err := WritePostsFile(path, nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, &StorageError{Op: "init", Path: path, Err: err}
	}

	return &JSONPostRepository{path: path}, nil
}

// Path returns the location of the backing file.
func (r *JSONPostRepository) Path() string {
	return r.path
}

func (r *JSONPostRepository) load() ([]*models.Post, error) {
	posts, err := ReadPostsFile(r.path)
	if err != nil && isMissing(err) {
		return []*models.Post{}, nil
	}
	return posts, err
}

// loadForRead treats an unreadable collection as empty so read paths keep
// working. Mutations go through load and refuse to overwrite it.
func (r *JSONPostRepository) loadForRead() ([]*models.Post, error) {
	posts, err := r.load()
	if errors.Is(err, ErrCorruptStore) {
		log.Warn().Err(err).Str("path", r.path).Msg("Posts file is corrupt, reading as empty")
		return []*models.Post{}, nil
	}
	return posts, err
}

func (r *JSONPostRepository) mutate(fn func(posts []*models.Post) ([]*models.Post, error)) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	posts, err := r.load()
	if err != nil {
		return err
	}

	posts, err = fn(posts)
	if err != nil {
		return err
	}

	return WritePostsFile(r.path, posts)
}

// modify applies fn to the post with the given id and persists the result.
func (r *JSONPostRepository) modify(id string, fn func(p *models.Post)) error {
	return r.mutate(func(posts []*models.Post) ([]*models.Post, error) {
		i := indexOf(posts, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		fn(posts[i])
		return posts, nil
	})
}

// Create creates a new post
func (r *JSONPostRepository) Create(title, content, author string) (string, error) {
	post := &models.Post{
		ID:      newPostID(),
		Title:   title,
		Content: content,
		Author:  author,
	}
	post.BeforeCreate()

	err := r.mutate(func(posts []*models.Post) ([]*models.Post, error) {
		return append(posts, post), nil
	})
	if err != nil {
		return "", err
	}
	return post.ID, nil
}

// GetAll returns every post, newest first
func (r *JSONPostRepository) GetAll() ([]*models.Post, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	posts, err := r.loadForRead()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(posts)
	return posts, nil
}

// GetByID retrieves a post by ID
func (r *JSONPostRepository) GetByID(id string) (*models.Post, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	posts, err := r.loadForRead()
	if err != nil {
		return nil, err
	}
	if i := indexOf(posts, id); i >= 0 {
		return posts[i], nil
	}
	return nil, ErrNotFound
}

// Update replaces the editable fields of a post and stamps updated_at
func (r *JSONPostRepository) Update(id, title, content, author string) error {
	return r.modify(id, func(p *models.Post) {
		p.Title = title
		p.Content = content
		p.Author = authorOrDefault(author)
		p.Touch()
	})
}

// Delete deletes a post by ID
func (r *JSONPostRepository) Delete(id string) error {
	return r.mutate(func(posts []*models.Post) ([]*models.Post, error) {
		i := indexOf(posts, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(posts[:i], posts[i+1:]...), nil
	})
}

// Like increments the like counter of a post
func (r *JSONPostRepository) Like(id string) (int, error) {
	var likes int
	err := r.modify(id, func(p *models.Post) {
		likes = p.Like()
	})
	return likes, err
}

// Unlike decrements the like counter of a post, stopping at zero
func (r *JSONPostRepository) Unlike(id string) (int, error) {
	var likes int
	err := r.modify(id, func(p *models.Post) {
		likes = p.Unlike()
	})
	return likes, err
}

// Count returns the number of stored posts
func (r *JSONPostRepository) Count() (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	posts, err := r.loadForRead()
	if err != nil {
		return 0, err
	}
	return len(posts), nil
}

// TotalLikes sums likes across all posts
func (r *JSONPostRepository) TotalLikes() (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	posts, err := r.loadForRead()
	if err != nil {
		return 0, err
	}
	return totalLikes(posts), nil
}

// ListByAuthor returns the posts of one author, newest first
func (r *JSONPostRepository) ListByAuthor(author string) ([]*models.Post, error) {
	posts, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	return filterByAuthor(posts, author), nil
}

// Import appends posts whose ids are not stored yet
func (r *JSONPostRepository) Import(incoming []*models.Post) (int, error) {
	imported := 0
	err := r.mutate(func(posts []*models.Post) ([]*models.Post, error) {
		for _, p := range incoming {
			if indexOf(posts, p.ID) >= 0 {
				continue
			}
			p = p.Clone()
			if err := normalizeImported(p); err != nil {
				return nil, err
			}
			posts = append(posts, p)
			imported++
		}
		return posts, nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}

// Close is a no-op; the file is not held open between calls.
func (r *JSONPostRepository) Close() error {
	return nil
}
