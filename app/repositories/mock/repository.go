package mock

import (
	"slices"
	"strings"
	"sync"
	"time"

	"quill/app/models"
	"quill/app/repositories"

	"github.com/google/uuid"
)

var _ repositories.PostRepository = (*PostRepository)(nil)

// PostRepository is an in-memory PostRepository for tests. Posts created
// through it get strictly increasing creation times so ordering is
// deterministic.
type PostRepository struct {
	posts map[string]*models.Post
	order []string
	clock time.Time
	mutex sync.RWMutex

	// Err, when set, is returned by every operation.
	Err error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts: make(map[string]*models.Post),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.posts = make(map[string]*models.Post)
	m.order = nil
}

// Put stores post as is, replacing any post with the same id.
func (m *PostRepository) Put(post *models.Post) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[post.ID]; !exists {
		m.order = append(m.order, post.ID)
	}
	m.posts[post.ID] = post.Clone()
}

func (m *PostRepository) Create(title, content, author string) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return "", m.Err
	}

	m.clock = m.clock.Add(time.Minute)
	post := &models.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Author:    author,
		CreatedAt: models.Timestamp{Time: m.clock},
	}
	post.BeforeCreate()

	m.posts[post.ID] = post
	m.order = append(m.order, post.ID)
	return post.ID, nil
}

func (m *PostRepository) GetAll() ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}

	posts := make([]*models.Post, 0, len(m.order))
	for _, id := range m.order {
		if post, exists := m.posts[id]; exists {
			posts = append(posts, post.Clone())
		}
	}
	slices.SortStableFunc(posts, func(a, b *models.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
	return posts, nil
}

func (m *PostRepository) GetByID(id string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return post.Clone(), nil
}

func (m *PostRepository) Update(id, title, content, author string) error {
	return m.modify(id, func(p *models.Post) {
		p.Title = title
		p.Content = content
		p.Author = author
		p.Touch()
	})
}

func (m *PostRepository) Delete(id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	m.order = slices.DeleteFunc(m.order, func(o string) bool { return o == id })
	return nil
}

func (m *PostRepository) Like(id string) (int, error) {
	var likes int
	err := m.modify(id, func(p *models.Post) {
		likes = p.Like()
	})
	return likes, err
}

func (m *PostRepository) Unlike(id string) (int, error) {
	var likes int
	err := m.modify(id, func(p *models.Post) {
		likes = p.Unlike()
	})
	return likes, err
}

func (m *PostRepository) Count() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.posts), nil
}

func (m *PostRepository) TotalLikes() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return 0, m.Err
	}

	total := 0
	for _, post := range m.posts {
		total += post.Likes
	}
	return total, nil
}

func (m *PostRepository) ListByAuthor(author string) ([]*models.Post, error) {
	posts, err := m.GetAll()
	if err != nil {
		return nil, err
	}

	var matched []*models.Post
	for _, post := range posts {
		if strings.EqualFold(post.Author, author) {
			matched = append(matched, post)
		}
	}
	return matched, nil
}

func (m *PostRepository) Close() error {
	return nil
}

func (m *PostRepository) modify(id string, fn func(p *models.Post)) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return repositories.ErrNotFound
	}
	fn(post)
	return nil
}
