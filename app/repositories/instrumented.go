package repositories

import (
	"errors"
	"fmt"

	"quill/app/metrics"
	"quill/app/models"
)

var _ PostRepository = (*InstrumentedPostRepository)(nil)

// InstrumentedPostRepository counts every call to the wrapped repository.
type InstrumentedPostRepository struct {
	next PostRepository
}

// Instrument wraps repo so its operations are recorded in metrics.
func Instrument(repo PostRepository) *InstrumentedPostRepository {
	return &InstrumentedPostRepository{next: repo}
}

func record(op string, err error) {
	switch {
	case err == nil:
		metrics.RecordOperation(op, metrics.ResultOK)
	case errors.Is(err, ErrNotFound):
		metrics.RecordOperation(op, metrics.ResultNotFound)
	default:
		metrics.RecordOperation(op, metrics.ResultError)
	}
}

func (r *InstrumentedPostRepository) Create(title, content, author string) (string, error) {
	id, err := r.next.Create(title, content, author)
	record("create", err)
	return id, err
}

func (r *InstrumentedPostRepository) GetAll() ([]*models.Post, error) {
	posts, err := r.next.GetAll()
	record("get_all", err)
	return posts, err
}

func (r *InstrumentedPostRepository) GetByID(id string) (*models.Post, error) {
	post, err := r.next.GetByID(id)
	record("get", err)
	return post, err
}

func (r *InstrumentedPostRepository) Update(id, title, content, author string) error {
	err := r.next.Update(id, title, content, author)
	record("update", err)
	return err
}

func (r *InstrumentedPostRepository) Delete(id string) error {
	err := r.next.Delete(id)
	record("delete", err)
	return err
}

func (r *InstrumentedPostRepository) Like(id string) (int, error) {
	likes, err := r.next.Like(id)
	record("like", err)
	return likes, err
}

func (r *InstrumentedPostRepository) Unlike(id string) (int, error) {
	likes, err := r.next.Unlike(id)
	record("unlike", err)
	return likes, err
}

func (r *InstrumentedPostRepository) Count() (int, error) {
	n, err := r.next.Count()
	record("count", err)
	return n, err
}

func (r *InstrumentedPostRepository) TotalLikes() (int, error) {
	n, err := r.next.TotalLikes()
	record("total_likes", err)
	return n, err
}

func (r *InstrumentedPostRepository) ListByAuthor(author string) ([]*models.Post, error) {
	posts, err := r.next.ListByAuthor(author)
	record("list_by_author", err)
	return posts, err
}

// Import delegates to the wrapped repository when it supports imports.
func (r *InstrumentedPostRepository) Import(posts []*models.Post) (int, error) {
	importer, ok := r.next.(Importer)
	if !ok {
		return 0, fmt.Errorf("repository %T does not support import", r.next)
	}
	n, err := importer.Import(posts)
	record("import", err)
	return n, err
}

func (r *InstrumentedPostRepository) Close() error {
	return r.next.Close()
}
