package repositories

import (
	"errors"
	"fmt"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

var (
	_ PostRepository = (*BadgerPostRepository)(nil)
	_ Importer       = (*BadgerPostRepository)(nil)
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// OpenBadger opens a Badger database at path. An empty path opens an
// in-memory database.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}
	return db, nil
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

func storageErr(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorruptStore) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func readPost(item *badger.Item) (*models.Post, error) {
	var post models.Post
	err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: key %s: %v", ErrCorruptStore, item.Key(), err)
	}
	return &post, nil
}

func getPost(txn *badger.Txn, id string) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return readPost(item)
}

func putPost(txn *badger.Txn, post *models.Post) error {
	data, err := marshalEntity(post)
	if err != nil {
		return err
	}
	return txn.Set(postKey(post.ID), data)
}

// scan visits every stored post in key order.
func (r *BadgerPostRepository) scan(fn func(p *models.Post)) error {
	return r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			post, err := readPost(it.Item())
			if err != nil {
				return err
			}
			fn(post)
		}
		return nil
	})
}

func (r *BadgerPostRepository) modify(op, id string, fn func(p *models.Post)) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		post, err := getPost(txn, id)
		if err != nil {
			return err
		}
		fn(post)
		return putPost(txn, post)
	})
	return storageErr(op, err)
}

// Create creates a new post
func (r *BadgerPostRepository) Create(title, content, author string) (string, error) {
	post := &models.Post{
		ID:      newPostID(),
		Title:   title,
		Content: content,
		Author:  author,
	}
	post.BeforeCreate()

	err := r.db.Update(func(txn *badger.Txn) error {
		return putPost(txn, post)
	})
	if err != nil {
		return "", storageErr("create", err)
	}
	return post.ID, nil
}

// GetAll returns every post, newest first
func (r *BadgerPostRepository) GetAll() ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	err := r.scan(func(p *models.Post) {
		posts = append(posts, p)
	})
	if err != nil {
		return nil, storageErr("list", err)
	}
	sortNewestFirst(posts)
	return posts, nil
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id string) (*models.Post, error) {
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = getPost(txn, id)
		return err
	})
	if err != nil {
		return nil, storageErr("get", err)
	}
	return post, nil
}

// Update replaces the editable fields of a post and stamps updated_at
func (r *BadgerPostRepository) Update(id, title, content, author string) error {
	return r.modify("update", id, func(p *models.Post) {
		p.Title = title
		p.Content = content
		p.Author = authorOrDefault(author)
		p.Touch()
	})
}

// Delete deletes a post by ID
func (r *BadgerPostRepository) Delete(id string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		// Verify post exists
		_, err := txn.Get(postKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return txn.Delete(postKey(id))
	})
	return storageErr("delete", err)
}

// Like increments the like counter of a post
func (r *BadgerPostRepository) Like(id string) (int, error) {
	var likes int
	err := r.modify("like", id, func(p *models.Post) {
		likes = p.Like()
	})
	return likes, err
}

// Unlike decrements the like counter of a post, stopping at zero
func (r *BadgerPostRepository) Unlike(id string) (int, error) {
	var likes int
	err := r.modify("unlike", id, func(p *models.Post) {
		likes = p.Unlike()
	})
	return likes, err
}

// Count returns the number of stored posts
func (r *BadgerPostRepository) Count() (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, storageErr("count", err)
	}
	return count, nil
}

// TotalLikes sums likes across all posts
func (r *BadgerPostRepository) TotalLikes() (int, error) {
	total := 0
	err := r.scan(func(p *models.Post) {
		total += p.Likes
	})
	if err != nil {
		return 0, storageErr("total likes", err)
	}
	return total, nil
}

// ListByAuthor returns the posts of one author, newest first
func (r *BadgerPostRepository) ListByAuthor(author string) ([]*models.Post, error) {
	posts, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	return filterByAuthor(posts, author), nil
}

// Import stores posts whose ids are not present yet
func (r *BadgerPostRepository) Import(incoming []*models.Post) (int, error) {
	prepared := make([]*models.Post, 0, len(incoming))
	for _, p := range incoming {
		p = p.Clone()
		if err := normalizeImported(p); err != nil {
			return 0, err
		}
		prepared = append(prepared, p)
	}

	imported := 0
	err := r.db.Update(func(txn *badger.Txn) error {
		for _, p := range prepared {
			_, err := txn.Get(postKey(p.ID))
			if err == nil {
				continue
			}
			if err != badger.ErrKeyNotFound {
				return err
			}

			if err := putPost(txn, p); err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, storageErr("import", err)
	}
	return imported, nil
}

// Close closes the underlying database
func (r *BadgerPostRepository) Close() error {
	return r.db.Close()
}
