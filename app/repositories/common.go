package repositories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"quill/app/models"

	"github.com/google/uuid"
)

// PostKeyPrefix prefixes post keys in key/value backends.
const PostKeyPrefix = "post:"

func newPostID() string {
	return uuid.NewString()
}

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

// marshalEntity marshals an entity to JSON
func marshalEntity(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// sortNewestFirst orders posts by creation time, newest first. Posts created
// at the same instant keep their relative order.
func sortNewestFirst(posts []*models.Post) {
	slices.SortStableFunc(posts, func(a, b *models.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
}

func filterByAuthor(posts []*models.Post, author string) []*models.Post {
	matched := make([]*models.Post, 0)
	for _, p := range posts {
		if strings.EqualFold(p.Author, author) {
			matched = append(matched, p)
		}
	}
	return matched
}

func totalLikes(posts []*models.Post) int {
	total := 0
	for _, p := range posts {
		total += p.Likes
	}
	return total
}

func indexOf(posts []*models.Post, id string) int {
	return slices.IndexFunc(posts, func(p *models.Post) bool {
		return p.ID == id
	})
}

func authorOrDefault(author string) string {
	if strings.TrimSpace(author) == "" {
		return models.DefaultAuthor
	}
	return author
}

// normalizeImported repairs the fields older stores may leave unset and
// checks the result.
func normalizeImported(p *models.Post) error {
	p.Author = authorOrDefault(p.Author)
	if p.Likes < 0 {
		p.Likes = 0
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid post %q: %w", p.ID, err)
	}
	return nil
}

// ReadPostsFile decodes a posts file. An empty file holds no posts. A file
// that does not decode yields an error wrapping ErrCorruptStore.
func ReadPostsFile(path string) ([]*models.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*models.Post{}, nil
	}

	var decoded []*models.Post
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, path, err)
	}

	posts := make([]*models.Post, 0, len(decoded))
	for _, p := range decoded {
		if p != nil {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// WritePostsFile replaces the posts file at path with posts, pretty-printed
// with two-space indentation. The data goes to a temporary file in the same
// directory which is then renamed over path, so readers see either the old
// or the new collection.
func WritePostsFile(path string, posts []*models.Post) error {
	if posts == nil {
		posts = []*models.Post{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(posts); err != nil {
		return &StorageError{Op: "encode", Path: path, Err: err}
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return &StorageError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	return nil
}

func isMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
