package services

import (
	"fmt"
	"strings"

	"quill/app/models"
	"quill/app/repositories"
	"quill/app/textutil"
)

const (
	DefaultPostsPerPage  = 5
	DefaultExcerptLength = 200
)

// Settings tunes listing and display. Zero values fall back to defaults.
type Settings struct {
	PostsPerPage   int
	WordsPerMinute int
	PreviewWords   int
	ExcerptLength  int
}

func (s Settings) withDefaults() Settings {
	if s.PostsPerPage <= 0 {
		s.PostsPerPage = DefaultPostsPerPage
	}
	if s.WordsPerMinute <= 0 {
		s.WordsPerMinute = textutil.DefaultWordsPerMinute
	}
	if s.PreviewWords <= 0 {
		s.PreviewWords = textutil.DefaultPreviewWords
	}
	if s.ExcerptLength <= 0 {
		s.ExcerptLength = DefaultExcerptLength
	}
	return s
}

// ValidationError lists every rule the submitted post broke.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid post: " + strings.Join(e.Messages, "; ")
}

// PostSummary is a post together with the values shown alongside it.
type PostSummary struct {
	*models.Post
	DisplayDate        string `json:"display_date"`
	DisplayUpdatedDate string `json:"display_updated_date,omitempty"`
	ReadingTime        int    `json:"reading_time_minutes"`
	WordCount          int    `json:"word_count"`
	Preview            string `json:"preview"`
	Excerpt            string `json:"excerpt"`
}

// PostPage is one page of a (possibly filtered) post listing.
type PostPage struct {
	Posts      []PostSummary `json:"posts"`
	Query      string        `json:"query,omitempty"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPosts int           `json:"total_posts"`
	TotalPages int           `json:"total_pages"`
}

// BlogStats holds the sidebar counters.
type BlogStats struct {
	Posts int `json:"posts"`
	Likes int `json:"likes"`
}

// PostService handles business logic for blog posts
type PostService struct {
	postRepo repositories.PostRepository
	settings Settings
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, settings Settings) *PostService {
	return &PostService{
		postRepo: postRepo,
		settings: settings.withDefaults(),
	}
}

// CreatePost validates the input and stores a new post
func (s *PostService) CreatePost(title, content, author string) (string, error) {
	title, content, author = clean(title, content, author)
	if err := validatePost(title, content, author); err != nil {
		return "", err
	}
	return s.postRepo.Create(title, content, author)
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(id string) (*models.Post, error) {
	return s.postRepo.GetByID(id)
}

// UpdatePost validates the input and replaces an existing post's fields
func (s *PostService) UpdatePost(id, title, content, author string) error {
	title, content, author = clean(title, content, author)
	if err := validatePost(title, content, author); err != nil {
		return err
	}
	return s.postRepo.Update(id, title, content, author)
}

// DeletePost deletes a post
func (s *PostService) DeletePost(id string) error {
	return s.postRepo.Delete(id)
}

// LikePost adds a like and returns the new count
func (s *PostService) LikePost(id string) (int, error) {
	return s.postRepo.Like(id)
}

// UnlikePost removes a like and returns the new count
func (s *PostService) UnlikePost(id string) (int, error) {
	return s.postRepo.Unlike(id)
}

// PostsByAuthor lists one author's posts, newest first
func (s *PostService) PostsByAuthor(author string) ([]PostSummary, error) {
	posts, err := s.postRepo.ListByAuthor(strings.TrimSpace(author))
	if err != nil {
		return nil, err
	}
	return s.summarizeAll(posts), nil
}

// ListPosts filters posts by query and returns the requested page. Pages
// outside the available range are clamped.
func (s *PostService) ListPosts(query string, page, perPage int) (*PostPage, error) {
	posts, err := s.postRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	posts = textutil.Search(posts, query)

	if perPage < 1 {
		perPage = s.settings.PostsPerPage
	}
	total := len(posts)
	totalPages := (total-1)/perPage + 1
	page = min(max(page, 1), totalPages)

	start := (page - 1) * perPage
	end := min(start+perPage, total)

	return &PostPage{
		Posts:      s.summarizeAll(posts[start:end]),
		Query:      strings.TrimSpace(query),
		Page:       page,
		PerPage:    perPage,
		TotalPosts: total,
		TotalPages: totalPages,
	}, nil
}

// Stats returns the number of posts and the total number of likes
func (s *PostService) Stats() (*BlogStats, error) {
	count, err := s.postRepo.Count()
	if err != nil {
		return nil, err
	}
	likes, err := s.postRepo.TotalLikes()
	if err != nil {
		return nil, err
	}
	return &BlogStats{Posts: count, Likes: likes}, nil
}

// Summarize computes the display values for a post
func (s *PostService) Summarize(post *models.Post) PostSummary {
	summary := PostSummary{
		Post:        post,
		DisplayDate: textutil.FormatDate(post.CreatedAt.String()),
		ReadingTime: textutil.EstimateReadingTime(post.Content, s.settings.WordsPerMinute),
		WordCount:   textutil.CountWords(post.Content),
		Preview:     textutil.ExtractPreview(post.Content, s.settings.PreviewWords),
		Excerpt:     textutil.Truncate(post.Content, s.settings.ExcerptLength),
	}
	if post.UpdatedAt != nil {
		summary.DisplayUpdatedDate = textutil.FormatDate(post.UpdatedAt.String())
	}
	return summary
}

func (s *PostService) summarizeAll(posts []*models.Post) []PostSummary {
	summaries := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, s.Summarize(p))
	}
	return summaries
}

func clean(title, content, author string) (string, string, string) {
	return strings.TrimSpace(title), strings.TrimSpace(content), strings.TrimSpace(author)
}

// validatePost validates a post's fields. A blank author is allowed and
// stored as the default author.
func validatePost(title, content, author string) error {
	if author == "" {
		author = models.DefaultAuthor
	}
	if messages := textutil.Validate(title, content, author); len(messages) > 0 {
		return &ValidationError{Messages: messages}
	}
	return nil
}
