package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quill/app/repositories"
	"quill/app/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
}

// postRequest is the body accepted by Create and Edit.
type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Index lists posts, optionally filtered by ?q= and paginated by ?page= and ?per_page=
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := intParam(query.Get("page"), 1)
	perPage := intParam(query.Get("per_page"), 0)

	result, err := pc.postService.ListPosts(query.Get("q"), page, perPage)
	if err != nil {
		pc.sendFailure(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, result)
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	post, err := pc.postService.GetPost(id)
	if err != nil {
		pc.sendFailure(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, pc.postService.Summarize(post))
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pc.sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := pc.postService.CreatePost(req.Title, req.Content, req.Author)
	if err != nil {
		pc.sendFailure(w, r, err)
		return
	}

	post, err := pc.postService.GetPost(id)
	if err != nil {
		pc.sendFailure(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/posts/"+id)
	pc.sendJSON(w, http.StatusCreated, pc.postService.Summarize(post))
}

// Edit handles editing an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pc.sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := pc.postService.UpdatePost(id, req.Title, req.Content, req.Author); err != nil {
		pc.sendFailure(w, r, err)
		return
	}

	post, err := pc.postService.GetPost(id)
	if err != nil {
		pc.sendFailure(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, pc.postService.Summarize(post))
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := pc.postService.DeletePost(mux.Vars(r)["id"]); err != nil {
		pc.sendFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Like adds a like to a post
func (pc *PostController) Like(w http.ResponseWriter, r *http.Request) {
	likes, err := pc.postService.LikePost(mux.Vars(r)["id"])
	if err != nil {
		pc.sendFailure(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

// Unlike removes a like from a post
func (pc *PostController) Unlike(w http.ResponseWriter, r *http.Request) {
	likes, err := pc.postService.UnlikePost(mux.Vars(r)["id"])
	if err != nil {
		pc.sendFailure(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

// ByAuthor lists the posts of one author
func (pc *PostController) ByAuthor(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.PostsByAuthor(mux.Vars(r)["author"])
	if err != nil {
		pc.sendFailure(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// Stats reports the number of posts and likes
func (pc *PostController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := pc.postService.Stats()
	if err != nil {
		pc.sendFailure(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, stats)
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Helper methods for consistent response handling

func (pc *PostController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func (pc *PostController) sendError(w http.ResponseWriter, message string, status int) {
	pc.sendJSON(w, status, map[string]string{"error": message})
}

// sendFailure maps service and repository errors to HTTP responses.
// Storage failures are logged and hidden behind a generic message.
func (pc *PostController) sendFailure(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		pc.sendJSON(w, http.StatusUnprocessableEntity, map[string][]string{"errors": validationErr.Messages})
	case errors.Is(err, repositories.ErrNotFound):
		pc.sendError(w, "Post not found", http.StatusNotFound)
	default:
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		pc.sendError(w, "Internal server error", http.StatusInternalServerError)
	}
}
