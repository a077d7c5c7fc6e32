package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vibelink/vibelink-server/internal/store"
)

// resourceListLimit matches the legacy listing size.
const resourceListLimit = 5

// CommunityHandlers provides REST handlers over the persisted store:
// posts, groups, vibes, progress, time spent, and resources.
type CommunityHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewCommunityHandlers creates a new community handlers instance.
func NewCommunityHandlers(st store.Store, logger *zerolog.Logger) *CommunityHandlers {
	return &CommunityHandlers{
		store: st,
		log:   logger,
	}
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
}

// CreatePostRequest represents the create post request body.
type CreatePostRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"required"`
}

// ListPosts returns all posts newest-first.
// GET /api/posts
func (h *CommunityHandlers) ListPosts(c *gin.Context) {
	posts, err := h.store.ListPosts(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list posts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, PostResponse{
			ID:        p.ID,
			Title:     p.Title,
			Content:   p.Content,
			Author:    p.Author,
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

// CreatePost creates a post for the authenticated user.
// POST /api/posts
func (h *CommunityHandlers) CreatePost(c *gin.Context) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	uid, ok := userID.(int64)
	if !ok {
		h.log.Error().Msg("invalid user_id type in context")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	post, err := h.store.CreatePost(c.Request.Context(), uid, req.Title, req.Content)
	if err != nil {
		h.log.Error().Err(err).Msg("create post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Author:    post.Author,
		CreatedAt: post.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// GroupResponse represents a support group in API responses.
type GroupResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateGroupRequest represents the create group request body.
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=64"`
	Description string `json:"description"`
}

// ListGroups returns all support groups.
// GET /api/groups
func (h *CommunityHandlers) ListGroups(c *gin.Context) {
	groups, err := h.store.ListGroups(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list groups")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupResponse{ID: g.ID, Name: g.Name, Description: g.Description})
	}
	c.JSON(http.StatusOK, out)
}

// CreateGroup creates a support group.
// POST /api/groups
func (h *CommunityHandlers) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	group, err := h.store.CreateGroup(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.log.Error().Err(err).Msg("create group")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, GroupResponse{ID: group.ID, Name: group.Name, Description: group.Description})
}

// VibeResponse represents a vibe in API responses.
type VibeResponse struct {
	ID        int64  `json:"id"`
	User      string `json:"user"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// ListVibes returns all vibes newest-first. New vibes are created over
// the websocket, not here.
// GET /api/vibes
func (h *CommunityHandlers) ListVibes(c *gin.Context) {
	vibes, err := h.store.ListVibes(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list vibes")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]VibeResponse, 0, len(vibes))
	for _, v := range vibes {
		out = append(out, VibeResponse{
			ID:        v.ID,
			User:      v.User,
			Content:   v.Content,
			CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

// ProgressScores is the nested progress payload.
type ProgressScores struct {
	Mood     int `json:"mood"`
	Learning int `json:"learning"`
	Social   int `json:"social"`
}

// ProgressResponse represents a progress record in API responses.
type ProgressResponse struct {
	Username  string         `json:"username"`
	Progress  ProgressScores `json:"progress"`
	UpdatedAt string         `json:"updatedAt"`
}

// SaveProgressRequest represents the save progress request body.
type SaveProgressRequest struct {
	Username string         `json:"username" binding:"required"`
	Progress ProgressScores `json:"progress"`
}

// ListProgress returns progress for all users.
// GET /api/progress
func (h *CommunityHandlers) ListProgress(c *gin.Context) {
	records, err := h.store.ListProgress(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list progress")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]ProgressResponse, 0, len(records))
	for _, p := range records {
		out = append(out, ProgressResponse{
			Username:  p.Username,
			Progress:  ProgressScores{Mood: p.Mood, Learning: p.Learning, Social: p.Social},
			UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

// SaveProgress upserts the caller's progress record by username.
// POST /api/progress
func (h *CommunityHandlers) SaveProgress(c *gin.Context) {
	var req SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "username and progress are required"})
		return
	}

	err := h.store.UpsertProgress(c.Request.Context(), &store.Progress{
		Username: req.Username,
		Mood:     req.Progress.Mood,
		Learning: req.Progress.Learning,
		Social:   req.Progress.Social,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("save progress")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TimeSpentResponse represents a time record in API responses.
type TimeSpentResponse struct {
	Username  string `json:"username"`
	TimeSpent int64  `json:"timeSpent"`
	UpdatedAt string `json:"updatedAt"`
}

// SaveTimeSpentRequest represents the save time request body.
type SaveTimeSpentRequest struct {
	Username  string `json:"username" binding:"required"`
	TimeSpent int64  `json:"timeSpent"`
}

// ListTimeSpent returns time totals for all users.
// GET /api/time
func (h *CommunityHandlers) ListTimeSpent(c *gin.Context) {
	records, err := h.store.ListTimeSpent(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list time spent")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]TimeSpentResponse, 0, len(records))
	for _, t := range records {
		out = append(out, TimeSpentResponse{
			Username:  t.Username,
			TimeSpent: t.Seconds,
			UpdatedAt: t.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

// SaveTimeSpent adds to the user's running total.
// POST /api/time
func (h *CommunityHandlers) SaveTimeSpent(c *gin.Context) {
	var req SaveTimeSpentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "username and timeSpent are required"})
		return
	}
	if req.TimeSpent < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "timeSpent must be non-negative"})
		return
	}

	if _, err := h.store.AddTimeSpent(c.Request.Context(), req.Username, req.TimeSpent); err != nil {
		h.log.Error().Err(err).Msg("save time spent")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResourceResponse represents a curated resource in API responses.
type ResourceResponse struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// fallbackResources is served when the store has no resources yet.
var fallbackResources = []ResourceResponse{
	{Title: "Mindful Breathing Exercise", URL: "https://www.youtube.com/watch?v=some-video", Description: "A quick 5-min guide to calm your mind."},
	{Title: "Daily Journal Prompt", URL: "https://example.com/journal", Description: "Reflect on your growth today."},
	{Title: "Learn JavaScript Basics", URL: "https://www.freecodecamp.org/learn/javascript", Description: "Boost your coding skills!"},
}

// ListResources returns curated resources, falling back to the static
// list when the store is empty.
// GET /api/resources
func (h *CommunityHandlers) ListResources(c *gin.Context) {
	resources, err := h.store.ListResources(c.Request.Context(), resourceListLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("list resources")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if len(resources) == 0 {
		c.JSON(http.StatusOK, fallbackResources)
		return
	}

	out := make([]ResourceResponse, 0, len(resources))
	for _, r := range resources {
		out = append(out, ResourceResponse{Title: r.Title, URL: r.URL, Description: r.Description})
	}
	c.JSON(http.StatusOK, out)
}
