package projects

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codeprogress/codeprogress-backend/internal/auth"
)

// Store is what the handlers need from persistence.
type Store interface {
	List(ctx context.Context) ([]Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	Create(ctx context.Context, ownerID, title string, tags []string, githubURL, projectURL *string) (*Project, error)
	Update(ctx context.Context, ownerID, id, title string, tags []string, githubURL, projectURL *string) (*Project, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}

type Handler struct {
	store Store
}

// Register mounts the project routes. Reads are public; mutations sit
// behind the session gate.
func Register(rg *gin.RouterGroup, store Store, requireUser, optionalUser gin.HandlerFunc) {
	h := &Handler{store: store}

	rg.GET("", optionalUser, h.list)
	rg.GET("/:id", optionalUser, h.get)
	rg.POST("", requireUser, h.create)
	rg.PATCH("/:id", requireUser, h.update)
	rg.DELETE("/:id", requireUser, h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	f := Filter{
		Text:     c.Query("q"),
		MineOnly: c.Query("mine") == "true",
		ViewerID: auth.UserID(c),
	}
	if raw := strings.TrimSpace(c.Query("tags")); raw != "" {
		f.Tags = strings.Split(raw, ",")
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": Apply(items, f)})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

type projectBody struct {
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	GitHubURL  string   `json:"github_url"`
	ProjectURL string   `json:"project_url"`
}

func (h *Handler) create(c *gin.Context) {
	var req projectBody
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "title required"})
		return
	}

	p, err := h.store.Create(
		c.Request.Context(),
		auth.UserID(c),
		strings.TrimSpace(req.Title),
		NormalizeTags(req.Tags),
		nilIfEmpty(req.GitHubURL),
		nilIfEmpty(req.ProjectURL),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")

	var req projectBody
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "title required"})
		return
	}

	existing, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	uid := auth.UserID(c)
	if existing.OwnerID != uid {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "not the project owner"})
		return
	}

	p, err := h.store.Update(
		c.Request.Context(),
		uid,
		id,
		strings.TrimSpace(req.Title),
		NormalizeTags(req.Tags),
		nilIfEmpty(req.GitHubURL),
		nilIfEmpty(req.ProjectURL),
	)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")

	existing, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	uid := auth.UserID(c)
	if existing.OwnerID != uid {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "not the project owner"})
		return
	}

	ok, err := h.store.Delete(c.Request.Context(), uid, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func nilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
