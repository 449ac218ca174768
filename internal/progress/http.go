package progress

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeprogress/codeprogress-backend/internal/auth"
	"github.com/codeprogress/codeprogress-backend/internal/projects"
)

// Store is what the handlers need from log persistence.
type Store interface {
	ListForProject(ctx context.Context, projectID string) ([]Entry, error)
	ListForProjects(ctx context.Context, projectIDs []string) ([]Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
	Create(ctx context.Context, projectID, authorID, content string) (*Entry, error)
	Update(ctx context.Context, authorID, id, content string) (*Entry, error)
	Delete(ctx context.Context, authorID, id string) (bool, error)
}

// ProjectStore resolves projects for the ownership gate and the
// calendar's owned-project scoping.
type ProjectStore interface {
	Get(ctx context.Context, id string) (*projects.Project, error)
	OwnedIDs(ctx context.Context, ownerID string) ([]string, error)
}

type Handler struct {
	store    Store
	projects ProjectStore
}

// RegisterProjectRoutes mounts the per-project log routes on the
// projects group.
func RegisterProjectRoutes(rg *gin.RouterGroup, store Store, ps ProjectStore, requireUser, optionalUser gin.HandlerFunc) {
	h := &Handler{store: store, projects: ps}

	rg.GET("/:id/logs", optionalUser, h.listForProject)
	rg.POST("/:id/logs", requireUser, h.create)
}

// Register mounts the log mutation and calendar routes.
func Register(api *gin.RouterGroup, store Store, ps ProjectStore, requireUser gin.HandlerFunc) {
	h := &Handler{store: store, projects: ps}

	api.PATCH("/logs/:id", requireUser, h.update)
	api.DELETE("/logs/:id", requireUser, h.delete)
	api.GET("/calendar", requireUser, h.calendar)
	api.GET("/calendar/day", requireUser, h.calendarDay)
}

func (h *Handler) listForProject(c *gin.Context) {
	projectID := c.Param("id")

	if _, err := h.projects.Get(c.Request.Context(), projectID); err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	items, err := h.store.ListForProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "logs": items})
}

type logBody struct {
	Content string `json:"content"`
}

func (h *Handler) create(c *gin.Context) {
	projectID := c.Param("id")

	var req logBody
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "content required"})
		return
	}

	p, err := h.projects.Get(c.Request.Context(), projectID)
	if errors.Is(err, projects.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	uid := auth.UserID(c)
	if p.OwnerID != uid {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "not the project owner"})
		return
	}

	e, err := h.store.Create(c.Request.Context(), projectID, uid, strings.TrimSpace(req.Content))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "log": e})
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")

	var req logBody
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "content required"})
		return
	}

	existing, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "log not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	uid := auth.UserID(c)
	if existing.AuthorID != uid {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "not the log author"})
		return
	}

	e, err := h.store.Update(c.Request.Context(), uid, id, strings.TrimSpace(req.Content))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "log not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "log": e})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")

	existing, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "log not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	uid := auth.UserID(c)
	if existing.AuthorID != uid {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "not the log author"})
		return
	}

	ok, err := h.store.Delete(c.Request.Context(), uid, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "log not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) calendar(c *gin.Context) {
	loc, err := parseTZ(c.Query("tz"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown time zone"})
		return
	}

	now := time.Now().In(loc)
	year, month := now.Year(), now.Month()
	if raw := c.Query("month"); raw != "" {
		t, err := time.ParseInLocation("2006-01", raw, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "month must be YYYY-MM"})
			return
		}
		year, month = t.Year(), t.Month()
	}

	entries, err := h.ownerEntries(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "calendar": BuildMonthGrid(entries, year, month, loc)})
}

func (h *Handler) calendarDay(c *gin.Context) {
	loc, err := parseTZ(c.Query("tz"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown time zone"})
		return
	}

	t, err := time.ParseInLocation("2006-01-02", c.Query("date"), loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "date must be YYYY-MM-DD"})
		return
	}

	entries, err := h.ownerEntries(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "logs": EntriesOn(entries, t.Year(), t.Month(), t.Day(), loc)})
}

// ownerEntries is the two-step fetch behind the calendar: the caller's
// project ids first, then their logs. Zero projects never issues the
// second query.
func (h *Handler) ownerEntries(c *gin.Context) ([]Entry, error) {
	ids, err := h.projects.OwnedIDs(c.Request.Context(), auth.UserID(c))
	if err != nil {
		return nil, err
	}
	return h.store.ListForProjects(c.Request.Context(), ids)
}

func parseTZ(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
