package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeprogress/codeprogress-backend/internal/auth"
)

type fakeStore struct {
	projects    []Project
	createCalls int
	updateCalls int
	deleteCalls int
	err         error
}

func (f *fakeStore) List(ctx context.Context) ([]Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.projects, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			return &f.projects[i], nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Create(ctx context.Context, ownerID, title string, tags []string, githubURL, projectURL *string) (*Project, error) {
	f.createCalls++
	p := Project{ID: "new", Title: title, OwnerID: ownerID, Tags: tags, GitHubURL: githubURL, ProjectURL: projectURL, CreatedAt: time.Now(), OwnerName: "Alice"}
	return &p, nil
}

func (f *fakeStore) Update(ctx context.Context, ownerID, id, title string, tags []string, githubURL, projectURL *string) (*Project, error) {
	f.updateCalls++
	for i := range f.projects {
		if f.projects[i].ID == id && f.projects[i].OwnerID == ownerID {
			p := f.projects[i]
			p.Title = title
			p.Tags = tags
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	f.deleteCalls++
	for _, p := range f.projects {
		if p.ID == id && p.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

// asUser stands in for the session gate in handler tests.
func asUser(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid != "" {
			auth.SetIdentity(c, &auth.Identity{UID: uid})
		}
		c.Next()
	}
}

func projectRouter(store Store, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r.Group("/api/v1/projects"), store, asUser(uid), asUser(uid))
	return r
}

func doReq(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func listOf(t *testing.T, rr *httptest.ResponseRecorder) []Project {
	t.Helper()
	var resp struct {
		OK       bool      `json:"ok"`
		Projects []Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	return resp.Projects
}

func TestListProjects(t *testing.T) {
	store := &fakeStore{projects: []Project{
		{ID: "1", Title: "Tracker", OwnerID: "alice", Tags: []string{"rust", "cli"}},
		{ID: "2", Title: "Blog", OwnerID: "bob", Tags: []string{"go"}},
	}}

	t.Run("returns everything unfiltered", func(t *testing.T) {
		rr := doReq(projectRouter(store, ""), http.MethodGet, "/api/v1/projects", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, listOf(t, rr), 2)
	})

	t.Run("text and tag filters apply in memory", func(t *testing.T) {
		rr := doReq(projectRouter(store, ""), http.MethodGet, "/api/v1/projects?q=track&tags=rust,cli", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		got := listOf(t, rr)
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0].ID)
	})

	t.Run("mine filter uses the verified identity", func(t *testing.T) {
		rr := doReq(projectRouter(store, "bob"), http.MethodGet, "/api/v1/projects?mine=true", nil)
		got := listOf(t, rr)
		require.Len(t, got, 1)
		assert.Equal(t, "2", got[0].ID)
	})

	t.Run("zero projects is an empty list, not an error", func(t *testing.T) {
		rr := doReq(projectRouter(&fakeStore{}, ""), http.MethodGet, "/api/v1/projects", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"projects":[]`)
	})
}

func TestCreateProject(t *testing.T) {
	t.Run("blank title is rejected before any store call", func(t *testing.T) {
		store := &fakeStore{}
		rr := doReq(projectRouter(store, "alice"), http.MethodPost, "/api/v1/projects", gin.H{"title": "   "})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Zero(t, store.createCalls)
	})

	t.Run("tags are normalized and capped", func(t *testing.T) {
		store := &fakeStore{}
		rr := doReq(projectRouter(store, "alice"), http.MethodPost, "/api/v1/projects", gin.H{
			"title": " Tracker ",
			"tags":  []string{"rust", "rust", " cli ", "a", "b", "c", "d"},
		})
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			Project Project `json:"project"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Tracker", resp.Project.Title)
		assert.Equal(t, []string{"rust", "cli", "a", "b", "c"}, resp.Project.Tags)
		assert.Equal(t, "alice", resp.Project.OwnerID)
	})

	t.Run("blank links become null", func(t *testing.T) {
		store := &fakeStore{}
		rr := doReq(projectRouter(store, "alice"), http.MethodPost, "/api/v1/projects", gin.H{
			"title":      "Tracker",
			"github_url": "  ",
		})
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"github_url":null`)
	})
}

func TestUpdateProject_Ownership(t *testing.T) {
	store := &fakeStore{projects: []Project{
		{ID: "1", Title: "Tracker", OwnerID: "alice"},
	}}

	t.Run("owner may update", func(t *testing.T) {
		rr := doReq(projectRouter(store, "alice"), http.MethodPatch, "/api/v1/projects/1", gin.H{"title": "Tracker v2"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Tracker v2")
	})

	t.Run("anyone else is refused", func(t *testing.T) {
		before := store.updateCalls
		rr := doReq(projectRouter(store, "mallory"), http.MethodPatch, "/api/v1/projects/1", gin.H{"title": "Stolen"})
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, before, store.updateCalls)
	})

	t.Run("unknown project is a 404", func(t *testing.T) {
		rr := doReq(projectRouter(store, "alice"), http.MethodPatch, "/api/v1/projects/zzz", gin.H{"title": "X"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("blank title is rejected locally", func(t *testing.T) {
		before := store.updateCalls
		rr := doReq(projectRouter(store, "alice"), http.MethodPatch, "/api/v1/projects/1", gin.H{"title": ""})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, before, store.updateCalls)
	})
}

func TestDeleteProject_Ownership(t *testing.T) {
	store := &fakeStore{projects: []Project{
		{ID: "1", Title: "Tracker", OwnerID: "alice"},
	}}

	t.Run("non-owner is refused", func(t *testing.T) {
		before := store.deleteCalls
		rr := doReq(projectRouter(store, "mallory"), http.MethodDelete, "/api/v1/projects/1", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, before, store.deleteCalls)
	})

	t.Run("owner may delete", func(t *testing.T) {
		rr := doReq(projectRouter(store, "alice"), http.MethodDelete, "/api/v1/projects/1", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
