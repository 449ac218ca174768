package projects

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("project not found")

// Project is a user-owned unit of work. OwnerName is joined in from
// the owner's profile for display.
type Project struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	OwnerID    string    `json:"user_id"`
	Tags       []string  `json:"tags"`
	GitHubURL  *string   `json:"github_url"`
	ProjectURL *string   `json:"project_url"`
	CreatedAt  time.Time `json:"created_at"`
	OwnerName  string    `json:"owner_name"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// List returns every project, newest first, with owner display names.
func (r *Repo) List(ctx context.Context) ([]Project, error) {
	const q = `
select p.id, p.title, p.user_id, p.tags, p.github_url, p.project_url, p.created_at, pr.full_name
from projects p
join profiles pr on pr.id = p.user_id
order by p.created_at desc;
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Title, &p.OwnerID, &p.Tags, &p.GitHubURL, &p.ProjectURL, &p.CreatedAt, &p.OwnerName); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*Project, error) {
	const q = `
select p.id, p.title, p.user_id, p.tags, p.github_url, p.project_url, p.created_at, pr.full_name
from projects p
join profiles pr on pr.id = p.user_id
where p.id = $1;
`
	var p Project
	err := r.db.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Title, &p.OwnerID, &p.Tags, &p.GitHubURL, &p.ProjectURL, &p.CreatedAt, &p.OwnerName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, ownerID, title string, tags []string, githubURL, projectURL *string) (*Project, error) {
	const q = `
with ins as (
  insert into projects (id, title, user_id, tags, github_url, project_url)
  values ($1, $2, $3, $4, $5, $6)
  returning id, title, user_id, tags, github_url, project_url, created_at
)
select ins.id, ins.title, ins.user_id, ins.tags, ins.github_url, ins.project_url, ins.created_at, pr.full_name
from ins
join profiles pr on pr.id = ins.user_id;
`
	var p Project
	err := r.db.QueryRow(ctx, q, uuid.New().String(), title, ownerID, tags, githubURL, projectURL).
		Scan(&p.ID, &p.Title, &p.OwnerID, &p.Tags, &p.GitHubURL, &p.ProjectURL, &p.CreatedAt, &p.OwnerName)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update is owner-scoped: a non-owner hits zero rows no matter what
// the handler let through.
func (r *Repo) Update(ctx context.Context, ownerID, id, title string, tags []string, githubURL, projectURL *string) (*Project, error) {
	const q = `
with upd as (
  update projects
  set title = $3, tags = $4, github_url = $5, project_url = $6
  where id = $1 and user_id = $2
  returning id, title, user_id, tags, github_url, project_url, created_at
)
select upd.id, upd.title, upd.user_id, upd.tags, upd.github_url, upd.project_url, upd.created_at, pr.full_name
from upd
join profiles pr on pr.id = upd.user_id;
`
	var p Project
	err := r.db.QueryRow(ctx, q, id, ownerID, title, tags, githubURL, projectURL).
		Scan(&p.ID, &p.Title, &p.OwnerID, &p.Tags, &p.GitHubURL, &p.ProjectURL, &p.CreatedAt, &p.OwnerName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	const q = `
delete from projects
where id = $1 and user_id = $2;
`
	ct, err := r.db.Exec(ctx, q, id, ownerID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// OwnedIDs resolves the ids of every project an identity owns.
func (r *Repo) OwnedIDs(ctx context.Context, ownerID string) ([]string, error) {
	const q = `select id from projects where user_id = $1;`

	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, 8)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
