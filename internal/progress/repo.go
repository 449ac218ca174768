package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("log not found")

// Entry is one timestamped progress note on a project. AuthorName and
// ProjectTitle are joined in for display where the query provides them.
type Entry struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	AuthorID     string    `json:"user_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	AuthorName   string    `json:"author_name,omitempty"`
	ProjectTitle string    `json:"project_title,omitempty"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// ListForProject returns a project's entries, newest first.
func (r *Repo) ListForProject(ctx context.Context, projectID string) ([]Entry, error) {
	const q = `
select l.id, l.project_id, l.user_id, l.content, l.created_at, pr.full_name
from progress_logs l
join profiles pr on pr.id = l.user_id
where l.project_id = $1
order by l.created_at desc;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, 16)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.AuthorID, &e.Content, &e.CreatedAt, &e.AuthorName); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListForProjects returns every entry across the given projects,
// newest first, tagged with the parent project's title. An empty id
// set short-circuits without touching the database.
func (r *Repo) ListForProjects(ctx context.Context, projectIDs []string) ([]Entry, error) {
	if len(projectIDs) == 0 {
		return []Entry{}, nil
	}

	const q = `
select l.id, l.project_id, l.user_id, l.content, l.created_at, p.title
from progress_logs l
join projects p on p.id = l.project_id
where l.project_id = any($1)
order by l.created_at desc;
`
	rows, err := r.db.Query(ctx, q, projectIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, 32)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.AuthorID, &e.Content, &e.CreatedAt, &e.ProjectTitle); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*Entry, error) {
	const q = `
select id, project_id, user_id, content, created_at
from progress_logs
where id = $1;
`
	var e Entry
	err := r.db.QueryRow(ctx, q, id).Scan(&e.ID, &e.ProjectID, &e.AuthorID, &e.Content, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repo) Create(ctx context.Context, projectID, authorID, content string) (*Entry, error) {
	const q = `
with ins as (
  insert into progress_logs (id, project_id, user_id, content)
  values ($1, $2, $3, $4)
  returning id, project_id, user_id, content, created_at
)
select ins.id, ins.project_id, ins.user_id, ins.content, ins.created_at, pr.full_name
from ins
join profiles pr on pr.id = ins.user_id;
`
	var e Entry
	err := r.db.QueryRow(ctx, q, uuid.New().String(), projectID, authorID, content).
		Scan(&e.ID, &e.ProjectID, &e.AuthorID, &e.Content, &e.CreatedAt, &e.AuthorName)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Update is author-scoped, the same guard the project mutations use.
func (r *Repo) Update(ctx context.Context, authorID, id, content string) (*Entry, error) {
	const q = `
update progress_logs
set content = $3
where id = $1 and user_id = $2
returning id, project_id, user_id, content, created_at;
`
	var e Entry
	err := r.db.QueryRow(ctx, q, id, authorID, content).
		Scan(&e.ID, &e.ProjectID, &e.AuthorID, &e.Content, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repo) Delete(ctx context.Context, authorID, id string) (bool, error) {
	const q = `
delete from progress_logs
where id = $1 and user_id = $2;
`
	ct, err := r.db.Exec(ctx, q, id, authorID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
