package profiles

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var ErrNotFound = errors.New("profile not found")

// Profile is the display-facing record tied one-to-one to an identity.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Profile, error) {
	const q = `
SELECT id, full_name, created_at
FROM profiles
WHERE id = $1
`
	var p Profile
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.FullName, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Ensure makes sure a profile row exists for the identity. It is
// read-then-insert: two concurrent ensures can both attempt the
// insert, and the loser's unique violation counts as success.
func (r *Repo) Ensure(ctx context.Context, id, fullName string) error {
	const sel = `SELECT id FROM profiles WHERE id = $1`

	var existing string
	err := r.db.QueryRowContext(ctx, sel, id).Scan(&existing)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	const ins = `
INSERT INTO profiles (id, full_name, created_at)
VALUES ($1, $2, NOW())
`
	if _, err := r.db.ExecContext(ctx, ins, id, fullName); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil
		}
		return err
	}
	return nil
}
