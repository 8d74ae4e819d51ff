package podcast

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"docqa/internal/catalog"
	"docqa/internal/db"
)

// Store persists podcast jobs.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new pending job. If job.ID is empty a UUID is generated.
func (s *Store) Create(ctx context.Context, job *Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.Status = StatusPending

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO podcast_jobs (id, document_id, user_id, speakers, status)
		VALUES (?, ?, ?, ?, ?)`,
		job.ID, job.DocumentID, job.UserID, job.Speakers, string(job.Status))
	if err != nil {
		return fmt.Errorf("inserting podcast job: %w", err)
	}
	return nil
}

// Get retrieves a job, enforcing ownership.
func (s *Store) Get(ctx context.Context, id, userID string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, user_id, speakers, status,
		       COALESCE(script, ''), COALESCE(audio_path, ''), COALESCE(error, ''),
		       created_at, updated_at
		FROM podcast_jobs WHERE id = ?`, id)

	var job Job
	var status string
	err := row.Scan(&job.ID, &job.DocumentID, &job.UserID, &job.Speakers, &status,
		&job.Script, &job.AudioPath, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("podcast job %s: %w", id, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning podcast job: %w", err)
	}
	job.Status = Status(status)

	if job.UserID != userID {
		return nil, fmt.Errorf("podcast job %s: %w", id, catalog.ErrUnauthorized)
	}
	return &job, nil
}

// Latest returns the most recent job for a document, or nil when none exists.
func (s *Store) Latest(ctx context.Context, documentID, userID string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id FROM podcast_jobs
		WHERE document_id = ? AND user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`, documentID, userID)

	var id string
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("finding latest podcast job: %w", err)
	}
	return s.Get(ctx, id, userID)
}

// transition atomically moves a job from one state to another,
// optionally recording script, audio path or error text. It fails with
// ErrInvalidTransition when the job is not in the expected state.
func (s *Store) transition(ctx context.Context, id string, from, to Status, set map[string]string) error {
	query := `UPDATE podcast_jobs SET status = ?, updated_at = datetime('now')`
	args := []any{string(to)}

	for _, col := range []string{"script", "audio_path", "error"} {
		if v, ok := set[col]; ok {
			query += fmt.Sprintf(", %s = ?", col)
			args = append(args, v)
		}
	}

	query += ` WHERE id = ? AND status = ?`
	args = append(args, id, string(from))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating podcast job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking podcast job update: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("job %s: %s -> %s: %w", id, from, to, ErrInvalidTransition)
	}
	return nil
}
