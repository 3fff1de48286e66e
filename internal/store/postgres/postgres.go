// Package postgres implements store.Store on PostgreSQL through sqlx and the
// pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chrona/internal/models"
	"chrona/internal/store"
)

const uniqueViolation = "23505"

type Store struct {
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// Open connects, pings and migrates.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing connection without migrating.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrDuplicate
	}
	return err
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Users

const userColumns = `id, email, name, password_hash, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :name, :password_hash, :created_at, :updated_at)`, u)
	return mapErr(err)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	return expectOne(s.db.NamedExecContext(ctx, `UPDATE users
		SET email = :email, name = :name, password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id`, u))
}

// Notes

const noteColumns = `id, user_id, title, content, tags, created_at, updated_at`

func (s *Store) ListNotes(ctx context.Context, ownerID, tag string) ([]models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1`
	args := []any{ownerID}
	if tag != "" {
		args = append(args, tag)
		query += ` AND $2 = ANY(tags)`
	}
	query += ` ORDER BY created_at DESC`
	out := []models.Note{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	if err := s.db.GetContext(ctx, &n, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id); err != nil {
		return nil, mapErr(err)
	}
	return &n, nil
}

func (s *Store) CreateNote(ctx context.Context, n *models.Note) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO notes (`+noteColumns+`)
		VALUES (:id, :user_id, :title, :content, :tags, :created_at, :updated_at)`, withNoteDefaults(n))
	return mapErr(err)
}

func (s *Store) UpdateNote(ctx context.Context, n *models.Note) error {
	return expectOne(s.db.NamedExecContext(ctx, `UPDATE notes
		SET title = :title, content = :content, tags = :tags, updated_at = :updated_at
		WHERE id = :id`, withNoteDefaults(n)))
}

func (s *Store) DeleteNote(ctx context.Context, id string) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id))
}

func withNoteDefaults(n *models.Note) *models.Note {
	c := *n
	if c.Tags == nil {
		c.Tags = pq.StringArray{}
	}
	return &c
}

// Journal

const journalColumns = `id, user_id, local_date::text AS local_date, entry, created_at, updated_at`

func (s *Store) ListJournal(ctx context.Context, ownerID, from, to string) ([]models.JournalEntry, error) {
	where := "WHERE user_id = $1"
	args := []any{ownerID}
	if from != "" {
		args = append(args, from)
		where += fmt.Sprintf(" AND local_date >= $%d", len(args))
	}
	if to != "" {
		args = append(args, to)
		where += fmt.Sprintf(" AND local_date <= $%d", len(args))
	}
	out := []models.JournalEntry{}
	query := `SELECT ` + journalColumns + ` FROM journal_entries ` + where + ` ORDER BY local_date DESC`
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetJournal(ctx context.Context, id string) (*models.JournalEntry, error) {
	var j models.JournalEntry
	if err := s.db.GetContext(ctx, &j, `SELECT `+journalColumns+` FROM journal_entries WHERE id = $1`, id); err != nil {
		return nil, mapErr(err)
	}
	return &j, nil
}

func (s *Store) GetJournalByDate(ctx context.Context, ownerID, date string) (*models.JournalEntry, error) {
	var j models.JournalEntry
	err := s.db.GetContext(ctx, &j, `SELECT `+journalColumns+` FROM journal_entries
		WHERE user_id = $1 AND local_date = $2::date`, ownerID, date)
	if err != nil {
		return nil, mapErr(err)
	}
	return &j, nil
}

func (s *Store) CreateJournal(ctx context.Context, j *models.JournalEntry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO journal_entries (id, user_id, local_date, entry, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6)`, j.ID, j.UserID, j.Date, j.Entry, j.CreatedAt, j.UpdatedAt)
	return mapErr(err)
}

func (s *Store) UpdateJournal(ctx context.Context, j *models.JournalEntry) error {
	return expectOne(s.db.ExecContext(ctx, `UPDATE journal_entries
		SET local_date = $2::date, entry = $3, updated_at = $4
		WHERE id = $1`, j.ID, j.Date, j.Entry, j.UpdatedAt))
}

func (s *Store) DeleteJournal(ctx context.Context, id string) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1`, id))
}

// Tasks

const taskColumns = `id, user_id, title, description, status, priority, due_date, completed_at, tags,
	category, estimated_time, actual_time, notes, parent_task, subtasks, created_at, updated_at`

func (s *Store) ListTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	out := []models.Task{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1`, ownerID); err != nil {
		return nil, err
	}
	models.SortTasks(out)
	return out, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := s.db.GetContext(ctx, &t, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id); err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if t.ParentTask != nil {
			err := expectOne(tx.ExecContext(ctx, `UPDATE tasks SET subtasks = array_append(subtasks, $1)
				WHERE id = $2`, t.ID, *t.ParentTask))
			if err != nil {
				return err
			}
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO tasks (`+taskColumns+`)
			VALUES (:id, :user_id, :title, :description, :status, :priority, :due_date, :completed_at, :tags,
				:category, :estimated_time, :actual_time, :notes, :parent_task, :subtasks, :created_at, :updated_at)`,
			withTaskDefaults(t))
		return mapErr(err)
	})
}

// UpdateTask writes the editable columns and refreshes t.Subtasks from the
// row; the subtask list itself is only changed by CreateTask and
// DeleteTaskTree.
func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	rows, err := s.db.NamedQueryContext(ctx, `UPDATE tasks SET
		title = :title, description = :description, status = :status, priority = :priority,
		due_date = :due_date, completed_at = :completed_at, tags = :tags, category = :category,
		estimated_time = :estimated_time, actual_time = :actual_time, notes = :notes,
		updated_at = :updated_at
		WHERE id = :id RETURNING subtasks`, withTaskDefaults(t))
	if err != nil {
		return mapErr(err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return mapErr(err)
		}
		return store.ErrNotFound
	}
	var subtasks pq.StringArray
	if err := rows.Scan(&subtasks); err != nil {
		return err
	}
	t.Subtasks = subtasks
	return rows.Err()
}

func (s *Store) DeleteTaskTree(ctx context.Context, ownerID, id string) ([]string, error) {
	var deleted []string
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var rows []models.Task
		err := tx.SelectContext(ctx, &rows, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 FOR UPDATE`, ownerID)
		if err != nil {
			return err
		}
		byID := make(map[string]models.Task, len(rows))
		for _, t := range rows {
			byID[t.ID] = t
		}
		root, ok := byID[id]
		if !ok {
			return store.ErrNotFound
		}
		if root.ParentTask != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE tasks SET subtasks = array_remove(subtasks, $1)
				WHERE id = $2`, id, *root.ParentTask); err != nil {
				return err
			}
		}
		deleted = store.SubtreeIDs(id, byID)
		_, err = tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ANY($1)`, pq.StringArray(deleted))
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func withTaskDefaults(t *models.Task) *models.Task {
	c := *t
	if c.Tags == nil {
		c.Tags = pq.StringArray{}
	}
	if c.Subtasks == nil {
		c.Subtasks = pq.StringArray{}
	}
	return &c
}

// Events

const eventColumns = `id, user_id, title, description, start_date, end_date, all_day, location, color, type,
	priority, tags, attendees, recurring, reminders, notes, related_task, related_note, created_at, updated_at`

func (s *Store) ListEvents(ctx context.Context, ownerID string) ([]models.Event, error) {
	out := []models.Event{}
	err := s.db.SelectContext(ctx, &out, `SELECT `+eventColumns+` FROM events WHERE user_id = $1 ORDER BY start_date`, ownerID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	if err := s.db.GetContext(ctx, &e, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id); err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO events (`+eventColumns+`)
		VALUES (:id, :user_id, :title, :description, :start_date, :end_date, :all_day, :location, :color, :type,
			:priority, :tags, :attendees, :recurring, :reminders, :notes, :related_task, :related_note, :created_at, :updated_at)`,
		withEventDefaults(e))
	return mapErr(err)
}

func (s *Store) UpdateEvent(ctx context.Context, e *models.Event) error {
	return expectOne(s.db.NamedExecContext(ctx, `UPDATE events SET
		title = :title, description = :description, start_date = :start_date, end_date = :end_date,
		all_day = :all_day, location = :location, color = :color, type = :type, priority = :priority,
		tags = :tags, attendees = :attendees, recurring = :recurring, reminders = :reminders,
		notes = :notes, related_task = :related_task, related_note = :related_note, updated_at = :updated_at
		WHERE id = :id`, withEventDefaults(e)))
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id))
}

func (s *Store) DeleteEvents(ctx context.Context, ownerID string, ids []string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE user_id = $1 AND id = ANY($2)`, ownerID, pq.StringArray(ids))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func withEventDefaults(e *models.Event) *models.Event {
	c := *e
	if c.Tags == nil {
		c.Tags = pq.StringArray{}
	}
	return &c
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
