// Package surreal implements store.Store on SurrealDB.
//
// Tables are schemaless. Two unique indexes back the email and journal date
// rules, and multi-record writes run as a single BEGIN/COMMIT TRANSACTION
// query.
package surreal

import (
	"context"
	"fmt"
	"strings"

	surrealdb "github.com/surrealdb/surrealdb.go"
	sm "github.com/surrealdb/surrealdb.go/pkg/models"

	"chrona/internal/models"
	"chrona/internal/store"
)

type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

type Store struct {
	db *surrealdb.DB
}

var _ store.Store = (*Store)(nil)

// Open connects, signs in when credentials are set, selects the namespace and
// database and defines the indexes.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to surrealdb: %w", err)
	}
	if cfg.Username != "" && cfg.Password != "" {
		if _, err := db.SignIn(ctx, surrealdb.Auth{Username: cfg.Username, Password: cfg.Password}); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("surrealdb sign in: %w", err)
		}
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("surrealdb use %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("surrealdb indexes: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := surrealdb.Query[any](ctx, s.db, `
		DEFINE INDEX IF NOT EXISTS users_email ON TABLE users FIELDS email UNIQUE;
		DEFINE INDEX IF NOT EXISTS journal_user_date ON TABLE journal FIELDS userId, date UNIQUE;
		DEFINE INDEX IF NOT EXISTS notes_user ON TABLE notes FIELDS userId;
		DEFINE INDEX IF NOT EXISTS tasks_user ON TABLE tasks FIELDS userId;
		DEFINE INDEX IF NOT EXISTS events_user ON TABLE events FIELDS userId;
	`, nil)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := surrealdb.Query[any](ctx, s.db, "RETURN true;", nil)
	return err
}

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

// mapErr folds SurrealDB uniqueness failures into store.ErrDuplicate. The
// driver only exposes them as message text.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "already contains") || strings.Contains(msg, "already exists") {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

// query runs a single statement and returns its rows.
func query[T any](ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) ([]T, error) {
	res, err := surrealdb.Query[[]T](ctx, db, sql, vars)
	if err != nil {
		return nil, mapErr(err)
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	first := (*res)[0]
	if first.Status != "" && first.Status != "OK" {
		return nil, fmt.Errorf("surrealdb query status %s", first.Status)
	}
	return first.Result, nil
}

func queryOne[T any](ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) (*T, error) {
	rows, err := query[T](ctx, db, sql, vars)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) create(ctx context.Context, table, id string, doc any) error {
	_, err := surrealdb.Query[any](ctx, s.db, `CREATE $rid CONTENT $doc;`, map[string]any{
		"rid": recordID(table, id),
		"doc": doc,
	})
	return mapErr(err)
}

func (s *Store) replace(ctx context.Context, table, id string, doc any) error {
	rows, err := query[map[string]any](ctx, s.db, `UPDATE $rid CONTENT $doc RETURN id;`, map[string]any{
		"rid": recordID(table, id),
		"doc": doc,
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) remove(ctx context.Context, table, id string) error {
	rows, err := query[map[string]any](ctx, s.db, `DELETE $rid RETURN BEFORE;`, map[string]any{
		"rid": recordID(table, id),
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	doc := toUserDoc(u)
	return s.create(ctx, tableUsers, u.ID, &doc)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	d, err := queryOne[userDoc](ctx, s.db, `SELECT * FROM $rid;`, map[string]any{"rid": recordID(tableUsers, id)})
	if err != nil {
		return nil, err
	}
	u := d.model()
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	d, err := queryOne[userDoc](ctx, s.db, `SELECT * FROM users WHERE email = $email LIMIT 1;`, map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	u := d.model()
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	doc := toUserDoc(u)
	return s.replace(ctx, tableUsers, u.ID, &doc)
}

// Notes

func (s *Store) ListNotes(ctx context.Context, ownerID, tag string) ([]models.Note, error) {
	sql := `SELECT * FROM notes WHERE userId = $owner`
	vars := map[string]any{"owner": ownerID}
	if tag != "" {
		sql += ` AND tags CONTAINS $tag`
		vars["tag"] = tag
	}
	docs, err := query[noteDoc](ctx, s.db, sql+` ORDER BY createdAt DESC;`, vars)
	if err != nil {
		return nil, err
	}
	out := make([]models.Note, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) GetNote(ctx context.Context, id string) (*models.Note, error) {
	d, err := queryOne[noteDoc](ctx, s.db, `SELECT * FROM $rid;`, map[string]any{"rid": recordID(tableNotes, id)})
	if err != nil {
		return nil, err
	}
	n := d.model()
	return &n, nil
}

func (s *Store) CreateNote(ctx context.Context, n *models.Note) error {
	doc := toNoteDoc(n)
	return s.create(ctx, tableNotes, n.ID, &doc)
}

func (s *Store) UpdateNote(ctx context.Context, n *models.Note) error {
	doc := toNoteDoc(n)
	return s.replace(ctx, tableNotes, n.ID, &doc)
}

func (s *Store) DeleteNote(ctx context.Context, id string) error {
	return s.remove(ctx, tableNotes, id)
}

// Journal

func (s *Store) ListJournal(ctx context.Context, ownerID, from, to string) ([]models.JournalEntry, error) {
	sql := `SELECT * FROM journal WHERE userId = $owner`
	vars := map[string]any{"owner": ownerID}
	if from != "" {
		sql += ` AND date >= $from`
		vars["from"] = from
	}
	if to != "" {
		sql += ` AND date <= $to`
		vars["to"] = to
	}
	docs, err := query[journalDoc](ctx, s.db, sql+` ORDER BY date DESC;`, vars)
	if err != nil {
		return nil, err
	}
	out := make([]models.JournalEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) GetJournal(ctx context.Context, id string) (*models.JournalEntry, error) {
	d, err := queryOne[journalDoc](ctx, s.db, `SELECT * FROM $rid;`, map[string]any{"rid": recordID(tableJournal, id)})
	if err != nil {
		return nil, err
	}
	j := d.model()
	return &j, nil
}

func (s *Store) GetJournalByDate(ctx context.Context, ownerID, date string) (*models.JournalEntry, error) {
	d, err := queryOne[journalDoc](ctx, s.db, `SELECT * FROM journal WHERE userId = $owner AND date = $date LIMIT 1;`,
		map[string]any{"owner": ownerID, "date": date})
	if err != nil {
		return nil, err
	}
	j := d.model()
	return &j, nil
}

func (s *Store) CreateJournal(ctx context.Context, j *models.JournalEntry) error {
	doc := toJournalDoc(j)
	return s.create(ctx, tableJournal, j.ID, &doc)
}

func (s *Store) UpdateJournal(ctx context.Context, j *models.JournalEntry) error {
	doc := toJournalDoc(j)
	return s.replace(ctx, tableJournal, j.ID, &doc)
}

func (s *Store) DeleteJournal(ctx context.Context, id string) error {
	return s.remove(ctx, tableJournal, id)
}

// Tasks

func (s *Store) ListTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	docs, err := query[taskDoc](ctx, s.db, `SELECT * FROM tasks WHERE userId = $owner;`, map[string]any{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	models.SortTasks(out)
	return out, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	d, err := queryOne[taskDoc](ctx, s.db, `SELECT * FROM $rid;`, map[string]any{"rid": recordID(tableTasks, id)})
	if err != nil {
		return nil, err
	}
	t := d.model()
	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	doc := toTaskDoc(t)
	if t.ParentTask == nil {
		return s.create(ctx, tableTasks, t.ID, &doc)
	}
	if _, err := s.GetTask(ctx, *t.ParentTask); err != nil {
		return err
	}
	_, err := surrealdb.Query[any](ctx, s.db, `
		BEGIN TRANSACTION;
		UPDATE $parent SET subtasks += $id;
		CREATE $rid CONTENT $doc;
		COMMIT TRANSACTION;
	`, map[string]any{
		"parent": recordID(tableTasks, *t.ParentTask),
		"id":     t.ID,
		"rid":    recordID(tableTasks, t.ID),
		"doc":    &doc,
	})
	return mapErr(err)
}

// UpdateTask merges the editable fields and leaves subtasks to CreateTask
// and DeleteTaskTree. t.Subtasks is refreshed from the stored record.
func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	if _, err := s.GetTask(ctx, t.ID); err != nil {
		return err
	}
	patch, unset := toTaskPatch(t)
	unsetStmt := ""
	if len(unset) > 0 {
		unsetStmt = `UPDATE $rid UNSET ` + strings.Join(unset, ", ") + `;`
	}
	_, err := surrealdb.Query[any](ctx, s.db, `
		BEGIN TRANSACTION;
		UPDATE $rid MERGE $patch;
		`+unsetStmt+`
		COMMIT TRANSACTION;
	`, map[string]any{
		"rid":   recordID(tableTasks, t.ID),
		"patch": &patch,
	})
	if err != nil {
		return mapErr(err)
	}
	cur, err := s.GetTask(ctx, t.ID)
	if err != nil {
		return err
	}
	t.Subtasks = cur.Subtasks
	return nil
}

func (s *Store) DeleteTaskTree(ctx context.Context, ownerID, id string) ([]string, error) {
	tasks, err := s.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	root, ok := byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	ids := store.SubtreeIDs(id, byID)
	rids := make([]sm.RecordID, 0, len(ids))
	for _, tid := range ids {
		rids = append(rids, recordID(tableTasks, tid))
	}

	vars := map[string]any{"id": id, "rids": rids}
	detach := ""
	if root.ParentTask != nil {
		detach = `UPDATE $parent SET subtasks -= $id;`
		vars["parent"] = recordID(tableTasks, *root.ParentTask)
	}
	_, err = surrealdb.Query[any](ctx, s.db, `
		BEGIN TRANSACTION;
		`+detach+`
		DELETE $rids;
		COMMIT TRANSACTION;
	`, vars)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Events

func (s *Store) ListEvents(ctx context.Context, ownerID string) ([]models.Event, error) {
	docs, err := query[eventDoc](ctx, s.db, `SELECT * FROM events WHERE userId = $owner ORDER BY startDate ASC;`,
		map[string]any{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	out := make([]models.Event, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	d, err := queryOne[eventDoc](ctx, s.db, `SELECT * FROM $rid;`, map[string]any{"rid": recordID(tableEvents, id)})
	if err != nil {
		return nil, err
	}
	e := d.model()
	return &e, nil
}

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	doc := toEventDoc(e)
	return s.create(ctx, tableEvents, e.ID, &doc)
}

func (s *Store) UpdateEvent(ctx context.Context, e *models.Event) error {
	doc := toEventDoc(e)
	return s.replace(ctx, tableEvents, e.ID, &doc)
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.remove(ctx, tableEvents, id)
}

func (s *Store) DeleteEvents(ctx context.Context, ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	rids := make([]sm.RecordID, 0, len(ids))
	for _, id := range ids {
		rids = append(rids, recordID(tableEvents, id))
	}
	rows, err := query[map[string]any](ctx, s.db, `DELETE events WHERE userId = $owner AND id IN $rids RETURN BEFORE;`,
		map[string]any{"owner": ownerID, "rids": rids})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
