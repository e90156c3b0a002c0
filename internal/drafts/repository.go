package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/reelwright/reelwright/internal/timeline"
)

type Repository interface {
	Create(ctx context.Context, d *Draft) error
	Get(ctx context.Context, id string) (*Draft, error)
	List(ctx context.Context, limit int) ([]*Draft, error)
	UpdateComposition(ctx context.Context, id string, c Composition) error
	TransitionStatus(ctx context.Context, id string, from []Status, to Status, renderID, errorMsg string) error
	Delete(ctx context.Context, id string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// fixed width so that lexical order is chronological order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var draftColumns = []string{
	"id", "name", "platform", "ratio", "template_key", "article_url",
	"clips_json", "overlays_json", "status", "render_id", "error",
	"created_at", "updated_at",
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *SQLiteRepository) Create(ctx context.Context, d *Draft) error {
	clips, overlays, err := encodeTracks(d.Clips, d.Overlays)
	if err != nil {
		return err
	}

	_, err = r.exec(ctx, sq.Insert("drafts").
		Columns(draftColumns...).
		Values(
			d.ID, d.Name, nullString(d.Platform), nullString(d.Ratio),
			nullString(d.TemplateKey), nullString(d.ArticleURL),
			clips, overlays, string(d.Status), nullString(d.RenderID), nullString(d.Error),
			d.CreatedAt.UTC().Format(timeLayout), d.UpdatedAt.UTC().Format(timeLayout),
		))
	return err
}

// Get returns nil, nil when no draft has id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Draft, error) {
	query, args, err := sq.Select(draftColumns...).From("drafts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	d, err := scanDraft(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// List returns the newest drafts first. A non-positive limit returns all.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*Draft, error) {
	b := sq.Select(draftColumns...).From("drafts").OrderBy("created_at DESC", "id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateComposition(ctx context.Context, id string, c Composition) error {
	clips, overlays, err := encodeTracks(c.Clips, c.Overlays)
	if err != nil {
		return err
	}

	res, err := r.exec(ctx, sq.Update("drafts").
		Set("platform", nullString(c.Platform)).
		Set("ratio", nullString(c.Ratio)).
		Set("clips_json", clips).
		Set("overlays_json", overlays).
		Set("updated_at", now()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	return requireRow(res)
}

// TransitionStatus moves a draft to status to, but only while it is in one of
// from; the check and the write are one statement. A draft found in any other
// status yields ErrBusy.
func (r *SQLiteRepository) TransitionStatus(ctx context.Context, id string, from []Status, to Status, renderID, errorMsg string) error {
	states := make([]string, len(from))
	for i, st := range from {
		states[i] = string(st)
	}

	res, err := r.exec(ctx, sq.Update("drafts").
		Set("status", string(to)).
		Set("render_id", nullString(renderID)).
		Set("error", nullString(errorMsg)).
		Set("updated_at", now()).
		Where(sq.Eq{"id": id, "status": states}))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	d, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return ErrNotFound
	}
	return fmt.Errorf("%w: status is %s", ErrBusy, d.Status)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.exec(ctx, sq.Delete("drafts").Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	query, args, err := sq.Select("value").From("config").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.exec(ctx, sq.Insert("config").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value"))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*Draft, error) {
	var d Draft
	var status, clipsJSON, overlaysJSON, createdAt, updatedAt string
	var platform, ratio, templateKey, articleURL, renderID, errMsg sql.NullString

	err := row.Scan(&d.ID, &d.Name, &platform, &ratio, &templateKey, &articleURL,
		&clipsJSON, &overlaysJSON, &status, &renderID, &errMsg, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(clipsJSON), &d.Clips); err != nil {
		return nil, fmt.Errorf("decode clips for draft %s: %w", d.ID, err)
	}
	if err := json.Unmarshal([]byte(overlaysJSON), &d.Overlays); err != nil {
		return nil, fmt.Errorf("decode overlays for draft %s: %w", d.ID, err)
	}

	d.Platform = platform.String
	d.Ratio = ratio.String
	d.TemplateKey = templateKey.String
	d.ArticleURL = articleURL.String
	d.RenderID = renderID.String
	d.Error = errMsg.String
	d.Status = Status(status)
	d.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	d.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &d, nil
}

func encodeTracks(clips []timeline.Clip, overlays []timeline.Overlay) (string, string, error) {
	if clips == nil {
		clips = []timeline.Clip{}
	}
	if overlays == nil {
		overlays = []timeline.Overlay{}
	}
	c, err := json.Marshal(clips)
	if err != nil {
		return "", "", fmt.Errorf("encode clips: %w", err)
	}
	o, err := json.Marshal(overlays)
	if err != nil {
		return "", "", fmt.Errorf("encode overlays: %w", err)
	}
	return string(c), string(o), nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
