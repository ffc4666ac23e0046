package sqlite

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the cache statements.
type Queries struct {
	db DBTX
}

// New returns Queries running against db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries running inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const deleteStream = `DELETE FROM cached_notifications WHERE tenant_id = ? AND stream = ?`

func (q *Queries) DeleteStream(ctx context.Context, tenantID, stream string) error {
	_, err := q.db.ExecContext(ctx, deleteStream, tenantID, stream)
	return err
}

const insertEntry = `INSERT INTO cached_notifications (tenant_id, stream, id, position, payload, is_read, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (tenant_id, stream, id) DO NOTHING`

type InsertEntryParams struct {
	TenantID  string
	Stream    string
	ID        string
	Position  int64
	Payload   string
	IsRead    bool
	CreatedAt string
}

// InsertEntry stores one entry. A duplicate id keeps the first position.
func (q *Queries) InsertEntry(ctx context.Context, arg InsertEntryParams) error {
	_, err := q.db.ExecContext(ctx, insertEntry,
		arg.TenantID, arg.Stream, arg.ID, arg.Position, arg.Payload, boolToInt(arg.IsRead), arg.CreatedAt)
	return err
}

const upsertStreamMeta = `INSERT INTO cached_streams (tenant_id, stream, saved_at) VALUES (?, ?, ?)
ON CONFLICT (tenant_id, stream) DO UPDATE SET saved_at = excluded.saved_at`

func (q *Queries) UpsertStreamMeta(ctx context.Context, tenantID, stream, savedAt string) error {
	_, err := q.db.ExecContext(ctx, upsertStreamMeta, tenantID, stream, savedAt)
	return err
}

const getStreamSavedAt = `SELECT saved_at FROM cached_streams WHERE tenant_id = ? AND stream = ?`

func (q *Queries) GetStreamSavedAt(ctx context.Context, tenantID, stream string) (string, error) {
	var savedAt string
	err := q.db.QueryRowContext(ctx, getStreamSavedAt, tenantID, stream).Scan(&savedAt)
	return savedAt, err
}

const listStream = `SELECT payload, is_read FROM cached_notifications
WHERE tenant_id = ? AND stream = ?
ORDER BY position ASC`

type ListStreamRow struct {
	Payload string
	IsRead  bool
}

func (q *Queries) ListStream(ctx context.Context, tenantID, stream string) ([]ListStreamRow, error) {
	rows, err := q.db.QueryContext(ctx, listStream, tenantID, stream)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListStreamRow
	for rows.Next() {
		var i ListStreamRow
		var isRead int64
		if err := rows.Scan(&i.Payload, &isRead); err != nil {
			return nil, err
		}
		i.IsRead = isRead != 0
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markEntryRead = `UPDATE cached_notifications SET is_read = 1 WHERE tenant_id = ? AND id = ?`

func (q *Queries) MarkEntryRead(ctx context.Context, tenantID, id string) (sql.Result, error) {
	return q.db.ExecContext(ctx, markEntryRead, tenantID, id)
}

const deleteTenant = `DELETE FROM cached_notifications WHERE tenant_id = ?`

func (q *Queries) DeleteTenant(ctx context.Context, tenantID string) error {
	_, err := q.db.ExecContext(ctx, deleteTenant, tenantID)
	return err
}

const deleteTenantMeta = `DELETE FROM cached_streams WHERE tenant_id = ?`

func (q *Queries) DeleteTenantMeta(ctx context.Context, tenantID string) error {
	_, err := q.db.ExecContext(ctx, deleteTenantMeta, tenantID)
	return err
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
