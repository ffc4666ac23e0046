package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leasedesk/notify-stream/internal/domain"
)

// SaveStream replaces the cached list of tenantID's stream, preserving order.
func (s *SQLiteStorage) SaveStream(ctx context.Context, tenantID, stream string, list []domain.Notification) error {
	if err := validateKey(tenantID, stream); err != nil {
		return err
	}
	return s.withTx(ctx, func(q *Queries) error {
		return s.saveStream(ctx, q, tenantID, stream, list)
	})
}

// SaveView stores both lists of a tenant in one transaction.
func (s *SQLiteStorage) SaveView(ctx context.Context, tenantID string, notifications, announcements []domain.Notification) error {
	if err := validateKey(tenantID, StreamPersonal); err != nil {
		return err
	}
	return s.withTx(ctx, func(q *Queries) error {
		if err := s.saveStream(ctx, q, tenantID, StreamPersonal, notifications); err != nil {
			return err
		}
		return s.saveStream(ctx, q, tenantID, StreamAnnouncements, announcements)
	})
}

func (s *SQLiteStorage) saveStream(ctx context.Context, q *Queries, tenantID, stream string, list []domain.Notification) error {
	if err := q.DeleteStream(ctx, tenantID, stream); err != nil {
		return fmt.Errorf("sqlite storage: clear %s: %w", stream, err)
	}
	for i, n := range list {
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("sqlite storage: encode notification %s: %w", n.ID, err)
		}
		err = q.InsertEntry(ctx, InsertEntryParams{
			TenantID:  tenantID,
			Stream:    stream,
			ID:        string(n.ID),
			Position:  int64(i),
			Payload:   string(payload),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("sqlite storage: insert notification %s: %w", n.ID, err)
		}
	}
	if err := q.UpsertStreamMeta(ctx, tenantID, stream, s.utcNow()); err != nil {
		return fmt.Errorf("sqlite storage: update %s metadata: %w", stream, err)
	}
	return nil
}

// LoadStream returns the cached list in stored order. An uncached stream is
// an empty list.
func (s *SQLiteStorage) LoadStream(ctx context.Context, tenantID, stream string) ([]domain.Notification, error) {
	if err := validateKey(tenantID, stream); err != nil {
		return nil, err
	}
	rows, err := s.queries.ListStream(ctx, tenantID, stream)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: list %s: %w", stream, err)
	}
	out := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := domain.ParseNotification([]byte(row.Payload))
		if err != nil {
			return nil, fmt.Errorf("sqlite storage: decode cached entry: %w", err)
		}
		n.IsRead = n.IsRead || row.IsRead
		out = append(out, n)
	}
	return out, nil
}

// SavedAt returns when the stream was last saved; ok is false if never.
func (s *SQLiteStorage) SavedAt(ctx context.Context, tenantID, stream string) (time.Time, bool, error) {
	if err := validateKey(tenantID, stream); err != nil {
		return time.Time{}, false, err
	}
	raw, err := s.queries.GetStreamSavedAt(ctx, tenantID, stream)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("sqlite storage: read %s metadata: %w", stream, err)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("sqlite storage: parse saved_at %q: %w", raw, err)
	}
	return t, true, nil
}

// MarkRead flags every cached entry with id as read for tenantID.
func (s *SQLiteStorage) MarkRead(ctx context.Context, tenantID, id string) error {
	if strings.TrimSpace(tenantID) == "" {
		return ErrInvalidTenant
	}
	res, err := s.queries.MarkEntryRead(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("sqlite storage: mark read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite storage: read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("sqlite storage: mark read: %w: id %s", domain.ErrNotificationNotFound, id)
	}
	return nil
}

// Clear removes everything cached for tenantID.
func (s *SQLiteStorage) Clear(ctx context.Context, tenantID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return ErrInvalidTenant
	}
	return s.withTx(ctx, func(q *Queries) error {
		if err := q.DeleteTenant(ctx, tenantID); err != nil {
			return fmt.Errorf("sqlite storage: clear tenant: %w", err)
		}
		if err := q.DeleteTenantMeta(ctx, tenantID); err != nil {
			return fmt.Errorf("sqlite storage: clear tenant metadata: %w", err)
		}
		return nil
	})
}

func validateKey(tenantID, stream string) error {
	if strings.TrimSpace(tenantID) == "" {
		return ErrInvalidTenant
	}
	if !validStreams[stream] {
		return fmt.Errorf("%w: %q", ErrInvalidStream, stream)
	}
	return nil
}
