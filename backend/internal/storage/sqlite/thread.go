package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/itchan-dev/anonboard/shared/domain"
)

const threadColumns = `id, board, text, delete_password, created_on, bumped_on, reported, replies`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (domain.Thread, error) {
	var (
		t               domain.Thread
		created, bumped int64
		replies         []byte
	)
	if err := row.Scan(&t.Id, &t.Board, &t.Text, &t.DeletePassword, &created, &bumped, &t.Reported, &replies); err != nil {
		return domain.Thread{}, err
	}
	if err := json.Unmarshal(replies, &t.Replies); err != nil {
		return domain.Thread{}, fmt.Errorf("failed to decode replies of thread %q: %w", t.Id, err)
	}
	if t.Replies == nil {
		t.Replies = []domain.Reply{}
	}
	t.CreatedOn = fromNanos(created)
	t.BumpedOn = fromNanos(bumped)
	return t, nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func findThread(ctx context.Context, q querier, id domain.ThreadId) (*domain.Thread, error) {
	t, err := scanThread(q.QueryRowContext(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeReplies(replies []domain.Reply) (string, error) {
	if replies == nil {
		replies = []domain.Reply{}
	}
	b, err := json.Marshal(replies)
	return string(b), err
}

func (s *Storage) InsertThread(ctx context.Context, thread domain.Thread) error {
	replies, err := encodeReplies(thread.Replies)
	if err != nil {
		return fmt.Errorf("failed to encode replies: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO threads (`+threadColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `, thread.Id, thread.Board, thread.Text, thread.DeletePassword,
		thread.CreatedOn.UnixNano(), thread.BumpedOn.UnixNano(), thread.Reported, replies)
	if err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	return nil
}

func (s *Storage) FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	t, err := findThread(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return t, nil
}

func (s *Storage) FindRecentThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+threadColumns+`
        FROM threads
        WHERE board = ?
        ORDER BY bumped_on DESC, id
        LIMIT ?
    `, board, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent threads: %w", err)
	}
	defer rows.Close()

	threads := make([]domain.Thread, 0, limit)
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return threads, nil
}

func (s *Storage) FindThreadByBoardAndText(ctx context.Context, board domain.BoardName, text domain.PostText) (*domain.Thread, error) {
	t, err := scanThread(s.db.QueryRowContext(ctx, `
        SELECT `+threadColumns+`
        FROM threads
        WHERE board = ? AND text = ?
        ORDER BY created_on, id
        LIMIT 1
    `, board, text))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find thread by text: %w", err)
	}
	return &t, nil
}

// mutate runs fn on the stored thread inside a transaction and writes back
// the mutable fields. The returned thread is nil when id does not exist.
func (s *Storage) mutate(ctx context.Context, id domain.ThreadId, fn func(t *domain.Thread) bool) (*domain.Thread, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := findThread(ctx, tx, id)
	if err != nil || t == nil {
		return nil, false, err
	}
	if !fn(t) {
		return t, false, nil
	}
	replies, err := encodeReplies(t.Replies)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode replies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE threads SET bumped_on = ?, reported = ?, replies = ?
        WHERE id = ?
    `, t.BumpedOn.UnixNano(), t.Reported, replies, id); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return t, true, nil
}

func (s *Storage) UpdateThread(ctx context.Context, thread domain.Thread) (bool, error) {
	_, ok, err := s.mutate(ctx, thread.Id, func(t *domain.Thread) bool {
		t.BumpedOn = thread.BumpedOn
		t.Reported = thread.Reported
		t.Replies = append([]domain.Reply{}, thread.Replies...)
		return true
	})
	if err != nil {
		return false, fmt.Errorf("failed to update thread: %w", err)
	}
	return ok, nil
}

func (s *Storage) MarkThreadReported(ctx context.Context, id domain.ThreadId) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE threads SET reported = 1 WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to report thread: %w", err)
	}
	return affected(res)
}

func (s *Storage) DeleteThreadById(ctx context.Context, id domain.ThreadId) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete thread: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
