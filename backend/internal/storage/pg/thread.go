package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/domain"
	sharedpg "github.com/itchan-dev/anonboard/shared/storage/pg"
)

const threadColumns = `id, board, text, delete_password, created_on, bumped_on, reported, replies`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (domain.Thread, error) {
	var (
		t       domain.Thread
		replies []byte
	)
	if err := row.Scan(&t.Id, &t.Board, &t.Text, &t.DeletePassword, &t.CreatedOn, &t.BumpedOn, &t.Reported, &replies); err != nil {
		return domain.Thread{}, err
	}
	if err := json.Unmarshal(replies, &t.Replies); err != nil {
		return domain.Thread{}, fmt.Errorf("failed to decode replies of thread %q: %w", t.Id, err)
	}
	t.CreatedOn = t.CreatedOn.UTC()
	t.BumpedOn = t.BumpedOn.UTC()
	if t.Replies == nil {
		t.Replies = []domain.Reply{}
	}
	for i := range t.Replies {
		t.Replies[i].CreatedOn = t.Replies[i].CreatedOn.UTC()
	}
	return t, nil
}

// queryThread returns nil without error when no row matches.
func queryThread(ctx context.Context, q sharedpg.Querier, query string, args ...any) (*domain.Thread, error) {
	t, err := scanThread(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// encodeReplies returns a string because lib/pq sends []byte parameters as bytea.
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
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, thread.Id, thread.Board, thread.Text, thread.DeletePassword,
		thread.CreatedOn, thread.BumpedOn, thread.Reported, replies)
	if err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	return nil
}

func (s *Storage) FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	t, err := queryThread(ctx, s.db, `SELECT `+threadColumns+` FROM threads WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return t, nil
}

// FindRecentThreads orders by bumped_on descending. Ties fall back to id so
// the listing is stable.
func (s *Storage) FindRecentThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+threadColumns+`
        FROM threads
        WHERE board = $1
        ORDER BY bumped_on DESC, id
        LIMIT $2
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

// FindThreadByBoardAndText returns the earliest created thread with exactly this text.
func (s *Storage) FindThreadByBoardAndText(ctx context.Context, board domain.BoardName, text domain.PostText) (*domain.Thread, error) {
	t, err := queryThread(ctx, s.db, `
        SELECT `+threadColumns+`
        FROM threads
        WHERE board = $1 AND md5(text) = md5($2::text) AND text = $2::text
        ORDER BY created_on, id
        LIMIT 1
    `, board, text)
	if err != nil {
		return nil, fmt.Errorf("failed to find thread by text: %w", err)
	}
	return t, nil
}

// UpdateThread persists the mutable fields of thread. Identity, board, text,
// password and creation time are never rewritten.
func (s *Storage) UpdateThread(ctx context.Context, thread domain.Thread) (bool, error) {
	replies, err := encodeReplies(thread.Replies)
	if err != nil {
		return false, fmt.Errorf("failed to encode replies: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
        UPDATE threads SET bumped_on = $2, reported = $3, replies = $4
        WHERE id = $1
    `, thread.Id, thread.BumpedOn, thread.Reported, replies)
	if err != nil {
		return false, fmt.Errorf("failed to update thread: %w", err)
	}
	return affected(res)
}

func (s *Storage) MarkThreadReported(ctx context.Context, id domain.ThreadId) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE threads SET reported = TRUE WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to report thread: %w", err)
	}
	return affected(res)
}

func (s *Storage) DeleteThreadById(ctx context.Context, id domain.ThreadId) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM threads WHERE id = $1`, id)
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
