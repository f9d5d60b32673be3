package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/itchan-dev/anonboard/shared/domain"
)

func (s *Storage) get(id domain.ThreadId) (*domain.Thread, error) {
	v, closer, err := s.db.Get(threadKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var t domain.Thread
	if err := json.Unmarshal(v, &t); err != nil {
		return nil, fmt.Errorf("%w: thread %q: %v", errCorruptRecord, id, err)
	}
	if t.Replies == nil {
		t.Replies = []domain.Reply{}
	}
	return &t, nil
}

func (s *Storage) InsertThread(ctx context.Context, thread domain.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(ctx); err != nil {
		return err
	}

	existing, err := s.get(thread.Id)
	if err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	if existing != nil {
		return ErrDuplicateId
	}
	if thread.Replies == nil {
		thread.Replies = []domain.Reply{}
	}
	data, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("failed to encode thread: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(threadKey(thread.Id), data, nil); err != nil {
		return err
	}
	if err := batch.Set(boardIndexKey(thread.Board, thread.BumpedOn, thread.Id), nil, nil); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	return nil
}

func (s *Storage) FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	t, err := s.get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return t, nil
}

// eachOnBoard walks the board index from the most recently bumped thread
// down. fn returns false to stop.
func (s *Storage) eachOnBoard(board domain.BoardName, fn func(t *domain.Thread) bool) error {
	prefix := boardIndexPrefix(board)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for ok := iter.Last(); ok; ok = iter.Prev() {
		key := iter.Key()
		// <bumped>\x00<id> follows the prefix
		rest := key[len(prefix):]
		if len(rest) < 21 || rest[20] != 0 {
			continue
		}
		t, err := s.get(string(rest[21:]))
		if err != nil {
			return err
		}
		// a board name containing \x00 can share a prefix with another board
		if t == nil || t.Board != board {
			continue
		}
		if !fn(t) {
			break
		}
	}
	return iter.Error()
}

func (s *Storage) FindRecentThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	threads := make([]domain.Thread, 0, limit)
	if limit <= 0 {
		return threads, nil
	}
	err := s.eachOnBoard(board, func(t *domain.Thread) bool {
		threads = append(threads, *t)
		return len(threads) < limit
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent threads: %w", err)
	}
	return threads, nil
}

// FindThreadByBoardAndText scans the board. There is no text index.
func (s *Storage) FindThreadByBoardAndText(ctx context.Context, board domain.BoardName, text domain.PostText) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var found *domain.Thread
	err := s.eachOnBoard(board, func(t *domain.Thread) bool {
		if t.Text != text {
			return true
		}
		if found == nil || t.CreatedOn.Before(found.CreatedOn) ||
			(t.CreatedOn.Equal(found.CreatedOn) && t.Id < found.Id) {
			found = t
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find thread by text: %w", err)
	}
	return found, nil
}

// mutate loads the thread, applies fn and writes the result together with
// the moved index entry in one batch. fn returns false to leave the thread
// untouched. The returned thread is nil when id does not exist.
func (s *Storage) mutate(ctx context.Context, id domain.ThreadId, fn func(t *domain.Thread) bool) (*domain.Thread, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(ctx); err != nil {
		return nil, false, err
	}

	t, err := s.get(id)
	if err != nil || t == nil {
		return nil, false, err
	}
	oldIndex := boardIndexKey(t.Board, t.BumpedOn, t.Id)
	if !fn(t) {
		return t, false, nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode thread: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(threadKey(id), data, nil); err != nil {
		return nil, false, err
	}
	if newIndex := boardIndexKey(t.Board, t.BumpedOn, t.Id); string(newIndex) != string(oldIndex) {
		if err := batch.Delete(oldIndex, nil); err != nil {
			return nil, false, err
		}
		if err := batch.Set(newIndex, nil, nil); err != nil {
			return nil, false, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// UpdateThread persists the mutable fields of thread.
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
	_, ok, err := s.mutate(ctx, id, func(t *domain.Thread) bool {
		t.Reported = true
		return true
	})
	if err != nil {
		return false, fmt.Errorf("failed to report thread: %w", err)
	}
	return ok, nil
}

func (s *Storage) DeleteThreadById(ctx context.Context, id domain.ThreadId) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(ctx); err != nil {
		return false, err
	}

	t, err := s.get(id)
	if err != nil {
		return false, fmt.Errorf("failed to delete thread: %w", err)
	}
	if t == nil {
		return false, nil
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(threadKey(id), nil); err != nil {
		return false, err
	}
	if err := batch.Delete(boardIndexKey(t.Board, t.BumpedOn, t.Id), nil); err != nil {
		return false, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return false, fmt.Errorf("failed to delete thread: %w", err)
	}
	return true, nil
}
