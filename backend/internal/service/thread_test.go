package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/itchan-dev/anonboard/shared/domain"
	internal_errors "github.com/itchan-dev/anonboard/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestThreadCreate(t *testing.T) {
	ctx := context.Background()
	validData := domain.ThreadCreationData{Board: "b", Text: "hello", DeletePassword: "pw1"}

	t.Run("Successful creation", func(t *testing.T) {
		// Arrange
		storage := &MockThreadStorage{}
		service := NewThread(storage, &MockPostValidator{}, testConfig())
		service.now = func() time.Time { return testStart }
		service.newId = func() string { return "thread-1" }

		var inserted domain.Thread
		storage.insertThreadFunc = func(thread domain.Thread) error {
			inserted = thread
			return nil
		}

		// Act
		view, err := service.Create(ctx, validData)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "thread-1", view.Id)
		assert.Equal(t, "hello", view.Text)
		assert.Equal(t, view.CreatedOn, view.BumpedOn, "new thread is bumped at creation")
		assert.NotNil(t, view.Replies)
		assert.Empty(t, view.Replies)

		assert.Equal(t, "b", inserted.Board)
		assert.Equal(t, "pw1", inserted.DeletePassword)
		assert.False(t, inserted.Reported)
		assert.Equal(t, testStart, inserted.CreatedOn)
		assert.Equal(t, testStart, inserted.BumpedOn)
	})

	t.Run("Default clock is UTC microseconds", func(t *testing.T) {
		storage := &MockThreadStorage{}
		service := NewThread(storage, &MockPostValidator{}, testConfig())

		view, err := service.Create(ctx, validData)

		require.NoError(t, err)
		assert.Equal(t, time.UTC, view.CreatedOn.Location())
		assert.Zero(t, view.CreatedOn.Nanosecond()%1000)
		assert.NotEmpty(t, view.Id)
	})

	t.Run("Validation error", func(t *testing.T) {
		// Arrange
		storage := &MockThreadStorage{}
		validator := &MockPostValidator{
			passwordFunc: func(password domain.DeletePassword) error { return internal_errors.ErrMissingFields },
		}
		service := NewThread(storage, validator, testConfig())

		// Act
		_, err := service.Create(ctx, validData)

		// Assert
		require.Error(t, err)
		assert.Equal(t, internal_errors.ErrMissingFields, err)
		assert.False(t, storage.insertCalled, "InsertThread should not be called on validation error")
	})

	t.Run("Storage error", func(t *testing.T) {
		storageError := errors.New("db connection lost")
		storage := &MockThreadStorage{insertThreadFunc: func(domain.Thread) error { return storageError }}
		service := NewThread(storage, &MockPostValidator{}, testConfig())

		_, err := service.Create(ctx, validData)

		require.Error(t, err)
		assert.True(t, errors.Is(err, storageError))
	})
}

func TestThreadListRecent(t *testing.T) {
	ctx := context.Background()

	t.Run("Passes limit and truncates replies", func(t *testing.T) {
		// Arrange
		storage := &MockThreadStorage{}
		service := NewThread(storage, &MockPostValidator{}, testConfig())
		th := domain.Thread{Id: "t", Board: "b", Text: "op", DeletePassword: "secret", CreatedOn: testStart, BumpedOn: testStart}
		for i := 0; i < 5; i++ {
			th.Replies = append(th.Replies, domain.Reply{Id: fmt.Sprintf("r%d", i), Text: "x", DeletePassword: "rpw", Reported: true})
		}
		storage.findRecentThreadsFunc = func(board domain.BoardName, limit int) ([]domain.Thread, error) {
			assert.Equal(t, "b", board)
			assert.Equal(t, 10, limit)
			return []domain.Thread{th}, nil
		}

		// Act
		views, err := service.ListRecent(ctx, "b")

		// Assert
		require.NoError(t, err)
		require.Len(t, views, 1)
		require.Len(t, views[0].Replies, 3)
		assert.Equal(t, "r2", views[0].Replies[0].Id)
		assert.Equal(t, "r4", views[0].Replies[2].Id)
	})

	t.Run("Empty board is an empty list", func(t *testing.T) {
		service := NewThread(&MockThreadStorage{}, &MockPostValidator{}, testConfig())

		views, err := service.ListRecent(ctx, "empty")

		require.NoError(t, err)
		assert.NotNil(t, views)
		assert.Empty(t, views)
	})

	t.Run("Storage error", func(t *testing.T) {
		storageError := errors.New("timeout")
		storage := &MockThreadStorage{findRecentThreadsFunc: func(domain.BoardName, int) ([]domain.Thread, error) { return nil, storageError }}
		service := NewThread(storage, &MockPostValidator{}, testConfig())

		_, err := service.ListRecent(ctx, "b")

		assert.True(t, errors.Is(err, storageError))
	})
}

func TestThreadReport(t *testing.T) {
	ctx := context.Background()

	t.Run("Known and unknown ids both acknowledge", func(t *testing.T) {
		for _, found := range []bool{true, false} {
			storage := &MockThreadStorage{markThreadReportedFunc: func(id domain.ThreadId) (bool, error) {
				assert.Equal(t, "t1", id)
				return found, nil
			}}
			service := NewThread(storage, &MockPostValidator{}, testConfig())

			ack, err := service.Report(ctx, "t1")

			require.NoError(t, err)
			assert.Equal(t, domain.AckReported, ack)
		}
	})

	t.Run("Empty id skips storage", func(t *testing.T) {
		storage := &MockThreadStorage{}
		service := NewThread(storage, &MockPostValidator{}, testConfig())

		ack, err := service.Report(ctx, "")

		require.NoError(t, err)
		assert.Equal(t, domain.AckReported, ack)
		assert.False(t, storage.reportCalled)
	})

	t.Run("Storage error still acknowledges", func(t *testing.T) {
		storageError := errors.New("down")
		storage := &MockThreadStorage{markThreadReportedFunc: func(domain.ThreadId) (bool, error) { return false, storageError }}
		service := NewThread(storage, &MockPostValidator{}, testConfig())

		ack, err := service.Report(ctx, "t1")

		assert.Equal(t, domain.AckReported, ack)
		assert.True(t, errors.Is(err, storageError))
	})
}

func TestThreadDelete(t *testing.T) {
	ctx := context.Background()
	stored := &domain.Thread{Id: "t1", Board: "b", Text: "op", DeletePassword: "pw1"}

	t.Run("Correct password", func(t *testing.T) {
		storage := &MockThreadStorage{
			findThreadByIdFunc: func(id domain.ThreadId) (*domain.Thread, error) { return stored, nil },
		}
		service := NewThread(storage, &MockPostValidator{}, testConfig())

		ack, err := service.Delete(ctx, "t1", "pw1")

		require.NoError(t, err)
		assert.Equal(t, domain.AckSuccess, ack)
		assert.True(t, storage.deleteThreadCalled)
	})

	tests := []struct {
		name     string
		id       string
		password string
		found    *domain.Thread
	}{
		{name: "Wrong password", id: "t1", password: "nope", found: stored},
		{name: "Password differs in case", id: "t1", password: "PW1", found: stored},
		{name: "Unknown thread", id: "t2", password: "pw1", found: nil},
		{name: "Missing id", id: "", password: "pw1", found: stored},
		{name: "Missing password", id: "t1", password: "", found: stored},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &MockThreadStorage{
				findThreadByIdFunc: func(id domain.ThreadId) (*domain.Thread, error) { return tt.found, nil },
			}
			service := NewThread(storage, &MockPostValidator{}, testConfig())

			ack, err := service.Delete(ctx, tt.id, tt.password)

			require.NoError(t, err)
			assert.Equal(t, domain.AckIncorrectPassword, ack)
			assert.False(t, storage.deleteThreadCalled, "DeleteThreadById should not be called")
		})
	}

	t.Run("Concurrently deleted", func(t *testing.T) {
		storage := &MockThreadStorage{
			findThreadByIdFunc:   func(domain.ThreadId) (*domain.Thread, error) { return stored, nil },
			deleteThreadByIdFunc: func(domain.ThreadId) (bool, error) { return false, nil },
		}
		service := NewThread(storage, &MockPostValidator{}, testConfig())

		ack, err := service.Delete(ctx, "t1", "pw1")

		require.NoError(t, err)
		assert.Equal(t, domain.AckIncorrectPassword, ack)
	})

	t.Run("Storage error", func(t *testing.T) {
		storageError := errors.New("down")
		storage := &MockThreadStorage{
			findThreadByIdFunc: func(domain.ThreadId) (*domain.Thread, error) { return nil, storageError },
		}
		service := NewThread(storage, &MockPostValidator{}, testConfig())

		ack, err := service.Delete(ctx, "t1", "pw1")

		assert.True(t, errors.Is(err, storageError))
		assert.Equal(t, domain.AckIncorrectPassword, ack)
	})
}

// --- Scenarios against a stateful store ---

func newServices(storage *memStorage) (*Thread, *Reply) {
	clock := steppingClock(testStart)
	threads := NewThread(storage, &MockPostValidator{}, testConfig())
	threads.now = clock
	threads.newId = sequentialIds("thread")
	replies := NewReply(storage, &MockPostValidator{})
	replies.now = clock
	replies.newId = sequentialIds("reply")
	return threads, replies
}

func TestScenarioRecentListingOrder(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	threads, replies := newServices(storage)

	var ids []domain.ThreadId
	for i := 0; i < 11; i++ {
		view, err := threads.Create(ctx, domain.ThreadCreationData{Board: "b", Text: fmt.Sprintf("thread %d", i), DeletePassword: "pw"})
		require.NoError(t, err)
		ids = append(ids, view.Id)
	}
	_, err := threads.Create(ctx, domain.ThreadCreationData{Board: "other", Text: "elsewhere", DeletePassword: "pw"})
	require.NoError(t, err)

	// bump the oldest thread back to the top
	_, err = replies.Create(ctx, domain.ReplyCreationData{ThreadId: ids[0], Text: "bump", DeletePassword: "pw"})
	require.NoError(t, err)

	views, err := threads.ListRecent(ctx, "b")
	require.NoError(t, err)
	require.Len(t, views, 10)

	assert.Equal(t, ids[0], views[0].Id, "bumped thread comes first")
	assert.Equal(t, ids[10], views[1].Id)
	for i := 1; i < len(views); i++ {
		assert.False(t, views[i].BumpedOn.After(views[i-1].BumpedOn), "listing must be bumped_on descending")
	}
	for _, v := range views {
		assert.NotEqual(t, ids[1], v.Id, "least recently bumped thread falls off the listing")
	}
}

func TestScenarioDeleteThread(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	threads, replies := newServices(storage)

	view, err := threads.Create(ctx, domain.ThreadCreationData{Board: "b", Text: "hello", DeletePassword: "pw1"})
	require.NoError(t, err)
	_, err = replies.Create(ctx, domain.ReplyCreationData{ThreadId: view.Id, Text: "r", DeletePassword: "rpw"})
	require.NoError(t, err)

	ack, err := threads.Delete(ctx, view.Id, "wrong")
	require.NoError(t, err)
	assert.Equal(t, domain.AckIncorrectPassword, ack)
	_, err = replies.GetThread(ctx, view.Id)
	require.NoError(t, err, "thread survives a wrong password")

	ack, err = threads.Delete(ctx, view.Id, "rpw")
	require.NoError(t, err)
	assert.Equal(t, domain.AckIncorrectPassword, ack, "a reply password does not delete the thread")

	ack, err = threads.Delete(ctx, view.Id, "pw1")
	require.NoError(t, err)
	assert.Equal(t, domain.AckSuccess, ack)

	found, err := storage.FindThreadById(ctx, view.Id)
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = replies.GetThread(ctx, view.Id)
	assert.Equal(t, internal_errors.ErrThreadNotFound, err)

	ack, err = threads.Delete(ctx, view.Id, "pw1")
	require.NoError(t, err)
	assert.Equal(t, domain.AckIncorrectPassword, ack, "a deleted thread stays deleted")
}

func TestScenarioReportThreadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	threads, _ := newServices(storage)

	view, err := threads.Create(ctx, domain.ThreadCreationData{Board: "b", Text: "hello", DeletePassword: "pw1"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ack, err := threads.Report(ctx, view.Id)
		require.NoError(t, err)
		assert.Equal(t, domain.AckReported, ack)

		stored, err := storage.FindThreadById(ctx, view.Id)
		require.NoError(t, err)
		assert.True(t, stored.Reported)
		assert.Equal(t, view.BumpedOn, stored.BumpedOn, "reporting does not bump")
	}
}
