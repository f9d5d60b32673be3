package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/domain"
)

// --- Mocks ---

// MockThreadStorage mocks the ThreadStorage interface.
type MockThreadStorage struct {
	insertThreadFunc       func(thread domain.Thread) error
	findThreadByIdFunc     func(id domain.ThreadId) (*domain.Thread, error)
	findRecentThreadsFunc  func(board domain.BoardName, limit int) ([]domain.Thread, error)
	markThreadReportedFunc func(id domain.ThreadId) (bool, error)
	deleteThreadByIdFunc   func(id domain.ThreadId) (bool, error)

	mu                 sync.Mutex
	insertCalled       bool
	deleteThreadCalled bool
	reportCalled       bool
}

func (m *MockThreadStorage) InsertThread(ctx context.Context, thread domain.Thread) error {
	m.mu.Lock()
	m.insertCalled = true
	m.mu.Unlock()
	if m.insertThreadFunc != nil {
		return m.insertThreadFunc(thread)
	}
	return nil
}

func (m *MockThreadStorage) FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if m.findThreadByIdFunc != nil {
		return m.findThreadByIdFunc(id)
	}
	return nil, nil
}

func (m *MockThreadStorage) FindRecentThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error) {
	if m.findRecentThreadsFunc != nil {
		return m.findRecentThreadsFunc(board, limit)
	}
	return nil, nil
}

func (m *MockThreadStorage) MarkThreadReported(ctx context.Context, id domain.ThreadId) (bool, error) {
	m.mu.Lock()
	m.reportCalled = true
	m.mu.Unlock()
	if m.markThreadReportedFunc != nil {
		return m.markThreadReportedFunc(id)
	}
	return true, nil
}

func (m *MockThreadStorage) DeleteThreadById(ctx context.Context, id domain.ThreadId) (bool, error) {
	m.mu.Lock()
	m.deleteThreadCalled = true
	m.mu.Unlock()
	if m.deleteThreadByIdFunc != nil {
		return m.deleteThreadByIdFunc(id)
	}
	return true, nil
}

// MockReplyStorage mocks the ReplyStorage interface.
type MockReplyStorage struct {
	findThreadByIdFunc    func(id domain.ThreadId) (*domain.Thread, error)
	appendReplyFunc       func(threadId domain.ThreadId, reply domain.Reply) (*domain.Thread, error)
	markReplyReportedFunc func(threadId domain.ThreadId, replyId domain.ReplyId) (bool, error)
	setReplyTextFunc      func(threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) (bool, error)

	mu                 sync.Mutex
	appendCalled       bool
	setReplyTextCalled bool
}

func (m *MockReplyStorage) FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if m.findThreadByIdFunc != nil {
		return m.findThreadByIdFunc(id)
	}
	return nil, nil
}

func (m *MockReplyStorage) AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) (*domain.Thread, error) {
	m.mu.Lock()
	m.appendCalled = true
	m.mu.Unlock()
	if m.appendReplyFunc != nil {
		return m.appendReplyFunc(threadId, reply)
	}
	return nil, nil
}

func (m *MockReplyStorage) MarkReplyReported(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (bool, error) {
	if m.markReplyReportedFunc != nil {
		return m.markReplyReportedFunc(threadId, replyId)
	}
	return false, nil
}

func (m *MockReplyStorage) SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) (bool, error) {
	m.mu.Lock()
	m.setReplyTextCalled = true
	m.mu.Unlock()
	if m.setReplyTextFunc != nil {
		return m.setReplyTextFunc(threadId, replyId, text)
	}
	return true, nil
}

// MockPostValidator mocks the PostValidator interface.
type MockPostValidator struct {
	textFunc     func(text domain.PostText) error
	passwordFunc func(password domain.DeletePassword) error
}

func (m *MockPostValidator) Text(text domain.PostText) error {
	if m.textFunc != nil {
		return m.textFunc(text)
	}
	return nil
}

func (m *MockPostValidator) Password(password domain.DeletePassword) error {
	if m.passwordFunc != nil {
		return m.passwordFunc(password)
	}
	return nil
}

// memStorage is a small stateful store used by the scenario tests.
type memStorage struct {
	mu      sync.Mutex
	threads map[domain.ThreadId]domain.Thread
}

func newMemStorage() *memStorage {
	return &memStorage{threads: make(map[domain.ThreadId]domain.Thread)}
}

func cloneThread(t domain.Thread) domain.Thread {
	t.Replies = append([]domain.Reply{}, t.Replies...)
	return t
}

func (m *memStorage) InsertThread(ctx context.Context, thread domain.Thread) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads[thread.Id] = cloneThread(thread)
	return nil
}

func (m *memStorage) FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.threads[id]
	if !ok {
		return nil, nil
	}
	t = cloneThread(t)
	return &t, nil
}

func (m *memStorage) FindRecentThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Thread
	for _, t := range m.threads {
		if t.Board == board {
			out = append(out, cloneThread(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BumpedOn.Equal(out[j].BumpedOn) {
			return out[i].BumpedOn.After(out[j].BumpedOn)
		}
		return out[i].Id < out[j].Id
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStorage) mutate(id domain.ThreadId, fn func(t *domain.Thread) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.threads[id]
	if !ok {
		return false
	}
	if !fn(&t) {
		return false
	}
	m.threads[id] = t
	return true
}

func (m *memStorage) MarkThreadReported(ctx context.Context, id domain.ThreadId) (bool, error) {
	return m.mutate(id, func(t *domain.Thread) bool { t.Reported = true; return true }), nil
}

func (m *memStorage) DeleteThreadById(ctx context.Context, id domain.ThreadId) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.threads[id]
	delete(m.threads, id)
	return ok, nil
}

func (m *memStorage) AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) (*domain.Thread, error) {
	var out *domain.Thread
	m.mutate(threadId, func(t *domain.Thread) bool {
		t.Replies = append(t.Replies, reply)
		t.BumpedOn = reply.CreatedOn
		c := cloneThread(*t)
		out = &c
		return true
	})
	return out, nil
}

func (m *memStorage) MarkReplyReported(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (bool, error) {
	return m.mutate(threadId, func(t *domain.Thread) bool {
		r := t.Reply(replyId)
		if r == nil {
			return false
		}
		r.Reported = true
		return true
	}), nil
}

func (m *memStorage) SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) (bool, error) {
	return m.mutate(threadId, func(t *domain.Thread) bool {
		r := t.Reply(replyId)
		if r == nil {
			return false
		}
		r.Text = text
		return true
	}), nil
}

// --- Helpers ---

func testConfig() config.Public {
	return config.Public{RecentThreads: 10, PreviewReplies: 3}
}

// steppingClock returns increasing instants one second apart.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

// sequentialIds returns prefix-1, prefix-2, ...
func sequentialIds(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}
