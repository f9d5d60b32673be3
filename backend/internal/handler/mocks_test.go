package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/domain"
)

// --- Mock for HealthChecker ---

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil // Default: healthy
}

// --- Mock for ThreadService ---

type MockThreadService struct {
	MockCreate     func(data domain.ThreadCreationData) (domain.ThreadView, error)
	MockListRecent func(board domain.BoardName) ([]domain.ThreadView, error)
	MockReport     func(id domain.ThreadId) (domain.Ack, error)
	MockDelete     func(id domain.ThreadId, password domain.DeletePassword) (domain.Ack, error)
}

func (m *MockThreadService) Create(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadView, error) {
	if m.MockCreate != nil {
		return m.MockCreate(data)
	}
	return domain.ThreadView{}, nil
}

func (m *MockThreadService) ListRecent(ctx context.Context, board domain.BoardName) ([]domain.ThreadView, error) {
	if m.MockListRecent != nil {
		return m.MockListRecent(board)
	}
	return []domain.ThreadView{}, nil
}

func (m *MockThreadService) Report(ctx context.Context, id domain.ThreadId) (domain.Ack, error) {
	if m.MockReport != nil {
		return m.MockReport(id)
	}
	return domain.AckReported, nil
}

func (m *MockThreadService) Delete(ctx context.Context, id domain.ThreadId, password domain.DeletePassword) (domain.Ack, error) {
	if m.MockDelete != nil {
		return m.MockDelete(id, password)
	}
	return domain.AckSuccess, nil
}

// --- Mock for ReplyService ---

type MockReplyService struct {
	MockCreate    func(data domain.ReplyCreationData) (domain.ThreadView, error)
	MockGetThread func(id domain.ThreadId) (domain.ThreadView, error)
	MockReport    func(threadId domain.ThreadId, replyId domain.ReplyId) (domain.Ack, error)
	MockDelete    func(threadId domain.ThreadId, replyId domain.ReplyId, password domain.DeletePassword) (domain.Ack, error)
}

func (m *MockReplyService) Create(ctx context.Context, data domain.ReplyCreationData) (domain.ThreadView, error) {
	if m.MockCreate != nil {
		return m.MockCreate(data)
	}
	return domain.ThreadView{}, nil
}

func (m *MockReplyService) GetThread(ctx context.Context, id domain.ThreadId) (domain.ThreadView, error) {
	if m.MockGetThread != nil {
		return m.MockGetThread(id)
	}
	return domain.ThreadView{}, nil
}

func (m *MockReplyService) Report(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (domain.Ack, error) {
	if m.MockReport != nil {
		return m.MockReport(threadId, replyId)
	}
	return domain.AckReported, nil
}

func (m *MockReplyService) Delete(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, password domain.DeletePassword) (domain.Ack, error) {
	if m.MockDelete != nil {
		return m.MockDelete(threadId, replyId, password)
	}
	return domain.AckSuccess, nil
}

// --- Helpers ---

// newTestRouter mounts the handlers the way the api router does.
func newTestRouter(threads *MockThreadService, replies *MockReplyService) http.Handler {
	h := New(threads, replies, &MockHealthChecker{}, &config.Config{})
	r := chi.NewRouter()
	r.Route("/api/threads/{board}", func(r chi.Router) {
		r.Post("/", h.CreateThread)
		r.Get("/", h.ListThreads)
		r.Delete("/", h.DeleteThread)
		r.Put("/", h.ReportThread)
	})
	r.Route("/api/replies/{board}", func(r chi.Router) {
		r.Post("/", h.CreateReply)
		r.Get("/", h.GetReplies)
		r.Delete("/", h.DeleteReply)
		r.Put("/", h.ReportReply)
	})
	return r
}
