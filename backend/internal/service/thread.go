package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/itchan-dev/anonboard/shared/utils"
)

type ThreadService interface {
	Create(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadView, error)
	ListRecent(ctx context.Context, board domain.BoardName) ([]domain.ThreadView, error)
	Report(ctx context.Context, id domain.ThreadId) (domain.Ack, error)
	Delete(ctx context.Context, id domain.ThreadId, password domain.DeletePassword) (domain.Ack, error)
}

type Thread struct {
	storage   ThreadStorage
	validator PostValidator
	cfg       config.Public
	now       func() time.Time
	newId     func() string
}

func NewThread(storage ThreadStorage, validator PostValidator, cfg config.Public) *Thread {
	return &Thread{
		storage:   storage,
		validator: validator,
		cfg:       cfg,
		now:       now,
		newId:     uuid.NewString,
	}
}

// now is truncated to microseconds so timestamps survive a postgres round trip unchanged.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *Thread) Create(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadView, error) {
	if err := s.validator.Text(data.Text); err != nil {
		return domain.ThreadView{}, err
	}
	if err := s.validator.Password(data.DeletePassword); err != nil {
		return domain.ThreadView{}, err
	}

	ts := s.now()
	thread := domain.Thread{
		Id:             s.newId(),
		Board:          data.Board,
		Text:           data.Text,
		DeletePassword: data.DeletePassword,
		CreatedOn:      ts,
		BumpedOn:       ts,
		Reported:       false,
		Replies:        []domain.Reply{},
	}
	if err := s.storage.InsertThread(ctx, thread); err != nil {
		return domain.ThreadView{}, fmt.Errorf("create thread: %w", err)
	}

	boardActions.WithLabelValues(actionThreadCreated).Inc()
	logger.Log.Info("thread created", "board", thread.Board, "thread_id", thread.Id)
	return thread.View(domain.AllReplies), nil
}

// ListRecent returns the most recently bumped threads of the board, each with
// only its last few replies.
func (s *Thread) ListRecent(ctx context.Context, board domain.BoardName) ([]domain.ThreadView, error) {
	threads, err := s.storage.FindRecentThreads(ctx, board, s.cfg.RecentThreads)
	if err != nil {
		return nil, fmt.Errorf("list threads of %q: %w", board, err)
	}

	views := make([]domain.ThreadView, 0, len(threads))
	for i := range threads {
		views = append(views, threads[i].View(s.cfg.PreviewReplies))
	}
	return views, nil
}

// Report flags the thread. The answer is always AckReported, even when the id
// matches nothing; a returned error is for logging only.
func (s *Thread) Report(ctx context.Context, id domain.ThreadId) (domain.Ack, error) {
	if id == "" {
		return domain.AckReported, nil
	}
	found, err := s.storage.MarkThreadReported(ctx, id)
	if err != nil {
		return domain.AckReported, fmt.Errorf("report thread %q: %w", id, err)
	}
	if found {
		boardActions.WithLabelValues(actionThreadReported).Inc()
		logger.Log.Info("thread reported", "thread_id", id)
	}
	return domain.AckReported, nil
}

// Delete removes the thread and all its replies when password matches.
// Unknown ids and wrong passwords both answer AckIncorrectPassword.
func (s *Thread) Delete(ctx context.Context, id domain.ThreadId, password domain.DeletePassword) (domain.Ack, error) {
	if id == "" || password == "" {
		return s.denied(id), nil
	}

	thread, err := s.storage.FindThreadById(ctx, id)
	if err != nil {
		return domain.AckIncorrectPassword, fmt.Errorf("delete thread %q: %w", id, err)
	}
	if thread == nil || !utils.PasswordsMatch(thread.DeletePassword, password) {
		return s.denied(id), nil
	}

	deleted, err := s.storage.DeleteThreadById(ctx, id)
	if err != nil {
		return domain.AckIncorrectPassword, fmt.Errorf("delete thread %q: %w", id, err)
	}
	if !deleted {
		return s.denied(id), nil
	}

	boardActions.WithLabelValues(actionThreadDeleted).Inc()
	logger.Log.Info("thread deleted", "board", thread.Board, "thread_id", id, "replies", len(thread.Replies))
	return domain.AckSuccess, nil
}

func (s *Thread) denied(id domain.ThreadId) domain.Ack {
	boardActions.WithLabelValues(actionDeleteDenied).Inc()
	logger.Log.Debug("thread delete denied", "thread_id", id)
	return domain.AckIncorrectPassword
}
