package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/anonboard/shared/domain"
	internal_errors "github.com/itchan-dev/anonboard/shared/errors"
	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/itchan-dev/anonboard/shared/utils"
)

type ReplyService interface {
	Create(ctx context.Context, data domain.ReplyCreationData) (domain.ThreadView, error)
	GetThread(ctx context.Context, threadId domain.ThreadId) (domain.ThreadView, error)
	Report(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (domain.Ack, error)
	Delete(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, password domain.DeletePassword) (domain.Ack, error)
}

type Reply struct {
	storage   ReplyStorage
	validator PostValidator
	now       func() time.Time
	newId     func() string
}

func NewReply(storage ReplyStorage, validator PostValidator) *Reply {
	return &Reply{
		storage:   storage,
		validator: validator,
		now:       now,
		newId:     uuid.NewString,
	}
}

// Create appends a reply and bumps the thread with the reply's own timestamp.
// The returned view carries every reply of the thread.
func (s *Reply) Create(ctx context.Context, data domain.ReplyCreationData) (domain.ThreadView, error) {
	if data.ThreadId == "" {
		return domain.ThreadView{}, internal_errors.ErrMissingFields
	}
	if err := s.validator.Text(data.Text); err != nil {
		return domain.ThreadView{}, err
	}
	if err := s.validator.Password(data.DeletePassword); err != nil {
		return domain.ThreadView{}, err
	}

	reply := domain.Reply{
		Id:             s.newId(),
		Text:           data.Text,
		DeletePassword: data.DeletePassword,
		CreatedOn:      s.now(),
		Reported:       false,
	}
	thread, err := s.storage.AppendReply(ctx, data.ThreadId, reply)
	if err != nil {
		return domain.ThreadView{}, fmt.Errorf("append reply to %q: %w", data.ThreadId, err)
	}
	if thread == nil {
		return domain.ThreadView{}, internal_errors.ErrThreadNotFound
	}

	boardActions.WithLabelValues(actionReplyCreated).Inc()
	logger.Log.Info("reply created", "board", thread.Board, "thread_id", thread.Id, "reply_id", reply.Id)
	return thread.View(domain.AllReplies), nil
}

func (s *Reply) GetThread(ctx context.Context, threadId domain.ThreadId) (domain.ThreadView, error) {
	if threadId == "" {
		return domain.ThreadView{}, internal_errors.Validation("thread_id is required")
	}
	thread, err := s.storage.FindThreadById(ctx, threadId)
	if err != nil {
		return domain.ThreadView{}, fmt.Errorf("get thread %q: %w", threadId, err)
	}
	if thread == nil {
		return domain.ThreadView{}, internal_errors.ErrThreadNotFound
	}
	return thread.View(domain.AllReplies), nil
}

// Report flags a reply. Like thread reports it always answers AckReported.
func (s *Reply) Report(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (domain.Ack, error) {
	if threadId == "" || replyId == "" {
		return domain.AckReported, nil
	}
	found, err := s.storage.MarkReplyReported(ctx, threadId, replyId)
	if err != nil {
		return domain.AckReported, fmt.Errorf("report reply %q of %q: %w", replyId, threadId, err)
	}
	if found {
		boardActions.WithLabelValues(actionReplyReported).Inc()
		logger.Log.Info("reply reported", "thread_id", threadId, "reply_id", replyId)
	}
	return domain.AckReported, nil
}

// Delete soft-deletes a reply: its text becomes domain.DeletedReplyText while
// id, timestamp and position stay. Any mismatch answers AckIncorrectPassword.
func (s *Reply) Delete(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, password domain.DeletePassword) (domain.Ack, error) {
	if threadId == "" || replyId == "" || password == "" {
		return s.denied(threadId, replyId), nil
	}

	thread, err := s.storage.FindThreadById(ctx, threadId)
	if err != nil {
		return domain.AckIncorrectPassword, fmt.Errorf("delete reply %q of %q: %w", replyId, threadId, err)
	}
	if thread == nil {
		return s.denied(threadId, replyId), nil
	}
	reply := thread.Reply(replyId)
	if reply == nil || !utils.PasswordsMatch(reply.DeletePassword, password) {
		return s.denied(threadId, replyId), nil
	}

	// delete_password is write-once, so checking it before the atomic write is safe
	updated, err := s.storage.SetReplyText(ctx, threadId, replyId, domain.DeletedReplyText)
	if err != nil {
		return domain.AckIncorrectPassword, fmt.Errorf("delete reply %q of %q: %w", replyId, threadId, err)
	}
	if !updated {
		return s.denied(threadId, replyId), nil
	}

	boardActions.WithLabelValues(actionReplyDeleted).Inc()
	logger.Log.Info("reply deleted", "thread_id", threadId, "reply_id", replyId)
	return domain.AckSuccess, nil
}

func (s *Reply) denied(threadId domain.ThreadId, replyId domain.ReplyId) domain.Ack {
	boardActions.WithLabelValues(actionDeleteDenied).Inc()
	logger.Log.Debug("reply delete denied", "thread_id", threadId, "reply_id", replyId)
	return domain.AckIncorrectPassword
}
