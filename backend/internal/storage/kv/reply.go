package kv

import (
	"context"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/domain"
)

func (s *Storage) AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) (*domain.Thread, error) {
	t, _, err := s.mutate(ctx, threadId, func(t *domain.Thread) bool {
		t.Replies = append(t.Replies, reply)
		t.BumpedOn = reply.CreatedOn
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append reply: %w", err)
	}
	return t, nil
}

func (s *Storage) MarkReplyReported(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (bool, error) {
	_, ok, err := s.mutate(ctx, threadId, func(t *domain.Thread) bool {
		r := t.Reply(replyId)
		if r == nil {
			return false
		}
		r.Reported = true
		return true
	})
	if err != nil {
		return false, fmt.Errorf("failed to report reply: %w", err)
	}
	return ok, nil
}

func (s *Storage) SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) (bool, error) {
	_, ok, err := s.mutate(ctx, threadId, func(t *domain.Thread) bool {
		r := t.Reply(replyId)
		if r == nil {
			return false
		}
		r.Text = text
		return true
	})
	if err != nil {
		return false, fmt.Errorf("failed to set reply text: %w", err)
	}
	return ok, nil
}
