package service

import (
	"context"

	"github.com/itchan-dev/anonboard/shared/domain"
)

// Lookups return nil (or false) when nothing matches; errors mean the store
// itself failed.

type ThreadStorage interface {
	InsertThread(ctx context.Context, thread domain.Thread) error
	FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	FindRecentThreads(ctx context.Context, board domain.BoardName, limit int) ([]domain.Thread, error)
	MarkThreadReported(ctx context.Context, id domain.ThreadId) (bool, error)
	DeleteThreadById(ctx context.Context, id domain.ThreadId) (bool, error)
}

type ReplyStorage interface {
	FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	// AppendReply pushes reply and sets bumped_on to reply.CreatedOn in one atomic step.
	AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) (*domain.Thread, error)
	MarkReplyReported(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (bool, error)
	SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) (bool, error)
}

// BoardStorage is the full store contract implemented by every driver.
type BoardStorage interface {
	ThreadStorage
	ReplyStorage
	FindThreadByBoardAndText(ctx context.Context, board domain.BoardName, text domain.PostText) (*domain.Thread, error)
	UpdateThread(ctx context.Context, thread domain.Thread) (bool, error)
	Ping(ctx context.Context) error
	Cleanup() error
}

type PostValidator interface {
	Text(text domain.PostText) error
	Password(password domain.DeletePassword) error
}
