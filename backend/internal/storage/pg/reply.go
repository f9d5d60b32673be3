package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/domain"
)

// AppendReply adds reply to the end of the thread and bumps it in one
// statement, so concurrent appends never lose each other.
func (s *Storage) AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) (*domain.Thread, error) {
	encoded, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reply: %w", err)
	}
	t, err := queryThread(ctx, s.db, `
        UPDATE threads
        SET replies = replies || jsonb_build_array($2::jsonb),
            bumped_on = $3
        WHERE id = $1
        RETURNING `+threadColumns,
		threadId, string(encoded), reply.CreatedOn)
	if err != nil {
		return nil, fmt.Errorf("failed to append reply: %w", err)
	}
	return t, nil
}

// patchReply rewrites a single key of the reply with the given id, keeping
// the order of the array. Returns false if thread or reply does not exist.
func (s *Storage) patchReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, key string, value string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE threads
        SET replies = (
            SELECT jsonb_agg(
                CASE WHEN r.elem->>'id' = $2::text
                     THEN jsonb_set(r.elem, ARRAY[$3::text], $4::jsonb)
                     ELSE r.elem
                END ORDER BY r.pos)
            FROM jsonb_array_elements(replies) WITH ORDINALITY AS r(elem, pos)
        )
        WHERE id = $1
          AND replies @> jsonb_build_array(jsonb_build_object('id', $2::text))
    `, threadId, replyId, key, value)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (s *Storage) MarkReplyReported(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (bool, error) {
	ok, err := s.patchReply(ctx, threadId, replyId, "reported", "true")
	if err != nil {
		return false, fmt.Errorf("failed to report reply: %w", err)
	}
	return ok, nil
}

func (s *Storage) SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) (bool, error) {
	value, err := json.Marshal(text)
	if err != nil {
		return false, fmt.Errorf("failed to encode text: %w", err)
	}
	ok, err := s.patchReply(ctx, threadId, replyId, "text", string(value))
	if err != nil {
		return false, fmt.Errorf("failed to set reply text: %w", err)
	}
	return ok, nil
}
