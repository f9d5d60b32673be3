package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/domain"
)

// replyPath resolves to the JSON path of the reply with id ?, e.g. '$[2]'.
const replyPath = `'$[' || (SELECT key FROM json_each(threads.replies) WHERE json_extract(value, '$.id') = ?) || ']'`

func (s *Storage) AppendReply(ctx context.Context, threadId domain.ThreadId, reply domain.Reply) (*domain.Thread, error) {
	encoded, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reply: %w", err)
	}
	t, err := scanThread(s.db.QueryRowContext(ctx, `
        UPDATE threads
        SET replies = json_insert(replies, '$[#]', json(?)), bumped_on = ?
        WHERE id = ?
        RETURNING `+threadColumns,
		string(encoded), reply.CreatedOn.UnixNano(), threadId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to append reply: %w", err)
	}
	return &t, nil
}

// patchReply sets one field of a reply in place to valueExpr, a SQL
// expression with a single placeholder bound to value. It reports false when
// the thread or the reply does not exist.
func (s *Storage) patchReply(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, field, valueExpr string, value any) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE threads
        SET replies = json_set(replies, `+replyPath+` || '.`+field+`', `+valueExpr+`)
        WHERE id = ?
          AND EXISTS (SELECT 1 FROM json_each(threads.replies) WHERE json_extract(value, '$.id') = ?)
    `, replyId, value, threadId, replyId)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (s *Storage) MarkReplyReported(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId) (bool, error) {
	// a bare 1 would be stored as a JSON number
	ok, err := s.patchReply(ctx, threadId, replyId, "reported", "json(?)", "true")
	if err != nil {
		return false, fmt.Errorf("failed to report reply: %w", err)
	}
	return ok, nil
}

func (s *Storage) SetReplyText(ctx context.Context, threadId domain.ThreadId, replyId domain.ReplyId, text domain.PostText) (bool, error) {
	ok, err := s.patchReply(ctx, threadId, replyId, "text", "?", text)
	if err != nil {
		return false, fmt.Errorf("failed to set reply text: %w", err)
	}
	return ok, nil
}
