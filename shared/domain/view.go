package domain

import "time"

// AllReplies disables reply truncation in Thread.View.
const AllReplies = -1

// ThreadView is the public projection of a thread: no password, no reported flag.
type ThreadView struct {
	Id        ThreadId    `json:"_id"`
	Text      PostText    `json:"text"`
	CreatedOn time.Time   `json:"created_on"`
	BumpedOn  time.Time   `json:"bumped_on"`
	Replies   []ReplyView `json:"replies"`
}

type ReplyView struct {
	Id        ReplyId   `json:"_id"`
	Text      PostText  `json:"text"`
	CreatedOn time.Time `json:"created_on"`
}

func (r *Reply) View() ReplyView {
	return ReplyView{Id: r.Id, Text: r.Text, CreatedOn: r.CreatedOn}
}

// View projects the thread keeping the last lastN replies in insertion order.
// Pass AllReplies to keep every reply.
func (t *Thread) View(lastN int) ThreadView {
	replies := t.Replies
	if lastN >= 0 && len(replies) > lastN {
		replies = replies[len(replies)-lastN:]
	}
	views := make([]ReplyView, 0, len(replies))
	for i := range replies {
		views = append(views, replies[i].View())
	}
	return ThreadView{
		Id:        t.Id,
		Text:      t.Text,
		CreatedOn: t.CreatedOn,
		BumpedOn:  t.BumpedOn,
		Replies:   views,
	}
}
