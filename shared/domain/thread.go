package domain

import (
	"time"
)

// Thread is the persisted aggregate. It embeds its replies in insertion order.
// DeletePassword must never leave the service layer; use View for output.
type Thread struct {
	Id             ThreadId       `json:"id"`
	Board          BoardName      `json:"board"`
	Text           PostText       `json:"text"`
	DeletePassword DeletePassword `json:"delete_password"`
	CreatedOn      time.Time      `json:"created_on"`
	BumpedOn       time.Time      `json:"bumped_on"`
	Reported       bool           `json:"reported"`
	Replies        []Reply        `json:"replies"`
}

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Board          BoardName
	Text           PostText
	DeletePassword DeletePassword
}

// ReplyIndex returns the position of the reply with the given id or -1.
func (t *Thread) ReplyIndex(id ReplyId) int {
	for i := range t.Replies {
		if t.Replies[i].Id == id {
			return i
		}
	}
	return -1
}

// Reply returns a pointer into the reply sequence, nil if id is unknown.
func (t *Thread) Reply(id ReplyId) *Reply {
	if i := t.ReplyIndex(id); i >= 0 {
		return &t.Replies[i]
	}
	return nil
}
