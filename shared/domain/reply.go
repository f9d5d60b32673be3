package domain

import "time"

type Reply struct {
	Id             ReplyId        `json:"id"`
	Text           PostText       `json:"text"`
	DeletePassword DeletePassword `json:"delete_password"`
	CreatedOn      time.Time      `json:"created_on"`
	Reported       bool           `json:"reported"`
}

type ReplyCreationData struct {
	ThreadId       ThreadId
	Text           PostText
	DeletePassword DeletePassword
}
