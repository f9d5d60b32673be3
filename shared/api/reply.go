package api

type CreateReplyRequest struct {
	ThreadId       string `json:"thread_id" validate:"required"`
	Text           string `json:"text" validate:"required"`
	DeletePassword string `json:"delete_password" validate:"required"`
}

type GetRepliesRequest struct {
	ThreadId string `json:"thread_id" validate:"required"`
}

type DeleteReplyRequest struct {
	ThreadId       string `json:"thread_id"`
	ReplyId        string `json:"reply_id"`
	DeletePassword string `json:"delete_password"`
}

type ReportReplyRequest struct {
	ThreadId string `json:"thread_id"`
	ReplyId  string `json:"reply_id"`
}
