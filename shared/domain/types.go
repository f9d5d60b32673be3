package domain

type (
	BoardName = string

	ThreadId = string
	ReplyId  = string

	PostText       = string
	DeletePassword = string
)

// Ack is a literal acknowledgment body required by the public API.
type Ack string

const (
	AckSuccess           Ack = "success"
	AckReported          Ack = "reported"
	AckIncorrectPassword Ack = "incorrect password"
)

// DeletedReplyText replaces the text of a soft-deleted reply.
const DeletedReplyText PostText = "[deleted]"
