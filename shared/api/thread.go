package api

// Request DTOs. Fields are read from a JSON or urlencoded body, falling back to the query string.

type CreateThreadRequest struct {
	Text           string `json:"text" validate:"required"`
	DeletePassword string `json:"delete_password" validate:"required"`
}

type DeleteThreadRequest struct {
	ThreadId       string `json:"thread_id"`
	DeletePassword string `json:"delete_password"`
}

type ReportThreadRequest struct {
	ThreadId string `json:"thread_id"`
}
