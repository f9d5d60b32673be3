package handler

import (
	"net/http"

	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/itchan-dev/anonboard/shared/utils"
)

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	var body api.CreateReplyRequest
	if err := utils.DecodeValidate(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.reply.Create(r.Context(), domain.ReplyCreationData{
		ThreadId:       body.ThreadId,
		Text:           body.Text,
		DeletePassword: body.DeletePassword,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, thread)
}

// GetReplies takes thread_id from the query string.
func (h *Handler) GetReplies(w http.ResponseWriter, r *http.Request) {
	var query api.GetRepliesRequest
	if err := utils.DecodeValidate(r, &query); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.reply.GetThread(r.Context(), query.ThreadId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, thread)
}

func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	var body api.DeleteReplyRequest
	if err := utils.Decode(r, &body); err != nil {
		logger.Log.Debug("delete reply: bad body", "error", err)
		utils.WriteAck(w, domain.AckIncorrectPassword)
		return
	}

	ack, err := h.reply.Delete(r.Context(), body.ThreadId, body.ReplyId, body.DeletePassword)
	if err != nil {
		logger.Log.Error("delete reply", "thread_id", body.ThreadId, "reply_id", body.ReplyId, "error", err)
	}
	utils.WriteAck(w, ack)
}

func (h *Handler) ReportReply(w http.ResponseWriter, r *http.Request) {
	var body api.ReportReplyRequest
	if err := utils.Decode(r, &body); err != nil {
		logger.Log.Debug("report reply: bad body", "error", err)
		utils.WriteAck(w, domain.AckReported)
		return
	}

	ack, err := h.reply.Report(r.Context(), body.ThreadId, body.ReplyId)
	if err != nil {
		logger.Log.Error("report reply", "thread_id", body.ThreadId, "reply_id", body.ReplyId, "error", err)
	}
	utils.WriteAck(w, ack)
}
