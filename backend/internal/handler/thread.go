package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/logger"
	"github.com/itchan-dev/anonboard/shared/utils"
)

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.thread.Create(r.Context(), domain.ThreadCreationData{
		Board:          chi.URLParam(r, "board"),
		Text:           body.Text,
		DeletePassword: body.DeletePassword,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, thread)
}

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.thread.ListRecent(r.Context(), chi.URLParam(r, "board"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, threads)
}

// DeleteThread answers with an acknowledgment literal whatever goes wrong.
func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	var body api.DeleteThreadRequest
	if err := utils.Decode(r, &body); err != nil {
		logger.Log.Debug("delete thread: bad body", "error", err)
		utils.WriteAck(w, domain.AckIncorrectPassword)
		return
	}

	ack, err := h.thread.Delete(r.Context(), body.ThreadId, body.DeletePassword)
	if err != nil {
		logger.Log.Error("delete thread", "thread_id", body.ThreadId, "error", err)
	}
	utils.WriteAck(w, ack)
}

func (h *Handler) ReportThread(w http.ResponseWriter, r *http.Request) {
	var body api.ReportThreadRequest
	if err := utils.Decode(r, &body); err != nil {
		logger.Log.Debug("report thread: bad body", "error", err)
		utils.WriteAck(w, domain.AckReported)
		return
	}

	ack, err := h.thread.Report(r.Context(), body.ThreadId)
	if err != nil {
		logger.Log.Error("report thread", "thread_id", body.ThreadId, "error", err)
	}
	utils.WriteAck(w, ack)
}
