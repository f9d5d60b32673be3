package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	actionThreadCreated  = "thread_created"
	actionThreadReported = "thread_reported"
	actionThreadDeleted  = "thread_deleted"
	actionReplyCreated   = "reply_created"
	actionReplyReported  = "reply_reported"
	actionReplyDeleted   = "reply_deleted"
	actionDeleteDenied   = "delete_denied"
)

var boardActions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "anonboard",
		Name:      "board_actions_total",
		Help:      "Thread and reply mutations by action",
	},
	[]string{"action"},
)
