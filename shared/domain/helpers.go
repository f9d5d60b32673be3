package domain

import (
	"fmt"
	"strings"
	"time"
)

// for debug. Passwords are never printed.
func (r *Reply) String() string {
	return fmt.Sprintf("[id:%s, text:%q, created:%s, reported:%t]", r.Id, r.Text, r.CreatedOn.Format(time.StampMilli), r.Reported)
}

func (t *Thread) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[id:%s, board:%s, text:%q, created:%s, bumped:%s, reported:%t, replies:[",
		t.Id, t.Board, t.Text, t.CreatedOn.Format(time.StampMilli), t.BumpedOn.Format(time.StampMilli), t.Reported)
	for i := range t.Replies {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.Replies[i].String())
	}
	b.WriteString("]]")
	return b.String()
}
