package kv

import (
	"fmt"
	"time"

	"github.com/itchan-dev/anonboard/shared/domain"
)

const (
	threadPrefix = "t\x00"
	boardPrefix  = "b\x00"
)

func threadKey(id domain.ThreadId) []byte {
	return []byte(threadPrefix + id)
}

func boardIndexPrefix(board domain.BoardName) []byte {
	return []byte(boardPrefix + board + "\x00")
}

func boardIndexKey(board domain.BoardName, bumpedOn time.Time, id domain.ThreadId) []byte {
	return []byte(fmt.Sprintf("%s%s\x00%020d\x00%s", boardPrefix, board, bumpedOn.UnixNano(), id))
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
