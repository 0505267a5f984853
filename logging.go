package pjs

import (
	"fmt"
	"strings"
	"sync"
)

type logging struct {
	logfn func(mess string, args ...interface{})

	mu        sync.Mutex
	markWidth int
}

// logf writes one trace line led by a mark column; marks shorter than the
// widest seen so far are padded by repeating their first rune.
func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	log.mu.Lock()
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	log.mu.Unlock()
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
