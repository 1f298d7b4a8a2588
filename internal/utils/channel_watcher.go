package utils

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// ChannelWatcher fans values read from a channel out to one-shot subscribers
// keyed by an ID carried in the value. Values nobody subscribed to are dropped.
type ChannelWatcher[T any] struct {
	ch          chan T
	subscribers *xsync.MapOf[string, func(T)]
}

func NewChannelWatcher[T any](ch chan T) *ChannelWatcher[T] {
	return &ChannelWatcher[T]{
		ch:          ch,
		subscribers: xsync.NewMapOf[string, func(T)](),
	}
}

// WatchChannel blocks until the channel is closed.
func (cw *ChannelWatcher[T]) WatchChannel(key func(T) string) {
	for {
		response, more := <-cw.ch
		if !more {
			return
		}
		if subscriber, loaded := cw.subscribers.LoadAndDelete(key(response)); loaded {
			subscriber(response)
		}
	}
}

func (cw *ChannelWatcher[T]) Subscribe(id string, subscriber func(T)) {
	cw.subscribers.Store(id, subscriber)
}

func (cw *ChannelWatcher[T]) Unsubscribe(id string) {
	cw.subscribers.Delete(id)
}

// Pending returns the number of subscribers still waiting for a value.
func (cw *ChannelWatcher[T]) Pending() int {
	return cw.subscribers.Size()
}
