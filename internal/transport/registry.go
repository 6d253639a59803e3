package transport

import (
	"fmt"
	"strings"
	"sync"
)

// Registry maps channel names to their adapter. Adapter selection at
// send time is a lookup keyed on campaign type.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{items: map[string]Adapter{}}
}

func (r *Registry) Register(adapter Adapter) error {
	channel := strings.TrimSpace(strings.ToLower(adapter.Channel()))
	if channel == "" {
		return fmt.Errorf("adapter channel is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[channel]; exists {
		return fmt.Errorf("channel already registered: %s", channel)
	}
	r.items[channel] = adapter
	return nil
}

func (r *Registry) MustRegister(adapter Adapter) {
	if err := r.Register(adapter); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(channel string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.items[strings.TrimSpace(strings.ToLower(channel))]
	return adapter, ok
}

func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channels := make([]string, 0, len(r.items))
	for channel := range r.items {
		channels = append(channels, channel)
	}
	return channels
}
