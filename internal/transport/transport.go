package transport

import (
	"context"
	"fmt"
)

// Content is the channel-independent payload of an outbound message.
// Subject is only meaningful for email, MediaURL only for channels that
// support attachments.
type Content struct {
	Body     string `json:"body"`
	Subject  string `json:"subject,omitempty"`
	MediaURL string `json:"media_url,omitempty"`
}

// Result carries the vendor-assigned identifier of a delivered message.
type Result struct {
	MessageID string `json:"message_id"`
}

// Adapter is the capability every channel implementation provides.
// Implementations wrap one vendor API and return *Error on any
// network or vendor failure.
type Adapter interface {
	Channel() string
	Send(ctx context.Context, to string, content Content) (Result, error)
}

// Error wraps a vendor API or network failure with the channel it
// occurred on.
type Error struct {
	Channel string
	Cause   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s transport: %s", e.Channel, e.Cause)
}

func NewError(channel, format string, args ...interface{}) *Error {
	return &Error{Channel: channel, Cause: fmt.Sprintf(format, args...)}
}

// IsTransportError reports whether err is a transport failure.
func IsTransportError(err error) bool {
	_, ok := err.(*Error)
	return ok
}
