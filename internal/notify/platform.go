package notify

import "time"

// Request is one pending local notification.
type Request struct {
	ID    int               `json:"id"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	At    time.Time         `json:"at"`
	Sound string            `json:"sound,omitempty"`
	Extra map[string]string `json:"extra,omitempty"`
}

// Platform delivers notification requests to the host.
type Platform interface {
	// Available reports whether the platform can deliver anything.
	Available() bool
	// Schedule registers a request, replacing any pending request
	// with the same id.
	Schedule(req Request) error
	// Cancel drops the pending request with the given id. Cancelling
	// an unknown id is not an error.
	Cancel(id int) error
	// Pending lists the requests not yet delivered, ordered by id.
	Pending() ([]Request, error)
}

// NoopPlatform is used when the host has no notification facility.
// Every operation succeeds and nothing is ever pending.
type NoopPlatform struct{}

func (NoopPlatform) Available() bool            { return false }
func (NoopPlatform) Schedule(Request) error     { return nil }
func (NoopPlatform) Cancel(int) error           { return nil }
func (NoopPlatform) Pending() ([]Request, error) { return nil, nil }
