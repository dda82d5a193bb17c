package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Problem implements RFC 9457
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`

	// Log is the internal cause. It is logged, never serialized.
	Log error `json:"-"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

func (p *Problem) Unwrap() error {
	return p.Log
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	type Alias Problem

	data := make(map[string]interface{})

	for k, v := range p.Extensions {
		data[k] = v
	}

	stdJSON, err := json.Marshal(Alias(*p))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stdJSON, &data); err != nil {
		return nil, err
	}

	return json.Marshal(data)
}

type ProblemOption func(*Problem)

// New creates a generic Problem
func New(status int, title, detail string, opts ...ProblemOption) *Problem {
	p := &Problem{
		Type:       "about:blank", // Default as per RFC
		Title:      title,
		Status:     status,
		Detail:     detail,
		Extensions: make(map[string]interface{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithExtension adds a custom key-value pair to the response
func WithExtension(key string, value interface{}) ProblemOption {
	return func(p *Problem) {
		p.Extensions[key] = value
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ProblemOption {
	return func(p *Problem) {
		p.Log = err
	}
}

// WithInstance sets the RFC "instance" URI, usually the request path
func WithInstance(uri string) ProblemOption {
	return func(p *Problem) {
		p.Instance = uri
	}
}

// InternalError hides err from the client and keeps it for the logs.
func InternalError(detail string, err error) *Problem {
	return New(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), detail, WithLog(err))
}

// ServiceUnavailableError is used when a dependency is down.
func ServiceUnavailableError(detail string, err error) *Problem {
	return New(http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), detail, WithLog(err))
}

// TooManyRequestsError is returned by the rate limiter.
func TooManyRequestsError(detail string) *Problem {
	return New(http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), detail)
}
