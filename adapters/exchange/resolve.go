package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrEmptyBody     = errors.New("empty response body")
	ErrMalformedBody = errors.New("malformed response body")
	ErrEmptyReply    = errors.New("empty reply")

	ErrResponseTooLarge = errors.New("response exceeds size limit")
)

// StatusError is a non-success response from the reply endpoint.
type StatusError struct {
	Code    int
	Message string
	Details string
}

func (e *StatusError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("reply endpoint returned %d: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("reply endpoint returned %d: %s", e.Code, e.Message)
}

// Outcome is what one request/response cycle produced, before anything is
// shown to the user. Err is set when no response was received at all.
type Outcome struct {
	Status int
	Body   []byte
	Err    error
}

// Texts are the two fixed sentences a user may see instead of a real reply.
type Texts struct {
	Fallback   string
	EmptyReply string
}

type payload struct {
	Reply   *string `json:"reply"`
	Error   string  `json:"error"`
	Details string  `json:"details"`
}

// Resolve maps every Outcome to the content of an assistant message. The
// returned error is diagnostic only and is never part of the content.
func (t Texts) Resolve(o Outcome) (string, error) {
	if o.Err != nil {
		return t.Fallback, fmt.Errorf("transport: %w", o.Err)
	}

	body := bytes.TrimSpace(o.Body)
	var p payload
	parseErr := ErrEmptyBody
	if len(body) > 0 {
		parseErr = nil
		if err := json.Unmarshal(body, &p); err != nil {
			parseErr = fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
	}

	if o.Status < http.StatusOK || o.Status >= http.StatusMultipleChoices {
		statusErr := &StatusError{Code: o.Status, Message: fmt.Sprintf("unexpected status %d", o.Status)}
		if parseErr == nil && p.Error != "" {
			statusErr.Message = p.Error
			statusErr.Details = p.Details
		}
		return t.Fallback, statusErr
	}

	if parseErr != nil {
		return t.Fallback, parseErr
	}

	if p.Reply == nil || strings.TrimSpace(*p.Reply) == "" {
		return t.EmptyReply, ErrEmptyReply
	}
	return *p.Reply, nil
}
