// Package sms sends short text messages through a provider-agnostic SMS interface.
package sms

import (
	"context"
	"errors"
	"io"
	"regexp"
)

var (
	// ErrInvalidNumber is returned when a number is not in E.164 form.
	ErrInvalidNumber = errors.New("phone number must be in E.164 format")
	// ErrEmptyBody is returned when the message body is empty.
	ErrEmptyBody = errors.New("sms body is required")
)

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

// IsE164 reports whether number looks like an E.164 phone number.
func IsE164(number string) bool {
	return e164.MatchString(number)
}

// Message is a single outbound SMS.
type Message struct {
	// From overrides the configured sender number when set.
	From string
	To   string
	Body string
}

// SMS abstracts an SMS provider.
type SMS interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
