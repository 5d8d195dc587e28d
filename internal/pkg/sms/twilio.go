package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrTwilioCredentialsRequired is returned when the account SID or auth token is missing.
var ErrTwilioCredentialsRequired = errors.New("twilio account sid and auth token are required")

// TwilioConfig configures the Twilio implementation.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	// From is the default sender number (E.164).
	From string
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Twilio is an SMS implementation backed by the Twilio Messages API.
type Twilio struct {
	api  messageCreator
	from string
}

// NewTwilio constructs a Twilio SMS sender.
func NewTwilio(cfg TwilioConfig) (*Twilio, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, ErrTwilioCredentialsRequired
	}
	if !IsE164(cfg.From) {
		return nil, fmt.Errorf("twilio from: %w", ErrInvalidNumber)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &Twilio{api: client.Api, from: cfg.From}, nil
}

// Send delivers msg. The twilio client has no context support, so ctx is only
// checked before the call.
func (t *Twilio) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsE164(msg.To) {
		return ErrInvalidNumber
	}
	if msg.Body == "" {
		return ErrEmptyBody
	}

	from := msg.From
	if from == "" {
		from = t.from
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(from)
	params.SetBody(msg.Body)

	if _, err := t.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}

	return nil
}

// Close implements io.Closer for interface compatibility.
func (t *Twilio) Close() error {
	return nil
}
