package entity

import "time"

// CodeDelivery is one rendered one-time code ready to hand to a channel.
type CodeDelivery struct {
	Address   string
	Code      string
	ExpiresIn time.Duration
	Subject   string
	Body      string
}
