// Package clock provides a tiny time abstraction.
//
// OTP expiry and token issuance read time through Clocker so tests can pin
// or advance the clock without sleeping.
package clock
