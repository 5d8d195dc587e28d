// Package otp generates numeric one-time passcodes from a cryptographically
// secure random source.
package otp
