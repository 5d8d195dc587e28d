// Package validator checks inbound request structs before they reach the
// risk engine. Besides the go-playground built-ins it registers the
// principal and otpcode tags used by the identity usecases.
package validator
