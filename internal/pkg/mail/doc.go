// Package mail sends email through a provider-agnostic Mail interface.
//
// Two providers are available: SMTP (net/smtp) and SendGrid's v3 API.
package mail
