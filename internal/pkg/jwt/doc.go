// Package jwt issues and verifies the HS512 access tokens handed out after a
// login is accepted, either directly (low risk) or after OTP verification.
//
// It includes:
//   - Claims carrying the principal, the assessed risk level and the
//     authentication methods used (amr).
//   - A symmetric HS512 implementation for generating and verifying tokens.
//   - Context helpers for storing and retrieving authenticated claims.
package jwt
