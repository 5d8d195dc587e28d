// Package hash provides keyed digests for short-lived secrets.
//
// One-time codes are never stored in plaintext: the store keeps the
// HMAC-SHA256 digest and verification compares digests in constant time.
package hash
