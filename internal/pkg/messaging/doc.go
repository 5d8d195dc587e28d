// Package messaging publishes messages to a broker chosen at startup:
// Kafka, NATS, NSQ or Google Pub/Sub. Only the publish side is provided.
package messaging
