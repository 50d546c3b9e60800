// Package notifier delivers status messages to the one configured chat.
//
// # Transport
//
// The service delegates delivery to a transport.Adapter implementation (the
// Telegram adapter in production). Sends pass a token bucket so a burst of
// cycles cannot hit Bot API flood limits.
//
// # Errors
//
// Every delivery failure is returned as a fault.DeliveryFailed error. That
// kind is silent, so the poll loop never tries to report a failed
// notification through the channel that just failed.
//
// # History
//
// For operator visibility, the service keeps a small in-memory history of
// recently delivered messages.
package notifier
