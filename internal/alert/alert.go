// Package alert provides best-effort operator notifications.
//
// Alerts are one-way and fire-and-forget: a failed delivery is logged and
// swallowed so the pipeline never stalls or aborts because the alert channel
// is down.
package alert

// Notifier delivers a plain-text operational alert.
type Notifier interface {
	// Notify sends text to the operator channel. Delivery failures are
	// swallowed; callers never observe them.
	Notify(text string)
}

// Nop discards every alert. Used in tests and when no channel is configured.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(string) {}
