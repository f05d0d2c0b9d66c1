//go:build !linux && !darwin

package alerts

type nopNotifier struct{}

func (nopNotifier) Notify(StatusChange) {}

// NewPlatformNotifier returns a no-op notifier on platforms without a
// supported desktop notification command.
func NewPlatformNotifier(bool) Notifier {
	return nopNotifier{}
}
