package alerts

import "fmt"

// truncateTripID shortens a trip ID for display in notifications.
func truncateTripID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "..."
}

// notificationText builds the title and body shown for a status change.
func notificationText(change StatusChange) (title, body string) {
	title = fmt.Sprintf("tripwatch: %s", change.To)
	body = fmt.Sprintf("Trip %s changed from %s to %s", truncateTripID(change.TripID), change.From, change.To)
	return title, body
}
