package trip

// TruncateID returns a truncated trip ID suitable for display.
// If the ID is longer than maxLen, it is truncated and suffixed with "...".
func TruncateID(id string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(id) <= maxLen {
		return id
	}
	if maxLen <= 3 {
		return id[:maxLen]
	}
	return id[:maxLen-3] + "..."
}

// MonitoredTrips returns the trips that are currently being monitored.
func MonitoredTrips(trips []Trip) []Trip {
	var result []Trip
	for i := range trips {
		if trips[i].Monitoring {
			result = append(result, trips[i])
		}
	}
	return result
}
