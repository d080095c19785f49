package grafanarama

import "github.com/google/uuid"

// uidLength is the number of UUID characters kept for a dashboard UID.
// Grafana accepts up to 40 characters; 8 hex characters is comfortably
// unique for a single organisation's dashboards.
const uidLength = 8

// NewUID generates a short random dashboard UID.
//
// The server assigns a UID when a dashboard is created without one, but a
// caller-supplied UID keeps the dashboard addressable across overwrites and
// environments.
func NewUID() string {
	return uuid.NewString()[:uidLength]
}
