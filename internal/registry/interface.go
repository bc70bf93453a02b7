package registry

import "context"

// Presence publishes stream occupancy so other services (viewer counts in
// the API, dashboards) can see who is watching. It carries no message
// traffic; fan-out across gateway instances is a separate concern.
type Presence interface {
	Register(ctx context.Context, streamID, userID string) error
	Deregister(ctx context.Context, streamID, userID string) error
	StartHeartbeat(ctx context.Context) error
	StopHeartbeat()
	Close() error
}
