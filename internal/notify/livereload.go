package notify

import "context"

// Broadcaster receives the new dist fingerprint after a successful build.
type Broadcaster interface {
	Broadcast(hash string)
}

// LiveReload tells preview tabs to reload when a build succeeds.
type LiveReload struct {
	Hub Broadcaster
}

func (l LiveReload) Notify(_ context.Context, ev Event) error {
	if l.Hub == nil || !ev.Success {
		return nil
	}
	hash := ev.Digest
	if hash == "" {
		hash = ev.BuildID
	}
	l.Hub.Broadcast(hash)
	return nil
}
