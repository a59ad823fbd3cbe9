package reminder

import (
	"context"
	"fmt"
	"time"

	"ms-reminders/internal/models"
)

// Decision is the guard's verdict on one candidate notification.
type Decision int

const (
	// Allow means no prior send was found and the claim (if any) is held.
	Allow Decision = iota
	// Suppress means a prior send or a concurrent claim already covers this reminder.
	Suppress
	// Block means absence of a duplicate could not be confirmed; nothing may be written.
	Block
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Suppress:
		return "suppress"
	default:
		return "block"
	}
}

// NotificationLog is the read side of the notification log the guard consults.
type NotificationLog interface {
	FindRecentNotification(ctx context.Context, relatedID string, nt models.NotificationType, since time.Time) (*models.Notification, error)
}

// Claimer takes short-lived exclusive claims on dedup keys across sweep instances.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// NopClaimer grants every claim. Used when no Redis is configured.
type NopClaimer struct{}

func (NopClaimer) Claim(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (NopClaimer) Release(context.Context, string) error                      { return nil }

// Guard enforces at most one sent reminder per (related_id, type) within the lookback window.
type Guard struct {
	log     NotificationLog
	claimer Claimer
}

func NewGuard(log NotificationLog, claimer Claimer) *Guard {
	if claimer == nil {
		claimer = NopClaimer{}
	}
	return &Guard{log: log, claimer: claimer}
}

// Check decides whether n may be written. Errors always come back with Block,
// so a lookup or claim failure never produces a send.
func (g *Guard) Check(ctx context.Context, n *models.Notification, now time.Time) (Decision, error) {
	since := LookbackStart(n.Type, now)
	prior, err := g.log.FindRecentNotification(ctx, n.RelatedID, n.Type, since)
	if err != nil {
		return Block, &ItemError{ID: n.RelatedID, Kind: ErrorKindLookup, Err: fmt.Errorf("checking notification log: %w", err)}
	}
	if prior != nil {
		return Suppress, nil
	}

	ok, err := g.claimer.Claim(ctx, claimKey(n.DedupKey), claimTTL(n.Type, now))
	if err != nil {
		return Block, &ItemError{ID: n.RelatedID, Kind: ErrorKindClaim, Err: fmt.Errorf("claiming %s: %w", n.DedupKey, err)}
	}
	if !ok {
		return Suppress, nil
	}
	return Allow, nil
}

// Release gives up the claim for n after a failed write so the next run can retry it.
func (g *Guard) Release(ctx context.Context, n *models.Notification) error {
	return g.claimer.Release(ctx, claimKey(n.DedupKey))
}

func claimKey(dedupKey string) string {
	return "reminder:claim:" + dedupKey
}
