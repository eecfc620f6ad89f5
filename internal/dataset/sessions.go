package dataset

import "github.com/roach88/ecomkpi/internal/rng"

// GenerateSessions draws p.Sessions sessions, each owned by a uniformly
// chosen customer.
func GenerateSessions(src *rng.Source, p Params, customers []Customer) []Session {
	sessions := make([]Session, p.Sessions)
	for i := range sessions {
		owner := customers[src.IntRange(0, len(customers)-1)]
		channel := src.Weighted(p.Channels, p.ChannelWeights)
		sessions[i] = Session{
			ID:         int64(i + 1),
			CustomerID: owner.ID,
			Channel:    channel,
		}
	}
	return sessions
}
