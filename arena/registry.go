package arena

import "time"

// Participant binds a live connection to its authenticated user for the
// duration of a match.
type Participant struct {
	ConnectionID string
	UserID       string
}

// RematchRequest is the single pending rematch negotiation on a match.
type RematchRequest struct {
	RequesterConnectionID string
	RequesterUsername     string
}

// ActiveMatch is the in-memory live state of a duel. The persisted match
// record outlives it; the ActiveMatch is discarded as soon as both results
// are relayed or a participant disconnects.
type ActiveMatch struct {
	MatchID     string
	Players     [2]Participant
	ChallengeID string
	EntryFee    int
	StartTime   time.Time

	// submissions are keyed by connection id; order preserves who submitted
	// first, which is the order results are broadcast in.
	submissions map[string]interface{}
	order       []string

	Rematch *RematchRequest
}

func newActiveMatch(matchID string, players [2]Participant, challengeID string, entryFee int, startTime time.Time) *ActiveMatch {
	return &ActiveMatch{
		MatchID:     matchID,
		Players:     players,
		ChallengeID: challengeID,
		EntryFee:    entryFee,
		StartTime:   startTime,
		submissions: make(map[string]interface{}),
	}
}

// HasParticipant reports whether connectionID belongs to this match.
func (m *ActiveMatch) HasParticipant(connectionID string) bool {
	return m.Players[0].ConnectionID == connectionID || m.Players[1].ConnectionID == connectionID
}

// Opponent returns the other participant of connectionID.
func (m *ActiveMatch) Opponent(connectionID string) (Participant, bool) {
	switch connectionID {
	case m.Players[0].ConnectionID:
		return m.Players[1], true
	case m.Players[1].ConnectionID:
		return m.Players[0], true
	}
	return Participant{}, false
}

// RecordSubmission stores a payload for connectionID. A resubmission
// overwrites the payload but keeps the original position in the broadcast
// order.
func (m *ActiveMatch) RecordSubmission(connectionID string, payload interface{}) {
	if _, exists := m.submissions[connectionID]; !exists {
		m.order = append(m.order, connectionID)
	}
	m.submissions[connectionID] = payload
}

// SubmissionCount reports how many participants have submitted.
func (m *ActiveMatch) SubmissionCount() int {
	return len(m.submissions)
}

// OrderedSubmissions returns the payloads first-to-submit first.
func (m *ActiveMatch) OrderedSubmissions() []interface{} {
	results := make([]interface{}, 0, len(m.order))
	for _, connID := range m.order {
		results = append(results, m.submissions[connID])
	}
	return results
}

// MatchRegistry is the in-memory table of active matches, keyed by the
// persisted match id. Like WaitingPool it relies on the engine for
// serialization.
type MatchRegistry struct {
	matches map[string]*ActiveMatch
}

// NewMatchRegistry creates an empty registry.
func NewMatchRegistry() *MatchRegistry {
	return &MatchRegistry{matches: make(map[string]*ActiveMatch)}
}

// Add registers a match under its id.
func (r *MatchRegistry) Add(m *ActiveMatch) {
	r.matches[m.MatchID] = m
}

// Get returns the match for matchID, or nil when it is not tracked.
func (r *MatchRegistry) Get(matchID string) *ActiveMatch {
	return r.matches[matchID]
}

// Remove drops the match for matchID, no-op when absent.
func (r *MatchRegistry) Remove(matchID string) {
	delete(r.matches, matchID)
}

// FindByParticipant scans for the match containing connectionID. The scan is
// O(active matches); a participant is expected to be in at most one match.
func (r *MatchRegistry) FindByParticipant(connectionID string) (*ActiveMatch, bool) {
	for _, m := range r.matches {
		if m.HasParticipant(connectionID) {
			return m, true
		}
	}
	return nil, false
}

// MatchesByParticipant returns every match containing connectionID. Used by
// disconnect teardown, which must not assume the at-most-one invariant held.
func (r *MatchRegistry) MatchesByParticipant(connectionID string) []*ActiveMatch {
	var found []*ActiveMatch
	for _, m := range r.matches {
		if m.HasParticipant(connectionID) {
			found = append(found, m)
		}
	}
	return found
}

// Len reports how many matches are live.
func (r *MatchRegistry) Len() int {
	return len(r.matches)
}
