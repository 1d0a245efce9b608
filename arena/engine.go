package arena

import (
	"context"
	"log"
	"sync"
	"time"

	"codeduel_server/models"
)

// Engine is the matchmaking and match-lifecycle core. It owns the waiting
// pool and the active-match registry and processes every inbound event one at
// a time: a single mutex serializes all handlers, so the pool and registry
// themselves need no locking. Collaborator calls (challenge fetch, match
// persistence) run with the lock released, and every mutation after such a
// call re-validates that the entities it is about to touch still exist —
// a disconnect may have been processed while the call was in flight.
type Engine struct {
	mu        sync.Mutex
	pool      *WaitingPool
	registry  *MatchRegistry
	connected map[string]bool

	challenges ChallengeProvider
	matches    MatchStore
	emitter    Emitter
}

// NewEngine wires the engine with its collaborators.
func NewEngine(challenges ChallengeProvider, matches MatchStore, emitter Emitter) *Engine {
	return &Engine{
		pool:       NewWaitingPool(),
		registry:   NewMatchRegistry(),
		connected:  make(map[string]bool),
		challenges: challenges,
		matches:    matches,
		emitter:    emitter,
	}
}

// HandleConnect records a verified connection. Events from connections that
// never passed through here are still processed; the live set only backs the
// post-await existence checks.
func (e *Engine) HandleConnect(connectionID, userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connected[connectionID] = true
	log.Printf("✅ Connection registered: %s (user %s)", connectionID, userID)
}

// HandleFindMatch enqueues the requester and, when a pair is available,
// creates a match: random challenge, persisted record, registry entry, and a
// matchStart to each side. A failed challenge fetch or persistence write is
// terminal for the pairing attempt — both players are told via matchError and
// neither is re-queued.
func (e *Engine) HandleFindMatch(ctx context.Context, connectionID, userID string, entryFee int) {
	e.mu.Lock()
	e.pool.Enqueue(WaitingEntry{ConnectionID: connectionID, UserID: userID, EntryFee: entryFee})
	log.Printf("User %s looking for match (entry fee %d), %d waiting", userID, entryFee, e.pool.Len())

	first, second, ok := e.pool.TryDequeuePair()
	e.mu.Unlock()
	if !ok {
		return
	}

	// Pairing: both entries are out of the pool for good. Collaborator calls
	// below run unlocked; a disconnect can be processed meanwhile.
	challenge, err := e.challenges.RandomChallenge(ctx)
	if err != nil {
		log.Printf("❌ Challenge fetch failed for pairing %s/%s: %v", first.UserID, second.UserID, err)
		e.notifyMatchFailure(first.ConnectionID, second.ConnectionID, "Failed to create match")
		return
	}

	matchID, err := e.matches.CreateMatch(ctx, [2]string{first.UserID, second.UserID}, challenge.ChallengeID, first.EntryFee, models.MatchStatusActive, time.Now())
	if err != nil {
		log.Printf("❌ Match persistence failed for pairing %s/%s: %v", first.UserID, second.UserID, err)
		e.notifyMatchFailure(first.ConnectionID, second.ConnectionID, "Failed to create match")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Re-validate: either side may have disconnected while the challenge was
	// fetched or the record written. The persisted record stays behind as an
	// audit trail; no live match is registered against a dead connection.
	if !e.connected[first.ConnectionID] || !e.connected[second.ConnectionID] {
		log.Printf("⚠️ Pairing %s aborted: a participant disconnected during match creation", matchID)
		if e.connected[first.ConnectionID] {
			e.emitter.Emit(first.ConnectionID, EventMatchError, MatchErrorPayload{Message: "Failed to create match"})
		}
		if e.connected[second.ConnectionID] {
			e.emitter.Emit(second.ConnectionID, EventMatchError, MatchErrorPayload{Message: "Failed to create match"})
		}
		return
	}

	players := [2]Participant{
		{ConnectionID: first.ConnectionID, UserID: first.UserID},
		{ConnectionID: second.ConnectionID, UserID: second.UserID},
	}
	e.registry.Add(newActiveMatch(matchID, players, challenge.ChallengeID, first.EntryFee, time.Now()))
	e.emitMatchStart(matchID, players)
	log.Printf("🎮 Match created: %s between %s and %s", matchID, first.UserID, second.UserID)
}

// HandleCodeSubmission records one participant's result. A submission from a
// connection with no active match is a benign race (the match already closed)
// and is dropped silently. Once both results are in, they are broadcast to
// both sides in first-to-submit order and the match is discarded.
func (e *Engine) HandleCodeSubmission(connectionID string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	match, ok := e.registry.FindByParticipant(connectionID)
	if !ok {
		log.Printf("No active match found for connection %s, submission dropped", connectionID)
		return
	}

	match.RecordSubmission(connectionID, payload)
	if match.SubmissionCount() < 2 {
		return
	}

	results := match.OrderedSubmissions()
	for _, p := range match.Players {
		e.emitter.Emit(p.ConnectionID, EventOpponentResults, results)
	}
	e.registry.Remove(match.MatchID)
	log.Printf("🏁 Match %s complete, results relayed to both players", match.MatchID)
}

// HandleRematchRequest stores a pending rematch request on the match and
// notifies the opponent. Unknown matches and foreign connections are no-ops.
func (e *Engine) HandleRematchRequest(matchID, connectionID, username string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	match := e.registry.Get(matchID)
	if match == nil {
		return
	}
	opponent, ok := match.Opponent(connectionID)
	if !ok {
		return
	}
	requester, _ := match.Opponent(opponent.ConnectionID)

	match.Rematch = &RematchRequest{
		RequesterConnectionID: connectionID,
		RequesterUsername:     username,
	}
	e.emitter.Emit(opponent.ConnectionID, EventRematchRequested, RematchRequestedPayload{
		MatchID:           matchID,
		RequesterID:       requester.UserID,
		RequesterUsername: username,
	})
}

// HandleRematchResponse resolves a pending rematch request. A decline goes
// back to the requester and clears the request. An accept creates a fresh
// match for the same players with a different challenge, preserving each
// player's original number. A response for an untracked match or without a
// pending request is a no-op.
func (e *Engine) HandleRematchResponse(ctx context.Context, matchID string, accepted bool) {
	e.mu.Lock()
	match := e.registry.Get(matchID)
	if match == nil || match.Rematch == nil {
		e.mu.Unlock()
		return
	}

	if !accepted {
		e.emitter.Emit(match.Rematch.RequesterConnectionID, EventRematchDeclined, nil)
		match.Rematch = nil
		e.mu.Unlock()
		return
	}

	players := match.Players
	previousChallengeID := match.ChallengeID
	entryFee := match.EntryFee
	e.mu.Unlock()

	challenge, err := e.challenges.RandomChallengeExcluding(ctx, previousChallengeID)
	if err != nil {
		log.Printf("❌ Rematch challenge fetch failed for match %s: %v", matchID, err)
		e.notifyMatchFailure(players[0].ConnectionID, players[1].ConnectionID, "Failed to create rematch")
		return
	}

	newMatchID, err := e.matches.CreateMatch(ctx, [2]string{players[0].UserID, players[1].UserID}, challenge.ChallengeID, entryFee, models.MatchStatusActive, time.Now())
	if err != nil {
		log.Printf("❌ Rematch persistence failed for match %s: %v", matchID, err)
		e.notifyMatchFailure(players[0].ConnectionID, players[1].ConnectionID, "Failed to create rematch")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Re-validate: a disconnect during the await tears the old match down, and
	// with it the rematch negotiation.
	if e.registry.Get(matchID) == nil {
		log.Printf("⚠️ Rematch %s aborted: original match gone", matchID)
		return
	}

	e.registry.Remove(matchID)
	e.registry.Add(newActiveMatch(newMatchID, players, challenge.ChallengeID, entryFee, time.Now()))
	e.emitMatchStart(newMatchID, players)
	log.Printf("🔄 Rematch created: %s -> %s", matchID, newMatchID)
}

// HandleDisconnect tears down everything owned by a closed connection: its
// waiting-pool entry and any active match it was in, with the surviving
// opponent notified once per match. Forfeiture bookkeeping on the persisted
// record is left to the reward collaborator.
func (e *Engine) HandleDisconnect(connectionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.connected, connectionID)
	e.pool.RemoveByConnection(connectionID)

	for _, match := range e.registry.MatchesByParticipant(connectionID) {
		if opponent, ok := match.Opponent(connectionID); ok {
			e.emitter.Emit(opponent.ConnectionID, EventOpponentDisconnected, nil)
		}
		e.registry.Remove(match.MatchID)
		log.Printf("Match %s torn down: participant %s disconnected", match.MatchID, connectionID)
	}
}

// WaitingCount reports the number of players in the pool.
func (e *Engine) WaitingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pool.Len()
}

// ActiveMatchCount reports the number of live matches.
func (e *Engine) ActiveMatchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Len()
}

func (e *Engine) emitMatchStart(matchID string, players [2]Participant) {
	e.emitter.Emit(players[0].ConnectionID, EventMatchStart, MatchStartPayload{
		MatchID:      matchID,
		PlayerNumber: 1,
		Opponent:     players[1].UserID,
	})
	e.emitter.Emit(players[1].ConnectionID, EventMatchStart, MatchStartPayload{
		MatchID:      matchID,
		PlayerNumber: 2,
		Opponent:     players[0].UserID,
	})
}

func (e *Engine) notifyMatchFailure(firstConnID, secondConnID, message string) {
	e.emitter.Emit(firstConnID, EventMatchError, MatchErrorPayload{Message: message})
	e.emitter.Emit(secondConnID, EventMatchError, MatchErrorPayload{Message: message})
}
