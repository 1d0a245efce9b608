package arena

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"codeduel_server/models"
)

// ─── fakes ───────────────────────────────────────────────────────────────────

type fakeChallenges struct {
	challenges []models.Challenge
	err        error
	// onFetch runs during the fetch, while the engine lock is released. Used
	// to interleave events with an in-flight collaborator call.
	onFetch func()
}

func (f *fakeChallenges) RandomChallenge(ctx context.Context) (*models.Challenge, error) {
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.challenges) == 0 {
		return nil, ErrNoChallenges
	}
	c := f.challenges[0]
	return &c, nil
}

func (f *fakeChallenges) RandomChallengeExcluding(ctx context.Context, excludeID string) (*models.Challenge, error) {
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.challenges {
		if c.ChallengeID != excludeID {
			c := c
			return &c, nil
		}
	}
	return nil, ErrNoChallenges
}

type createdMatch struct {
	userIDs     [2]string
	challengeID string
	entryFee    int
	status      string
}

type fakeStore struct {
	created []createdMatch
	err     error
}

func (f *fakeStore) CreateMatch(ctx context.Context, userIDs [2]string, challengeID string, entryFee int, status string, startTime time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, createdMatch{userIDs: userIDs, challengeID: challengeID, entryFee: entryFee, status: status})
	return fmt.Sprintf("match-%d", len(f.created)), nil
}

type emitted struct {
	connID  string
	event   string
	payload interface{}
}

type recordingEmitter struct {
	events []emitted
}

func (r *recordingEmitter) Emit(connectionID, event string, payload interface{}) {
	r.events = append(r.events, emitted{connID: connectionID, event: event, payload: payload})
}

func (r *recordingEmitter) eventsFor(connID, event string) []emitted {
	var out []emitted
	for _, e := range r.events {
		if e.connID == connID && e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingEmitter) matchStart(t *testing.T, connID string) MatchStartPayload {
	t.Helper()
	evts := r.eventsFor(connID, EventMatchStart)
	if len(evts) == 0 {
		t.Fatalf("no matchStart delivered to %s", connID)
	}
	return evts[len(evts)-1].payload.(MatchStartPayload)
}

func (r *recordingEmitter) reset() {
	r.events = nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

type harness struct {
	engine     *Engine
	challenges *fakeChallenges
	store      *fakeStore
	emitter    *recordingEmitter
}

func newHarness(challengeIDs ...string) *harness {
	challenges := &fakeChallenges{}
	for _, id := range challengeIDs {
		challenges.challenges = append(challenges.challenges, models.Challenge{ChallengeID: id, Title: "challenge " + id})
	}
	store := &fakeStore{}
	emitter := &recordingEmitter{}
	return &harness{
		engine:     NewEngine(challenges, store, emitter),
		challenges: challenges,
		store:      store,
		emitter:    emitter,
	}
}

func (h *harness) connect(connID, userID string) {
	h.engine.HandleConnect(connID, userID)
}

func (h *harness) findMatch(connID, userID string, fee int) {
	h.connect(connID, userID)
	h.engine.HandleFindMatch(context.Background(), connID, userID, fee)
}

// pairUp runs two players through matchmaking and returns the match id both
// were notified with.
func (h *harness) pairUp(t *testing.T) string {
	t.Helper()
	h.findMatch("conn-a", "alice", 50)
	h.findMatch("conn-b", "bob", 50)
	start := h.emitter.matchStart(t, "conn-a")
	h.emitter.reset()
	return start.MatchID
}

// ─── matchmaking ─────────────────────────────────────────────────────────────

func TestFindMatchPairsTwoOldestPlayers(t *testing.T) {
	h := newHarness("chal-1")
	h.findMatch("conn-a", "alice", 50)
	if len(h.emitter.events) != 0 {
		t.Fatalf("single waiting player must not trigger any event, got %v", h.emitter.events)
	}

	h.findMatch("conn-b", "bob", 50)

	startA := h.emitter.matchStart(t, "conn-a")
	startB := h.emitter.matchStart(t, "conn-b")
	if startA.PlayerNumber != 1 || startA.Opponent != "bob" {
		t.Errorf("first-queued player payload = %+v, want playerNumber 1 vs bob", startA)
	}
	if startB.PlayerNumber != 2 || startB.Opponent != "alice" {
		t.Errorf("second-queued player payload = %+v, want playerNumber 2 vs alice", startB)
	}
	if startA.MatchID != startB.MatchID {
		t.Errorf("players notified with different match ids: %s vs %s", startA.MatchID, startB.MatchID)
	}

	if len(h.store.created) != 1 {
		t.Fatalf("expected exactly one persisted match, got %d", len(h.store.created))
	}
	rec := h.store.created[0]
	if rec.userIDs != [2]string{"alice", "bob"} || rec.challengeID != "chal-1" || rec.status != models.MatchStatusActive {
		t.Errorf("persisted record = %+v", rec)
	}
	if h.engine.WaitingCount() != 0 || h.engine.ActiveMatchCount() != 1 {
		t.Errorf("pool=%d registry=%d after pairing", h.engine.WaitingCount(), h.engine.ActiveMatchCount())
	}
}

func TestThirdPlayerWaitsForFourth(t *testing.T) {
	h := newHarness("chal-1")
	h.findMatch("conn-a", "alice", 10)
	h.findMatch("conn-b", "bob", 10)
	h.findMatch("conn-c", "carol", 10)

	if h.engine.WaitingCount() != 1 {
		t.Fatalf("carol should be waiting alone, pool=%d", h.engine.WaitingCount())
	}

	h.emitter.reset()
	h.findMatch("conn-d", "dave", 10)
	startC := h.emitter.matchStart(t, "conn-c")
	if startC.PlayerNumber != 1 || startC.Opponent != "dave" {
		t.Errorf("carol's payload = %+v, want playerNumber 1 vs dave", startC)
	}
}

func TestFindMatchIgnoresEntryFeeMismatch(t *testing.T) {
	// Players with different stakes are still paired; the record carries the
	// first-queued player's fee.
	h := newHarness("chal-1")
	h.findMatch("conn-a", "alice", 10)
	h.findMatch("conn-b", "bob", 500)

	if len(h.store.created) != 1 {
		t.Fatalf("expected a match despite mismatched fees, got %d", len(h.store.created))
	}
	if h.store.created[0].entryFee != 10 {
		t.Errorf("persisted entry fee = %d, want 10", h.store.created[0].entryFee)
	}
}

func TestNoChallengesFailsPairingWithoutRequeue(t *testing.T) {
	h := newHarness() // empty provider
	h.findMatch("conn-a", "alice", 50)
	h.findMatch("conn-b", "bob", 50)

	for _, conn := range []string{"conn-a", "conn-b"} {
		errs := h.emitter.eventsFor(conn, EventMatchError)
		if len(errs) != 1 {
			t.Fatalf("%s: expected exactly one matchError, got %d", conn, len(errs))
		}
		if errs[0].payload.(MatchErrorPayload).Message != "Failed to create match" {
			t.Errorf("%s: unexpected message %v", conn, errs[0].payload)
		}
	}

	// The failure is terminal: neither player is re-queued.
	if h.engine.WaitingCount() != 0 {
		t.Errorf("players re-queued after failed pairing, pool=%d", h.engine.WaitingCount())
	}
	if h.engine.ActiveMatchCount() != 0 || len(h.store.created) != 0 {
		t.Error("failed pairing must not leave a match behind")
	}
}

func TestPersistenceFailureNotifiesBothPlayers(t *testing.T) {
	h := newHarness("chal-1")
	h.store.err = errors.New("dynamo down")

	h.findMatch("conn-a", "alice", 50)
	h.findMatch("conn-b", "bob", 50)

	if len(h.emitter.eventsFor("conn-a", EventMatchError)) != 1 ||
		len(h.emitter.eventsFor("conn-b", EventMatchError)) != 1 {
		t.Error("both players must be told match creation failed")
	}
	if h.engine.ActiveMatchCount() != 0 {
		t.Error("no match may be registered after a persistence failure")
	}
}

func TestDisconnectDuringPairingAbortsRegistration(t *testing.T) {
	h := newHarness("chal-1")
	// bob vanishes while the challenge fetch is in flight.
	h.challenges.onFetch = func() {
		h.engine.HandleDisconnect("conn-b")
	}

	h.findMatch("conn-a", "alice", 50)
	h.findMatch("conn-b", "bob", 50)

	if h.engine.ActiveMatchCount() != 0 {
		t.Fatal("match registered against a disconnected participant")
	}
	if len(h.emitter.eventsFor("conn-a", EventMatchError)) != 1 {
		t.Error("surviving player must be told match creation failed")
	}
	if len(h.emitter.eventsFor("conn-b", EventMatchError)) != 0 {
		t.Error("no event may be sent to the disconnected player")
	}
}

// ─── submission relay ────────────────────────────────────────────────────────

func TestSubmissionRelayBroadcastsOnceBothAreIn(t *testing.T) {
	h := newHarness("chal-1")
	h.pairUp(t)

	subA := map[string]interface{}{"score": 10}
	subB := map[string]interface{}{"score": 20}

	h.engine.HandleCodeSubmission("conn-a", subA)
	if len(h.emitter.events) != 0 {
		t.Fatal("no broadcast may happen after the first submission")
	}

	h.engine.HandleCodeSubmission("conn-b", subB)

	for _, conn := range []string{"conn-a", "conn-b"} {
		results := h.emitter.eventsFor(conn, EventOpponentResults)
		if len(results) != 1 {
			t.Fatalf("%s: expected exactly one opponentResults, got %d", conn, len(results))
		}
		payload := results[0].payload.([]interface{})
		if len(payload) != 2 {
			t.Fatalf("%s: results = %v", conn, payload)
		}
		// First-to-submit first.
		if payload[0].(map[string]interface{})["score"] != 10 || payload[1].(map[string]interface{})["score"] != 20 {
			t.Errorf("%s: results out of submission order: %v", conn, payload)
		}
	}

	if h.engine.ActiveMatchCount() != 0 {
		t.Error("match must be discarded after the broadcast")
	}

	// A late submission referencing the closed match is dropped silently.
	h.emitter.reset()
	h.engine.HandleCodeSubmission("conn-a", subA)
	if len(h.emitter.events) != 0 {
		t.Errorf("late submission produced events: %v", h.emitter.events)
	}
}

func TestSubmissionWithoutActiveMatchIsNoOp(t *testing.T) {
	h := newHarness("chal-1")
	h.engine.HandleCodeSubmission("conn-x", map[string]interface{}{"score": 1})
	if len(h.emitter.events) != 0 || h.engine.ActiveMatchCount() != 0 {
		t.Error("submission from an unmatched connection must change nothing")
	}
}

func TestResubmissionOverwritesWithoutDoubleBroadcast(t *testing.T) {
	h := newHarness("chal-1")
	h.pairUp(t)

	h.engine.HandleCodeSubmission("conn-a", "draft")
	h.engine.HandleCodeSubmission("conn-a", "final")
	if len(h.emitter.events) != 0 {
		t.Fatal("resubmission by the same player must not trigger the broadcast")
	}

	h.engine.HandleCodeSubmission("conn-b", "other")
	results := h.emitter.eventsFor("conn-b", EventOpponentResults)
	if len(results) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(results))
	}
	payload := results[0].payload.([]interface{})
	if payload[0] != "final" || payload[1] != "other" {
		t.Errorf("results = %v, want overwritten payload in original position", payload)
	}
}

// ─── disconnects ─────────────────────────────────────────────────────────────

func TestDisconnectNotifiesOpponentAndTearsDownMatch(t *testing.T) {
	h := newHarness("chal-1")
	h.pairUp(t)

	h.engine.HandleDisconnect("conn-b")

	if got := h.emitter.eventsFor("conn-a", EventOpponentDisconnected); len(got) != 1 {
		t.Fatalf("expected exactly one opponentDisconnected for conn-a, got %d", len(got))
	}
	if len(h.emitter.eventsFor("conn-b", EventOpponentDisconnected)) != 0 {
		t.Error("disconnecting player must not be notified")
	}
	if h.engine.ActiveMatchCount() != 0 {
		t.Error("match still tracked after participant disconnect")
	}

	// The survivor's later submission for the torn-down match is a no-op.
	h.emitter.reset()
	h.engine.HandleCodeSubmission("conn-a", "too late")
	if len(h.emitter.events) != 0 {
		t.Error("submission after teardown produced events")
	}
}

func TestDisconnectRemovesWaitingEntry(t *testing.T) {
	h := newHarness("chal-1")
	h.findMatch("conn-a", "alice", 50)
	h.engine.HandleDisconnect("conn-a")

	if h.engine.WaitingCount() != 0 {
		t.Fatal("waiting entry survived its connection")
	}

	// alice is gone; bob should wait instead of being paired with her.
	h.findMatch("conn-b", "bob", 50)
	if h.engine.ActiveMatchCount() != 0 || h.engine.WaitingCount() != 1 {
		t.Error("bob was paired with a disconnected player")
	}
}

// ─── rematch ─────────────────────────────────────────────────────────────────

func TestRematchRequestNotifiesOpponent(t *testing.T) {
	h := newHarness("chal-1", "chal-2")
	matchID := h.pairUp(t)

	h.engine.HandleRematchRequest(matchID, "conn-a", "alice99")

	got := h.emitter.eventsFor("conn-b", EventRematchRequested)
	if len(got) != 1 {
		t.Fatalf("expected one rematchRequested for the opponent, got %d", len(got))
	}
	payload := got[0].payload.(RematchRequestedPayload)
	if payload.MatchID != matchID || payload.RequesterID != "alice" || payload.RequesterUsername != "alice99" {
		t.Errorf("rematchRequested payload = %+v", payload)
	}
	if len(h.emitter.eventsFor("conn-a", EventRematchRequested)) != 0 {
		t.Error("requester must not receive their own request")
	}
}

func TestRematchRequestForUnknownMatchIsNoOp(t *testing.T) {
	h := newHarness("chal-1")
	h.engine.HandleRematchRequest("no-such-match", "conn-a", "alice99")
	if len(h.emitter.events) != 0 {
		t.Error("unknown match id must be ignored")
	}
}

func TestRematchDeclineNotifiesRequesterAndClearsRequest(t *testing.T) {
	h := newHarness("chal-1", "chal-2")
	matchID := h.pairUp(t)

	h.engine.HandleRematchRequest(matchID, "conn-a", "alice99")
	h.emitter.reset()

	h.engine.HandleRematchResponse(context.Background(), matchID, false)

	if len(h.emitter.eventsFor("conn-a", EventRematchDeclined)) != 1 {
		t.Fatal("requester must be told the rematch was declined")
	}
	if h.engine.ActiveMatchCount() != 1 {
		t.Error("decline must leave the match intact")
	}

	// The request is cleared: a second response has nothing to act on.
	h.emitter.reset()
	h.engine.HandleRematchResponse(context.Background(), matchID, false)
	if len(h.emitter.events) != 0 {
		t.Error("response without a pending request must be a no-op")
	}
}

func TestRematchAcceptPreservesNumbersAndSwapsChallenge(t *testing.T) {
	h := newHarness("chal-1", "chal-2")
	matchID := h.pairUp(t)

	h.engine.HandleRematchRequest(matchID, "conn-b", "bob42")
	h.emitter.reset()
	h.engine.HandleRematchResponse(context.Background(), matchID, true)

	startA := h.emitter.matchStart(t, "conn-a")
	startB := h.emitter.matchStart(t, "conn-b")
	if startA.PlayerNumber != 1 || startB.PlayerNumber != 2 {
		t.Errorf("player numbers not preserved: alice=%d bob=%d", startA.PlayerNumber, startB.PlayerNumber)
	}
	if startA.MatchID == matchID {
		t.Error("rematch must run under a fresh match id")
	}

	if len(h.store.created) != 2 {
		t.Fatalf("expected two persisted matches, got %d", len(h.store.created))
	}
	if h.store.created[1].challengeID == h.store.created[0].challengeID {
		t.Errorf("rematch reused challenge %s", h.store.created[1].challengeID)
	}

	// Old entry replaced by the new one.
	if h.engine.ActiveMatchCount() != 1 {
		t.Errorf("registry holds %d matches after rematch", h.engine.ActiveMatchCount())
	}
	h.emitter.reset()
	h.engine.HandleCodeSubmission("conn-a", "s1")
	h.engine.HandleCodeSubmission("conn-b", "s2")
	if len(h.emitter.eventsFor("conn-a", EventOpponentResults)) != 1 {
		t.Error("rematch is not playable")
	}
}

func TestRematchAcceptFailsWhenOnlyOneChallengeExists(t *testing.T) {
	h := newHarness("chal-1")
	matchID := h.pairUp(t)

	h.engine.HandleRematchRequest(matchID, "conn-a", "alice99")
	h.emitter.reset()
	h.engine.HandleRematchResponse(context.Background(), matchID, true)

	for _, conn := range []string{"conn-a", "conn-b"} {
		errs := h.emitter.eventsFor(conn, EventMatchError)
		if len(errs) != 1 || errs[0].payload.(MatchErrorPayload).Message != "Failed to create rematch" {
			t.Errorf("%s: expected a rematch failure notification, got %v", conn, errs)
		}
	}
	// The original match stays as it was.
	if h.engine.ActiveMatchCount() != 1 {
		t.Error("failed rematch must leave the original match tracked")
	}
}

func TestRematchResponseForUnknownMatchIsNoOp(t *testing.T) {
	h := newHarness("chal-1", "chal-2")
	h.engine.HandleRematchResponse(context.Background(), "gone", true)
	if len(h.emitter.events) != 0 || len(h.store.created) != 0 {
		t.Error("stale rematch response must change nothing")
	}
}

func TestRematchAcceptAbortsWhenMatchTornDownMidFlight(t *testing.T) {
	h := newHarness("chal-1", "chal-2")
	matchID := h.pairUp(t)
	h.engine.HandleRematchRequest(matchID, "conn-a", "alice99")
	h.emitter.reset()

	// bob disconnects while the replacement challenge is being fetched; the
	// disconnect handler tears the match down before the accept resumes.
	h.challenges.onFetch = func() {
		h.engine.HandleDisconnect("conn-b")
	}
	h.engine.HandleRematchResponse(context.Background(), matchID, true)

	if len(h.emitter.eventsFor("conn-a", EventMatchStart)) != 0 {
		t.Error("matchStart emitted for an aborted rematch")
	}
	if h.engine.ActiveMatchCount() != 0 {
		t.Error("aborted rematch left a registry entry behind")
	}
}
