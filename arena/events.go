package arena

import (
	"context"
	"errors"
	"time"

	"codeduel_server/models"
)

// Inbound socket event names.
const (
	EventFindMatch       = "findMatch"
	EventCodeSubmission  = "codeSubmission"
	EventRematchRequest  = "rematchRequest"
	EventRematchResponse = "rematchResponse"
)

// Outbound socket event names.
const (
	EventMatchStart           = "matchStart"
	EventMatchError           = "matchError"
	EventOpponentResults      = "opponentResults"
	EventRematchRequested     = "rematchRequested"
	EventRematchDeclined      = "rematchDeclined"
	EventOpponentDisconnected = "opponentDisconnected"
)

// MatchStartPayload is sent to each participant individually when a match
// begins. PlayerNumber is positional: first-queued is 1.
type MatchStartPayload struct {
	MatchID      string `json:"matchId"`
	PlayerNumber int    `json:"playerNumber"`
	Opponent     string `json:"opponent"`
}

// MatchErrorPayload reports a failed matchmaking or rematch attempt.
type MatchErrorPayload struct {
	Message string `json:"message"`
}

// RematchRequestedPayload notifies the opponent that a rematch was requested.
type RematchRequestedPayload struct {
	MatchID           string `json:"matchId"`
	RequesterID       string `json:"requesterId"`
	RequesterUsername string `json:"requesterUsername"`
}

// ErrNoChallenges is returned by a ChallengeProvider when no challenge is
// available to hand out.
var ErrNoChallenges = errors.New("no challenges available")

// ChallengeProvider fetches challenges for new matches.
type ChallengeProvider interface {
	RandomChallenge(ctx context.Context) (*models.Challenge, error)
	RandomChallengeExcluding(ctx context.Context, excludeID string) (*models.Challenge, error)
}

// MatchStore persists durable match records.
type MatchStore interface {
	CreateMatch(ctx context.Context, userIDs [2]string, challengeID string, entryFee int, status string, startTime time.Time) (string, error)
}

// Emitter delivers an event to a single connection. Delivery to an unknown or
// dead connection is a transport concern and must not error back into the
// engine.
type Emitter interface {
	Emit(connectionID, event string, payload interface{})
}
