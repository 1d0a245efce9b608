package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"codeduel_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// MatchService persists durable match records. It implements
// arena.MatchStore; the records it writes outlive the in-memory match state
// and are never deleted.
type MatchService struct {
	Dynamo *DynamoService
}

// CreateMatch writes a new match record and returns its id. Player order is
// positional: userIDs[0] is player 1.
func (ms *MatchService) CreateMatch(ctx context.Context, userIDs [2]string, challengeID string, entryFee int, status string, startTime time.Time) (string, error) {
	matchID := uuid.NewString()

	match := models.Match{
		MatchID:     matchID,
		Players:     []models.MatchPlayer{{UserID: userIDs[0]}, {UserID: userIDs[1]}},
		ChallengeID: challengeID,
		EntryFee:    entryFee,
		Status:      status,
		StartTime:   startTime,
		Submissions: map[string]models.PlayerSubmission{},
	}

	if err := ms.Dynamo.PutItem(ctx, models.MatchesTable, match); err != nil {
		return "", fmt.Errorf("failed to create match: %w", err)
	}

	log.Printf("Match record created: %s (%s vs %s)", matchID, userIDs[0], userIDs[1])
	return matchID, nil
}

// CreateSoloMatch writes a one-player practice match record and returns its
// id. Solo matches carry no entry fee and are never settled.
func (ms *MatchService) CreateSoloMatch(ctx context.Context, userID, challengeID string) (string, error) {
	matchID := uuid.NewString()

	match := models.Match{
		MatchID:     matchID,
		Players:     []models.MatchPlayer{{UserID: userID}},
		ChallengeID: challengeID,
		Status:      models.MatchStatusActive,
		StartTime:   time.Now().UTC(),
		Submissions: map[string]models.PlayerSubmission{},
	}

	if err := ms.Dynamo.PutItem(ctx, models.MatchesTable, match); err != nil {
		return "", fmt.Errorf("failed to create solo match: %w", err)
	}

	log.Printf("Solo match record created: %s (%s)", matchID, userID)
	return matchID, nil
}

// GetMatch retrieves a match record by id.
func (ms *MatchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	item, err := ms.Dynamo.GetItem(ctx, models.MatchesTable, key)
	if err != nil {
		return nil, err
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	return &match, nil
}

// UpdateSubmission writes one player's graded submission into the match
// record. The update sets only this player's slot in the submissions map, so
// the opponent's concurrently-written submission is never clobbered.
func (ms *MatchService) UpdateSubmission(ctx context.Context, matchID, userID string, sub models.PlayerSubmission) error {
	subAttr, err := attributevalue.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	_, err = ms.Dynamo.UpdateItem(ctx, models.MatchesTable,
		"SET submissions.#uid = :sub",
		key,
		map[string]types.AttributeValue{":sub": subAttr},
		map[string]string{"#uid": userID},
	)
	if err != nil {
		return fmt.Errorf("failed to record submission for user %s in match %s: %w", userID, matchID, err)
	}
	return nil
}

// CompleteMatch marks a match completed with its winner and end time.
func (ms *MatchService) CompleteMatch(ctx context.Context, matchID, winnerID string, endTime time.Time) error {
	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	_, err := ms.Dynamo.UpdateItem(ctx, models.MatchesTable,
		"SET #status = :status, winner = :winner, endTime = :end",
		key,
		map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: models.MatchStatusCompleted},
			":winner": &types.AttributeValueMemberS{Value: winnerID},
			":end":    &types.AttributeValueMemberS{Value: endTime.UTC().Format(time.RFC3339)},
		},
		map[string]string{"#status": "status"},
	)
	if err != nil {
		return fmt.Errorf("failed to complete match %s: %w", matchID, err)
	}
	return nil
}

// IsParticipant reports whether userID is one of the match's players.
func (ms *MatchService) IsParticipant(match *models.Match, userID string) bool {
	for _, p := range match.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
