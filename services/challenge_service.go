package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"codeduel_server/arena"
	"codeduel_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ChallengeService hands out coding challenges. It implements
// arena.ChallengeProvider.
type ChallengeService struct {
	Dynamo *DynamoService
}

// RandomChallenge picks a uniformly random challenge.
func (cs *ChallengeService) RandomChallenge(ctx context.Context) (*models.Challenge, error) {
	return cs.randomChallenge(ctx, "")
}

// RandomChallengeExcluding picks a random challenge other than excludeID,
// so a rematch never replays the previous problem.
func (cs *ChallengeService) RandomChallengeExcluding(ctx context.Context, excludeID string) (*models.Challenge, error) {
	return cs.randomChallenge(ctx, excludeID)
}

func (cs *ChallengeService) randomChallenge(ctx context.Context, excludeID string) (*models.Challenge, error) {
	var challenges []models.Challenge
	err := cs.Dynamo.ScanWithFilter(ctx, models.ChallengesTable, func(item map[string]types.AttributeValue) bool {
		if excludeID == "" {
			return true
		}
		if id, ok := item["challengeId"].(*types.AttributeValueMemberS); ok {
			return id.Value != excludeID
		}
		return true
	}, &challenges)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenges: %w", err)
	}

	if len(challenges) == 0 {
		log.Println("❌ No challenges available")
		return nil, arena.ErrNoChallenges
	}

	challenge := challenges[rand.Intn(len(challenges))]
	log.Printf("Selected challenge %q from %d challenges", challenge.Title, len(challenges))
	return &challenge, nil
}

// GetChallenge retrieves a challenge by id.
func (cs *ChallengeService) GetChallenge(ctx context.Context, challengeID string) (*models.Challenge, error) {
	key := map[string]types.AttributeValue{
		"challengeId": &types.AttributeValueMemberS{Value: challengeID},
	}
	item, err := cs.Dynamo.GetItem(ctx, models.ChallengesTable, key)
	if err != nil {
		return nil, err
	}

	var challenge models.Challenge
	if err := attributevalue.UnmarshalMap(item, &challenge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &challenge, nil
}
