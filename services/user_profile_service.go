package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeduel_server/models"
	"codeduel_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// StartingCoinBalance is credited to every new account.
const StartingCoinBalance = 1000

// StartingRank is the ladder rank a new account begins at.
const StartingRank = 1000

// ErrInvalidCredentials is returned by Login for a wrong email or password.
var ErrInvalidCredentials = errors.New("invalid email or password")

type UserProfileService struct {
	Dynamo *DynamoService
}

// Register creates a new user profile with a hashed password and returns it
// along with a signed session token.
func (ups *UserProfileService) Register(ctx context.Context, username, email, password string) (*models.UserProfile, string, error) {
	if username == "" || email == "" || password == "" {
		return nil, "", errors.New("username, email and password are required")
	}

	if existing, err := ups.GetUserProfileByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", errors.New("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	profile := models.UserProfile{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CoinBalance:  StartingCoinBalance,
		Stats:        models.PlayerStats{Rank: StartingRank},
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := ups.Dynamo.PutItem(ctx, models.UserProfilesTable, profile); err != nil {
		return nil, "", fmt.Errorf("failed to store profile: %w", err)
	}

	token, err := utils.GenerateToken(profile.UserID)
	if err != nil {
		return nil, "", err
	}
	return &profile, token, nil
}

// Login verifies credentials and returns the profile with a session token.
func (ups *UserProfileService) Login(ctx context.Context, email, password string) (*models.UserProfile, string, error) {
	profile, err := ups.GetUserProfileByEmail(ctx, email)
	if err != nil || profile == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(profile.UserID)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

// GetUserProfile retrieves a user profile by ID
func (ups *UserProfileService) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	item, err := ups.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// GetUserProfileByEmail scans for the profile owning an email address.
func (ups *UserProfileService) GetUserProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var profiles []models.UserProfile
	err := ups.Dynamo.ScanWithFilter(ctx, models.UserProfilesTable, func(item map[string]types.AttributeValue) bool {
		return utils.ExtractString(item, "email") == email
	}, &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile by email: %w", err)
	}
	if len(profiles) == 0 {
		return nil, ErrItemNotFound
	}
	return &profiles[0], nil
}

// RecordWin atomically bumps the winner's stats and returns the new attribute
// state (used for achievement thresholds).
func (ups *UserProfileService) RecordWin(ctx context.Context, userID string) (map[string]types.AttributeValue, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	// ADD cannot target nested attributes, so the increments use SET.
	return ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"SET stats.wins = stats.wins + :one, stats.totalMatches = stats.totalMatches + :one, stats.#rank = stats.#rank + :rankGain",
		key,
		map[string]types.AttributeValue{
			":one":      &types.AttributeValueMemberN{Value: "1"},
			":rankGain": &types.AttributeValueMemberN{Value: "25"},
		},
		map[string]string{"#rank": "rank"},
	)
}

// RecordLoss atomically bumps the loser's stats. Rank loss is clamped so the
// rank never drops below 1: the decrement is conditioned on the rank staying
// above the floor, and a rejected write falls back to one atomic update that
// pins the rank at 1.
func (ups *UserProfileService) RecordLoss(ctx context.Context, userID string) error {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	_, err := ups.Dynamo.UpdateItemWithCondition(ctx, models.UserProfilesTable,
		"SET stats.losses = stats.losses + :one, stats.totalMatches = stats.totalMatches + :one, stats.#rank = stats.#rank - :rankLoss",
		"stats.#rank >= :minRank",
		key,
		map[string]types.AttributeValue{
			":one":      &types.AttributeValueMemberN{Value: "1"},
			":rankLoss": &types.AttributeValueMemberN{Value: "15"},
			":minRank":  &types.AttributeValueMemberN{Value: "16"},
		},
		map[string]string{"#rank": "rank"},
	)
	if errors.Is(err, ErrConditionFailed) {
		_, err = ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
			"SET stats.losses = stats.losses + :one, stats.totalMatches = stats.totalMatches + :one, stats.#rank = :floor",
			key,
			map[string]types.AttributeValue{
				":one":   &types.AttributeValueMemberN{Value: "1"},
				":floor": &types.AttributeValueMemberN{Value: "1"},
			},
			map[string]string{"#rank": "rank"},
		)
	}
	return err
}

// AddAchievement appends an achievement to the profile if not already held.
func (ups *UserProfileService) AddAchievement(ctx context.Context, userID, achievement string) error {
	profile, err := ups.GetUserProfile(ctx, userID)
	if err != nil {
		return err
	}
	for _, a := range profile.Achievements {
		if a == achievement {
			return nil
		}
	}

	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	_, err = ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"SET achievements = list_append(if_not_exists(achievements, :empty), :new)",
		key,
		map[string]types.AttributeValue{
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":new": &types.AttributeValueMemberL{Value: []types.AttributeValue{
				&types.AttributeValueMemberS{Value: achievement},
			}},
		},
		nil,
	)
	return err
}
