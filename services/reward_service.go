package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"codeduel_server/models"
	"codeduel_server/utils"
)

// RewardService settles a finished duel: it pays the winner, updates both
// players' stats and achievements, and closes the match record.
type RewardService struct {
	Matches  *MatchService
	Profiles *UserProfileService
	Wallet   *WalletService
}

// RewardOutcome reports what a settlement paid out.
type RewardOutcome struct {
	Reward     int `json:"reward"`
	NewBalance int `json:"newBalance"`
}

// calculateReward pays 90% of the total pool (both entry fees) to the winner.
func calculateReward(entryFee int) int {
	return int(math.Round(float64(entryFee) * 1.8))
}

// DistributeRewards settles matchID in favor of winnerID.
func (rs *RewardService) DistributeRewards(ctx context.Context, matchID, winnerID, loserID string) (*RewardOutcome, error) {
	match, err := rs.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, fmt.Errorf("match %s already settled", matchID)
	}
	if !rs.Matches.IsParticipant(match, winnerID) || !rs.Matches.IsParticipant(match, loserID) {
		return nil, fmt.Errorf("users %s/%s are not participants of match %s", winnerID, loserID, matchID)
	}

	reward := calculateReward(match.EntryFee)
	newBalance, err := rs.Wallet.Credit(ctx, winnerID, reward, "Competition reward")
	if err != nil {
		return nil, err
	}

	winnerAttrs, err := rs.Profiles.RecordWin(ctx, winnerID)
	if err != nil {
		return nil, err
	}
	if err := rs.Profiles.RecordLoss(ctx, loserID); err != nil {
		return nil, err
	}

	wins := utils.ExtractNestedInt(winnerAttrs, "stats", "wins")
	if wins == 1 {
		if err := rs.Profiles.AddAchievement(ctx, winnerID, models.AchievementFirstWin); err != nil {
			log.Printf("⚠️ Failed to grant first_win to %s: %v", winnerID, err)
		}
	}
	if wins >= 10 {
		if err := rs.Profiles.AddAchievement(ctx, winnerID, models.AchievementCodeMaster); err != nil {
			log.Printf("⚠️ Failed to grant code_master to %s: %v", winnerID, err)
		}
	}

	if err := rs.Matches.CompleteMatch(ctx, matchID, winnerID, time.Now()); err != nil {
		return nil, err
	}

	log.Printf("🏆 Match %s settled: %s wins %d coins", matchID, winnerID, reward)
	return &RewardOutcome{Reward: reward, NewBalance: newBalance}, nil
}
