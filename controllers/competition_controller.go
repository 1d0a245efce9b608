package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"codeduel_server/middleware"
	"codeduel_server/models"
	"codeduel_server/services"

	"github.com/gorilla/mux"
)

// matchRecords is the slice of services.MatchService the controller uses.
type matchRecords interface {
	CreateSoloMatch(ctx context.Context, userID, challengeID string) (string, error)
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	UpdateSubmission(ctx context.Context, matchID, userID string, sub models.PlayerSubmission) error
	IsParticipant(match *models.Match, userID string) bool
}

// challengeCatalog is the slice of services.ChallengeService the controller
// uses.
type challengeCatalog interface {
	RandomChallenge(ctx context.Context) (*models.Challenge, error)
	GetChallenge(ctx context.Context, challengeID string) (*models.Challenge, error)
}

// CompetitionController handles HTTP requests around starting practice
// sessions and running and submitting code for a match.
type CompetitionController struct {
	Matches    matchRecords
	Challenges challengeCatalog
	Judge      *services.JudgeService
	Rewards    *services.RewardService
}

// NewCompetitionController creates a new CompetitionController instance
func NewCompetitionController(matches matchRecords, challenges challengeCatalog, judge *services.JudgeService, rewards *services.RewardService) *CompetitionController {
	return &CompetitionController{Matches: matches, Challenges: challenges, Judge: judge, Rewards: rewards}
}

// StartCompetition begins a solo practice session: it creates a one-player
// match against a random challenge and returns the challenge with hidden test
// cases stripped.
func (cc *CompetitionController) StartCompetition(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	challenge, err := cc.Challenges.RandomChallenge(r.Context())
	if err != nil {
		log.Printf("❌ Failed to pick a practice challenge: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	matchID, err := cc.Matches.CreateSoloMatch(r.Context(), userID, challenge.ChallengeID)
	if err != nil {
		log.Printf("❌ Failed to create practice match: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	challenge.TestCases = challenge.VisibleTestCases()
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"matchId":   matchID,
		"challenge": challenge,
	})
}

// GetChallenge returns the challenge of an active match the caller plays in,
// with hidden test cases stripped.
func (cc *CompetitionController) GetChallenge(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]
	userID := middleware.UserIDFromContext(r.Context())

	match, err := cc.Matches.GetMatch(r.Context(), matchID)
	if err != nil {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}
	if !cc.Matches.IsParticipant(match, userID) || match.Status != models.MatchStatusActive {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}

	challenge, err := cc.Challenges.GetChallenge(r.Context(), match.ChallengeID)
	if err != nil {
		http.Error(w, "Challenge not found", http.StatusNotFound)
		return
	}

	challenge.TestCases = challenge.VisibleTestCases()
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(challenge)
}

type runRequest struct {
	Code     string `json:"code"`
	Language int    `json:"language"`
	Stdin    string `json:"stdin"`
}

// RunCode executes code once without persisting anything.
func (cc *CompetitionController) RunCode(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := cc.Judge.Execute(r.Context(), req.Code, req.Language, req.Stdin, "")
	if err != nil {
		log.Printf("❌ Code execution error: %v", err)
		http.Error(w, fmt.Sprintf("Error executing code: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         result.Status,
		"stdout":         result.Stdout,
		"stderr":         result.Stderr,
		"compile_output": result.CompileOutput,
	})
}

type submitRequest struct {
	Code        string `json:"code"`
	Language    int    `json:"language"`
	MatchID     string `json:"matchId"`
	CodingTime  int    `json:"codingTime"`
	TabSwitches int    `json:"tabSwitches"`
}

// SubmitCode grades a player's final solution against every test case of the
// match's challenge and records the outcome on the match record. Each test
// case is graded by its own run, so hidden-test passing is tied to the test
// case itself, never to a position in a result array.
func (cc *CompetitionController) SubmitCode(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	match, err := cc.Matches.GetMatch(r.Context(), req.MatchID)
	if err != nil {
		http.Error(w, "Competition not found", http.StatusNotFound)
		return
	}
	if !cc.Matches.IsParticipant(match, userID) {
		http.Error(w, "Competition not found", http.StatusNotFound)
		return
	}

	challenge, err := cc.Challenges.GetChallenge(r.Context(), match.ChallengeID)
	if err != nil {
		http.Error(w, "Challenge not found", http.StatusNotFound)
		return
	}

	allTestsPassed := true
	hiddenTestsPassed := true
	var mainResult *services.JudgeResult
	for _, tc := range challenge.TestCases {
		result, err := cc.Judge.Execute(r.Context(), req.Code, req.Language, tc.Input, tc.ExpectedOutput)
		if err != nil {
			log.Printf("❌ Code submission error on test case %s: %v", tc.TestCaseID, err)
			http.Error(w, "Error processing code submission", http.StatusInternalServerError)
			return
		}
		if mainResult == nil {
			mainResult = result
		}
		if !result.Accepted() {
			allTestsPassed = false
			if tc.IsHidden {
				hiddenTestsPassed = false
			}
		}
	}
	if mainResult == nil {
		http.Error(w, "Challenge has no test cases", http.StatusInternalServerError)
		return
	}

	execTime := parseExecTime(mainResult.Time)
	score := calculateScore(execTime, mainResult.Memory, req.CodingTime, req.TabSwitches, hiddenTestsPassed)

	sub := models.PlayerSubmission{
		Code:              req.Code,
		Language:          fmt.Sprintf("%d", req.Language),
		StatusID:          mainResult.Status.ID,
		StatusDescription: mainResult.Status.Description,
		Memory:            mainResult.Memory,
		Time:              execTime,
		CodingTime:        req.CodingTime,
		Score:             score,
		TabSwitches:       req.TabSwitches,
		HiddenTestsPassed: hiddenTestsPassed,
		AllTestsPassed:    allTestsPassed,
		SubmissionTime:    time.Now().UTC(),
	}
	if err := cc.Matches.UpdateSubmission(r.Context(), req.MatchID, userID, sub); err != nil {
		log.Printf("❌ Failed to persist submission: %v", err)
		http.Error(w, "Error processing code submission", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":            mainResult.Status,
		"memory":            mainResult.Memory,
		"time":              mainResult.Time,
		"stdout":            mainResult.Stdout,
		"stderr":            mainResult.Stderr,
		"compile_output":    mainResult.CompileOutput,
		"score":             score,
		"hiddenTestsPassed": hiddenTestsPassed,
		"allTestsPassed":    allTestsPassed,
		"tabSwitches":       req.TabSwitches,
	})
}

type settleRequest struct {
	WinnerID string `json:"winnerId"`
	LoserID  string `json:"loserId"`
}

// SettleMatch distributes rewards for a finished match.
func (cc *CompetitionController) SettleMatch(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchId"]

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := cc.Rewards.DistributeRewards(r.Context(), matchID, req.WinnerID, req.LoserID)
	if err != nil {
		log.Printf("❌ Reward distribution failed for match %s: %v", matchID, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(outcome)
}

func parseExecTime(s string) float64 {
	var t float64
	fmt.Sscanf(s, "%f", &t)
	return t
}

// calculateScore mirrors the client-facing scoring scheme: start at 1000,
// deduct for execution time, memory, coding time and tab switches, bonus for
// passing the hidden tests.
func calculateScore(execTime, memory float64, codingTime, tabSwitches int, hiddenTestsPassed bool) int {
	score := 1000.0
	score -= (execTime / 0.1) * 20
	score -= (memory / 1000) * 20
	score -= (float64(codingTime) / 60) * 20
	score -= float64(tabSwitches) * 10
	if hiddenTestsPassed {
		score += 200
	}
	if score < 0 {
		return 0
	}
	return int(math.Round(score))
}
