package models

import "time"

// MatchPlayer is one positional entry in a match record. Index 0 is player 1,
// index 1 is player 2.
type MatchPlayer struct {
	UserID string `dynamodbav:"userId" json:"userId"`
}

// PlayerSubmission holds the graded outcome one player reports for a match.
type PlayerSubmission struct {
	Code              string    `dynamodbav:"code,omitempty" json:"code,omitempty"`
	Language          string    `dynamodbav:"language,omitempty" json:"language,omitempty"`
	StatusID          int       `dynamodbav:"statusId" json:"statusId"`
	StatusDescription string    `dynamodbav:"statusDescription,omitempty" json:"statusDescription,omitempty"`
	Memory            float64   `dynamodbav:"memory,omitempty" json:"memory,omitempty"`
	Time              float64   `dynamodbav:"time,omitempty" json:"time,omitempty"`
	CodingTime        int       `dynamodbav:"codingTime,omitempty" json:"codingTime,omitempty"`
	Score             int       `dynamodbav:"score" json:"score"`
	TabSwitches       int       `dynamodbav:"tabSwitches,omitempty" json:"tabSwitches,omitempty"`
	HiddenTestsPassed bool      `dynamodbav:"hiddenTestsPassed" json:"hiddenTestsPassed"`
	AllTestsPassed    bool      `dynamodbav:"allTestsPassed" json:"allTestsPassed"`
	SubmissionTime    time.Time `dynamodbav:"submissionTime" json:"submissionTime"`
}

// Match is the durable record of a duel. It is never deleted; completed
// matches stay behind as an audit trail.
type Match struct {
	MatchID     string                      `dynamodbav:"matchId" json:"matchId"`
	Players     []MatchPlayer               `dynamodbav:"players" json:"players"`
	ChallengeID string                      `dynamodbav:"challengeId" json:"challengeId"`
	EntryFee    int                         `dynamodbav:"entryFee" json:"entryFee"`
	Status      string                      `dynamodbav:"status" json:"status"`
	Winner      string                      `dynamodbav:"winner,omitempty" json:"winner,omitempty"`
	StartTime   time.Time                   `dynamodbav:"startTime" json:"startTime"`
	EndTime     time.Time                   `dynamodbav:"endTime,omitempty" json:"endTime,omitempty"`
	Submissions map[string]PlayerSubmission `dynamodbav:"submissions" json:"submissions"`
}

// MatchesTable is the DynamoDB table name for match records
const MatchesTable = "Matches"
