package models

// TestCase is a single input/output pair for a challenge. Hidden cases are
// graded server-side and never sent to clients.
type TestCase struct {
	TestCaseID     string `dynamodbav:"testCaseId" json:"testCaseId"`
	Input          string `dynamodbav:"input" json:"input"`
	ExpectedOutput string `dynamodbav:"expectedOutput" json:"expectedOutput"`
	IsHidden       bool   `dynamodbav:"isHidden" json:"isHidden"`
}

// Challenge defines the structure for coding challenges
type Challenge struct {
	ChallengeID string            `dynamodbav:"challengeId" json:"challengeId"`
	Title       string            `dynamodbav:"title" json:"title"`
	Description string            `dynamodbav:"description" json:"description"`
	Difficulty  string            `dynamodbav:"difficulty" json:"difficulty"`
	TestCases   []TestCase        `dynamodbav:"testCases" json:"testCases"`
	DefaultCode map[string]string `dynamodbav:"defaultCode,omitempty" json:"defaultCode,omitempty"`
}

// VisibleTestCases returns the test cases safe to expose to players.
func (c Challenge) VisibleTestCases() []TestCase {
	visible := make([]TestCase, 0, len(c.TestCases))
	for _, tc := range c.TestCases {
		if !tc.IsHidden {
			visible = append(visible, tc)
		}
	}
	return visible
}

// ChallengesTable is the DynamoDB table name for challenges
const ChallengesTable = "Challenges"
