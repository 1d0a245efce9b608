package models

// ✅ Match statuses
const (
	MatchStatusPending   = "pending"
	MatchStatusActive    = "active"
	MatchStatusCompleted = "completed"
)

// ✅ Challenge difficulties
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ✅ Transaction types
const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"
)

// ✅ Achievements
const (
	AchievementFirstWin   = "first_win"
	AchievementCodeMaster = "code_master"
)
