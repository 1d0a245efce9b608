package models

// PlayerStats tracks a user's duel history and ladder rank.
type PlayerStats struct {
	Wins         int `dynamodbav:"wins" json:"wins"`
	Losses       int `dynamodbav:"losses" json:"losses"`
	TotalMatches int `dynamodbav:"totalMatches" json:"totalMatches"`
	Rank         int `dynamodbav:"rank" json:"rank"`
}

// UserProfile defines the structure for user profiles
type UserProfile struct {
	UserID       string      `dynamodbav:"userId" json:"userId"`
	Username     string      `dynamodbav:"username" json:"username"`
	Email        string      `dynamodbav:"email" json:"email"`
	PasswordHash string      `dynamodbav:"passwordHash" json:"-"`
	CoinBalance  int         `dynamodbav:"coinBalance" json:"coinBalance"`
	Stats        PlayerStats `dynamodbav:"stats" json:"stats"`
	Achievements []string    `dynamodbav:"achievements,omitempty" json:"achievements,omitempty"`
	CreatedAt    string      `dynamodbav:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"
