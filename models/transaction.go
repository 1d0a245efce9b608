package models

import "time"

// Transaction is one ledger entry in a user's wallet history.
type Transaction struct {
	TransactionID string    `dynamodbav:"transactionId" json:"transactionId"`
	UserID        string    `dynamodbav:"userId" json:"userId"`
	Type          string    `dynamodbav:"type" json:"type"`
	Amount        int       `dynamodbav:"amount" json:"amount"`
	Description   string    `dynamodbav:"description" json:"description"`
	CreatedAt     time.Time `dynamodbav:"createdAt" json:"createdAt"`
}

// TransactionsTable is the DynamoDB table name for wallet transactions
const TransactionsTable = "Transactions"

// TransactionsByUserIndex is the GSI for querying transactions by user
const TransactionsByUserIndex = "userId-createdAt-index"
