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
)

// WalletService keeps the coin balances and the transaction ledger.
type WalletService struct {
	Dynamo *DynamoService
}

// GetBalance returns a user's current coin balance.
func (ws *WalletService) GetBalance(ctx context.Context, userID string) (int, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	item, err := ws.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return 0, err
	}
	return utils.ExtractInt(item, "coinBalance"), nil
}

// Credit adds amount to the user's balance and writes a ledger entry.
func (ws *WalletService) Credit(ctx context.Context, userID string, amount int, description string) (int, error) {
	if amount <= 0 {
		return 0, errors.New("credit amount must be positive")
	}
	return ws.applyTransaction(ctx, userID, amount, models.TransactionTypeCredit, description)
}

// Debit subtracts amount from the user's balance and writes a ledger entry.
// The balance never goes negative.
func (ws *WalletService) Debit(ctx context.Context, userID string, amount int, description string) (int, error) {
	if amount <= 0 {
		return 0, errors.New("debit amount must be positive")
	}

	balance, err := ws.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return balance, errors.New("insufficient balance")
	}
	return ws.applyTransaction(ctx, userID, -amount, models.TransactionTypeDebit, description)
}

func (ws *WalletService) applyTransaction(ctx context.Context, userID string, delta int, txType, description string) (int, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	attrs, err := ws.Dynamo.UpdateItem(ctx, models.UserProfilesTable,
		"ADD coinBalance :delta",
		key,
		map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
		},
		nil,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update balance for %s: %w", userID, err)
	}

	amount := delta
	if amount < 0 {
		amount = -amount
	}
	tx := models.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}
	if err := ws.Dynamo.PutItem(ctx, models.TransactionsTable, tx); err != nil {
		return 0, fmt.Errorf("failed to record transaction for %s: %w", userID, err)
	}

	return utils.ExtractInt(attrs, "coinBalance"), nil
}

// GetTransactions lists a user's most recent ledger entries via the GSI.
func (ws *WalletService) GetTransactions(ctx context.Context, userID string, limit int32) ([]models.Transaction, error) {
	items, err := ws.Dynamo.QueryItemsWithIndex(ctx,
		models.TransactionsTable,
		models.TransactionsByUserIndex,
		"#uid = :uid",
		map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		map[string]string{"#uid": "userId"},
		limit,
	)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(items, &transactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
	}
	return transactions, nil
}
