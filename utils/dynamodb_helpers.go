package utils

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// ExtractInt safely extracts a number attribute as an int
func ExtractInt(item map[string]types.AttributeValue, field string) int {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberN); ok {
			if n, err := strconv.Atoi(v.Value); err == nil {
				return n
			}
		}
	}
	return 0
}

// ExtractNestedInt extracts a number from a map attribute, e.g. stats.wins
func ExtractNestedInt(item map[string]types.AttributeValue, parent, field string) int {
	if attr, ok := item[parent]; ok {
		if m, ok := attr.(*types.AttributeValueMemberM); ok {
			return ExtractInt(m.Value, field)
		}
	}
	return 0
}
