package service

import "context"

type contextKey string

const operatorKey contextKey = "operator"

// OperatorInfo is the identity carried by a verified access token.
type OperatorInfo struct {
	UserID   uint64
	Username string
	IsAdmin  bool
}

func WithOperator(ctx context.Context, op *OperatorInfo) context.Context {
	return context.WithValue(ctx, operatorKey, op)
}

// GetOperatorInfo returns nil outside an authenticated request.
func GetOperatorInfo(ctx context.Context) *OperatorInfo {
	val, ok := ctx.Value(operatorKey).(*OperatorInfo)
	if !ok {
		return nil
	}
	return val
}
