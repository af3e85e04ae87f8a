package domain

import (
	"context"
)

type Repository interface {
	Insert(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, req ListRequest) ([]AuditLog, error)
}
