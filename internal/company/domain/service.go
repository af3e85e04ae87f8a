package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Name     string
	Currency string
}

type UpdateRequest struct {
	ID       snowflake.ID
	Name     *string
	Currency *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Company, error)
	Get(ctx context.Context, id snowflake.ID) (*Company, error)
	List(ctx context.Context) ([]Company, error)
	Update(ctx context.Context, req UpdateRequest) (*Company, error)
}
