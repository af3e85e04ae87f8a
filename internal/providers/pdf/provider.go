package pdf

import (
	"context"
)

// DocumentData is the render model for a sales document. The caller
// formats all amounts; the renderer only lays them out.
type DocumentData struct {
	CompanyName string
	Title       string
	Number      string
	IssueDate   string
	DueDate     string
	Status      string

	CustomerName  string
	CustomerEmail string

	Items []DocumentItem

	Subtotal string
	TaxTotal string
	Total    string
}

type DocumentItem struct {
	Description string
	Quantity    string
	UnitPrice   string
	Discount    string
	Tax         string
	Amount      string
}

type Provider interface {
	GenerateDocument(ctx context.Context, data DocumentData) ([]byte, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateDocument(ctx context.Context, data DocumentData) ([]byte, error) {
	return nil, nil
}
