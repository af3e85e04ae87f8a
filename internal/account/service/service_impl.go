package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	"github.com/fiskora/fiskora/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  accountdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  accountdomain.Repository
}

func NewService(p Params) accountdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Service) Create(ctx context.Context, req accountdomain.CreateRequest) (*accountdomain.Account, error) {
	if req.CompanyID == 0 {
		return nil, accountdomain.ErrInvalidCompany
	}
	code := strings.TrimSpace(req.Code)
	if !isDigits(code) || len(code) < 3 || len(code) > 10 {
		return nil, accountdomain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, accountdomain.ErrInvalidName
	}
	if !req.Type.Valid() {
		return nil, accountdomain.ErrInvalidType
	}

	now := time.Now().UTC()
	account := &accountdomain.Account{
		ID:        s.genID.Generate(),
		CompanyID: req.CompanyID,
		Code:      code,
		Name:      name,
		Type:      req.Type,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, accountdomain.ErrCodeExists
		}
		return nil, err
	}
	return account, nil
}

func (s *Service) Get(ctx context.Context, companyID, id snowflake.ID) (*accountdomain.Account, error) {
	account, err := s.repo.FindByID(ctx, nil, companyID, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}
	return account, nil
}

func (s *Service) GetByCode(ctx context.Context, companyID snowflake.ID, code string) (*accountdomain.Account, error) {
	account, err := s.repo.FindByCode(ctx, companyID, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}
	return account, nil
}

func (s *Service) List(ctx context.Context, req accountdomain.ListRequest) ([]accountdomain.Account, error) {
	if req.CompanyID == 0 {
		return nil, accountdomain.ErrInvalidCompany
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Deactivate(ctx context.Context, companyID, id snowflake.ID) (*accountdomain.Account, error) {
	account, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return account, nil
	}
	account.IsActive = false
	account.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) Tree(ctx context.Context, companyID snowflake.ID, depth int) ([]accountdomain.Group, error) {
	if companyID == 0 {
		return nil, accountdomain.ErrInvalidCompany
	}

	accounts, err := s.repo.List(ctx, accountdomain.ListRequest{CompanyID: companyID})
	if err != nil {
		return nil, err
	}

	// Full history: the tree shows cumulative balances.
	balances, err := s.repo.Balances(ctx, nil, companyID, time.Time{}, time.Now().UTC().AddDate(100, 0, 0))
	if err != nil {
		return nil, err
	}
	byAccount := make(map[snowflake.ID]decimal.Decimal, len(balances))
	for _, balance := range balances {
		byAccount[balance.AccountID] = balance.Net
	}

	withBalances := make([]accountdomain.AccountWithBalance, 0, len(accounts))
	for _, account := range accounts {
		net, ok := byAccount[account.ID]
		if !ok {
			net = decimal.Zero
		}
		withBalances = append(withBalances, accountdomain.AccountWithBalance{
			Account: account,
			Balance: net,
		})
	}
	return accountdomain.GroupByPrefix(withBalances, depth), nil
}

func (s *Service) BalancesTx(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, from, to time.Time) ([]accountdomain.AccountBalance, error) {
	if companyID == 0 {
		return nil, accountdomain.ErrInvalidCompany
	}
	return s.repo.Balances(ctx, tx, companyID, from, to)
}
