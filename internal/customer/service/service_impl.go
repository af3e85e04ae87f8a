package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fiskora/fiskora/internal/cache"
	customerdomain "github.com/fiskora/fiskora/internal/customer/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// receivablesTTL bounds how stale a credit decision can be.
const receivablesTTL = 45 * time.Second

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  customerdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        customerdomain.Repository
	receivables cache.Cache[string, customerdomain.Receivables]
}

func NewService(p Params) customerdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("customer.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		receivables: cache.NewTTLCache[string, customerdomain.Receivables](),
	}
}

func (s *Service) Create(ctx context.Context, req customerdomain.CreateRequest) (*customerdomain.Customer, error) {
	if req.CompanyID == 0 {
		return nil, customerdomain.ErrInvalidCompany
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, customerdomain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return nil, customerdomain.ErrInvalidEmail
	}
	if req.CreditLimit.IsNegative() {
		return nil, customerdomain.ErrNegativeCreditLimit
	}

	now := time.Now().UTC()
	customer := &customerdomain.Customer{
		ID:          s.genID.Generate(),
		CompanyID:   req.CompanyID,
		Name:        name,
		Email:       email,
		CreditLimit: req.CreditLimit,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) Get(ctx context.Context, companyID, id snowflake.ID) (*customerdomain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, customerdomain.ErrNotFound
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context, companyID snowflake.ID) ([]customerdomain.Customer, error) {
	if companyID == 0 {
		return nil, customerdomain.ErrInvalidCompany
	}
	return s.repo.List(ctx, companyID)
}

func (s *Service) Update(ctx context.Context, req customerdomain.UpdateRequest) (*customerdomain.Customer, error) {
	customer, err := s.Get(ctx, req.CompanyID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, customerdomain.ErrInvalidName
		}
		customer.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.Contains(email, "@") {
			return nil, customerdomain.ErrInvalidEmail
		}
		customer.Email = email
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return nil, customerdomain.ErrNegativeCreditLimit
		}
		customer.CreditLimit = *req.CreditLimit
		s.InvalidateCredit(req.CompanyID, req.CustomerID)
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}

	customer.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func creditKey(companyID, customerID snowflake.ID) string {
	return companyID.String() + ":" + customerID.String()
}

func (s *Service) CreditCheck(ctx context.Context, companyID, customerID snowflake.ID, proposed decimal.Decimal) (customerdomain.CreditStanding, error) {
	customer, err := s.Get(ctx, companyID, customerID)
	if err != nil {
		return customerdomain.CreditStanding{}, err
	}

	key := creditKey(companyID, customerID)
	receivables, ok := s.receivables.Get(key)
	if !ok {
		receivables, err = s.repo.Receivables(ctx, companyID, customerID, time.Now().UTC())
		if err != nil {
			return customerdomain.CreditStanding{}, err
		}
		s.receivables.Set(key, receivables, receivablesTTL)
	}

	standing := customerdomain.CreditStanding{
		Outstanding: receivables.Outstanding,
		Overdue:     receivables.Overdue,
		Limit:       customer.CreditLimit,
	}
	unlimited := customer.CreditLimit.IsZero()
	withinLimit := unlimited || receivables.Outstanding.Add(proposed).LessThanOrEqual(customer.CreditLimit)
	standing.Allowed = withinLimit && receivables.Overdue.IsZero()
	return standing, nil
}

func (s *Service) AssertCredit(ctx context.Context, companyID, customerID snowflake.ID, proposed decimal.Decimal) error {
	standing, err := s.CreditCheck(ctx, companyID, customerID, proposed)
	if err != nil {
		return err
	}
	if !standing.Allowed {
		s.log.Info("credit check rejected",
			zap.String("customer_id", customerID.String()),
			zap.String("outstanding", standing.Outstanding.String()),
			zap.String("overdue", standing.Overdue.String()),
			zap.String("proposed", proposed.String()),
		)
		return customerdomain.ErrCreditLimitExceeded
	}
	return nil
}

func (s *Service) InvalidateCredit(companyID, customerID snowflake.ID) {
	s.receivables.Delete(creditKey(companyID, customerID))
}
