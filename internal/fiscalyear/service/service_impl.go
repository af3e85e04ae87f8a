package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/fiskora/fiskora/internal/audit/domain"
	"github.com/fiskora/fiskora/internal/companyctx"
	fiscalyeardomain "github.com/fiskora/fiskora/internal/fiscalyear/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     fiscalyeardomain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     fiscalyeardomain.Repository
	auditSvc auditdomain.Service
}

func NewService(p Params) fiscalyeardomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("fiscalyear.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) CreateYear(ctx context.Context, req fiscalyeardomain.CreateYearRequest) (*fiscalyeardomain.YearResponse, error) {
	if req.CompanyID == 0 {
		return nil, fiscalyeardomain.ErrInvalidCompany
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fiscalyeardomain.ErrInvalidName
	}
	start := req.StartDate.UTC().Truncate(24 * time.Hour)
	end := req.EndDate.UTC().Truncate(24 * time.Hour)
	if !start.Before(end) {
		return nil, fiscalyeardomain.ErrInvalidDateRange
	}

	overlap, err := s.repo.FindOverlappingYear(ctx, req.CompanyID, start, end)
	if err != nil {
		return nil, err
	}
	if overlap != nil {
		return nil, fiscalyeardomain.ErrYearOverlap
	}

	now := time.Now().UTC()
	year := &fiscalyeardomain.FiscalYear{
		ID:        s.genID.Generate(),
		CompanyID: req.CompanyID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    fiscalyeardomain.YearStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	periods := s.monthlyPeriods(year, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.CreateYear(ctx, tx, year, periods)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("fiscal year created",
		zap.String("fiscal_year_id", year.ID.String()),
		zap.String("company_id", req.CompanyID.String()),
		zap.Int("periods", len(periods)),
	)
	return &fiscalyeardomain.YearResponse{FiscalYear: *year, Periods: periods}, nil
}

// monthlyPeriods slices the year into calendar months. The first and last
// period are clamped to the year boundaries.
func (s *Service) monthlyPeriods(year *fiscalyeardomain.FiscalYear, now time.Time) []fiscalyeardomain.Period {
	var periods []fiscalyeardomain.Period
	cursor := year.StartDate
	for !cursor.After(year.EndDate) {
		monthEnd := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, 1, -1)
		if monthEnd.After(year.EndDate) {
			monthEnd = year.EndDate
		}
		periods = append(periods, fiscalyeardomain.Period{
			ID:           s.genID.Generate(),
			FiscalYearID: year.ID,
			Name:         cursor.Format("2006-01"),
			StartDate:    cursor,
			EndDate:      monthEnd,
			Status:       fiscalyeardomain.PeriodStatusOpen,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		cursor = monthEnd.AddDate(0, 0, 1)
	}
	return periods
}

func (s *Service) GetYear(ctx context.Context, companyID, id snowflake.ID) (*fiscalyeardomain.YearResponse, error) {
	year, err := s.repo.FindYearByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if year == nil {
		return nil, fiscalyeardomain.ErrNotFound
	}
	periods, err := s.repo.ListPeriods(ctx, year.ID)
	if err != nil {
		return nil, err
	}
	return &fiscalyeardomain.YearResponse{FiscalYear: *year, Periods: periods}, nil
}

func (s *Service) ListYears(ctx context.Context, companyID snowflake.ID) ([]fiscalyeardomain.FiscalYear, error) {
	if companyID == 0 {
		return nil, fiscalyeardomain.ErrInvalidCompany
	}
	return s.repo.ListYears(ctx, companyID)
}

func (s *Service) ClosePeriod(ctx context.Context, companyID, periodID snowflake.ID) (*fiscalyeardomain.Period, error) {
	return s.setPeriodStatus(ctx, companyID, periodID, fiscalyeardomain.PeriodStatusClosed, "period.close")
}

func (s *Service) ReopenPeriod(ctx context.Context, companyID, periodID snowflake.ID) (*fiscalyeardomain.Period, error) {
	return s.setPeriodStatus(ctx, companyID, periodID, fiscalyeardomain.PeriodStatusOpen, "period.reopen")
}

func (s *Service) setPeriodStatus(ctx context.Context, companyID, periodID snowflake.ID, status fiscalyeardomain.PeriodStatus, action string) (*fiscalyeardomain.Period, error) {
	period, err := s.repo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, fiscalyeardomain.ErrPeriodNotFound
	}

	year, err := s.repo.FindYearByID(ctx, companyID, period.FiscalYearID)
	if err != nil {
		return nil, err
	}
	if year == nil {
		return nil, fiscalyeardomain.ErrNotFound
	}
	if year.Status == fiscalyeardomain.YearStatusClosed {
		return nil, fiscalyeardomain.ErrYearClosed
	}

	if period.Status == status {
		return period, nil
	}
	period.Status = status
	period.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdatePeriod(ctx, nil, period); err != nil {
		return nil, err
	}

	s.audit(ctx, companyID, action, period.ID.String(), map[string]any{
		"fiscal_year_id": year.ID.String(),
		"period":         period.Name,
	})
	return period, nil
}

func (s *Service) IsPostingAllowed(ctx context.Context, companyID snowflake.ID, date time.Time) error {
	// Period bounds are stored at midnight; compare on the day.
	period, year, err := s.repo.FindPeriodForDate(ctx, companyID, date.UTC().Truncate(24*time.Hour))
	if err != nil {
		return err
	}
	if year == nil || period == nil {
		return fiscalyeardomain.ErrNoPeriodForDate
	}
	if year.Status == fiscalyeardomain.YearStatusClosed {
		return fiscalyeardomain.ErrYearClosed
	}
	if period.Status == fiscalyeardomain.PeriodStatusClosed {
		return fiscalyeardomain.ErrPeriodClosed
	}
	return nil
}

func (s *Service) ClosePeriodsTx(ctx context.Context, tx *gorm.DB, companyID, fiscalYearID snowflake.ID) (int, error) {
	year, err := s.repo.FindYearByID(ctx, companyID, fiscalYearID)
	if err != nil {
		return 0, err
	}
	if year == nil {
		return 0, fiscalyeardomain.ErrNotFound
	}

	periods, err := s.repo.ListPeriods(ctx, fiscalYearID)
	if err != nil {
		return 0, err
	}

	closed := 0
	now := time.Now().UTC()
	for i := range periods {
		if periods[i].Status == fiscalyeardomain.PeriodStatusClosed {
			continue
		}
		periods[i].Status = fiscalyeardomain.PeriodStatusClosed
		periods[i].UpdatedAt = now
		if err := s.repo.UpdatePeriod(ctx, tx, &periods[i]); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

func (s *Service) CloseYearTx(ctx context.Context, tx *gorm.DB, companyID, fiscalYearID snowflake.ID) error {
	year, err := s.repo.FindYearByID(ctx, companyID, fiscalYearID)
	if err != nil {
		return err
	}
	if year == nil {
		return fiscalyeardomain.ErrNotFound
	}

	periods, err := s.repo.ListPeriods(ctx, fiscalYearID)
	if err != nil {
		return err
	}
	for _, period := range periods {
		if period.Status != fiscalyeardomain.PeriodStatusClosed {
			return fiscalyeardomain.ErrPeriodClosed
		}
	}

	year.Status = fiscalyeardomain.YearStatusClosed
	year.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateYear(ctx, tx, year)
}

func (s *Service) MarkYearClosing(ctx context.Context, companyID, fiscalYearID snowflake.ID) error {
	year, err := s.repo.FindYearByID(ctx, companyID, fiscalYearID)
	if err != nil {
		return err
	}
	if year == nil {
		return fiscalyeardomain.ErrNotFound
	}
	if year.Status == fiscalyeardomain.YearStatusClosed {
		return fiscalyeardomain.ErrYearClosed
	}
	if year.Status == fiscalyeardomain.YearStatusClosing {
		return nil
	}
	year.Status = fiscalyeardomain.YearStatusClosing
	year.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateYear(ctx, nil, year)
}

func (s *Service) audit(ctx context.Context, companyID snowflake.ID, action, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	actorID := companyctx.UserIDFromContext(ctx)
	_ = s.auditSvc.AuditLog(ctx, companyID, actorID, action, "period", targetID, metadata)
}
