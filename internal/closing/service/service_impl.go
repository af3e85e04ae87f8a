package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	auditdomain "github.com/fiskora/fiskora/internal/audit/domain"
	closingdomain "github.com/fiskora/fiskora/internal/closing/domain"
	"github.com/fiskora/fiskora/internal/companyctx"
	"github.com/fiskora/fiskora/internal/config"
	fiscalyeardomain "github.com/fiskora/fiskora/internal/fiscalyear/domain"
	journaldomain "github.com/fiskora/fiskora/internal/journal/domain"
	"github.com/fiskora/fiskora/internal/locking"
	"github.com/fiskora/fiskora/internal/money"
	seriesdomain "github.com/fiskora/fiskora/internal/series/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// retainedEarningsCode receives the year-end result.
const retainedEarningsCode = "1290"

const stepLockTTL = 30 * time.Second

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Cfg        config.Config
	Repo       closingdomain.Repository
	FiscalYear fiscalyeardomain.Service
	Journal    journaldomain.Service
	Series     seriesdomain.Service
	Accounts   accountdomain.Service
	Audit      auditdomain.Service `optional:"true"`
	Locker     *locking.Locker     `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       closingdomain.Repository
	fiscalYear fiscalyeardomain.Service
	journal    journaldomain.Service
	series     seriesdomain.Service
	accounts   accountdomain.Service
	audit      auditdomain.Service
	locker     *locking.Locker
	checklist  []closingdomain.StepDef
}

func NewService(p Params) closingdomain.Service {
	log := p.Log.Named("closing.service")

	checklist := closingdomain.DefaultChecklist()
	if p.Cfg.ClosingChecklistFile != "" {
		loaded, err := closingdomain.LoadChecklist(p.Cfg.ClosingChecklistFile)
		if err != nil {
			log.Error("checklist override rejected, using default",
				zap.String("file", p.Cfg.ClosingChecklistFile),
				zap.Error(err))
		} else {
			checklist = loaded
		}
	}

	return &Service{
		db:         p.DB,
		log:        log,
		genID:      p.GenID,
		repo:       p.Repo,
		fiscalYear: p.FiscalYear,
		journal:    p.Journal,
		series:     p.Series,
		accounts:   p.Accounts,
		audit:      p.Audit,
		locker:     p.Locker,
		checklist:  checklist,
	}
}

func (s *Service) StartRun(ctx context.Context, companyID, fiscalYearID snowflake.ID) (*closingdomain.ClosingRun, error) {
	year, err := s.fiscalYear.GetYear(ctx, companyID, fiscalYearID)
	if err != nil {
		return nil, err
	}
	if year.Status == fiscalyeardomain.YearStatusClosed {
		return nil, fiscalyeardomain.ErrYearClosed
	}

	active, err := s.repo.FindActiveRunByYear(ctx, companyID, fiscalYearID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, closingdomain.ErrRunActive
	}

	if err := s.fiscalYear.MarkYearClosing(ctx, companyID, fiscalYearID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	run := &closingdomain.ClosingRun{
		ID:           s.genID.Generate(),
		CompanyID:    companyID,
		FiscalYearID: fiscalYearID,
		Status:       closingdomain.RunStatusRunning,
		Cursor:       0,
		StartedAt:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i, def := range s.checklist {
		run.Steps = append(run.Steps, closingdomain.ClosingStep{
			ID:       s.genID.Generate(),
			RunID:    run.ID,
			Seq:      i,
			Code:     def.Code,
			Name:     def.Name,
			Required: def.Required,
			Status:   closingdomain.StepStatusPending,
		})
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	s.auditLog(ctx, companyID, "closing.start", run.ID.String(), map[string]any{
		"fiscal_year_id": fiscalYearID.String(),
		"steps":          len(run.Steps),
	})
	return run, nil
}

func (s *Service) GetRun(ctx context.Context, companyID, runID snowflake.ID) (*closingdomain.ClosingRun, error) {
	run, err := s.repo.FindRunByID(ctx, nil, companyID, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, closingdomain.ErrRunNotFound
	}
	return run, nil
}

func (s *Service) ListRuns(ctx context.Context, companyID snowflake.ID) ([]closingdomain.ClosingRun, error) {
	return s.repo.ListRuns(ctx, companyID)
}

func (s *Service) ExecuteStep(ctx context.Context, companyID, runID snowflake.ID, stepCode string) (*closingdomain.ClosingRun, error) {
	// Money moves here (the result entry), so contention is a hard stop:
	// another holder means the step is being executed elsewhere.
	lockKey := "closing:" + companyID.String() + ":" + runID.String()
	token, ok, err := s.locker.TryLock(ctx, lockKey, stepLockTTL)
	if err != nil {
		s.log.Warn("closing lock unavailable", zap.Error(err))
	} else if !ok {
		return nil, closingdomain.ErrRunLocked
	} else {
		defer func() { _ = s.locker.Release(ctx, lockKey, token) }()
	}

	run, step, err := s.stepAtCursor(ctx, companyID, runID, stepCode)
	if err != nil {
		return nil, err
	}

	year, err := s.fiscalYear.GetYear(ctx, companyID, run.FiscalYearID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	step.Status = closingdomain.StepStatusInProgress
	step.StartedAt = &now
	step.Error = ""
	if err := s.repo.UpdateStep(ctx, nil, step); err != nil {
		return nil, err
	}

	execErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.execute(ctx, tx, run, year, step.Code); err != nil {
			return err
		}
		done := time.Now().UTC()
		step.Status = closingdomain.StepStatusCompleted
		step.CompletedAt = &done
		if err := s.repo.UpdateStep(ctx, tx, step); err != nil {
			return err
		}
		return s.advance(ctx, tx, run)
	})
	if execErr != nil {
		step.Status = closingdomain.StepStatusError
		step.Error = execErr.Error()
		step.CompletedAt = nil
		if updateErr := s.repo.UpdateStep(ctx, nil, step); updateErr != nil {
			s.log.Error("failed to record step error", zap.Error(updateErr))
		}
		s.log.Warn("closing step failed",
			zap.String("run_id", run.ID.String()),
			zap.String("step", step.Code),
			zap.Error(execErr))
		return nil, execErr
	}

	s.auditLog(ctx, companyID, "closing.step_complete", run.ID.String(), map[string]any{
		"step":           step.Code,
		"fiscal_year_id": run.FiscalYearID.String(),
	})
	return s.GetRun(ctx, companyID, runID)
}

func (s *Service) SkipStep(ctx context.Context, companyID, runID snowflake.ID, stepCode string) (*closingdomain.ClosingRun, error) {
	run, step, err := s.stepAtCursor(ctx, companyID, runID, stepCode)
	if err != nil {
		return nil, err
	}
	if step.Required {
		return nil, closingdomain.ErrStepRequired
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		step.Status = closingdomain.StepStatusSkipped
		step.CompletedAt = &now
		if err := s.repo.UpdateStep(ctx, tx, step); err != nil {
			return err
		}
		return s.advance(ctx, tx, run)
	})
	if err != nil {
		return nil, err
	}

	s.auditLog(ctx, companyID, "closing.step_skip", run.ID.String(), map[string]any{
		"step": step.Code,
	})
	return s.GetRun(ctx, companyID, runID)
}

// stepAtCursor loads the run and resolves stepCode against the cursor.
func (s *Service) stepAtCursor(ctx context.Context, companyID, runID snowflake.ID, stepCode string) (*closingdomain.ClosingRun, *closingdomain.ClosingStep, error) {
	run, err := s.repo.FindRunByID(ctx, nil, companyID, runID)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, closingdomain.ErrRunNotFound
	}
	if run.Status != closingdomain.RunStatusRunning {
		return nil, nil, closingdomain.ErrRunNotRunning
	}

	var step *closingdomain.ClosingStep
	for i := range run.Steps {
		if run.Steps[i].Code == stepCode {
			step = &run.Steps[i]
			break
		}
	}
	if step == nil {
		return nil, nil, closingdomain.ErrStepNotFound
	}
	switch step.Status {
	case closingdomain.StepStatusCompleted, closingdomain.StepStatusSkipped:
		return nil, nil, closingdomain.ErrStepDone
	case closingdomain.StepStatusInProgress:
		// A fresh in_progress step is running somewhere; one older than
		// the lock TTL is a leftover of a crashed executor and may retry.
		if step.StartedAt != nil && time.Since(*step.StartedAt) < stepLockTTL {
			return nil, nil, closingdomain.ErrStepInProgress
		}
	}
	if step.Seq != run.Cursor {
		return nil, nil, closingdomain.ErrStepOutOfOrder
	}
	return run, step, nil
}

func (s *Service) advance(ctx context.Context, tx *gorm.DB, run *closingdomain.ClosingRun) error {
	run.Cursor++
	run.UpdatedAt = time.Now().UTC()
	if run.Cursor >= len(run.Steps) {
		now := time.Now().UTC()
		run.Status = closingdomain.RunStatusCompleted
		run.CompletedAt = &now
	}
	return s.repo.UpdateRun(ctx, tx, run)
}

func (s *Service) execute(ctx context.Context, tx *gorm.DB, run *closingdomain.ClosingRun, year *fiscalyeardomain.YearResponse, code string) error {
	switch code {
	case closingdomain.StepVerifyJournals:
		return s.journal.VerifyRangeTx(ctx, tx, run.CompanyID, year.StartDate, year.EndDate)
	case closingdomain.StepClosePeriods:
		_, err := s.fiscalYear.ClosePeriodsTx(ctx, tx, run.CompanyID, run.FiscalYearID)
		return err
	case closingdomain.StepPostResultEntry:
		return s.postResultEntry(ctx, tx, run, year)
	case closingdomain.StepRolloverSeries:
		_, err := s.series.RolloverTx(ctx, tx, run.CompanyID)
		return err
	case closingdomain.StepCloseYear:
		return s.fiscalYear.CloseYearTx(ctx, tx, run.CompanyID, run.FiscalYearID)
	default:
		return closingdomain.ErrUnknownStepCode
	}
}

// postResultEntry zeroes every income and expense account and moves the
// net result to retained earnings. A year with no P&L activity posts
// nothing and still completes the step.
func (s *Service) postResultEntry(ctx context.Context, tx *gorm.DB, run *closingdomain.ClosingRun, year *fiscalyeardomain.YearResponse) error {
	balances, err := s.accounts.BalancesTx(ctx, tx, run.CompanyID, year.StartDate, year.EndDate)
	if err != nil {
		return err
	}

	var lines []journaldomain.LineInput
	result := decimal.Zero
	for _, balance := range balances {
		if balance.Type != accountdomain.TypeIncome && balance.Type != accountdomain.TypeExpense {
			continue
		}
		net := money.Round2(balance.Net)
		if net.IsZero() {
			continue
		}
		line := journaldomain.LineInput{AccountID: balance.AccountID, Description: "year-end close"}
		if net.IsNegative() {
			line.Debit = net.Neg()
		} else {
			line.Credit = net
		}
		lines = append(lines, line)
		result = result.Add(net)
	}
	if len(lines) == 0 {
		return nil
	}

	retained, err := s.accounts.GetByCode(ctx, run.CompanyID, retainedEarningsCode)
	if err != nil {
		return err
	}
	counter := journaldomain.LineInput{AccountID: retained.ID, Description: "year-end result"}
	if result.IsNegative() {
		counter.Credit = result.Neg()
	} else {
		counter.Debit = result
	}
	lines = append(lines, counter)

	entry, err := s.journal.CreateAndPostTx(ctx, tx, journaldomain.CreateRequest{
		CompanyID:         run.CompanyID,
		EntryDate:         year.EndDate,
		Memo:              "Year-end result " + year.Name,
		Lines:             lines,
		AllowClosedPeriod: true,
	})
	if err != nil {
		return err
	}
	s.log.Info("result entry posted",
		zap.String("entry_id", entry.ID.String()),
		zap.String("fiscal_year_id", run.FiscalYearID.String()),
		zap.String("result", result.Neg().String()),
	)
	return nil
}

func (s *Service) auditLog(ctx context.Context, companyID snowflake.ID, action, targetID string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	actorID := companyctx.UserIDFromContext(ctx)
	if err := s.audit.AuditLog(ctx, companyID, actorID, action, "closing_run", targetID, metadata); err != nil {
		s.log.Warn("audit write failed", zap.Error(err))
	}
}
