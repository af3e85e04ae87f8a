package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	auditdomain "github.com/fiskora/fiskora/internal/audit/domain"
	"github.com/fiskora/fiskora/internal/companyctx"
	fiscalyeardomain "github.com/fiskora/fiskora/internal/fiscalyear/domain"
	journaldomain "github.com/fiskora/fiskora/internal/journal/domain"
	seriesdomain "github.com/fiskora/fiskora/internal/series/domain"
	"github.com/fiskora/fiskora/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       journaldomain.Repository
	Accounts   accountdomain.Repository
	FiscalYear fiscalyeardomain.Service
	Series     seriesdomain.Service
	Audit      auditdomain.Service `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       journaldomain.Repository
	accounts   accountdomain.Repository
	fiscalYear fiscalyeardomain.Service
	series     seriesdomain.Service
	audit      auditdomain.Service
}

func NewService(p Params) journaldomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("journal.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		accounts:   p.Accounts,
		fiscalYear: p.FiscalYear,
		series:     p.Series,
		audit:      p.Audit,
	}
}

func (s *Service) buildEntry(ctx context.Context, tx *gorm.DB, req journaldomain.CreateRequest) (*journaldomain.JournalEntry, error) {
	if req.CompanyID == 0 {
		return nil, accountdomain.ErrInvalidCompany
	}

	entryID := s.genID.Generate()
	lines := make([]journaldomain.JournalLine, 0, len(req.Lines))
	for _, input := range req.Lines {
		lines = append(lines, journaldomain.JournalLine{
			ID:          s.genID.Generate(),
			EntryID:     entryID,
			AccountID:   input.AccountID,
			Debit:       input.Debit,
			Credit:      input.Credit,
			Description: strings.TrimSpace(input.Description),
		})
	}
	if err := journaldomain.ValidateLines(lines); err != nil {
		return nil, err
	}
	if err := s.checkAccounts(ctx, tx, req.CompanyID, lines); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entryDate := req.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}
	return &journaldomain.JournalEntry{
		ID:        entryID,
		CompanyID: req.CompanyID,
		EntryDate: entryDate,
		Memo:      strings.TrimSpace(req.Memo),
		Status:    journaldomain.StatusDraft,
		Lines:     lines,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// checkAccounts rejects lines that reference a missing or inactive account.
func (s *Service) checkAccounts(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, lines []journaldomain.JournalLine) error {
	seen := map[snowflake.ID]bool{}
	for _, line := range lines {
		if seen[line.AccountID] {
			continue
		}
		seen[line.AccountID] = true

		account, err := s.accounts.FindByID(ctx, tx, companyID, line.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return journaldomain.ErrUnknownAccount
		}
		if !account.IsActive {
			return accountdomain.ErrInactive
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req journaldomain.CreateRequest) (*journaldomain.JournalEntry, error) {
	entry, err := s.buildEntry(ctx, nil, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, nil, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) Get(ctx context.Context, companyID, id snowflake.ID) (*journaldomain.JournalEntry, error) {
	entry, err := s.repo.FindByID(ctx, nil, companyID, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, journaldomain.ErrNotFound
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, req journaldomain.ListRequest) (*journaldomain.ListResponse, error) {
	entries, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	pageSize := req.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	resp := &journaldomain.ListResponse{Entries: entries}
	if len(entries) > pageSize {
		resp.Entries = entries[:pageSize]
		last := resp.Entries[len(resp.Entries)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		resp.PageInfo = pagination.PageInfo{NextPageToken: token, HasMore: true}
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req journaldomain.UpdateRequest) (*journaldomain.JournalEntry, error) {
	var updated *journaldomain.JournalEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.repo.FindByID(ctx, tx, req.CompanyID, req.EntryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return journaldomain.ErrNotFound
		}
		if entry.Status == journaldomain.StatusPosted {
			return journaldomain.ErrEntryPosted
		}

		if req.EntryDate != nil {
			entry.EntryDate = *req.EntryDate
		}
		if req.Memo != nil {
			entry.Memo = strings.TrimSpace(*req.Memo)
		}
		if req.Lines != nil {
			lines := make([]journaldomain.JournalLine, 0, len(req.Lines))
			for _, input := range req.Lines {
				lines = append(lines, journaldomain.JournalLine{
					ID:          s.genID.Generate(),
					EntryID:     entry.ID,
					AccountID:   input.AccountID,
					Debit:       input.Debit,
					Credit:      input.Credit,
					Description: strings.TrimSpace(input.Description),
				})
			}
			if err := journaldomain.ValidateLines(lines); err != nil {
				return err
			}
			if err := s.checkAccounts(ctx, tx, entry.CompanyID, lines); err != nil {
				return err
			}
			if err := s.repo.ReplaceLines(ctx, tx, entry.ID, lines); err != nil {
				return err
			}
			entry.Lines = lines
		}

		entry.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, entry); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Post(ctx context.Context, companyID, id snowflake.ID) (*journaldomain.JournalEntry, error) {
	var posted *journaldomain.JournalEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.repo.FindByID(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if entry == nil {
			return journaldomain.ErrNotFound
		}
		if err := s.postLocked(ctx, tx, entry); err != nil {
			return err
		}
		posted = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		if err := s.audit.AuditLog(ctx, companyID, companyctx.UserIDFromContext(ctx),
			"journal.post", "journal_entry", posted.ID.String(),
			map[string]any{"number": posted.Number}); err != nil {
			s.log.Warn("audit write failed", zap.Error(err))
		}
	}
	return posted, nil
}

func (s *Service) postLocked(ctx context.Context, tx *gorm.DB, entry *journaldomain.JournalEntry) error {
	if entry.Status == journaldomain.StatusPosted {
		return journaldomain.ErrEntryPosted
	}
	if err := journaldomain.ValidateLines(entry.Lines); err != nil {
		return err
	}
	if !entry.IsBalanced() {
		return journaldomain.ErrUnbalanced
	}
	if err := s.checkAccounts(ctx, tx, entry.CompanyID, entry.Lines); err != nil {
		return err
	}
	if err := s.fiscalYear.IsPostingAllowed(ctx, entry.CompanyID, entry.EntryDate); err != nil {
		return err
	}

	number, err := s.series.NextNumberTx(ctx, tx, entry.CompanyID, "journal")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	entry.Number = &number
	entry.Status = journaldomain.StatusPosted
	entry.PostedAt = &now
	entry.UpdatedAt = now
	return s.repo.Update(ctx, tx, entry)
}

func (s *Service) CreateAndPostTx(ctx context.Context, tx *gorm.DB, req journaldomain.CreateRequest) (*journaldomain.JournalEntry, error) {
	entry, err := s.buildEntry(ctx, tx, req)
	if err != nil {
		return nil, err
	}
	if !entry.IsBalanced() {
		return nil, journaldomain.ErrUnbalanced
	}
	if !req.AllowClosedPeriod {
		if err := s.fiscalYear.IsPostingAllowed(ctx, entry.CompanyID, entry.EntryDate); err != nil {
			return nil, err
		}
	}

	number, err := s.series.NextNumberTx(ctx, tx, entry.CompanyID, "journal")
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	entry.Number = &number
	entry.Status = journaldomain.StatusPosted
	entry.PostedAt = &now

	if err := s.repo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) VerifyRangeTx(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, from, to time.Time) error {
	count, err := s.repo.CountByStatusInRange(ctx, tx, companyID, journaldomain.StatusDraft, from, to)
	if err != nil {
		return err
	}
	if count > 0 {
		s.log.Info("draft entries block closing",
			zap.Int64("count", count),
			zap.String("company_id", companyID.String()))
		return journaldomain.ErrUnpostedInRange
	}
	return nil
}
