package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	auditdomain "github.com/fiskora/fiskora/internal/audit/domain"
	companydomain "github.com/fiskora/fiskora/internal/company/domain"
	"github.com/fiskora/fiskora/internal/companyctx"
	"github.com/fiskora/fiskora/internal/config"
	customerdomain "github.com/fiskora/fiskora/internal/customer/domain"
	documentdomain "github.com/fiskora/fiskora/internal/document/domain"
	journaldomain "github.com/fiskora/fiskora/internal/journal/domain"
	"github.com/fiskora/fiskora/internal/money"
	"github.com/fiskora/fiskora/internal/providers/email"
	"github.com/fiskora/fiskora/internal/providers/pdf"
	seriesdomain "github.com/fiskora/fiskora/internal/series/domain"
	"github.com/fiskora/fiskora/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Posting accounts, resolved by code from the seeded chart.
const (
	receivableAccountCode = "4300"
	revenueAccountCode    = "7000"
	taxPayableAccountCode = "4770"
)

const defaultPaymentTermDays = 30

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Cfg       config.Config
	Repo      documentdomain.Repository
	Customers customerdomain.Service
	Accounts  accountdomain.Service
	Series    seriesdomain.Service
	Journal   journaldomain.Service
	Companies companydomain.Service
	Audit     auditdomain.Service `optional:"true"`
	PDF       pdf.Provider        `optional:"true"`
	Email     email.Provider      `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	cfg       config.Config
	repo      documentdomain.Repository
	customers customerdomain.Service
	accounts  accountdomain.Service
	series    seriesdomain.Service
	journal   journaldomain.Service
	companies companydomain.Service
	audit     auditdomain.Service
	pdf       pdf.Provider
	email     email.Provider
}

func NewService(p Params) documentdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("document.service"),
		genID:     p.GenID,
		cfg:       p.Cfg,
		repo:      p.Repo,
		customers: p.Customers,
		accounts:  p.Accounts,
		series:    p.Series,
		journal:   p.Journal,
		companies: p.Companies,
		audit:     p.Audit,
		pdf:       p.PDF,
		email:     p.Email,
	}
}

func (s *Service) Create(ctx context.Context, req documentdomain.CreateRequest) (*documentdomain.SalesDocument, error) {
	if req.CompanyID == 0 {
		return nil, documentdomain.ErrInvalidCompany
	}
	if !req.Type.Valid() {
		return nil, documentdomain.ErrInvalidType
	}
	if len(req.Lines) == 0 {
		return nil, documentdomain.ErrNoLines
	}

	customer, err := s.customers.Get(ctx, req.CompanyID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, customerdomain.ErrInactive
	}

	docID := s.genID.Generate()
	lines, totals, err := s.computeLines(docID, req.Lines)
	if err != nil {
		return nil, err
	}

	// Credit notes reduce exposure and skip the check.
	if req.Type != documentdomain.TypeCreditNote {
		if err := s.customers.AssertCredit(ctx, req.CompanyID, req.CustomerID, totals.Total); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = now
	}

	doc := &documentdomain.SalesDocument{
		ID:         docID,
		CompanyID:  req.CompanyID,
		CustomerID: req.CustomerID,
		Type:       req.Type,
		Status:     documentdomain.InitialStatus(req.Type),
		IssueDate:  issueDate,
		DueDate:    req.DueDate,
		Subtotal:   totals.Subtotal,
		TaxTotal:   totals.TaxTotal,
		Total:      totals.Total,
		Lines:      lines,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	switch req.Type {
	case documentdomain.TypeQuote:
		validUntil := issueDate.AddDate(0, 0, s.cfg.QuoteValidityDays)
		doc.ValidUntil = &validUntil
	case documentdomain.TypeInvoice:
		if doc.DueDate == nil {
			due := issueDate.AddDate(0, 0, defaultPaymentTermDays)
			doc.DueDate = &due
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.series.NextNumberTx(ctx, tx, req.CompanyID, string(req.Type))
		if err != nil {
			return err
		}
		doc.Number = number
		return s.repo.Create(ctx, tx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) computeLines(docID snowflake.ID, inputs []documentdomain.LineInput) ([]documentdomain.DocumentLine, money.DocumentTotals, error) {
	lines := make([]documentdomain.DocumentLine, 0, len(inputs))
	amounts := make([]money.LineAmounts, 0, len(inputs))
	for _, input := range inputs {
		computed, err := money.ComputeLine(input.Quantity, input.UnitPrice, input.DiscountPct, input.TaxRate)
		if err != nil {
			return nil, money.DocumentTotals{}, err
		}
		amounts = append(amounts, computed)
		lines = append(lines, documentdomain.DocumentLine{
			ID:             s.genID.Generate(),
			DocumentID:     docID,
			Description:    strings.TrimSpace(input.Description),
			Quantity:       input.Quantity,
			UnitPrice:      input.UnitPrice,
			DiscountPct:    input.DiscountPct,
			TaxRate:        input.TaxRate,
			DiscountAmount: computed.DiscountAmount,
			TaxAmount:      computed.TaxAmount,
			LineTotal:      computed.LineTotal,
		})
	}
	return lines, money.ComputeTotals(amounts), nil
}

func (s *Service) Get(ctx context.Context, companyID, id snowflake.ID) (*documentdomain.SalesDocument, error) {
	doc, err := s.repo.FindByID(ctx, nil, companyID, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, documentdomain.ErrNotFound
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, req documentdomain.ListRequest) (*documentdomain.ListResponse, error) {
	docs, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	pageSize := req.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	resp := &documentdomain.ListResponse{Documents: docs}
	if len(docs) > pageSize {
		resp.Documents = docs[:pageSize]
		last := resp.Documents[len(resp.Documents)-1]
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

func (s *Service) UpdateStatus(ctx context.Context, req documentdomain.UpdateStatusRequest) (*documentdomain.SalesDocument, error) {
	doc, err := s.Get(ctx, req.CompanyID, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if !documentdomain.ValidStatus(doc.Type, req.Status) {
		return nil, documentdomain.ErrInvalidStatus
	}
	if !documentdomain.CanTransition(doc.Type, doc.Status, req.Status) {
		return nil, documentdomain.ErrInvalidTransition
	}

	doc.Status = req.Status
	doc.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, nil, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) Convert(ctx context.Context, companyID, id snowflake.ID) (*documentdomain.SalesDocument, error) {
	source, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	targetType, ok := documentdomain.NextType(source.Type)
	if !ok {
		return nil, documentdomain.ErrEndOfChain
	}
	if !documentdomain.ConvertAllowed(source.Type, source.Status) {
		return nil, documentdomain.ErrNotConvertible
	}

	// Converting an invoice yields a credit note, which reduces exposure.
	if source.Type != documentdomain.TypeInvoice {
		if err := s.customers.AssertCredit(ctx, companyID, source.CustomerID, source.Total); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	target := &documentdomain.SalesDocument{
		ID:         s.genID.Generate(),
		CompanyID:  companyID,
		CustomerID: source.CustomerID,
		Type:       targetType,
		Status:     documentdomain.InitialStatus(targetType),
		IssueDate:  now,
		SourceID:   &source.ID,
		Subtotal:   source.Subtotal,
		TaxTotal:   source.TaxTotal,
		Total:      source.Total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if targetType == documentdomain.TypeInvoice {
		due := now.AddDate(0, 0, defaultPaymentTermDays)
		target.DueDate = &due
	}
	for _, line := range source.Lines {
		target.Lines = append(target.Lines, documentdomain.DocumentLine{
			ID:             s.genID.Generate(),
			DocumentID:     target.ID,
			Description:    line.Description,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			DiscountPct:    line.DiscountPct,
			TaxRate:        line.TaxRate,
			DiscountAmount: line.DiscountAmount,
			TaxAmount:      line.TaxAmount,
			LineTotal:      line.LineTotal,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.series.NextNumberTx(ctx, tx, companyID, string(targetType))
		if err != nil {
			return err
		}
		target.Number = number
		if err := s.repo.Create(ctx, tx, target); err != nil {
			return err
		}
		if source.Type == documentdomain.TypeQuote {
			source.Status = documentdomain.StatusConverted
			source.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, source); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditLog(ctx, companyID, "document.convert", target.ID.String(), map[string]any{
		"source_id":   source.ID.String(),
		"source_type": source.Type,
		"target_type": target.Type,
		"number":      target.Number,
	})
	return target, nil
}

func (s *Service) PostInvoice(ctx context.Context, companyID, id snowflake.ID) (*documentdomain.SalesDocument, error) {
	var posted *documentdomain.SalesDocument
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.repo.FindByID(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return documentdomain.ErrNotFound
		}
		if doc.Type != documentdomain.TypeInvoice && doc.Type != documentdomain.TypeCreditNote {
			return documentdomain.ErrInvalidType
		}
		if doc.Status == documentdomain.StatusPosted {
			return documentdomain.ErrAlreadyPosted
		}
		if doc.Status != documentdomain.StatusDraft {
			return documentdomain.ErrNotDraft
		}

		lines, err := s.postingLines(ctx, doc)
		if err != nil {
			return err
		}
		entry, err := s.journal.CreateAndPostTx(ctx, tx, journaldomain.CreateRequest{
			CompanyID: companyID,
			EntryDate: doc.IssueDate,
			Memo:      string(doc.Type) + " " + doc.Number,
			Lines:     lines,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		doc.Status = documentdomain.StatusPosted
		doc.PostedJournalID = &entry.ID
		doc.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, doc); err != nil {
			return err
		}
		posted = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.customers.InvalidateCredit(companyID, posted.CustomerID)
	s.auditLog(ctx, companyID, "document.post_invoice", posted.ID.String(), map[string]any{
		"number":     posted.Number,
		"type":       posted.Type,
		"journal_id": posted.PostedJournalID.String(),
	})
	return posted, nil
}

// postingLines builds the double entry for an invoice: receivable takes
// the gross total, revenue the net subtotal, tax payable the tax. Credit
// notes book the mirror image.
func (s *Service) postingLines(ctx context.Context, doc *documentdomain.SalesDocument) ([]journaldomain.LineInput, error) {
	receivable, err := s.accounts.GetByCode(ctx, doc.CompanyID, receivableAccountCode)
	if err != nil {
		return nil, err
	}
	revenue, err := s.accounts.GetByCode(ctx, doc.CompanyID, revenueAccountCode)
	if err != nil {
		return nil, err
	}
	tax, err := s.accounts.GetByCode(ctx, doc.CompanyID, taxPayableAccountCode)
	if err != nil {
		return nil, err
	}

	mirror := doc.Type == documentdomain.TypeCreditNote
	lines := make([]journaldomain.LineInput, 0, 3)

	gross := journaldomain.LineInput{AccountID: receivable.ID, Debit: doc.Total, Description: doc.Number}
	net := journaldomain.LineInput{AccountID: revenue.ID, Credit: doc.Subtotal, Description: doc.Number}
	lines = append(lines, gross, net)
	if doc.TaxTotal.IsPositive() {
		lines = append(lines, journaldomain.LineInput{AccountID: tax.ID, Credit: doc.TaxTotal, Description: doc.Number})
	}

	if mirror {
		for i := range lines {
			lines[i].Debit, lines[i].Credit = lines[i].Credit, lines[i].Debit
		}
	}
	return lines, nil
}

func titleCase(t documentdomain.Type) string {
	label := strings.ReplaceAll(string(t), "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func (s *Service) MarkPaid(ctx context.Context, companyID, id snowflake.ID) (*documentdomain.SalesDocument, error) {
	doc, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if doc.Type != documentdomain.TypeInvoice {
		return nil, documentdomain.ErrInvalidType
	}
	if doc.Status != documentdomain.StatusPosted {
		return nil, documentdomain.ErrNotPosted
	}
	if doc.PaidAt != nil {
		return nil, documentdomain.ErrAlreadyPaid
	}

	now := time.Now().UTC()
	doc.PaidAt = &now
	doc.UpdatedAt = now
	if err := s.repo.Update(ctx, nil, doc); err != nil {
		return nil, err
	}
	s.customers.InvalidateCredit(companyID, doc.CustomerID)
	return doc, nil
}

func (s *Service) ExpireQuotes(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ExpireQuotes(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, quote := range expired {
		s.auditLog(ctx, quote.CompanyID, "document.expire", quote.ID.String(), map[string]any{
			"number": quote.Number,
		})
	}
	return len(expired), nil
}

func (s *Service) RenderPDF(ctx context.Context, companyID, id snowflake.ID) ([]byte, error) {
	if s.pdf == nil {
		return nil, documentdomain.ErrDeliveryUnavailable
	}
	doc, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	data, err := s.renderData(ctx, doc)
	if err != nil {
		return nil, err
	}
	return s.pdf.GenerateDocument(ctx, data)
}

func (s *Service) EmailDocument(ctx context.Context, companyID, id snowflake.ID, recipient string) error {
	if s.email == nil {
		return documentdomain.ErrDeliveryUnavailable
	}
	doc, err := s.Get(ctx, companyID, id)
	if err != nil {
		return err
	}

	customer, err := s.customers.Get(ctx, companyID, doc.CustomerID)
	if err != nil {
		return err
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		recipient = customer.Email
	}
	if recipient == "" {
		return customerdomain.ErrInvalidEmail
	}

	subject := titleCase(doc.Type) + " " + doc.Number
	body := "<p>Please find attached " + subject + " for a total of " + doc.Total.StringFixed(2) + ".</p>"

	var attachment *email.Attachment
	if s.pdf != nil {
		rendition, err := s.RenderPDF(ctx, companyID, id)
		if err == nil && len(rendition) > 0 {
			attachment = &email.Attachment{
				Filename:    doc.Number + ".pdf",
				ContentType: "application/pdf",
				Data:        rendition,
			}
		}
	}
	return s.email.SendWithAttachment(ctx, []string{recipient}, subject, body, attachment)
}

func (s *Service) renderData(ctx context.Context, doc *documentdomain.SalesDocument) (pdf.DocumentData, error) {
	company, err := s.companies.Get(ctx, doc.CompanyID)
	if err != nil {
		return pdf.DocumentData{}, err
	}
	customer, err := s.customers.Get(ctx, doc.CompanyID, doc.CustomerID)
	if err != nil {
		return pdf.DocumentData{}, err
	}

	data := pdf.DocumentData{
		CompanyName:   company.Name,
		Title:         titleCase(doc.Type),
		Number:        doc.Number,
		IssueDate:     doc.IssueDate.Format("2006-01-02"),
		Status:        string(doc.Status),
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		Subtotal:      doc.Subtotal.StringFixed(2),
		TaxTotal:      doc.TaxTotal.StringFixed(2),
		Total:         doc.Total.StringFixed(2),
	}
	if doc.DueDate != nil {
		data.DueDate = doc.DueDate.Format("2006-01-02")
	}
	for _, line := range doc.Lines {
		data.Items = append(data.Items, pdf.DocumentItem{
			Description: line.Description,
			Quantity:    line.Quantity.String(),
			UnitPrice:   line.UnitPrice.StringFixed(2),
			Discount:    line.DiscountPct.String(),
			Tax:         line.TaxRate.String(),
			Amount:      line.LineTotal.StringFixed(2),
		})
	}
	return data, nil
}

func (s *Service) auditLog(ctx context.Context, companyID snowflake.ID, action, targetID string, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	actorID := companyctx.UserIDFromContext(ctx)
	if err := s.audit.AuditLog(ctx, companyID, actorID, action, "sales_document", targetID, metadata); err != nil {
		s.log.Warn("audit write failed", zap.Error(err))
	}
}
