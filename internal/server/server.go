package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fiskora/fiskora/internal/account"
	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	"github.com/fiskora/fiskora/internal/audit"
	auditdomain "github.com/fiskora/fiskora/internal/audit/domain"
	"github.com/fiskora/fiskora/internal/authorization"
	"github.com/fiskora/fiskora/internal/closing"
	closingdomain "github.com/fiskora/fiskora/internal/closing/domain"
	"github.com/fiskora/fiskora/internal/company"
	companydomain "github.com/fiskora/fiskora/internal/company/domain"
	"github.com/fiskora/fiskora/internal/config"
	"github.com/fiskora/fiskora/internal/customer"
	customerdomain "github.com/fiskora/fiskora/internal/customer/domain"
	"github.com/fiskora/fiskora/internal/document"
	documentdomain "github.com/fiskora/fiskora/internal/document/domain"
	"github.com/fiskora/fiskora/internal/fiscalyear"
	fiscalyeardomain "github.com/fiskora/fiskora/internal/fiscalyear/domain"
	"github.com/fiskora/fiskora/internal/journal"
	journaldomain "github.com/fiskora/fiskora/internal/journal/domain"
	obslogger "github.com/fiskora/fiskora/internal/observability/logger"
	obsmetrics "github.com/fiskora/fiskora/internal/observability/metrics"
	obstracing "github.com/fiskora/fiskora/internal/observability/tracing"
	"github.com/fiskora/fiskora/internal/providers"
	"github.com/fiskora/fiskora/internal/scheduler"
	"github.com/fiskora/fiskora/internal/series"
	seriesdomain "github.com/fiskora/fiskora/internal/series/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	company.Module,
	fiscalyear.Module,
	series.Module,
	account.Module,
	customer.Module,
	journal.Module,
	document.Module,
	closing.Module,
	providers.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	registerValidators()
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	genID  *snowflake.Node

	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	companySvc    companydomain.Service
	fiscalYearSvc fiscalyeardomain.Service
	seriesSvc     seriesdomain.Service
	accountSvc    accountdomain.Service
	customerSvc   customerdomain.Service
	journalSvc    journaldomain.Service
	documentSvc   documentdomain.Service
	closingSvc    closingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	GenID         *snowflake.Node
	AuthzSvc      authorization.Service
	AuditSvc      auditdomain.Service
	CompanySvc    companydomain.Service
	FiscalYearSvc fiscalyeardomain.Service
	SeriesSvc     seriesdomain.Service
	AccountSvc    accountdomain.Service
	CustomerSvc   customerdomain.Service
	JournalSvc    journaldomain.Service
	DocumentSvc   documentdomain.Service
	ClosingSvc    closingdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		genID:         p.GenID,
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		companySvc:    p.CompanySvc,
		fiscalYearSvc: p.FiscalYearSvc,
		seriesSvc:     p.SeriesSvc,
		accountSvc:    p.AccountSvc,
		customerSvc:   p.CustomerSvc,
		journalSvc:    p.JournalSvc,
		documentSvc:   p.DocumentSvc,
		closingSvc:    p.ClosingSvc,
	}

	s.registerRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1", s.CompanyContext())

	// -------- Companies --------
	v1.POST("/companies", s.CreateCompany)
	v1.GET("/companies", s.ListCompanies)
	v1.GET("/companies/:id", s.authorize(authorization.ObjectCompany, authorization.ActionCompanyView), s.GetCompany)
	v1.PATCH("/companies/:id", s.authorize(authorization.ObjectCompany, authorization.ActionCompanyUpdate), s.UpdateCompany)

	// -------- Fiscal years and periods --------
	v1.POST("/fiscal-years", s.authorize(authorization.ObjectFiscalYear, authorization.ActionFiscalYearCreate), s.CreateFiscalYear)
	v1.GET("/fiscal-years", s.authorize(authorization.ObjectFiscalYear, authorization.ActionFiscalYearView), s.ListFiscalYears)
	v1.GET("/fiscal-years/:id", s.authorize(authorization.ObjectFiscalYear, authorization.ActionFiscalYearView), s.GetFiscalYear)
	v1.POST("/fiscal-years/periods/:id/close", s.authorize(authorization.ObjectFiscalYear, authorization.ActionFiscalYearClosePeriod), s.ClosePeriod)
	v1.POST("/fiscal-years/periods/:id/reopen", s.authorize(authorization.ObjectFiscalYear, authorization.ActionFiscalYearReopenPeriod), s.ReopenPeriod)

	// -------- Chart of accounts --------
	v1.POST("/accounts", s.authorize(authorization.ObjectAccount, authorization.ActionAccountCreate), s.CreateAccount)
	v1.GET("/accounts", s.authorize(authorization.ObjectAccount, authorization.ActionAccountView), s.ListAccounts)
	v1.GET("/accounts/tree", s.authorize(authorization.ObjectAccount, authorization.ActionAccountView), s.GetAccountTree)
	v1.GET("/accounts/:id", s.authorize(authorization.ObjectAccount, authorization.ActionAccountView), s.GetAccount)
	v1.POST("/accounts/:id/deactivate", s.authorize(authorization.ObjectAccount, authorization.ActionAccountDeactivate), s.DeactivateAccount)

	// -------- Numbering series --------
	v1.POST("/series", s.authorize(authorization.ObjectSeries, authorization.ActionSeriesCreate), s.CreateSeries)
	v1.GET("/series", s.authorize(authorization.ObjectSeries, authorization.ActionSeriesView), s.ListSeries)

	// -------- Customers --------
	v1.POST("/customers", s.authorize(authorization.ObjectCustomer, authorization.ActionCustomerCreate), s.CreateCustomer)
	v1.GET("/customers", s.authorize(authorization.ObjectCustomer, authorization.ActionCustomerView), s.ListCustomers)
	v1.GET("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionCustomerView), s.GetCustomer)
	v1.PATCH("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionCustomerUpdate), s.UpdateCustomer)
	v1.GET("/customers/:id/credit-check", s.authorize(authorization.ObjectCustomer, authorization.ActionCustomerCreditCheck), s.CreditCheck)

	// -------- Journal entries --------
	v1.POST("/journal-entries", s.authorize(authorization.ObjectJournal, authorization.ActionJournalCreate), s.CreateJournalEntry)
	v1.GET("/journal-entries", s.authorize(authorization.ObjectJournal, authorization.ActionJournalView), s.ListJournalEntries)
	v1.GET("/journal-entries/:id", s.authorize(authorization.ObjectJournal, authorization.ActionJournalView), s.GetJournalEntry)
	v1.PATCH("/journal-entries/:id", s.authorize(authorization.ObjectJournal, authorization.ActionJournalUpdate), s.UpdateJournalEntry)
	v1.POST("/journal-entries/:id/post", s.authorize(authorization.ObjectJournal, authorization.ActionJournalPost), s.PostJournalEntry)

	// -------- Sales documents --------
	v1.POST("/documents", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentCreate), s.CreateDocument)
	v1.GET("/documents", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentView), s.ListDocuments)
	v1.GET("/documents/:id", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentView), s.GetDocument)
	v1.POST("/documents/:id/status", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentUpdateStatus), s.UpdateDocumentStatus)
	v1.POST("/documents/:id/convert", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentConvert), s.ConvertDocument)
	v1.POST("/documents/:id/post", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentPost), s.PostDocument)
	v1.POST("/documents/:id/pay", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentPay), s.PayDocument)
	v1.GET("/documents/:id/pdf", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentView), s.DocumentPDF)
	v1.POST("/documents/:id/email", s.authorize(authorization.ObjectDocument, authorization.ActionDocumentSend), s.EmailDocument)

	// -------- Fiscal closing --------
	v1.POST("/closing-runs", s.authorize(authorization.ObjectClosing, authorization.ActionClosingStart), s.StartClosingRun)
	v1.GET("/closing-runs", s.authorize(authorization.ObjectClosing, authorization.ActionClosingView), s.ListClosingRuns)
	v1.GET("/closing-runs/:id", s.authorize(authorization.ObjectClosing, authorization.ActionClosingView), s.GetClosingRun)
	v1.POST("/closing-runs/:id/steps/:code/execute", s.authorize(authorization.ObjectClosing, authorization.ActionClosingExecute), s.ExecuteClosingStep)
	v1.POST("/closing-runs/:id/steps/:code/skip", s.authorize(authorization.ObjectClosing, authorization.ActionClosingSkip), s.SkipClosingStep)

	// -------- Audit trail --------
	v1.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
