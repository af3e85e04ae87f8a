package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/fiskora/fiskora/internal/audit/domain"
	"github.com/fiskora/fiskora/internal/companyctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectCompany    = "company"
	ObjectFiscalYear = "fiscal_year"
	ObjectAccount    = "account"
	ObjectSeries     = "series"
	ObjectCustomer   = "customer"
	ObjectJournal    = "journal"
	ObjectDocument   = "document"
	ObjectClosing    = "closing"
	ObjectAuditLog   = "audit_log"
)

const (
	ActionCompanyView   = "company.view"
	ActionCompanyCreate = "company.create"
	ActionCompanyUpdate = "company.update"

	ActionFiscalYearView         = "fiscal_year.view"
	ActionFiscalYearCreate       = "fiscal_year.create"
	ActionFiscalYearClosePeriod  = "fiscal_year.close_period"
	ActionFiscalYearReopenPeriod = "fiscal_year.reopen_period"

	ActionAccountView       = "account.view"
	ActionAccountCreate     = "account.create"
	ActionAccountDeactivate = "account.deactivate"

	ActionSeriesView   = "series.view"
	ActionSeriesCreate = "series.create"
	ActionSeriesUpdate = "series.update"

	ActionCustomerView        = "customer.view"
	ActionCustomerCreate      = "customer.create"
	ActionCustomerUpdate      = "customer.update"
	ActionCustomerCreditCheck = "customer.credit_check"

	ActionJournalView   = "journal.view"
	ActionJournalCreate = "journal.create"
	ActionJournalUpdate = "journal.update"
	ActionJournalPost   = "journal.post"

	ActionDocumentView         = "document.view"
	ActionDocumentCreate       = "document.create"
	ActionDocumentUpdateStatus = "document.update_status"
	ActionDocumentConvert      = "document.convert"
	ActionDocumentPost         = "document.post"
	ActionDocumentPay          = "document.pay"
	ActionDocumentSend         = "document.send"

	ActionClosingView    = "closing.view"
	ActionClosingStart   = "closing.start"
	ActionClosingExecute = "closing.execute"
	ActionClosingSkip    = "closing.skip"

	ActionAuditLogView = "audit_log.view"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, companyID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return ErrInvalidCompany
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorID, err := s.resolveActor(ctx, actor, companyID)
	if err != nil {
		s.auditDecision(ctx, actorID, companyID, object, action, "authorization.denied")
		return err
	}

	domain := fmt.Sprintf("company:%s", companyID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDecision(ctx, actorID, companyID, object, action, "authorization.denied")
		return ErrForbidden
	}

	if shouldAuditGrant(action) {
		s.auditDecision(ctx, actorID, companyID, object, action, "authorization.granted")
	}
	return nil
}

// resolveActor maps an actor string to a casbin subject and role. User
// roles arrive with the request context rather than from a membership
// table; company management stays outside this service.
func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, companyID string) (string, string, string, error) {
	if actor == "system" {
		return actor, "role:system", "", nil
	}
	if strings.HasPrefix(actor, "user:") {
		userIDRaw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", "", ErrInvalidActor
		}
		role := strings.TrimSpace(companyctx.RoleFromContext(ctx))
		if role == "" {
			return actor, "", userID.String(), ErrForbidden
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), userID.String(), nil
	}
	return "", "", "", ErrInvalidActor
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDecision(ctx context.Context, actorID string, companyID string, object string, action string, decision string) {
	if s.auditSvc == nil {
		return
	}
	parsedCompanyID, err := snowflake.ParseString(companyID)
	if err != nil || parsedCompanyID == 0 {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, parsedCompanyID, actorID, decision, "authorization", "capability", map[string]any{
		"object": object,
		"action": action,
	})
}

func shouldAuditGrant(action string) bool {
	switch action {
	case ActionFiscalYearReopenPeriod, ActionClosingSkip:
		return true
	default:
		return false
	}
}
