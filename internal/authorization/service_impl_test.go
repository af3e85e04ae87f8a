package authorization

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fiskora/fiskora/internal/companyctx"
)

func setupService(t *testing.T) Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	return NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})
}

func withRole(role string) context.Context {
	return companyctx.WithRole(context.Background(), role)
}

func TestAuthorizeByRole(t *testing.T) {
	svc := setupService(t)

	cases := []struct {
		name    string
		role    string
		object  string
		action  string
		allowed bool
	}{
		{"accountant posts journals", "accountant", ObjectJournal, ActionJournalPost, true},
		{"accountant starts closing", "accountant", ObjectClosing, ActionClosingStart, true},
		{"accountant cannot skip closing steps", "accountant", ObjectClosing, ActionClosingSkip, false},
		{"sales converts documents", "sales", ObjectDocument, ActionDocumentConvert, true},
		{"sales cannot post invoices", "sales", ObjectDocument, ActionDocumentPost, false},
		{"viewer reads journals", "viewer", ObjectJournal, ActionJournalView, true},
		{"viewer cannot create journals", "viewer", ObjectJournal, ActionJournalCreate, false},
		{"admin reopens periods", "admin", ObjectFiscalYear, ActionFiscalYearReopenPeriod, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(withRole(tc.role), "user:100", "200", tc.object, tc.action)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestAuthorizeSystemActor(t *testing.T) {
	svc := setupService(t)

	ctx := context.Background()
	assert.NoError(t, svc.Authorize(ctx, "system", "200", ObjectDocument, ActionDocumentUpdateStatus))
	assert.ErrorIs(t, svc.Authorize(ctx, "system", "200", ObjectCompany, ActionCompanyUpdate), ErrForbidden)
}

func TestAuthorizeRoleChangeRebindsSubject(t *testing.T) {
	svc := setupService(t)

	require.NoError(t, svc.Authorize(withRole("admin"), "user:100", "200", ObjectClosing, ActionClosingSkip))

	// Demoted in the same company: the old grouping must not linger.
	assert.ErrorIs(t, svc.Authorize(withRole("viewer"), "user:100", "200", ObjectClosing, ActionClosingSkip), ErrForbidden)
}

func TestAuthorizeRejectsBadInput(t *testing.T) {
	svc := setupService(t)

	assert.ErrorIs(t, svc.Authorize(context.Background(), "", "200", ObjectJournal, ActionJournalView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(context.Background(), "api_key:1", "200", ObjectJournal, ActionJournalView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(withRole("admin"), "user:100", "", ObjectJournal, ActionJournalView), ErrInvalidCompany)
	assert.ErrorIs(t, svc.Authorize(withRole("admin"), "user:100", "200", "", ActionJournalView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(withRole("admin"), "user:100", "200", ObjectJournal, ""), ErrInvalidAction)
	assert.ErrorIs(t, svc.Authorize(context.Background(), "user:100", "200", ObjectJournal, ActionJournalView), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(context.Background(), "user:abc", "200", ObjectJournal, ActionJournalView), ErrInvalidActor)
}
