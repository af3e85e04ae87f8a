package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/fiskora/fiskora/internal/account/domain"
	accountrepository "github.com/fiskora/fiskora/internal/account/repository"
	accountservice "github.com/fiskora/fiskora/internal/account/service"
	"github.com/fiskora/fiskora/internal/authorization"
	companydomain "github.com/fiskora/fiskora/internal/company/domain"
	companyrepository "github.com/fiskora/fiskora/internal/company/repository"
	companyservice "github.com/fiskora/fiskora/internal/company/service"
	"github.com/fiskora/fiskora/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&companydomain.Company{},
		&accountdomain.Account{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authzSvc := authorization.NewService(authorization.Params{
		DB:       db,
		Log:      log,
		Enforcer: enforcer,
	})

	companySvc := companyservice.NewService(companyservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  companyrepository.NewRepository(db),
	})
	accountSvc := accountservice.NewService(accountservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  accountrepository.NewRepository(db),
	})

	registerValidators()
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	return NewServer(ServerParams{
		Gin:        engine,
		Cfg:        config.Config{},
		GenID:      node,
		AuthzSvc:   authzSvc,
		CompanySvc: companySvc,
		AccountSvc: accountSvc,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestCreateCompany(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/companies", gin.H{
		"name":     "Acme GmbH",
		"currency": "eur",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data companydomain.Company `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Acme GmbH", resp.Data.Name)
	assert.Equal(t, "EUR", resp.Data.Currency)
	assert.NotZero(t, resp.Data.ID)
}

func TestAccountRoutesRequireCompanyHeader(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/accounts", gin.H{
		"code": "4300", "name": "Receivables", "type": "asset",
	}, map[string]string{HeaderUser: "100", HeaderRole: "accountant"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAccount(t *testing.T) {
	s := newTestServer(t)
	headers := map[string]string{
		HeaderCompany: "200",
		HeaderUser:    "100",
		HeaderRole:    "accountant",
	}

	rec := doJSON(t, s, http.MethodPost, "/v1/accounts", gin.H{
		"code": "4300", "name": "Receivables", "type": "asset",
	}, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data accountdomain.Account `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "4300", resp.Data.Code)

	// Duplicate code in the same company conflicts.
	rec = doJSON(t, s, http.MethodPost, "/v1/accounts", gin.H{
		"code": "4300", "name": "Receivables again", "type": "asset",
	}, headers)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateAccountRejectsBadCode(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/accounts", gin.H{
		"code": "12", "name": "Too short", "type": "asset",
	}, map[string]string{
		HeaderCompany: "200",
		HeaderUser:    "100",
		HeaderRole:    "accountant",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViewerCannotCreateAccounts(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/v1/accounts", gin.H{
		"code": "4300", "name": "Receivables", "type": "asset",
	}, map[string]string{
		HeaderCompany: "200",
		HeaderUser:    "100",
		HeaderRole:    "viewer",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetAccountNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/v1/accounts/12345", nil, map[string]string{
		HeaderCompany: "200",
		HeaderUser:    "100",
		HeaderRole:    "viewer",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
