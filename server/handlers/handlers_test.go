package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/auth"
	"github.com/stockwatch/stockwatch/auth/jwt"
	"github.com/stockwatch/stockwatch/auth/password"
	"github.com/stockwatch/stockwatch/authz"
	"github.com/stockwatch/stockwatch/database"
	"github.com/stockwatch/stockwatch/jobs"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/market"
	"github.com/stockwatch/stockwatch/model"
	"github.com/stockwatch/stockwatch/store"
)

type testEnv struct {
	engine *gin.Engine
	users  *store.UserStore
	stocks *store.StockStore
	sender *recordingSender
	market *httptest.Server
}

type recordingSender struct {
	to      []string
	bodies  []string
	subject string
}

func (r *recordingSender) Send(_ context.Context, to, subject, body string) error {
	r.to = append(r.to, to)
	r.bodies = append(r.bodies, body)
	r.subject = subject
	return nil
}

// marketStub answers the market-data API shape for any symbol except
// those listed in unknown.
func marketStub(t *testing.T, unknown map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stocks" {
			fmt.Fprintf(w, `{"data": [
				{"symbol": "AAPL", "name": "Apple Inc", "currency": "USD",
					"exchange": "NASDAQ", "mic_code": "XNGS", "type": "Common Stock"},
				{"symbol": "TSLA", "name": "Tesla Inc", "currency": "USD",
					"exchange": "NASDAQ", "mic_code": "XNGS", "type": "Common Stock"}
			]}`)
			return
		}
		symbol := r.URL.Query().Get("symbol")
		if unknown[symbol] {
			fmt.Fprintf(w, `{"status":"error","message":"symbol not found"}`)
			return
		}
		fmt.Fprintf(w, `{
			"meta": {"symbol": %q, "interval": "1min", "currency": "USD",
				"exchange_timezone": "America/New_York", "exchange": "NASDAQ",
				"mic_code": "XNGS", "type": "Common Stock"},
			"values": [{"datetime": "2024-03-01 15:59:00", "open": "100.0",
				"high": "101.0", "low": "99.5", "close": "100.5", "volume": "1200"}],
			"status": "ok"
		}`, symbol)
	}))
}

func newEnv(t *testing.T, unknownSymbols map[string]bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewDefault()

	dbCfg := database.Config{DSN: ":memory:", MaxRetries: 1}
	dbCfg.ApplyDefaults()
	db, err := database.New(dbCfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.SecurityInfo{},
		&model.StockMeta{}, &model.StockValue{}, &model.FavouriteStock{},
	))

	users := store.NewUserStore(db, log)
	stocks := store.NewStockStore(db, log)

	hasher := password.NewBcryptHasher(password.WithCost(4))

	jwtCfg := jwt.Config{Secret: "0123456789abcdef0123456789abcdef"}
	jwtCfg.ApplyDefaults()
	tokens, err := jwt.NewService(jwtCfg, log)
	require.NoError(t, err)

	svc, err := auth.NewService(users, hasher, tokens, log)
	require.NoError(t, err)

	stub := marketStub(t, unknownSymbols)
	t.Cleanup(stub.Close)
	client := market.NewClient(market.Config{BaseURL: stub.URL, APIKey: "test", MaxRetries: 1}, log)

	sender := &recordingSender{}
	refresh := jobs.NewRefreshJob(stocks, client, log)
	digest := jobs.NewDigestJob(users, stocks, sender, log)

	engine := gin.New()
	Register(engine, Deps{
		Users:   users,
		Stocks:  stocks,
		Auth:    svc,
		Policy:  authz.NewPolicy(users),
		Hasher:  hasher,
		Market:  client,
		Refresh: refresh,
		Digest:  digest,
		DB:      db,
		Log:     log,
	})

	return &testEnv{engine: engine, users: users, stocks: stocks, sender: sender, market: stub}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

// registerUser signs up a user through the HTTP surface and returns
// their login token.
func (e *testEnv) registerUser(t *testing.T, username, email, pw string) (uint, string) {
	t.Helper()
	rec := e.request(t, http.MethodPost, "/register", "", model.RegistrationRequest{
		FirstName: "Test",
		Email:     email,
		Username:  username,
		Password:  pw,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))

	return user.ID, e.login(t, username, pw)
}

func (e *testEnv) login(t *testing.T, login, pw string) string {
	t.Helper()
	rec := e.request(t, http.MethodPost, "/authentication", "", model.AuthRequest{
		Login: login, Password: pw,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	hasher := password.NewBcryptHasher(password.WithCost(4))
	hash, err := hasher.Hash("adminroot")
	require.NoError(t, err)
	require.NoError(t, e.users.EnsureAdmin(context.Background(), "admin", "admin@gmail.com", hash))
	return e.login(t, "admin", "adminroot")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newEnv(t, nil)
	env.registerUser(t, "bob", "bob@x.com", "pw123")

	rec := env.request(t, http.MethodPost, "/authentication", "", model.AuthRequest{
		Login: "bob", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestLoginUnknownUserMatchesBadPassword(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.request(t, http.MethodPost, "/authentication", "", model.AuthRequest{
		Login: "ghost", Password: "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestLoginByEmail(t *testing.T) {
	env := newEnv(t, nil)
	env.registerUser(t, "bob", "bob@x.com", "pw123")

	token := env.login(t, "bob@x.com", "pw123")
	assert.NotEmpty(t, token)
}

func TestRegisterDuplicateIdentifier(t *testing.T) {
	env := newEnv(t, nil)
	env.registerUser(t, "bob", "bob@x.com", "pw123")

	rec := env.request(t, http.MethodPost, "/register", "", model.RegistrationRequest{
		FirstName: "Other",
		Email:     "bob@x.com",
		Username:  "bob2",
		Password:  "pw456",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Email or username is already used"}`, rec.Body.String())
}

func TestRegisterMissingFields(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.request(t, http.MethodPost, "/register", "", map[string]string{
		"username": "bob",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Not enough data is filled"}`, rec.Body.String())
}

func TestAnonymousOnProtectedRoute(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.request(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestGarbageTokenIsAnonymous(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.request(t, http.MethodGet, "/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserCannotListUsers(t *testing.T) {
	env := newEnv(t, nil)
	_, token := env.registerUser(t, "bob", "bob@x.com", "pw123")

	rec := env.request(t, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminListsUsers(t *testing.T) {
	env := newEnv(t, nil)
	env.registerUser(t, "bob", "bob@x.com", "pw123")
	admin := env.adminToken(t)

	rec := env.request(t, http.MethodGet, "/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestMe(t *testing.T) {
	env := newEnv(t, nil)
	id, token := env.registerUser(t, "bob", "bob@x.com", "pw123")

	rec := env.request(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Test", user.FirstName)
}

func TestOwnershipForbiddenBeforeExistence(t *testing.T) {
	env := newEnv(t, nil)
	_, token := env.registerUser(t, "bob", "bob@x.com", "pw123")

	// Target id 9999 does not exist, but a non-admin must still get a
	// bare 403 rather than a 404 that leaks existence.
	rec := env.request(t, http.MethodGet, "/users/9999", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAdminGetMissingUserIs404(t *testing.T) {
	env := newEnv(t, nil)
	admin := env.adminToken(t)

	rec := env.request(t, http.MethodGet, "/users/9999", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "No such user"}`, rec.Body.String())
}

func TestUpdateKeepsOmittedFields(t *testing.T) {
	env := newEnv(t, nil)
	id, token := env.registerUser(t, "bob", "bob@x.com", "pw123")

	first := "Robert"
	rec := env.request(t, http.MethodPut, "/users", token, model.UserUpdateRequest{
		ID:        id,
		FirstName: &first,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "Robert", user.FirstName)
}

func TestSelfDeleteIsSoft(t *testing.T) {
	env := newEnv(t, nil)
	id, token := env.registerUser(t, "bob", "bob@x.com", "pw123")

	rec := env.request(t, http.MethodDelete, fmt.Sprintf("/users/%d", id), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Credentials stop working but the identifiers stay reserved.
	loginRec := env.request(t, http.MethodPost, "/authentication", "", model.AuthRequest{
		Login: "bob", Password: "pw123",
	})
	assert.Equal(t, http.StatusUnauthorized, loginRec.Code)

	dupRec := env.request(t, http.MethodPost, "/register", "", model.RegistrationRequest{
		FirstName: "New", Email: "bob@x.com", Username: "bob", Password: "pw999",
	})
	assert.Equal(t, http.StatusBadRequest, dupRec.Code)
}

func TestAdminDeleteIsHard(t *testing.T) {
	env := newEnv(t, nil)
	id, _ := env.registerUser(t, "bob", "bob@x.com", "pw123")
	admin := env.adminToken(t)

	rec := env.request(t, http.MethodDelete, fmt.Sprintf("/users/%d", id), admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The identifiers are free again after a hard delete.
	reRec := env.request(t, http.MethodPost, "/register", "", model.RegistrationRequest{
		FirstName: "New", Email: "bob@x.com", Username: "bob", Password: "pw999",
	})
	assert.Equal(t, http.StatusCreated, reRec.Code, reRec.Body.String())
}

func TestSecurityInfoSelfAccess(t *testing.T) {
	env := newEnv(t, nil)
	id, token := env.registerUser(t, "bob", "bob@x.com", "pw123")

	rec := env.request(t, http.MethodGet, fmt.Sprintf("/security-info/%d", id), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info model.SecurityInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "bob", info.Username)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSecurityInfoRoleChangeRequiresAdmin(t *testing.T) {
	env := newEnv(t, nil)
	id, token := env.registerUser(t, "bob", "bob@x.com", "pw123")

	rec := env.request(t, http.MethodPut, fmt.Sprintf("/security-info/%d", id), token, model.SecurityInfoRequest{
		Role: model.RoleAdmin,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSecurityInfoPasswordChange(t *testing.T) {
	env := newEnv(t, nil)
	id, token := env.registerUser(t, "bob", "bob@x.com", "pw123")

	rec := env.request(t, http.MethodPut, fmt.Sprintf("/security-info/%d", id), token, model.SecurityInfoRequest{
		Password: "newpw",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env.login(t, "bob", "newpw")
}

func TestFavouritesLifecycle(t *testing.T) {
	env := newEnv(t, nil)
	id, token := env.registerUser(t, "bob", "bob@x.com", "pw123")
	admin := env.adminToken(t)

	// Populate stock_meta through the refresh trigger.
	rec := env.request(t, http.MethodPost, "/stocks/update", admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = env.request(t, http.MethodPost, "/fav-stocks", token, model.FavouriteStockRequest{
		UserID: id, Symbol: "AAPL",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.request(t, http.MethodGet, "/fav-stocks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var metas []model.StockMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metas))
	require.Len(t, metas, 1)
	assert.Equal(t, "AAPL", metas[0].Symbol)

	rec = env.request(t, http.MethodDelete, "/fav-stocks", token, model.FavouriteStockRequest{
		UserID: id, Symbol: "AAPL",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodGet, "/fav-stocks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestFavouritesForOtherUserForbidden(t *testing.T) {
	env := newEnv(t, nil)
	_, bobToken := env.registerUser(t, "bob", "bob@x.com", "pw123")
	aliceID, _ := env.registerUser(t, "alice", "alice@x.com", "pw456")

	rec := env.request(t, http.MethodPost, "/fav-stocks", bobToken, model.FavouriteStockRequest{
		UserID: aliceID, Symbol: "AAPL",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStockListFallsBackToExchangeListing(t *testing.T) {
	env := newEnv(t, nil)

	// Nothing refreshed yet: the live exchange listing is served.
	rec := env.request(t, http.MethodGet, "/stocks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var metas []model.StockMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metas))
	require.Len(t, metas, 2)
	assert.Equal(t, "AAPL", metas[0].Symbol)
}

func TestStockListServesTrackedStocksAfterRefresh(t *testing.T) {
	env := newEnv(t, nil)
	admin := env.adminToken(t)

	rec := env.request(t, http.MethodPost, "/stocks/update", admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = env.request(t, http.MethodGet, "/stocks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var metas []model.StockMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metas))
	assert.Len(t, metas, 7)
}

func TestStockQuoteIsPublic(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.request(t, http.MethodGet, "/stocks/AAPL", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var quote model.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 100.5, quote.Close)
	assert.Equal(t, "USD", quote.Currency)
}

func TestStockQuoteFallsBackToStoredValue(t *testing.T) {
	env := newEnv(t, nil)
	admin := env.adminToken(t)

	rec := env.request(t, http.MethodPost, "/stocks/update", admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	env.market.Close()

	rec = env.request(t, http.MethodGet, "/stocks/AAPL", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var quote model.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 100.5, quote.Close)
}

func TestStockQuoteUnknownSymbol(t *testing.T) {
	env := newEnv(t, map[string]bool{"WAT": true})

	rec := env.request(t, http.MethodGet, "/stocks/WAT", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendEmailsDeliversDigest(t *testing.T) {
	env := newEnv(t, nil)
	id, token := env.registerUser(t, "bob", "bob@x.com", "pw123")
	admin := env.adminToken(t)

	rec := env.request(t, http.MethodPost, "/stocks/update", admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodPost, "/fav-stocks", token, model.FavouriteStockRequest{
		UserID: id, Symbol: "TSLA",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodPost, "/stocks/send-emails", admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	require.Equal(t, []string{"bob@x.com"}, env.sender.to)
	assert.Equal(t, "Daily Stocks Values", env.sender.subject)

	var quotes []model.Quote
	require.NoError(t, json.Unmarshal([]byte(env.sender.bodies[0]), &quotes))
	require.Len(t, quotes, 1)
	assert.Equal(t, "TSLA", quotes[0].Symbol)
}

func TestHealth(t *testing.T) {
	env := newEnv(t, nil)

	rec := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
