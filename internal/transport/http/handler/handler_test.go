package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/herbal-remedy-api/internal/domain"
	"github.com/herbal-remedy-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockRecommendSvc struct{ mock.Mock }

func (m *mockRecommendSvc) Recommend(ctx context.Context, text string, preferEdible bool) (domain.RecommendationSet, error) {
	args := m.Called(ctx, text, preferEdible)
	set, _ := args.Get(0).(domain.RecommendationSet)
	return set, args.Error(1)
}

type mockRecipeSvc struct{ mock.Mock }

func (m *mockRecipeSvc) Generate(ctx context.Context, plant domain.PlantRef) (*domain.Recipe, error) {
	args := m.Called(ctx, plant)
	if r, _ := args.Get(0).(*domain.Recipe); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecipeSvc) Save(ctx context.Context, owner string, req domain.SaveRecipeRequest) (*domain.SavedRecipe, error) {
	args := m.Called(ctx, owner, req)
	if r, _ := args.Get(0).(*domain.SavedRecipe); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecipeSvc) List(ctx context.Context, owner string) ([]domain.SavedRecipe, error) {
	args := m.Called(ctx, owner)
	items, _ := args.Get(0).([]domain.SavedRecipe)
	return items, args.Error(1)
}

func (m *mockRecipeSvc) SoftDelete(ctx context.Context, owner, recipeID string) error {
	return m.Called(ctx, owner, recipeID).Error(0)
}

func (m *mockRecipeSvc) ListRecentlyDeleted(ctx context.Context, owner string) ([]domain.SavedRecipe, error) {
	args := m.Called(ctx, owner)
	items, _ := args.Get(0).([]domain.SavedRecipe)
	return items, args.Error(1)
}

func (m *mockRecipeSvc) Recover(ctx context.Context, owner, recipeID string) error {
	return m.Called(ctx, owner, recipeID).Error(0)
}

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) Register(ctx context.Context, req domain.RegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockAccountSvc) VerifyEmail(ctx context.Context, token string) (*domain.Account, error) {
	args := m.Called(ctx, token)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) ResendVerification(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAccountSvc) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockAccountSvc) MaskedEmail(ctx context.Context, username string) (string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) MessageEnvelope {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

// withParams attaches chi URL params and an authenticated subject to r.
func withParams(r *http.Request, subject string, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if subject != "" {
		ctx = middleware.WithSubject(ctx, subject)
	}
	return r.WithContext(ctx)
}

// --- error mapping ---

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
		{domain.ErrConflict, http.StatusConflict, "conflict"},
		{domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrUnverified, http.StatusForbidden, "unverified"},
		{domain.ErrExpired, http.StatusGone, "expired"},
		{domain.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{domain.ErrAlreadyVerified, http.StatusConflict, "already_verified"},
		{domain.ErrIntegrity, http.StatusInternalServerError, "integrity_error"},
		{domain.ErrUpstream, http.StatusBadGateway, "upstream_error"},
		{domain.ErrDispatch, http.StatusBadGateway, "dispatch_error"},
		{domain.ErrPersistence, http.StatusServiceUnavailable, "persistence_error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			status, code := statusFor(fmt.Errorf("op: %w", tc.err))
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestWriteServiceError_HidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	writeServiceError(rr, req, errors.New("dial tcp 10.0.0.1: refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "internal server error", env.Error)
	assert.Equal(t, "internal_error", env.Code)
}

func TestWriteServiceError_HidesDetailForEveryServerFault(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{fmt.Errorf("put item: %w: %w", domain.ErrPersistence, errors.New("ResourceNotFoundException: table herbal-users-prod")), http.StatusServiceUnavailable, "service unavailable"},
		{fmt.Errorf("extract: %w: %w", domain.ErrUpstream, errors.New("googleapi: key AIza-secret rejected")), http.StatusBadGateway, "bad gateway"},
		{fmt.Errorf("send: %w: %w", domain.ErrDispatch, errors.New("smtp 10.0.0.7:587 refused")), http.StatusBadGateway, "bad gateway"},
		{fmt.Errorf("catalog row 12: %w", domain.ErrIntegrity), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		writeServiceError(rr, httptest.NewRequest(http.MethodGet, "/x", nil), tc.err)

		assert.Equal(t, tc.code, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, tc.msg, env.Error)
		assert.NotContains(t, env.Error, "table")
	}
}

func TestWriteServiceError_ClientFaultKeepsMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, httptest.NewRequest(http.MethodGet, "/x", nil), fmt.Errorf("username taken: %w", domain.ErrConflict))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, decodeEnvelope(t, rr).Error, "username taken")
}

// --- health ---

func TestPing(t *testing.T) {
	h := NewHealthHandler()
	rr := httptest.NewRecorder()
	req := withParams(httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil), "", map[string]string{"action": "ping"})
	h.Ping(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", decodeEnvelope(t, rr).Message)
}

// --- recommendations ---

func TestRecommend_Success(t *testing.T) {
	svc := new(mockRecommendSvc)
	set := domain.RecommendationSet{"headache": {{PlantName: "Feverfew"}}}
	svc.On("Recommend", mock.Anything, "I have a headache", true).Return(set, nil)

	h := NewRecommendationHandler(svc)
	rr := httptest.NewRecorder()
	body := jsonBody(t, RecommendationRequest{MedicalConcern: "I have a headache", PreferEdible: true})
	h.Recommend(rr, httptest.NewRequest(http.MethodPost, "/v1/recommendations", body))

	assert.Equal(t, http.StatusOK, rr.Code)
	var out struct {
		Output map[string][]map[string]interface{} `json:"output"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	require.Len(t, out.Output["headache"], 1)
	svc.AssertExpectations(t)
}

func TestRecommend_EmptyOutputIsObject(t *testing.T) {
	svc := new(mockRecommendSvc)
	svc.On("Recommend", mock.Anything, "hello", false).Return(domain.RecommendationSet{}, nil)

	h := NewRecommendationHandler(svc)
	rr := httptest.NewRecorder()
	h.Recommend(rr, httptest.NewRequest(http.MethodPost, "/v1/recommendations", jsonBody(t, RecommendationRequest{MedicalConcern: "hello"})))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"output":{}}`, rr.Body.String())
}

func TestRecommend_UpstreamFailure(t *testing.T) {
	svc := new(mockRecommendSvc)
	svc.On("Recommend", mock.Anything, mock.Anything, false).
		Return(nil, fmt.Errorf("extract symptoms: %w", domain.ErrUpstream))

	h := NewRecommendationHandler(svc)
	rr := httptest.NewRecorder()
	h.Recommend(rr, httptest.NewRequest(http.MethodPost, "/v1/recommendations", jsonBody(t, RecommendationRequest{MedicalConcern: "cough"})))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "upstream_error", decodeEnvelope(t, rr).Code)
}

func TestRecommend_BadBody(t *testing.T) {
	h := NewRecommendationHandler(new(mockRecommendSvc))
	rr := httptest.NewRecorder()
	h.Recommend(rr, httptest.NewRequest(http.MethodPost, "/v1/recommendations", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_body", decodeEnvelope(t, rr).Code)
}

// --- recipes ---

func TestGenerate_Success(t *testing.T) {
	svc := new(mockRecipeSvc)
	plant := domain.PlantRef{PlantName: "Mint", ScientificName: "Mentha"}
	svc.On("Generate", mock.Anything, plant).
		Return(&domain.Recipe{Name: "Mint tea", Ingredients: []string{"mint"}, Instructions: "steep"}, nil)

	h := NewRecipeHandler(svc)
	rr := httptest.NewRecorder()
	h.Generate(rr, httptest.NewRequest(http.MethodPost, "/v1/recipes/generate", jsonBody(t, plant)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"output":{"recipeName":"Mint tea","ingredients":["mint"],"instructions":"steep"}}`, rr.Body.String())
}

func TestSave_RequiresSubject(t *testing.T) {
	h := NewRecipeHandler(new(mockRecipeSvc))
	rr := httptest.NewRecorder()
	h.Save(rr, httptest.NewRequest(http.MethodPost, "/v1/saved-recipes", jsonBody(t, domain.SaveRecipeRequest{Symptom: "cough"})))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSave_Success(t *testing.T) {
	svc := new(mockRecipeSvc)
	req := domain.SaveRecipeRequest{Symptom: "cough", Recipe: domain.Recipe{Name: "Thyme syrup", Ingredients: []string{"thyme"}}}
	svc.On("Save", mock.Anything, "alice", req).
		Return(&domain.SavedRecipe{RecipeID: "r1", Owner: "alice", Symptom: "cough", Recipe: req.Recipe, CreatedAt: time.Unix(0, 0).UTC()}, nil)

	h := NewRecipeHandler(svc)
	rr := httptest.NewRecorder()
	h.Save(rr, withParams(httptest.NewRequest(http.MethodPost, "/v1/saved-recipes", jsonBody(t, req)), "alice", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "owner")
	assert.Contains(t, rr.Body.String(), `"id":"r1"`)
	svc.AssertExpectations(t)
}

func TestList_EmptyIsArray(t *testing.T) {
	svc := new(mockRecipeSvc)
	svc.On("List", mock.Anything, "alice").Return(nil, nil)

	h := NewRecipeHandler(svc)
	rr := httptest.NewRecorder()
	h.List(rr, withParams(httptest.NewRequest(http.MethodGet, "/v1/saved-recipes", nil), "alice", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"output":[]}`, rr.Body.String())
}

func TestDelete_NotFound(t *testing.T) {
	svc := new(mockRecipeSvc)
	svc.On("SoftDelete", mock.Anything, "alice", "r9").Return(fmt.Errorf("delete recipe: %w", domain.ErrNotFound))

	h := NewRecipeHandler(svc)
	rr := httptest.NewRecorder()
	h.Delete(rr, withParams(httptest.NewRequest(http.MethodDelete, "/v1/saved-recipes/r9", nil), "alice", map[string]string{"id": "r9"}))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decodeEnvelope(t, rr).Code)
}

func TestRecover_Success(t *testing.T) {
	svc := new(mockRecipeSvc)
	svc.On("Recover", mock.Anything, "alice", "r1").Return(nil)

	h := NewRecipeHandler(svc)
	rr := httptest.NewRecorder()
	h.Recover(rr, withParams(httptest.NewRequest(http.MethodPost, "/v1/saved-recipes/r1/recover", nil), "alice", map[string]string{"id": "r1"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestListDeleted_PersistenceFailure(t *testing.T) {
	svc := new(mockRecipeSvc)
	svc.On("ListRecentlyDeleted", mock.Anything, "alice").Return(nil, fmt.Errorf("query: %w", domain.ErrPersistence))

	h := NewRecipeHandler(svc)
	rr := httptest.NewRecorder()
	h.ListDeleted(rr, withParams(httptest.NewRequest(http.MethodGet, "/v1/saved-recipes/deleted", nil), "alice", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

// --- accounts ---

func TestRegister_Created(t *testing.T) {
	svc := new(mockAccountSvc)
	req := domain.RegisterRequest{Email: "alice@example.com", Username: "alice", Password: "secret1"}
	svc.On("Register", mock.Anything, req).Return(nil)

	h := NewAccountHandler(svc)
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/v1/accounts/register", jsonBody(t, req)))

	assert.Equal(t, http.StatusCreated, rr.Code)
	svc.AssertExpectations(t)
}

func TestRegister_Conflict(t *testing.T) {
	svc := new(mockAccountSvc)
	svc.On("Register", mock.Anything, mock.Anything).Return(fmt.Errorf("username taken: %w", domain.ErrConflict))

	h := NewAccountHandler(svc)
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/v1/accounts/register", jsonBody(t, domain.RegisterRequest{})))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "conflict", decodeEnvelope(t, rr).Code)
}

func TestVerify_ReadsQueryToken(t *testing.T) {
	svc := new(mockAccountSvc)
	svc.On("VerifyEmail", mock.Anything, "tok123").Return(&domain.Account{Username: "alice", Verified: true}, nil)

	h := NewAccountHandler(svc)
	rr := httptest.NewRecorder()
	h.Verify(rr, httptest.NewRequest(http.MethodGet, "/v1/accounts/verify?token=tok123", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decodeEnvelope(t, rr).Message, "alice")
}

func TestVerify_Expired(t *testing.T) {
	svc := new(mockAccountSvc)
	svc.On("VerifyEmail", mock.Anything, "old").Return(nil, fmt.Errorf("verification link expired: %w", domain.ErrExpired))

	h := NewAccountHandler(svc)
	rr := httptest.NewRecorder()
	h.Verify(rr, httptest.NewRequest(http.MethodGet, "/v1/accounts/verify?token=old", nil))

	assert.Equal(t, http.StatusGone, rr.Code)
}

func TestResend_AlreadyVerified(t *testing.T) {
	svc := new(mockAccountSvc)
	svc.On("ResendVerification", mock.Anything, "alice@example.com").Return(fmt.Errorf("account: %w", domain.ErrAlreadyVerified))

	h := NewAccountHandler(svc)
	rr := httptest.NewRecorder()
	h.ResendVerification(rr, httptest.NewRequest(http.MethodPost, "/v1/accounts/resend-verification",
		jsonBody(t, domain.ResendVerificationRequest{Email: "alice@example.com"})))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "already_verified", decodeEnvelope(t, rr).Code)
}

func TestLogin_ReturnsBearerToken(t *testing.T) {
	svc := new(mockAccountSvc)
	req := domain.LoginRequest{Username: "alice", Password: "secret1"}
	svc.On("Login", mock.Anything, req).Return("signed.jwt.value", nil)

	h := NewAccountHandler(svc)
	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/accounts/login", jsonBody(t, req)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var env TokenEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, "signed.jwt.value", env.AccessToken)
	assert.Equal(t, "bearer", env.TokenType)
}

func TestLogin_Unverified(t *testing.T) {
	svc := new(mockAccountSvc)
	svc.On("Login", mock.Anything, mock.Anything).Return("", fmt.Errorf("login: %w", domain.ErrUnverified))

	h := NewAccountHandler(svc)
	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/accounts/login", jsonBody(t, domain.LoginRequest{Username: "bob", Password: "x"})))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestMaskedEmail(t *testing.T) {
	svc := new(mockAccountSvc)
	svc.On("MaskedEmail", mock.Anything, "alice").Return("a****@example.com", nil)

	h := NewAccountHandler(svc)
	rr := httptest.NewRecorder()
	h.MaskedEmail(rr, withParams(httptest.NewRequest(http.MethodGet, "/v1/accounts/alice/masked-email", nil), "", map[string]string{"username": "alice"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"username":"alice","email":"a****@example.com"}`, rr.Body.String())
}
