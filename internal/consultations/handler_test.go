package consultations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"consult-backend/internal/shared/auth"
	"consult-backend/internal/shared/server/middleware"
)

func setupConsultationRouter(t *testing.T) (*gin.Engine, *auth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewTokens("test-secret", "dev")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(tokens))
	NewHandler(newTestService(t)).RegisterRoutes(api)
	return router, tokens
}

func doJSON(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func bearer(t *testing.T, tokens *auth.Tokens, subject string) map[string]string {
	t.Helper()
	token, err := tokens.Sign(auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

var guest = map[string]string{"X-Guest-Id": "test-guest"}

const acneScarBody = `{"skinConcerns":[{"id":"acne_scar","tier":1}],"budgetRangeId":"unlimited"}`

func TestPreviewReturnsRecommendations(t *testing.T) {
	router, _ := setupConsultationRouter(t)

	resp := doJSON(router, http.MethodPost, "/api/v1/recommendations/preview", acneScarBody, guest)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Header().Get("X-Cache") != CacheMiss {
		t.Fatalf("expected cache miss header, got %q", resp.Header().Get("X-Cache"))
	}
	var out struct {
		Recommendations []struct {
			Key string `json:"key"`
		} `json:"recommendations"`
		TotalPriceKRW int64 `json:"totalPriceKRW"`
		TotalPriceUSD int64 `json:"totalPriceUSD"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Recommendations) != 1 || out.Recommendations[0].Key != "pico_laser" {
		t.Fatalf("unexpected recommendations %+v", out.Recommendations)
	}
	if out.TotalPriceKRW != 300000 || out.TotalPriceUSD != 225 {
		t.Fatalf("unexpected totals %d / %d", out.TotalPriceKRW, out.TotalPriceUSD)
	}

	again := doJSON(router, http.MethodPost, "/api/v1/recommendations/preview", acneScarBody, guest)
	if again.Header().Get("X-Cache") != CacheHit {
		t.Fatalf("expected cache hit header, got %q", again.Header().Get("X-Cache"))
	}
}

func TestPreviewValidation(t *testing.T) {
	router, _ := setupConsultationRouter(t)

	cases := []struct {
		name string
		body string
		rule string
	}{
		{name: "missing_budget", body: `{"skinConcerns":[{"id":"acne_scar","tier":1}]}`, rule: "required"},
		{name: "bad_tier", body: `{"skinConcerns":[{"id":"acne_scar","tier":9}],"budgetRangeId":"unlimited"}`, rule: "max"},
		{name: "concern_without_id", body: `{"skinConcerns":[{"tier":1}],"budgetRangeId":"unlimited"}`, rule: "required"},
		{name: "malformed", body: `{"budgetRangeId":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(router, http.MethodPost, "/api/v1/recommendations/preview", tc.body, guest)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
			}
			if !strings.Contains(resp.Body.String(), `"code":"invalid_request"`) {
				t.Fatalf("expected invalid_request code, got %s", resp.Body.String())
			}
			if tc.rule != "" && !strings.Contains(resp.Body.String(), `"rule":"`+tc.rule+`"`) {
				t.Fatalf("expected rule %s in %s", tc.rule, resp.Body.String())
			}
		})
	}
}

func TestCreateThenGetConsultation(t *testing.T) {
	router, tokens := setupConsultationRouter(t)
	owner := bearer(t, tokens, "user-1")

	resp := doJSON(router, http.MethodPost, "/api/v1/consultations", acneScarBody, owner)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created Consultation
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.OwnerID != "user-1" || created.IsGuest {
		t.Fatalf("unexpected consultation %+v", created)
	}

	got := doJSON(router, http.MethodGet, "/api/v1/consultations/"+created.ID, "", owner)
	if got.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", got.Code, got.Body.String())
	}

	other := doJSON(router, http.MethodGet, "/api/v1/consultations/"+created.ID, "", bearer(t, tokens, "user-2"))
	if other.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other owner, got %d", other.Code)
	}

	list := doJSON(router, http.MethodGet, "/api/v1/consultations?limit=500", "", owner)
	if list.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", list.Code, list.Body.String())
	}
	var page struct {
		Items []map[string]any `json:"items"`
		Limit int              `json:"limit"`
	}
	if err := json.NewDecoder(list.Body).Decode(&page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0]["id"] != created.ID {
		t.Fatalf("unexpected list %+v", page.Items)
	}
	if page.Limit != maxListLimit {
		t.Fatalf("expected limit clamped to %d, got %d", maxListLimit, page.Limit)
	}
}

func TestGuestConsultations(t *testing.T) {
	router, _ := setupConsultationRouter(t)

	resp := doJSON(router, http.MethodPost, "/api/v1/consultations", acneScarBody, guest)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created Consultation
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.OwnerID != "guest:test-guest" || !created.IsGuest {
		t.Fatalf("unexpected owner %q guest=%v", created.OwnerID, created.IsGuest)
	}

	list := doJSON(router, http.MethodGet, "/api/v1/consultations", "", guest)
	if list.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest history, got %d", list.Code)
	}
}
