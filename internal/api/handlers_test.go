package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/cache"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/llm"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/pipeline"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const validClaimJSON = `{
	"claim_id": "CLM-2024-001",
	"type": "auto_collision",
	"date": "2024-01-15",
	"amount": 2500,
	"description": "Minor fender bender in parking lot at low speed.",
	"customer_id": "CUST-123",
	"policy_number": "POL-789-ACTIVE",
	"incident_location": "123 Main St, Springfield",
	"timestamp_submitted": "2024-01-15T10:45:00"
}`

func newTestRouter(t *testing.T) (*gin.Engine, *llm.MockProvider, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := st.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	provider := llm.NewMockProvider()
	processor := pipeline.NewProcessor(provider, st, nil)
	handler := NewHandler(processor, st, cache.NewMemoryCache(time.Minute, time.Minute), 15*time.Second, nil)
	return NewRouter(handler), provider, st
}

// closeNotifyRecorder adds the http.CloseNotifier method gin's Stream
// requires, which httptest.ResponseRecorder does not implement.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(&closeNotifyRecorder{w, make(chan bool, 1)}, req)
	return w
}

func TestProcessClaim_Success(t *testing.T) {
	router, provider, st := newTestRouter(t)

	provider.RiskResult = &model.RiskAssessment{
		FraudIndicators: []string{"late policy activation"},
		RiskScore:       8,
		RiskCategory:    model.RiskHigh,
		ProcessingScore: 6,
	}
	provider.RouteResult = &model.RoutingDecision{
		Priority:     model.PriorityUrgent,
		AdjusterTier: model.TierFraudSpecialist,
	}

	w := doRequest(router, http.MethodPost, "/claims/process", validClaimJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string      `json:"message"`
		Claim   model.Claim `json:"claim"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Message != "Claim processed successfully" {
		t.Errorf("Unexpected message: %q", resp.Message)
	}
	if resp.Claim.ClaimID != "CLM-2024-001" {
		t.Errorf("Expected claim echoed back, got %q", resp.Claim.ClaimID)
	}

	// Round-trip through the query surface
	w = doRequest(router, http.MethodGet, "/claims/processed/CLM-2024-001", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from lookup, got %d: %s", w.Code, w.Body.String())
	}
	var got model.ClaimAssessment
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode assessment: %v", err)
	}
	if got.Risk.RiskCategory != model.RiskHigh || got.Routing.Priority != model.PriorityUrgent {
		t.Errorf("Persisted assessment mismatch: %+v", got)
	}

	// Verify both rows landed in the store as well
	if _, err := st.GetAssessmentByClaimID(context.Background(), "CLM-2024-001"); err != nil {
		t.Errorf("Expected assessment visible in store: %v", err)
	}
}

func TestProcessClaim_ValidationError(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body := strings.Replace(validClaimJSON, "Minor fender bender in parking lot at low speed.", "short", 1)
	w := doRequest(router, http.MethodPost, "/claims/process", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "at least 30 characters") {
		t.Errorf("Expected description error detail, got %s", w.Body.String())
	}
}

func TestProcessClaim_Duplicate(t *testing.T) {
	router, _, _ := newTestRouter(t)

	if w := doRequest(router, http.MethodPost, "/claims/process", validClaimJSON); w.Code != http.StatusOK {
		t.Fatalf("First submission failed: %d %s", w.Code, w.Body.String())
	}

	w := doRequest(router, http.MethodPost, "/claims/process", validClaimJSON)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for duplicate claim id, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProcessClaim_UpstreamFailure(t *testing.T) {
	router, provider, _ := newTestRouter(t)
	provider.RiskErr = &llm.DecisionError{Kind: llm.KindUpstreamUnavailable, Op: "assess_risk", Err: errTimeout{}}

	w := doRequest(router, http.MethodPost, "/claims/process", validClaimJSON)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetAssessment_NotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/claims/processed/CLM-UNKNOWN", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListAssessments_BadPageParams(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, path := range []string{
		"/claims/assessments?page_no=0",
		"/claims/assessments?page_size=0",
		"/claims/assessments?page_no=abc",
	} {
		w := doRequest(router, http.MethodGet, path, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestListAssessments_EmptyPage(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/claims/assessments?page_no=3&page_size=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var page model.AssessmentPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("Failed to decode page: %v", err)
	}
	if page.PageNo != 3 || len(page.Data) != 0 {
		t.Errorf("Expected empty page 3, got %+v", page)
	}
}

func TestDashboard_OK(t *testing.T) {
	router, _, _ := newTestRouter(t)

	if w := doRequest(router, http.MethodPost, "/claims/process", validClaimJSON); w.Code != http.StatusOK {
		t.Fatalf("Submission failed: %d", w.Code)
	}

	w := doRequest(router, http.MethodGet, "/claims/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var dash model.Dashboard
	if err := json.Unmarshal(w.Body.Bytes(), &dash); err != nil {
		t.Fatalf("Failed to decode dashboard: %v", err)
	}
	if dash.TotalClaims != 1 {
		t.Errorf("Expected 1 claim, got %d", dash.TotalClaims)
	}

	// Second call is served from cache and must agree
	w2 := doRequest(router, http.MethodGet, "/claims/dashboard", "")
	if w2.Code != http.StatusOK {
		t.Fatalf("Expected 200 from cached dashboard, got %d", w2.Code)
	}
}

func TestProcessClaimLive_StreamsEvents(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/claims/process-claim-live", validClaimJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("Expected event-stream content type, got %q", ct)
	}

	body := w.Body.String()
	for _, stage := range []string{model.StageValidation, model.StageRisk, model.StageRouting, model.StagePersistence, model.StageCompleted} {
		if !strings.Contains(body, stage) {
			t.Errorf("Expected stage %q in stream, got:\n%s", stage, body)
		}
	}
}

func TestProcessClaimLive_ErrorEventEndsStream(t *testing.T) {
	router, provider, _ := newTestRouter(t)
	provider.RiskErr = &llm.DecisionError{Kind: llm.KindUpstreamUnavailable, Op: "assess_risk", Err: errTimeout{}}

	w := doRequest(router, http.MethodPost, "/claims/process-claim-live", validClaimJSON)
	if w.Code != http.StatusOK {
		t.Fatalf("Streaming surface reports errors in-band, got status %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, model.StageError) {
		t.Errorf("Expected error event in stream, got:\n%s", body)
	}
	if strings.Contains(body, model.StageCompleted) {
		t.Errorf("Stream must not complete after an error, got:\n%s", body)
	}
}

// errTimeout is a minimal error for scripting upstream failures
type errTimeout struct{}

func (errTimeout) Error() string { return "upstream timeout" }
