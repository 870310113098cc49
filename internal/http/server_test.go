package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moneypaz/internal/core"
	"moneypaz/internal/log"
	"moneypaz/internal/services"
	storemem "moneypaz/internal/storage/memory"
)

var testLoc = time.FixedZone("CEST", 2*3600)

func newTestServer(t *testing.T, opts ...Option) (*Server, *services.FinanceStore) {
	t.Helper()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, testLoc)
	n := 0
	store := services.NewFinanceStore(context.Background(), storemem.New(),
		services.WithClock(func() time.Time { return now }),
		services.WithLocation(testLoc),
		services.WithLogger(log.Discard()),
		services.WithIDGenerator(func() string { n++; return fmt.Sprintf("mov-%d", n) }),
	)
	srv := NewServer(":0", store, append([]Option{WithLogger(log.Discard())}, opts...)...)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReadiness(t *testing.T) {
	srv, _ := newTestServer(t,
		WithReadinessCheck("storage", func(context.Context) error { return nil }),
	)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
	if rr := do(t, srv, http.MethodGet, "/healthz", ""); rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}

	failing, _ := newTestServer(t,
		WithReadinessCheck("broker", func(context.Context) error { return errors.New("connection refused") }),
	)
	rr := do(t, failing, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d, want 503", rr.Code)
	}
	resp := decode[readyResponse](t, rr)
	if resp.Checks["broker"] != "connection refused" {
		t.Errorf("unexpected checks %+v", resp.Checks)
	}
}

func TestCreateMovementValidationAndSuccess(t *testing.T) {
	srv, store := newTestServer(t)

	cases := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"malformed", `{"type":`, http.StatusBadRequest, ""},
		{"empty body", ``, http.StatusBadRequest, ""},
		{"bad type", `{"type":"transfer","amount":5,"category":"ocio"}`, http.StatusUnprocessableEntity, "type"},
		{"missing amount", `{"type":"expense","category":"ocio"}`, http.StatusUnprocessableEntity, "amount"},
		{"zero amount", `{"type":"expense","amount":"0","category":"ocio"}`, http.StatusUnprocessableEntity, "amount"},
		{"negative amount", `{"type":"expense","amount":-3,"category":"ocio"}`, http.StatusUnprocessableEntity, "amount"},
		{"no category", `{"type":"expense","amount":3,"category":"  "}`, http.StatusUnprocessableEntity, "category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/movements", tc.body)
			if rr.Code != tc.status {
				t.Fatalf("status=%d, want %d (%s)", rr.Code, tc.status, rr.Body.String())
			}
			if tc.field != "" {
				if got := decode[ErrorResponse](t, rr); got.Field != tc.field {
					t.Errorf("field=%q, want %q", got.Field, tc.field)
				}
			}
		})
	}
	if len(store.State().Movements) != 0 {
		t.Fatal("invalid requests must not record movements")
	}

	rr := do(t, srv, http.MethodPost, "/api/movements",
		`{"type":"expense","amount":"12,50","category":"alimentacion","concept":"Mercadona","isRecurring":false}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	m := decode[core.Movement](t, rr)
	if m.ID != "mov-1" || m.Amount.String() != "12.5" || m.Description != "Mercadona" {
		t.Errorf("unexpected movement %+v", m)
	}

	rr = do(t, srv, http.MethodPost, "/api/movements", `{"type":"income","amount":1200,"category":"nomina"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}
	if m := decode[core.Movement](t, rr); m.Description != core.ResolveCategory("nomina").Label() {
		t.Errorf("description should fall back to the category label, got %q", m.Description)
	}
	if !store.CurrentBalance().Equal(store.State().Movements[0].Amount.Sub(store.State().Movements[1].Amount)) {
		t.Errorf("unexpected balance %s", store.CurrentBalance())
	}
}

func TestListAndDeleteMovements(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/movements", `{"type":"expense","amount":4,"category":"ocio"}`)

	rr := do(t, srv, http.MethodGet, "/api/movements?period=month", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	if got := decode[movementsResponse](t, rr); got.Period != services.PeriodMonth || len(got.Movements) != 1 {
		t.Fatalf("unexpected listing %+v", got)
	}
	if rr := do(t, srv, http.MethodGet, "/api/movements?period=week", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown period status=%d, want 400", rr.Code)
	}

	for _, id := range []string{"missing", "mov-1"} {
		if rr := do(t, srv, http.MethodDelete, "/api/movements/"+id, ""); rr.Code != http.StatusNoContent {
			t.Fatalf("delete %s status=%d", id, rr.Code)
		}
	}
	rr = do(t, srv, http.MethodGet, "/api/movements", "")
	if got := decode[movementsResponse](t, rr); got.Period != services.PeriodAll || len(got.Movements) != 0 {
		t.Fatalf("movement not deleted: %+v", got)
	}
}

func TestSummaryFollowsMutations(t *testing.T) {
	srv, _ := newTestServer(t)

	first := decode[core.Summary](t, do(t, srv, http.MethodGet, "/api/summary", ""))
	if !first.NeedsSetup || first.Revision != 0 {
		t.Fatalf("unexpected initial summary %+v", first)
	}
	// Served from cache.
	do(t, srv, http.MethodGet, "/api/summary", "")
	if hits, _ := srv.summaryCache.Stats(); hits != 1 {
		t.Errorf("cache hits=%d, want 1", hits)
	}

	if rr := do(t, srv, http.MethodPut, "/api/balance", `{"amount":"-20,5"}`); rr.Code != http.StatusOK {
		t.Fatalf("balance status=%d body=%s", rr.Code, rr.Body.String())
	}
	do(t, srv, http.MethodPost, "/api/movements", `{"type":"expense","amount":60,"category":"ocio"}`)

	sum := decode[core.Summary](t, do(t, srv, http.MethodGet, "/api/summary", ""))
	if sum.Revision != 2 || sum.NeedsSetup {
		t.Fatalf("stale summary %+v", sum)
	}
	if sum.InitialBalance.String() != "-20.5" || sum.CurrentBalance.String() != "-80.5" {
		t.Errorf("balances initial=%s current=%s", sum.InitialBalance, sum.CurrentBalance)
	}
	if !sum.TodayStatus.HasBigExpense {
		t.Error("expected big expense today")
	}

	if rr := do(t, srv, http.MethodPut, "/api/balance", `{"amount":"abc"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad balance status=%d", rr.Code)
	}
}

func TestSummaryWithoutCache(t *testing.T) {
	srv, _ := newTestServer(t, WithSummaryCacheTTL(0))
	if srv.summaryCache != nil {
		t.Fatal("cache should be disabled")
	}
	do(t, srv, http.MethodPost, "/api/movements", `{"type":"expense","amount":1,"category":"ocio"}`)
	if sum := decode[core.Summary](t, do(t, srv, http.MethodGet, "/api/summary", "")); sum.Revision != 1 {
		t.Errorf("revision=%d, want 1", sum.Revision)
	}
}

func TestUserAndReset(t *testing.T) {
	srv, store := newTestServer(t)
	if rr := do(t, srv, http.MethodPut, "/api/user", `{"name":"  Lucía\n"}`); rr.Code != http.StatusOK {
		t.Fatalf("user status=%d", rr.Code)
	}
	if got := store.State().UserName; got != "Lucía" {
		t.Errorf("user name=%q", got)
	}
	do(t, srv, http.MethodPost, "/api/movements", `{"type":"expense","amount":1,"category":"ocio"}`)

	if rr := do(t, srv, http.MethodPost, "/api/reset", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("reset status=%d", rr.Code)
	}
	st := decode[stateResponse](t, do(t, srv, http.MethodGet, "/api/state", ""))
	if st.State.UserName != "" || len(st.State.Movements) != 0 || st.Revision != 3 {
		t.Errorf("state not reset: %+v", st)
	}
}

func TestCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":" Clases ","type":"income"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[categoryResponse](t, rr); got.ID != "ingreso_clases" || got.Label != "Clases" {
		t.Errorf("unexpected category %+v", got)
	}
	if rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":"   "}`); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank name status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":"x","type":"gift"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad type status=%d", rr.Code)
	}

	list := decode[categoriesResponse](t, do(t, srv, http.MethodGet, "/api/categories?type=income", ""))
	last := list.Categories[len(list.Categories)-1]
	if list.Type != core.Income || last.Category.ID != "ingreso_clases" {
		t.Errorf("custom income category not listed: %+v", list)
	}

	search := decode[categoriesResponse](t, do(t, srv, http.MethodGet, "/api/categories?q=mascotas", ""))
	if len(search.Categories) != 0 || !search.CanCreate {
		t.Errorf("unexpected search %+v", search)
	}
	if rr := do(t, srv, http.MethodGet, "/api/categories?type=gift", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad type status=%d", rr.Code)
	}

	do(t, srv, http.MethodPost, "/api/movements", `{"type":"income","amount":30,"category":"ingreso_clases"}`)
	quick := decode[categoriesResponse](t, do(t, srv, http.MethodGet, "/api/categories/quick?type=income", ""))
	if len(quick.Categories) != 1 || quick.Categories[0].Label != "Clases" {
		t.Errorf("unexpected quick picks %+v", quick)
	}
}

func TestConceptsAndRecurringCompare(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/movements",
		`{"type":"expense","amount":"12.99","category":"suscripciones","concept":"Netflix","isRecurring":true}`)

	got := decode[map[string][]string](t, do(t, srv, http.MethodGet, "/api/concepts?q=netf&limit=2", ""))
	if len(got["concepts"]) != 1 || got["concepts"][0] != "netflix" {
		t.Errorf("unexpected concepts %v", got)
	}
	if rr := do(t, srv, http.MethodGet, "/api/concepts?limit=-1", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit status=%d", rr.Code)
	}

	cmp := decode[core.RecurringComparison](t,
		do(t, srv, http.MethodGet, "/api/recurring/compare?amount=15.99&concept=Netflix&category=suscripciones", ""))
	if cmp.Type != core.AlertIncreased || cmp.Difference == nil || cmp.Difference.String() != "3" {
		t.Errorf("unexpected comparison %+v", cmp)
	}
	if rr := do(t, srv, http.MethodGet, "/api/recurring/compare?concept=Netflix", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing amount status=%d", rr.Code)
	}
}

func TestRelativeDate(t *testing.T) {
	srv, _ := newTestServer(t)
	yesterday := core.FormatMovementDate(time.Date(2026, 10, 17, 9, 0, 0, 0, testLoc))
	got := decode[map[string]string](t, do(t, srv, http.MethodGet, "/api/relative-date?date="+yesterday, ""))
	if got["label"] != "Ayer" {
		t.Errorf("label=%q, want Ayer", got["label"])
	}
	if rr := do(t, srv, http.MethodGet, "/api/relative-date?date=ayer", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad date status=%d", rr.Code)
	}
}

func TestExports(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodPost, "/api/movements", `{"type":"expense","amount":4,"category":"ocio","concept":"Cine"}`)

	rr := do(t, srv, http.MethodGet, "/export.csv", "")
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("csv status=%d type=%q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, services.CSVFileName(srv.store.Now())) {
		t.Errorf("unexpected disposition %q", cd)
	}
	if !strings.Contains(rr.Body.String(), "Cine") {
		t.Errorf("csv missing movement: %s", rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/export.json", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("json status=%d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, services.BackupFileName(srv.store.Now())) {
		t.Errorf("unexpected disposition %q", cd)
	}
	if !json.Valid(rr.Body.Bytes()) {
		t.Error("backup is not valid JSON")
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, WithRateLimit(2))
	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPut, "/api/user", `{"name":"Ana"}`); rr.Code != http.StatusOK {
			t.Fatalf("request %d status=%d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodPut, "/api/user", `{"name":"Ana"}`)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("status=%d retry-after=%q", rr.Code, rr.Header().Get("Retry-After"))
	}
	// Reads are never limited.
	if rr := do(t, srv, http.MethodGet, "/api/state", ""); rr.Code != http.StatusOK {
		t.Errorf("read status=%d", rr.Code)
	}
}

func TestSecurityHeadersAndMethods(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/api/state", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("missing nosniff header: %v", rr.Header())
	}
	if rr := do(t, srv, "TRACE", "/api/state", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("TRACE status=%d, want 405", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/metrics", ""); rr.Code != http.StatusOK {
		t.Errorf("metrics status=%d", rr.Code)
	}
}

func TestPrometheusMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodGet, "/healthz", "")
	do(t, srv, http.MethodPost, "/api/movements", `{"type":"expense","amount":2,"category":"ocio"}`)

	rr := do(t, srv, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`moneypaz_http_requests_total{code="200",method="GET",route="GET /healthz"} 1`,
		`moneypaz_http_requests_total{code="201",method="POST",route="POST /api/movements"} 1`,
		"moneypaz_state_revision 1",
		"moneypaz_movements 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
