package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dsa-tracker/internal/problems"

	"github.com/gin-gonic/gin"
)

type fakeProblems struct {
	err error
}

func (f fakeProblems) List(ctx context.Context) ([]problems.Problem, error) { return nil, f.err }
func (f fakeProblems) Create(ctx context.Context, req problems.CreateProblemRequest) (problems.Problem, error) {
	return problems.Problem{}, f.err
}
func (f fakeProblems) Get(ctx context.Context, id int) (problems.Problem, error) {
	return problems.Problem{}, f.err
}
func (f fakeProblems) Delete(ctx context.Context, id int) error { return f.err }

func newTestRouter(h Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	r.GET("/problems", h.ListProblems)
	r.POST("/problems", h.CreateProblem)
	r.GET("/problems/:problem_id", h.GetProblem)
	r.DELETE("/problems/:problem_id", h.DeleteProblem)
	return r
}

func memoryHandlers() Handlers {
	return Handlers{Problems: problems.NewService(problems.NewMemoryRepo(), nil)}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type detailList struct {
	Detail []problems.FieldError `json:"detail"`
}

func TestRoot(t *testing.T) {
	w := do(newTestRouter(memoryHandlers()), http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["message"] != WelcomeMessage {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestCreateProblem_Returns201WithID(t *testing.T) {
	r := newTestRouter(memoryHandlers())
	w := do(r, http.MethodPost, "/problems", `{"name":"X","url":"https://example.com","difficulty":"Easy","status":"To Do"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var p problems.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != 4 || p.URL != "https://example.com" {
		t.Fatalf("unexpected problem: %+v", p)
	}
}

func TestCreateProblem_InvalidURLIs422(t *testing.T) {
	r := newTestRouter(memoryHandlers())
	w := do(r, http.MethodPost, "/problems", `{"name":"X","url":"not-a-url","difficulty":"Easy","status":"To Do"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var body detailList
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Detail) != 1 || body.Detail[0].Loc[1] != "url" {
		t.Fatalf("expected url field error, got %s", w.Body.String())
	}

	list := do(r, http.MethodGet, "/problems", "")
	var all []problems.Problem
	_ = json.Unmarshal(list.Body.Bytes(), &all)
	if len(all) != 3 {
		t.Fatalf("expected collection unchanged, got %d", len(all))
	}
}

func TestCreateProblem_WrongTypeIs422(t *testing.T) {
	r := newTestRouter(memoryHandlers())
	w := do(r, http.MethodPost, "/problems", `{"name":42,"url":"https://example.com","difficulty":"Easy","status":"To Do"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var body detailList
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Detail) != 1 || len(body.Detail[0].Loc) != 2 || body.Detail[0].Loc[1] != "name" {
		t.Fatalf("expected name type error, got %s", w.Body.String())
	}
}

func TestCreateProblem_MalformedOrEmptyBodyIs422(t *testing.T) {
	r := newTestRouter(memoryHandlers())
	for _, body := range []string{
		"",
		"{",
		"[]",
		"{}",
		`{"name":"X","url":"https://example.com","difficulty":"Easy","status":"To Do"} garbage`,
		`{"name":"X","url":"https://example.com","difficulty":"Easy","status":"To Do"}{}`,
	} {
		w := do(r, http.MethodPost, "/problems", body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %q: expected 422, got %d", body, w.Code)
		}
	}

	list := do(r, http.MethodGet, "/problems", "")
	var all []problems.Problem
	_ = json.Unmarshal(list.Body.Bytes(), &all)
	if len(all) != 3 {
		t.Fatalf("expected collection unchanged, got %d", len(all))
	}
}

func TestCreateProblem_TrailingDataIsDecodeError(t *testing.T) {
	r := newTestRouter(memoryHandlers())
	w := do(r, http.MethodPost, "/problems", `{"name":"X","url":"https://example.com","difficulty":"Easy","status":"To Do"} garbage`)
	var body detailList
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Detail) != 1 || body.Detail[0].Type != "value_error.jsondecode" {
		t.Fatalf("expected jsondecode error, got %s", w.Body.String())
	}
}

func TestCreateProblem_MissingFieldsAre422(t *testing.T) {
	r := newTestRouter(memoryHandlers())
	w := do(r, http.MethodPost, "/problems", `{"name":"X","url":"https://example.com"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var body detailList
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	got := map[string]string{}
	for _, fe := range body.Detail {
		got[strings.Join(fe.Loc, ".")] = fe.Type
	}
	if len(got) != 2 || got["body.difficulty"] != "value_error.missing" || got["body.status"] != "value_error.missing" {
		t.Fatalf("expected difficulty and status missing, got %s", w.Body.String())
	}
}

func TestCreateProblem_EmptyDifficultyAndStatusAccepted(t *testing.T) {
	r := newTestRouter(memoryHandlers())
	w := do(r, http.MethodPost, "/problems", `{"name":"X","url":"https://example.com","difficulty":"","status":""}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var p problems.Problem
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if p.ID != 4 || p.Difficulty != "" || p.Status != "" {
		t.Fatalf("unexpected problem: %+v", p)
	}
}

func TestCreateProblem_URLRules(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		code    int
		wantURL string
	}{
		{name: "surrounding whitespace trimmed", url: "  https://example.com/a  ", code: http.StatusCreated, wantURL: "https://example.com/a"},
		{name: "space inside", url: "https://exa mple.com", code: http.StatusUnprocessableEntity},
		{name: "ftp scheme", url: "ftp://example.com/file", code: http.StatusUnprocessableEntity},
		{name: "mailto", url: "mailto:someone@example.com", code: http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(memoryHandlers())
			payload, _ := json.Marshal(map[string]string{
				"name": "X", "url": tc.url, "difficulty": "Easy", "status": "To Do",
			})
			w := do(r, http.MethodPost, "/problems", string(payload))
			if w.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, w.Code, w.Body.String())
			}
			if tc.code != http.StatusCreated {
				return
			}
			var p problems.Problem
			_ = json.Unmarshal(w.Body.Bytes(), &p)
			if p.URL != tc.wantURL {
				t.Fatalf("expected stored url %q, got %q", tc.wantURL, p.URL)
			}
			got := do(r, http.MethodGet, "/problems/4", "")
			_ = json.Unmarshal(got.Body.Bytes(), &p)
			if p.URL != tc.wantURL {
				t.Fatalf("expected fetched url %q, got %q", tc.wantURL, p.URL)
			}
		})
	}
}

func TestGetProblem(t *testing.T) {
	r := newTestRouter(memoryHandlers())

	w := do(r, http.MethodGet, "/problems/2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var p problems.Problem
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if p.ID != 2 || p.Name != "Add Two Numbers" {
		t.Fatalf("unexpected problem: %+v", p)
	}

	w = do(r, http.MethodGet, "/problems/9999", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"Problem not found"`) {
		t.Fatalf("unexpected 404 body: %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/problems/abc", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for non-integer id, got %d", w.Code)
	}
}

func TestDeleteProblem(t *testing.T) {
	r := newTestRouter(memoryHandlers())

	w := do(r, http.MethodDelete, "/problems/1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", w.Body.String())
	}
	w = do(r, http.MethodDelete, "/problems/1", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeated delete, got %d", w.Code)
	}
}

func TestBackendFailureIs500(t *testing.T) {
	r := newTestRouter(Handlers{Problems: fakeProblems{err: errors.New("connection refused")}})
	w := do(r, http.MethodGet, "/problems", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("internal error leaked to client: %s", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(memoryHandlers())
	if w := do(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	h := memoryHandlers()
	h.Health = func(ctx context.Context) error { return errors.New("down") }
	if w := do(newTestRouter(h), http.MethodGet, "/healthz", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
