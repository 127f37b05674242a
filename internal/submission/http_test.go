package submission_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contact-service/internal/metrics"
	"contact-service/internal/middleware"
	"contact-service/internal/submission"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAnonKey    = "test-anon-key"
	testServiceKey = "test-service-role-key"
)

// setupRouter mirrors the app wiring: CORS, custom 405, anon key on the
// intake route, service role key on /admin.
func setupRouter(repo *fakeRepo) chi.Router {
	service := submission.NewService(repo, nil, metrics.NewMock(), testLogger())
	handler := submission.NewHandler(service, testLogger(), metrics.NewMock())

	router := chi.NewRouter()
	router.Use(middleware.CORS(nil))
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"Method not allowed"}`))
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireBearerKey(testAnonKey, testLogger()))
		handler.RegisterPublicRoutes(r)
	})
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireBearerKey(testServiceKey, testLogger()))
		handler.RegisterAdminRoutes(r)
	})

	return router
}

func postContactForm(t *testing.T, router chi.Router, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/contact-form", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testAnonKey)
	req.Header.Set("User-Agent", "go-test-agent")
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func adminRequest(t *testing.T, router chi.Router, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testServiceKey)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIntake_Submit(t *testing.T) {
	t.Run("valid submission", func(t *testing.T) {
		repo := &fakeRepo{}
		router := setupRouter(repo)

		w := postContactForm(t, router, map[string]interface{}{
			"name":    "Ada",
			"email":   "Ada@Example.com",
			"message": "Hello",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp submission.SubmitResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Message)
		assert.NotEmpty(t, resp.SubmissionID)

		require.Len(t, repo.subs, 1)
		stored := repo.subs[0]
		assert.Equal(t, "Ada", stored.Name)
		assert.Equal(t, "ada@example.com", stored.Email)
		assert.Equal(t, submission.StatusNew, stored.Status)
		assert.Equal(t, "198.51.100.4", stored.IPAddress)
		assert.Equal(t, "go-test-agent", stored.UserAgent)
	})

	t.Run("missing name", func(t *testing.T) {
		repo := &fakeRepo{}
		router := setupRouter(repo)

		w := postContactForm(t, router, map[string]interface{}{
			"name":    "",
			"email":   "x@x.com",
			"message": "hi",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Missing required fields", resp["error"])
		assert.Empty(t, repo.subs, "zero rows created")
	})

	t.Run("whitespace-only name passes struct validation but is rejected", func(t *testing.T) {
		repo := &fakeRepo{}
		router := setupRouter(repo)

		w := postContactForm(t, router, map[string]interface{}{
			"name":    "   ",
			"email":   "x@x.com",
			"message": "hi",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Missing required fields", resp["error"])
		assert.Empty(t, repo.subs)
	})

	t.Run("invalid email", func(t *testing.T) {
		repo := &fakeRepo{}
		router := setupRouter(repo)

		w := postContactForm(t, router, map[string]interface{}{
			"name":    "Bob",
			"email":   "not-an-email",
			"message": "hi",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Invalid email format", resp["error"])
		assert.Empty(t, repo.subs)
	})

	t.Run("malformed body", func(t *testing.T) {
		repo := &fakeRepo{}
		router := setupRouter(repo)

		req := httptest.NewRequest(http.MethodPost, "/contact-form", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Authorization", "Bearer "+testAnonKey)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("persist failure returns 500", func(t *testing.T) {
		repo := &fakeRepo{insertErr: assert.AnError}
		router := setupRouter(repo)

		w := postContactForm(t, router, map[string]interface{}{
			"name":    "Ada",
			"email":   "ada@example.com",
			"message": "Hello",
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Failed to save submission", resp["error"])
	})

	t.Run("wrong method yields 405 body", func(t *testing.T) {
		router := setupRouter(&fakeRepo{})

		req := httptest.NewRequest(http.MethodGet, "/contact-form", nil)
		req.Header.Set("Authorization", "Bearer "+testAnonKey)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Method not allowed", resp["error"])
	})

	t.Run("preflight returns 204 with CORS headers", func(t *testing.T) {
		router := setupRouter(&fakeRepo{})

		req := httptest.NewRequest(http.MethodOptions, "/contact-form", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("missing bearer key", func(t *testing.T) {
		router := setupRouter(&fakeRepo{})

		body, _ := json.Marshal(map[string]string{"name": "Ada", "email": "a@b.cd", "message": "hi"})
		req := httptest.NewRequest(http.MethodPost, "/contact-form", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong bearer key", func(t *testing.T) {
		router := setupRouter(&fakeRepo{})

		body, _ := json.Marshal(map[string]string{"name": "Ada", "email": "a@b.cd", "message": "hi"})
		req := httptest.NewRequest(http.MethodPost, "/contact-form", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdmin_ListSubmissions(t *testing.T) {
	repo := &fakeRepo{}
	router := setupRouter(repo)

	base := time.Now().UTC().Add(-time.Hour)
	for i, name := range []string{"first", "second", "third"} {
		repo.subs = append(repo.subs, submission.Submission{
			ID:        name,
			Name:      name,
			Email:     name + "@example.com",
			Message:   "hi",
			Status:    submission.StatusNew,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	w := adminRequest(t, router, http.MethodGet, "/admin/submissions", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var subs []submission.Submission
	require.NoError(t, json.NewDecoder(w.Body).Decode(&subs))
	require.Len(t, subs, 3)

	// Most recent first: t3, t2, t1.
	assert.Equal(t, "third", subs[0].ID)
	assert.Equal(t, "second", subs[1].ID)
	assert.Equal(t, "first", subs[2].ID)

	t.Run("empty list is an empty array", func(t *testing.T) {
		router := setupRouter(&fakeRepo{})

		w := adminRequest(t, router, http.MethodGet, "/admin/submissions", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("requires service role key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/submissions", nil)
		req.Header.Set("Authorization", "Bearer "+testAnonKey)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdmin_UpdateStatus(t *testing.T) {
	repo := &fakeRepo{}
	router := setupRouter(repo)

	w := postContactForm(t, router, map[string]interface{}{
		"name": "Ada", "email": "ada@example.com", "message": "Hello",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := repo.subs[0].ID

	t.Run("valid transition", func(t *testing.T) {
		w := adminRequest(t, router, http.MethodPatch, "/admin/submissions/"+id+"/status",
			map[string]string{"status": "replied"})

		assert.Equal(t, http.StatusOK, w.Code)

		var sub submission.Submission
		require.NoError(t, json.NewDecoder(w.Body).Decode(&sub))
		assert.Equal(t, submission.StatusReplied, sub.Status)
	})

	t.Run("same status twice is a no-op success", func(t *testing.T) {
		first := adminRequest(t, router, http.MethodPatch, "/admin/submissions/"+id+"/status",
			map[string]string{"status": "replied"})
		assert.Equal(t, http.StatusOK, first.Code)

		second := adminRequest(t, router, http.MethodPatch, "/admin/submissions/"+id+"/status",
			map[string]string{"status": "replied"})
		assert.Equal(t, http.StatusOK, second.Code)

		var sub submission.Submission
		require.NoError(t, json.NewDecoder(second.Body).Decode(&sub))
		assert.Equal(t, submission.StatusReplied, sub.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		w := adminRequest(t, router, http.MethodPatch, "/admin/submissions/"+id+"/status",
			map[string]string{"status": "spam"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := adminRequest(t, router, http.MethodPatch, "/admin/submissions/missing/status",
			map[string]string{"status": "read"})
		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Submission not found", resp["error"])
	})
}

func TestAdmin_DeleteSubmission(t *testing.T) {
	repo := &fakeRepo{}
	router := setupRouter(repo)

	w := postContactForm(t, router, map[string]interface{}{
		"name": "Ada", "email": "ada@example.com", "message": "Hello",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := repo.subs[0].ID

	// archive then delete, per the triage flow
	res := adminRequest(t, router, http.MethodPatch, "/admin/submissions/"+id+"/status",
		map[string]string{"status": "archived"})
	require.Equal(t, http.StatusOK, res.Code)

	res = adminRequest(t, router, http.MethodDelete, "/admin/submissions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, res.Code)

	list := adminRequest(t, router, http.MethodGet, "/admin/submissions", nil)
	assert.JSONEq(t, "[]", list.Body.String())

	res = adminRequest(t, router, http.MethodPatch, "/admin/submissions/"+id+"/status",
		map[string]string{"status": "read"})
	assert.Equal(t, http.StatusNotFound, res.Code, "updating a deleted submission fails not-found")
}
