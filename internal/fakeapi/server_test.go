package fakeapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursework-roadmap/internal/models"
)

func do(t *testing.T, url, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_RejectsMissingAndExpiredTokens(t *testing.T) {
	fake, srv := Start(t)
	user := fake.AddUser("ada@example.com", "password1", "Ada")

	resp := do(t, srv.URL, http.MethodGet, "/api/courseworks", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	expired := fake.IssueToken(user.ID, -time.Minute)
	resp = do(t, srv.URL, http.MethodGet, "/api/courseworks", expired, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	valid := fake.IssueToken(user.ID, time.Hour)
	resp = do(t, srv.URL, http.MethodGet, "/api/courseworks", valid, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_SummariesCountTasks(t *testing.T) {
	fake, srv := Start(t)
	user := fake.AddUser("ada@example.com", "password1", "Ada")
	fake.SeedCoursework(user.ID, &models.DecompositionResponse{
		CourseName: models.StringPtr("Compilers"),
		Tasks: []models.Task{
			{ID: "t1", Status: models.StatusDone},
			{ID: "t2", Status: models.StatusInProgress},
			{ID: "t1", Status: models.StatusDone},
		},
	})

	resp := do(t, srv.URL, http.MethodGet, "/api/courseworks", fake.IssueToken(user.ID, time.Hour), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summaries []models.CourseworkSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "Compilers", summaries[0].CourseName)
	assert.Equal(t, 2, summaries[0].TotalTasks, "repeated ids count once")
	assert.Equal(t, 1, summaries[0].CompletedTasks)
}

func TestServer_FailNextIsConsumedOnce(t *testing.T) {
	fake, srv := Start(t)
	fake.FailNext(http.MethodPost, "/api/auth/login", http.StatusServiceUnavailable, "busy")

	resp := do(t, srv.URL, http.MethodPost, "/api/auth/login", "", `{"email":"x","password":"y"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = do(t, srv.URL, http.MethodPost, "/api/auth/login", "", `{"email":"x","password":"y"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 2, fake.Calls(http.MethodPost, "/api/auth/login"))
}

func TestServer_OtherUsersCourseworkIsHidden(t *testing.T) {
	fake, srv := Start(t)
	owner := fake.AddUser("ada@example.com", "password1", "Ada")
	other := fake.AddUser("bob@example.com", "password1", "Bob")
	id := fake.SeedCoursework(owner.ID, &models.DecompositionResponse{})

	resp := do(t, srv.URL, http.MethodGet, "/api/courseworks/"+id, fake.IssueToken(other.ID, time.Hour), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Images(t *testing.T) {
	fake, srv := Start(t)
	fake.SetImage("doc-1", "fig.jpg", []byte("jpeg"))

	resp := do(t, srv.URL, http.MethodGet, "/api/images/doc-1/fig.jpg", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	resp = do(t, srv.URL, http.MethodGet, "/api/images/doc-1/other.jpg", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv.URL, http.MethodGet, "/api/images/doc-1/..%2Ffig.jpg", "", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
