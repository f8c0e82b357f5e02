package repositories

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursework-roadmap/internal/apperrors"
	"coursework-roadmap/internal/fakeapi"
	"coursework-roadmap/internal/models"
)

type fixture struct {
	fake   *fakeapi.Server
	url    string
	user   models.User
	client *Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake, srv := fakeapi.Start(t)
	user := fake.AddUser("ada@example.com", "password1", "Ada")
	token := fake.IssueToken(user.ID, time.Hour)
	return &fixture{
		fake:   fake,
		url:    srv.URL,
		user:   user,
		client: NewClient(srv.URL, 5*time.Second, staticToken(token)),
	}
}

func sampleDoc() *models.DecompositionResponse {
	return &models.DecompositionResponse{
		CourseName: models.StringPtr("Operating Systems"),
		Deadline:   models.StringPtr("2024-11-14T12:00:00"),
		Tasks: []models.Task{
			{ID: "t1", Title: "Read spec", Status: models.StatusTodo, RelatedFiles: []string{}},
			{ID: "t2", Title: "Write scheduler", Status: models.StatusDone, RelatedFiles: []string{"sched.c"}},
		},
		Milestones: []models.Milestone{{ID: "m1", Title: "Part 1", TaskIDs: []string{"t1", "t2"}}},
	}
}

func TestCourseworkRepository_Lifecycle(t *testing.T) {
	f := newFixture(t)
	repo := NewCourseworkRepository(f.client)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.NewCourseworkCreate(sampleDoc()))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Operating Systems", created.CourseName)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].TotalTasks)
	assert.Equal(t, 1, list[0].CompletedTasks)

	doc := sampleDoc()
	doc.Tasks[0].Status = models.StatusInProgress
	_, err = repo.Update(ctx, created.ID, models.CourseworkUpdate{RoadmapData: doc})
	require.NoError(t, err)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.RoadmapData.Tasks[0].Status)
	assert.Equal(t, []string{"t1", "t2"}, got.RoadmapData.Milestones[0].TaskIDs)

	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, created.ID), "deleting twice succeeds")

	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCourseworkRepository_UpdateSendsOnlySetFields(t *testing.T) {
	f := newFixture(t)
	repo := NewCourseworkRepository(f.client)
	id := f.fake.SeedCoursework(f.user.ID, sampleDoc())

	_, err := repo.Update(context.Background(), id, models.CourseworkUpdate{CourseName: models.StringPtr("OS 2024")})
	require.NoError(t, err)

	var sent map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(f.fake.LastBody(http.MethodPut, "/api/courseworks/"+id), &sent))
	assert.Contains(t, sent, "course_name")
	assert.NotContains(t, sent, "roadmap_data")

	stored, ok := f.fake.Coursework(id)
	require.True(t, ok)
	assert.Equal(t, "OS 2024", stored.CourseName)
	assert.Len(t, stored.RoadmapData.Tasks, 2)
}

func TestCourseworkRepository_UpdateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	repo := NewCourseworkRepository(f.client)
	id := f.fake.SeedCoursework(f.user.ID, sampleDoc())
	doc := sampleDoc()
	doc.Tasks[1].Status = models.StatusTodo

	for i := 0; i < 2; i++ {
		_, err := repo.Update(context.Background(), id, models.CourseworkUpdate{RoadmapData: doc})
		require.NoError(t, err)
	}

	stored, _ := f.fake.Coursework(id)
	assert.Equal(t, doc.Tasks, stored.RoadmapData.Tasks)
}

func TestCourseworkRepository_EmptyUpdateRejectedLocally(t *testing.T) {
	f := newFixture(t)
	repo := NewCourseworkRepository(f.client)

	_, err := repo.Update(context.Background(), "cw-1", models.CourseworkUpdate{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 0, f.fake.Calls(http.MethodPut, "/api/courseworks/cw-1"))
}

func TestCourseworkRepository_ServerErrors(t *testing.T) {
	f := newFixture(t)
	repo := NewCourseworkRepository(f.client)
	f.fake.FailNext(http.MethodGet, "/api/courseworks", http.StatusInternalServerError, "database unavailable")

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrTransient)
	assert.Equal(t, "database unavailable", apperrors.Message(err))

	anonymous := NewCourseworkRepository(NewClient(f.url, time.Second, nil))
	_, err = anonymous.List(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrAuth)
}

func TestChatRepository(t *testing.T) {
	f := newFixture(t)
	repo := NewChatRepository(NewClient(f.url, 5*time.Second, nil))
	ctx := context.Background()

	_, err := repo.Ask(ctx, models.ChatRequest{Question: "what is due?", SessionID: "unknown"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	f.fake.AddSession("s1")
	resp, err := repo.Ask(ctx, models.ChatRequest{Question: "what is due?", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "You asked: what is due?", resp.Answer)
	assert.Equal(t, []string{"what is due?"}, f.fake.History("s1"))

	require.NoError(t, repo.ClearHistory(ctx, "s1"))
	assert.Empty(t, f.fake.History("s1"))
}

func TestAuthRepository(t *testing.T) {
	f := newFixture(t)
	anonymous := NewAuthRepository(NewClient(f.url, 5*time.Second, nil))
	ctx := context.Background()

	_, err := anonymous.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrAuth)

	_, err = anonymous.Register(ctx, models.RegisterRequest{Email: "new@example.com", Password: "short"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	resp, err := anonymous.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, resp.User.ID)
	require.NotEmpty(t, resp.AccessToken)

	authed := NewAuthRepository(NewClient(f.url, 5*time.Second, staticToken(resp.AccessToken)))
	me, err := authed.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)

	require.NoError(t, authed.Logout(ctx))
	_, err = authed.Me(ctx)
	assert.ErrorIs(t, err, apperrors.ErrAuth, "revoked token is rejected")
}

func TestDecomposeRepository(t *testing.T) {
	f := newFixture(t)
	f.fake.SetDecomposition(sampleDoc())
	repo := NewDecomposeRepository(NewClient(f.url, 5*time.Second, nil))
	ctx := context.Background()

	doc, err := repo.Decompose(ctx, "brief.pdf", strings.NewReader("%PDF-1.4"), "https://course.example.com")
	require.NoError(t, err)
	assert.Len(t, doc.Tasks, 2)
	require.NotNil(t, doc.SessionID)
	assert.True(t, doc.ChatEnabled())

	_, err = repo.Decompose(ctx, "notes.txt", strings.NewReader("hello"), "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "Only PDF files are accepted", apperrors.Message(err))
}

func TestImageRepository(t *testing.T) {
	f := newFixture(t)
	f.fake.SetImage("doc-1", "page1_img0.png", []byte("png-bytes"))
	repo := NewImageRepository(NewClient(f.url, 5*time.Second, nil))
	ctx := context.Background()

	img, err := repo.Fetch(ctx, "doc-1", "page1_img0.png")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(img.Data))
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "doc-1", img.DocumentID)
	assert.Equal(t, f.url+"/api/images/doc-1/page1_img0.png", repo.URL("doc-1", "page1_img0.png"))

	_, err = repo.Fetch(ctx, "doc-1", "missing.png")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "Image not found", apperrors.Message(err))

	_, err = repo.Fetch(ctx, `doc\1`, "page1_img0.png")
	assert.ErrorIs(t, err, apperrors.ErrAuth)
	assert.Equal(t, http.StatusForbidden, apperrors.StatusCode(err))

	_, err = repo.Fetch(ctx, "", "page1_img0.png")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
