package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"anoa.com/coursemarket/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	body   string
}

type fakeMeili struct {
	mu       sync.Mutex
	requests []recorded
	hits     []map[string]any
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{r.Method, r.URL.Path, r.URL.RawQuery, string(body)})
	hits := f.hits
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/indexes/courses/search" {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits":               hits,
			"query":              "",
			"processingTimeMs":   1,
			"limit":              20,
			"offset":             0,
			"estimatedTotalHits": len(hits),
		})
		return
	}

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, `{"taskUid":1,"indexUid":"courses","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":%q}`,
		time.Now().UTC().Format(time.RFC3339))
}

func (f *fakeMeili) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newIndex(t *testing.T) (CourseIndex, *fakeMeili) {
	t.Helper()
	fake := &fakeMeili{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewMeiliSearchService(meilisearch.New(srv.URL, meilisearch.WithAPIKey("test")), nil), fake
}

func course(published bool) *entity.Course {
	return &entity.Course{
		ID:          uuid.New(),
		Title:       "Go <em>Basics</em>",
		Description: "<p>Learn Go</p><p>from scratch &amp; more</p>",
		Category:    "Programming",
		Level:       entity.LevelBeginner,
		Price:       10,
		IsPublished: published,
		CreatedAt:   time.Now(),
		Creator:     &entity.Creator{User: &entity.User{Name: "Ana"}},
	}
}

func TestInitConfiguresFilterableAttributes(t *testing.T) {
	_, fake := newIndex(t)

	require.NotEmpty(t, fake.requests)
	first := fake.requests[0]
	assert.Equal(t, http.MethodPut, first.method)
	assert.Equal(t, "/indexes/courses/settings/filterable-attributes", first.path)
	assert.Contains(t, first.body, "isPublished")
}

func TestIndexPublishedCourse(t *testing.T) {
	idx, fake := newIndex(t)
	c := course(true)

	require.NoError(t, idx.IndexCourse(context.Background(), c))

	req := fake.last()
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/indexes/courses/documents", req.path)
	assert.Contains(t, req.query, "primaryKey=id")

	var docs []courseDoc
	require.NoError(t, json.Unmarshal([]byte(req.body), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, c.ID.String(), docs[0].ID)
	assert.Equal(t, "Go Basics", docs[0].Title)
	assert.Equal(t, "Learn Go from scratch & more", docs[0].Description)
	assert.Equal(t, "Ana", docs[0].CreatorName)
	assert.True(t, docs[0].IsPublished)
}

func TestIndexUnpublishedCourseRemovesDocument(t *testing.T) {
	idx, fake := newIndex(t)
	c := course(false)

	require.NoError(t, idx.IndexCourse(context.Background(), c))

	req := fake.last()
	assert.Equal(t, http.MethodDelete, req.method)
	assert.Equal(t, "/indexes/courses/documents/"+c.ID.String(), req.path)
}

func TestSearchCourseIDsKeepsRanking(t *testing.T) {
	idx, fake := newIndex(t)
	first, second := uuid.New(), uuid.New()
	fake.hits = []map[string]any{
		{"id": second.String()},
		{"id": "not-a-uuid"},
		{"id": first.String()},
	}

	ids, err := idx.SearchCourseIDs(context.Background(), "go", 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second, first}, ids)

	req := fake.last()
	assert.Equal(t, "/indexes/courses/search", req.path)
	assert.Contains(t, req.body, "isPublished = true")
}

func TestIndexCoursesSkipsDrafts(t *testing.T) {
	idx, fake := newIndex(t)

	require.NoError(t, idx.IndexCourses(context.Background(), []entity.Course{*course(true), *course(false)}))

	req := fake.last()
	assert.Equal(t, "/indexes/courses/documents", req.path)
	var docs []courseDoc
	require.NoError(t, json.Unmarshal([]byte(req.body), &docs))
	assert.Len(t, docs, 1)
}
