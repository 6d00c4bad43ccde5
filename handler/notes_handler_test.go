package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"notesweb/config"
	"notesweb/repository"
	"notesweb/usecase"
	"notesweb/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitValidator()
}

type recordedRequest struct {
	Method string
	URI    string
	Body   string
}

// fakeBackend stands in for the notes service.
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, URI: r.RequestURI, Body: string(body)})
	respond := f.respond
	f.mu.Unlock()

	if respond != nil {
		respond(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{}`))
}

func (f *fakeBackend) setRespond(respond func(http.ResponseWriter, *http.Request)) {
	f.mu.Lock()
	f.respond = respond
	f.mu.Unlock()
}

func (f *fakeBackend) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func jsonReply(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func setupTestRouter(t *testing.T, backend *fakeBackend) *gin.Engine {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	executor := repository.NewExecutor(config.ClientConfig{BaseURL: server.URL, Timeout: 2 * time.Second}, server.Client())
	notesHandler := NewNotesHandler(usecase.NewNotesService(repository.NewNotesRepo(executor)))

	router := gin.New()
	router.UseRawPath = true
	router.SetHTMLTemplate(LoadTemplates())
	router.GET("/", notesHandler.Index)
	router.GET("/healthz", notesHandler.Health)
	router.GET("/api/stats", notesHandler.Stats)
	router.GET("/notes/new", notesHandler.NewNote)
	router.GET("/notes/:id/edit", notesHandler.EditNote)
	router.POST("/notes", notesHandler.CreateNote)
	router.POST("/notes/:id", notesHandler.UpdateNote)
	router.POST("/notes/:id/delete", notesHandler.DeleteNote)
	router.POST("/notes/:id/pin", notesHandler.TogglePinned)
	router.POST("/notes/:id/favorite", notesHandler.ToggleFavorite)
	return router
}

func postForm(router *gin.Engine, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestIndexRendersNotesAndForwardsFilter(t *testing.T) {
	backend := &fakeBackend{respond: jsonReply(http.StatusOK,
		`[{"id":"n1","title":"Groceries","content":"milk","tags":["food","errands"],"pinned":true}]`)}
	router := setupTestRouter(t, backend)

	w := get(router, "/?q=milk&tag=food&favorite=true&error=Old+failure")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Groceries")
	assert.Contains(t, body, "#food")
	assert.Contains(t, body, "PINNED")
	assert.Contains(t, body, "Old failure")
	assert.Contains(t, body, `action="/notes/n1/pin"`)

	requests := backend.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodGet, requests[0].Method)
	assert.Equal(t, "/notes?favorite=true&q=milk&tag=food", requests[0].URI)
}

func TestIndexShowsBackendFailure(t *testing.T) {
	backend := &fakeBackend{respond: jsonReply(http.StatusInternalServerError, `{"detail":"Database is down"}`)}
	router := setupTestRouter(t, backend)

	w := get(router, "/")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Database is down")
	assert.Contains(t, w.Body.String(), "No notes yet.")
}

func TestNewNoteForm(t *testing.T) {
	router := setupTestRouter(t, &fakeBackend{})

	w := get(router, "/notes/new?return_to=%2F%3Ftag%3Dx")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "New Note")
	assert.Contains(t, w.Body.String(), `action="/notes"`)
	assert.Contains(t, w.Body.String(), "No tags yet")
}

func TestCreateNote(t *testing.T) {
	backend := &fakeBackend{}
	router := setupTestRouter(t, backend)

	w := postForm(router, "/notes", url.Values{
		"title":     {"  Groceries "},
		"content":   {"milk"},
		"tags":      {"food, food, errands"},
		"pinned":    {"true"},
		"return_to": {"/?tag=food"},
	})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?tag=food", w.Header().Get("Location"))

	requests := backend.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	assert.Equal(t, "/notes", requests[0].URI)
	assert.JSONEq(t, `{"title":"Groceries","content":"milk","tags":["food","errands"],"pinned":true,"favorite":false}`, requests[0].Body)
}

func TestCreateNoteValidationErrors(t *testing.T) {
	backend := &fakeBackend{}
	router := setupTestRouter(t, backend)

	w := postForm(router, "/notes", url.Values{"title": {"   "}, "content": {""}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Title is required.")
	assert.Contains(t, w.Body.String(), "Note text is required.")
	assert.Empty(t, backend.recorded())
}

func TestCreateNoteValidationKeepsInputAndPreview(t *testing.T) {
	backend := &fakeBackend{}
	router := setupTestRouter(t, backend)

	w := postForm(router, "/notes", url.Values{
		"content":   {"milk"},
		"tags":      {"food, food,  to   do"},
		"return_to": {"/?tag=food"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Title is required.")
	assert.NotContains(t, body, "Note text is required.")
	assert.Contains(t, body, ">milk</textarea>")
	assert.Contains(t, body, "#food")
	assert.Contains(t, body, "#to do")
	assert.Contains(t, body, `value="/?tag=food"`)
	assert.Empty(t, backend.recorded())
}

func TestUpdateNoteTooLongTitle(t *testing.T) {
	backend := &fakeBackend{}
	router := setupTestRouter(t, backend)

	w := postForm(router, "/notes/n1", url.Values{"title": {strings.Repeat("x", 121)}, "content": {"C"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Title must be at most 120 characters.")
	assert.Contains(t, w.Body.String(), `action="/notes/n1"`)
	assert.Empty(t, backend.recorded())
}

func TestCreateNoteShowsJSONStringFailure(t *testing.T) {
	backend := &fakeBackend{respond: jsonReply(http.StatusBadRequest, `"Title too long"`)}
	router := setupTestRouter(t, backend)

	w := postForm(router, "/notes", url.Values{"title": {"Groceries"}, "content": {"milk"}})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Title too long")
	assert.NotContains(t, w.Body.String(), "Request failed (400)")
}

func TestCreateNoteBackendFailureKeepsForm(t *testing.T) {
	backend := &fakeBackend{respond: jsonReply(http.StatusBadRequest, `{"detail":"Title already taken"}`)}
	router := setupTestRouter(t, backend)

	w := postForm(router, "/notes", url.Values{"title": {"Groceries"}, "content": {"milk"}})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Title already taken")
	assert.Contains(t, w.Body.String(), `value="Groceries"`)
}

func TestEditNote(t *testing.T) {
	backend := &fakeBackend{respond: jsonReply(http.StatusOK,
		`{"notes":[{"id":"a/b","title":"Slash","content":"body","tags":["x","y"],"favorite":true}]}`)}
	router := setupTestRouter(t, backend)

	w := get(router, "/notes/a%2Fb/edit?return_to=%2F")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Edit Note")
	assert.Contains(t, body, `value="Slash"`)
	assert.Contains(t, body, `value="x, y"`)
	assert.Contains(t, body, `action="/notes/a%2Fb"`)

	w = get(router, "/notes/missing/edit")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Note not found", w.Body.String())
}

func TestUpdateNoteEscapesID(t *testing.T) {
	backend := &fakeBackend{}
	router := setupTestRouter(t, backend)

	w := postForm(router, "/notes/a%2Fb", url.Values{"title": {"T"}, "content": {"C"}, "favorite": {"true"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	requests := backend.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPut, requests[0].Method)
	assert.Equal(t, "/notes/a%2Fb", requests[0].URI)
	assert.JSONEq(t, `{"title":"T","content":"C","tags":[],"pinned":false,"favorite":true}`, requests[0].Body)
}

func TestDeleteNoteFailureRedirectsWithError(t *testing.T) {
	backend := &fakeBackend{respond: jsonReply(http.StatusNotFound, `{"detail":"Note not found"}`)}
	router := setupTestRouter(t, backend)

	w := postForm(router, "/notes/n1/delete", url.Values{"return_to": {"/?tag=x"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?error=Note+not+found&tag=x", w.Header().Get("Location"))

	requests := backend.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodDelete, requests[0].Method)
	assert.Equal(t, "/notes/n1", requests[0].URI)
}

func TestToggleActionsSendFlippedState(t *testing.T) {
	backend := &fakeBackend{}
	router := setupTestRouter(t, backend)

	w := postForm(router, "/notes/n1/pin", url.Values{"current": {"true"}, "return_to": {"https://evil.example"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = postForm(router, "/notes/n1/favorite", url.Values{"current": {"false"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	requests := backend.recorded()
	require.Len(t, requests, 2)
	assert.Equal(t, "/notes/n1/pin", requests[0].URI)
	assert.JSONEq(t, `{"pinned":false}`, requests[0].Body)
	assert.Equal(t, "/notes/n1/favorite", requests[1].URI)
	assert.JSONEq(t, `{"favorite":true}`, requests[1].Body)
}

func TestHealth(t *testing.T) {
	backend := &fakeBackend{respond: jsonReply(http.StatusOK, `{"status":"ok"}`)}
	router := setupTestRouter(t, backend)

	w := get(router, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]interface{}{"status": "ok"}, resp.Data)
	assert.Equal(t, "/", backend.recorded()[0].URI)

	backend.setRespond(jsonReply(http.StatusServiceUnavailable, `{"detail":"starting up"}`))
	w = get(router, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "starting up")
}

func TestSanitizeReturnTo(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/?tag=x", "/?tag=x"},
		{"/?tag=x&error=boom", "/?tag=x"},
		{"/notes/new", "/notes/new"},
		{"https://evil.example/", "/"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"notes", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeReturnTo(tt.in), "input %q", tt.in)
	}
}

func TestParseFlag(t *testing.T) {
	assert.Nil(t, parseFlag(""))
	assert.Nil(t, parseFlag("maybe"))
	assert.True(t, *parseFlag("on"))
	assert.True(t, *parseFlag("true"))
	assert.False(t, *parseFlag("false"))
}

func TestStats(t *testing.T) {
	backend := &fakeBackend{respond: jsonReply(http.StatusOK,
		`[{"id":"a","pinned":true,"tags":["x"]},{"id":"b","favorite":true,"tags":["x","y"]}]`)}
	router := setupTestRouter(t, backend)

	w := get(router, "/api/stats?pinned=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"total":2,"pinned":1,"favorites":1,"tag_counts":{"x":2,"y":1}}}`, w.Body.String())
	assert.Equal(t, "/notes?pinned=true", backend.recorded()[0].URI)

	backend.setRespond(jsonReply(http.StatusInternalServerError, `{"detail":"boom"}`))
	w = get(router, "/api/stats")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"boom"}`, w.Body.String())
}
