package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/techtrail/techtrail/internal/store"
	"github.com/techtrail/techtrail/internal/tech"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testRouter builds a router over an in-memory store, seeded on first read.
func testRouter(t *testing.T) (*gin.Engine, *tech.Collection) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	kv, err := store.New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	col := tech.Open(kv)
	router, err := NewRouter(Deps{Collection: col, KV: kv})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return router, col
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestIndexRenders(t *testing.T) {
	router, _ := testRouter(t)
	w := doJSON(t, router, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET / = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<html") {
		t.Error("index did not render HTML")
	}
}

func TestListAndFilter(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/technologies", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["count"].(float64) != 8 {
		t.Errorf("seeded count = %v, want 8", body["count"])
	}

	w = doJSON(t, router, http.MethodGet, "/api/technologies?q=react", nil)
	body = decodeBody(t, w)
	if body["count"].(float64) != 2 {
		t.Errorf("search count = %v, want 2 (React Components, React Router)", body["count"])
	}

	w = doJSON(t, router, http.MethodGet, "/api/technologies?status=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown status filter = %d, want 400", w.Code)
	}
}

func TestAddTechnology(t *testing.T) {
	router, col := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/technologies", map[string]any{
		"title":       "GraphQL",
		"description": "Query language for APIs",
		"priority":    "high",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["id"].(float64) == 0 {
		t.Error("created record has no id")
	}
	if body["category"] != "other" {
		t.Errorf("category = %v, want default other", body["category"])
	}
	if len(col.List()) != 9 {
		t.Errorf("collection size = %d, want 9", len(col.List()))
	}
}

func TestAddValidation(t *testing.T) {
	router, _ := testRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"description": "x"}},
		{"missing description", map[string]any{"title": "GraphQL"}},
		{"bad status", map[string]any{"title": "GraphQL", "description": "x", "status": "done"}},
		{"bad priority", map[string]any{"title": "GraphQL", "description": "x", "priority": "urgent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/technologies", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("add = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestSetStatus(t *testing.T) {
	router, col := testRouter(t)

	w := doJSON(t, router, http.MethodPatch, "/api/technologies/1/status",
		map[string]any{"status": "completed"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d: %s", w.Code, w.Body.String())
	}
	for _, r := range col.List() {
		if r.ID == 1 && r.Status != tech.StatusCompleted {
			t.Errorf("record 1 status = %s", r.Status)
		}
	}

	w = doJSON(t, router, http.MethodPatch, "/api/technologies/abc/status",
		map[string]any{"status": "completed"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPatch, "/api/technologies/1/status",
		map[string]any{"status": "finished"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d, want 400", w.Code)
	}
}

func TestSetNotes(t *testing.T) {
	router, col := testRouter(t)

	w := doJSON(t, router, http.MethodPatch, "/api/technologies/2/notes",
		map[string]any{"notes": "reading the docs"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch notes = %d: %s", w.Code, w.Body.String())
	}
	for _, r := range col.List() {
		if r.ID == 2 && r.Notes != "reading the docs" {
			t.Errorf("record 2 notes = %q", r.Notes)
		}
	}
}

func TestBulkStatus(t *testing.T) {
	router, col := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/technologies/bulk-status",
		map[string]any{"ids": []int64{1, 2, 3}, "status": "completed"})
	if w.Code != http.StatusOK {
		t.Fatalf("bulk = %d: %s", w.Code, w.Body.String())
	}
	completed := 0
	for _, r := range col.List() {
		if r.Status == tech.StatusCompleted {
			completed++
		}
	}
	if completed != 3 {
		t.Errorf("completed = %d, want 3", completed)
	}
}

func TestRemove(t *testing.T) {
	router, col := testRouter(t)

	w := doJSON(t, router, http.MethodDelete, "/api/technologies/5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d: %s", w.Code, w.Body.String())
	}
	for _, r := range col.List() {
		if r.ID == 5 {
			t.Error("record 5 still present")
		}
	}
}

func TestActions(t *testing.T) {
	router, col := testRouter(t)

	if w := doJSON(t, router, http.MethodPost, "/api/actions/complete-all", nil); w.Code != http.StatusOK {
		t.Fatalf("complete-all = %d", w.Code)
	}
	w := doJSON(t, router, http.MethodGet, "/api/stats", nil)
	body := decodeBody(t, w)
	if body["progress"].(float64) != 100 {
		t.Errorf("progress after complete-all = %v", body["progress"])
	}

	if w := doJSON(t, router, http.MethodPost, "/api/actions/reset-all", nil); w.Code != http.StatusOK {
		t.Fatalf("reset-all = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/actions/random", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("random = %d", w.Code)
	}
	picked := decodeBody(t, w)["picked"].(map[string]any)
	if picked["status"] != "in-progress" {
		t.Errorf("picked status = %v", picked["status"])
	}
	inProgress := 0
	for _, r := range col.List() {
		if r.Status == tech.StatusInProgress {
			inProgress++
		}
	}
	if inProgress != 1 {
		t.Errorf("in-progress after random = %d, want 1", inProgress)
	}
}

func TestActionsOnEmptyCollection(t *testing.T) {
	router, col := testRouter(t)
	if err := col.Replace(nil); err != nil {
		t.Fatalf("empty the collection: %v", err)
	}

	if w := doJSON(t, router, http.MethodPost, "/api/actions/complete-all", nil); w.Code != http.StatusConflict {
		t.Errorf("complete-all on empty = %d, want 409", w.Code)
	}
	w := doJSON(t, router, http.MethodPost, "/api/actions/random", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("random on empty = %d", w.Code)
	}
	if decodeBody(t, w)["picked"] != nil {
		t.Error("random on empty collection picked something")
	}
}

func TestExport(t *testing.T) {
	router, _ := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "tech-tracker-export-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	doc := decodeBody(t, w)
	if doc["version"] != "1.0" || doc["exportType"] != "technologies" {
		t.Errorf("export doc = %v", doc)
	}
}

func importRequest(t *testing.T, filename, content, mode string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	path := "/api/import"
	if mode != "" {
		path += "?mode=" + mode
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportAppend(t *testing.T) {
	router, col := testRouter(t)

	content := `[
		{"title": "GraphQL", "description": "Query language"},
		{"title": "Redis", "description": "In-memory store"}
	]`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, importRequest(t, "import.json", content, ""))
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["imported"].(float64) != 2 || body["total"].(float64) != 10 {
		t.Errorf("import result = %v", body)
	}
	if len(col.List()) != 10 {
		t.Errorf("collection size = %d, want 10", len(col.List()))
	}
}

func TestImportReplace(t *testing.T) {
	router, col := testRouter(t)

	content := `{"version": "1.0", "technologies": [{"title": "GraphQL", "description": "Query language"}]}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, importRequest(t, "import.json", content, "replace"))
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d: %s", w.Code, w.Body.String())
	}
	if got := col.List(); len(got) != 1 || got[0].Title != "GraphQL" {
		t.Errorf("collection after replace = %+v", got)
	}
}

func TestImportRejectsBadFile(t *testing.T) {
	router, _ := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, importRequest(t, "import.txt", `[]`, ""))
	if w.Code != http.StatusBadRequest {
		t.Errorf("wrong extension = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, importRequest(t, "import.json", `[{"title": "NoDescription"}]`, ""))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid record = %d, want 422", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, importRequest(t, "import.json", `[]`, "everything"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown mode = %d, want 400", w.Code)
	}
}

func TestImportInvalidLeavesCollectionUntouched(t *testing.T) {
	router, col := testRouter(t)
	before := col.List()

	content := `[
		{"title": "GraphQL", "description": "Query language"},
		{"title": "Broken"}
	]`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, importRequest(t, "import.json", content, ""))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("import = %d", w.Code)
	}
	if len(col.List()) != len(before) {
		t.Error("failed import changed the collection")
	}
}

func TestNewsWithoutFetcher(t *testing.T) {
	router, _ := testRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/news", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("news = %d", w.Code)
	}
	if items := decodeBody(t, w)["items"].([]any); len(items) != 0 {
		t.Errorf("items = %v, want empty", items)
	}
}

func TestEventsStream(t *testing.T) {
	router, col := testRouter(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()

	// Mutate repeatedly so at least one change lands after the handler has
	// subscribed, then disconnect.
	for i := 0; i < 10; i++ {
		if err := col.SetStatus(1, tech.StatusCompleted); err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: connected") {
		t.Errorf("missing connected event: %q", body)
	}
	if !strings.Contains(body, "event: collection") {
		t.Errorf("missing collection event: %q", body)
	}
}
