package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/promptpress/promptpress/internal/config"
	"github.com/promptpress/promptpress/internal/images"
	"github.com/promptpress/promptpress/internal/models"
	"gorm.io/gorm"
)

func newPostTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := conn.AutoMigrate(&models.User{}, &models.Post{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func newPostRouter(t *testing.T, conn *gorm.DB, storage *images.Storage, userID uint64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewPostHandler(conn, storage)
	r := gin.New()
	r.GET("/posts", handler.List)
	r.GET("/posts/auth", asUser(userID, "warren"), handler.List)
	r.GET("/posts/:id", handler.Get)
	r.POST("/posts", asUser(userID, "warren"), handler.Create)
	r.PUT("/posts/:id", asUser(userID, "warren"), handler.Update)
	r.PATCH("/posts/:id/publish", asUser(userID, "warren"), handler.Publish)
	r.DELETE("/posts/:id", asUser(userID, "warren"), handler.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPosts_CreatePublishAndPublicList(t *testing.T) {
	conn := newPostTestDB(t)
	r := newPostRouter(t, conn, nil, 3)

	w := doJSON(t, r, http.MethodPost, "/posts", map[string]any{
		"title":   "First post",
		"content": "Hello world",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", w.Code, w.Body.String())
	}

	var created struct {
		Post struct {
			ID       uint64 `json:"id"`
			IsPublic bool   `json:"isPublic"`
		} `json:"post"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Post.IsPublic {
		t.Fatalf("posts must start private")
	}

	// Unauthenticated list sees nothing while the post is private.
	w = doJSON(t, r, http.MethodGet, "/posts", nil)
	var listed struct {
		Posts []postView `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(listed.Posts) != 0 {
		t.Fatalf("private post leaked to public list")
	}

	w = doJSON(t, r, http.MethodPatch, "/posts/1/publish", map[string]any{"isPublic": true})
	if w.Code != http.StatusOK {
		t.Fatalf("publish: status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/posts", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(listed.Posts) != 1 || !listed.Posts[0].IsPublic {
		t.Fatalf("expected one published post, got %+v", listed.Posts)
	}
}

func TestPosts_PrivatePostHiddenFromStrangers(t *testing.T) {
	conn := newPostTestDB(t)
	post := models.Post{Title: "Secret", Content: "x", AuthorID: 9, AuthorName: "else"}
	if err := conn.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	r := newPostRouter(t, conn, nil, 3)

	// Anonymous and non-owner reads both see a 404, not a 403, so the
	// post's existence stays hidden.
	if w := doJSON(t, r, http.MethodGet, "/posts/1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("anonymous read: status = %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, "/posts/1", map[string]any{"title": "hijack"}); w.Code != http.StatusForbidden {
		t.Fatalf("foreign update: status = %d", w.Code)
	}
}

func TestPosts_DeleteRemovesMaterializedImage(t *testing.T) {
	conn := newPostTestDB(t)

	dir := t.TempDir()
	storage, errStorage := images.NewStorage(config.ImageConfig{Dir: dir})
	if errStorage != nil {
		t.Fatalf("storage: %v", errStorage)
	}

	filename := "post_1_Coffee_123.jpg"
	if err := os.WriteFile(filepath.Join(dir, filename), []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	localPath := images.BaseURL + "/" + filename

	post := models.Post{Title: "Coffee", Content: "x", AuthorID: 3, AuthorName: "warren", ImageURL: &localPath}
	if err := conn.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	r := newPostRouter(t, conn, storage, 3)
	if w := doJSON(t, r, http.MethodDelete, "/posts/1", nil); w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body %s", w.Code, w.Body.String())
	}

	if _, err := os.Stat(filepath.Join(dir, filename)); !os.IsNotExist(err) {
		t.Fatalf("expected image file to be removed, stat err = %v", err)
	}
	var count int64
	if err := conn.Model(&models.Post{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected post to be deleted")
	}
}

func TestPosts_ListTitleSearch(t *testing.T) {
	conn := newPostTestDB(t)
	for _, p := range []models.Post{
		{Title: "Coffee Brewing", Content: "x", AuthorID: 3, AuthorName: "warren", IsPublic: true},
		{Title: "Tea Ceremony", Content: "x", AuthorID: 3, AuthorName: "warren", IsPublic: true},
	} {
		if err := conn.Create(&p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	r := newPostRouter(t, conn, nil, 3)
	w := doJSON(t, r, http.MethodGet, "/posts?q=coffee", nil)
	var listed struct {
		Posts []postView `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(listed.Posts) != 1 || listed.Posts[0].Title != "Coffee Brewing" {
		t.Fatalf("expected case-insensitive title match, got %+v", listed.Posts)
	}
}

func TestPosts_AuthedListScopedToOwner(t *testing.T) {
	conn := newPostTestDB(t)
	for _, p := range []models.Post{
		{Title: "Mine", Content: "x", AuthorID: 3, AuthorName: "warren"},
		{Title: "Theirs", Content: "x", AuthorID: 9, AuthorName: "else", IsPublic: true},
	} {
		if err := conn.Create(&p).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	r := newPostRouter(t, conn, nil, 3)
	w := doJSON(t, r, http.MethodGet, "/posts/auth", nil)
	var listed struct {
		Posts []postView `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(listed.Posts) != 1 || listed.Posts[0].Title != "Mine" {
		t.Fatalf("expected only own posts, got %+v", listed.Posts)
	}
}
