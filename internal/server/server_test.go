package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"iforum/internal/config"
	"iforum/internal/database"
	"iforum/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	cfg := &config.Config{
		JWTSecret:          "integration-test-secret-at-least-32-chars",
		Port:               "0",
		Env:                "test",
		GalleryDir:         t.TempDir(),
		GalleryMaxUploadMB: 10,
	}

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &testEnv{t: t, app: app, db: db}
}

func (e *testEnv) request(method, path, token string, body any) *http.Response {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// registerUser signs up a fresh account through the API and returns its token
// and user ID.
func (e *testEnv) registerUser(email string) (string, uint) {
	e.t.Helper()

	resp := e.request(http.MethodPost, "/api/user/create", "", fiber.Map{
		"email":    email,
		"password": "Long-enough-password-9",
	})
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(e.t, resp, &out)
	require.NotEmpty(e.t, out.Token)
	return out.Token, out.User.ID
}

func (e *testEnv) createPost(token, title string, tags []string) models.Post {
	e.t.Helper()

	body := fiber.Map{"title": title, "content": "body of " + title}
	if tags != nil {
		body["tags"] = tags
	}
	resp := e.request(http.MethodPost, "/api/posts", token, body)
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(e.t, resp, &post)
	return post
}

func TestUserAccountFlow(t *testing.T) {
	env := setupTestServer(t)

	token, _ := env.registerUser("reader@example.com")

	t.Run("duplicate email rejected", func(t *testing.T) {
		resp := env.request(http.MethodPost, "/api/user/create", "", fiber.Map{
			"email":    "reader@example.com",
			"password": "Long-enough-password-9",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login issues a token", func(t *testing.T) {
		resp := env.request(http.MethodPost, "/api/user/token", "", fiber.Map{
			"email":    "reader@example.com",
			"password": "Long-enough-password-9",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		resp := env.request(http.MethodPost, "/api/user/token", "", fiber.Map{
			"email":    "reader@example.com",
			"password": "Wrong-password-00000",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("profile requires auth", func(t *testing.T) {
		resp := env.request(http.MethodGet, "/api/user/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("profile bio update", func(t *testing.T) {
		resp := env.request(http.MethodPatch, "/api/user/me", token, fiber.Map{
			"bio": "I write about Go.",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = env.request(http.MethodGet, "/api/user/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var user models.User
		decodeBody(t, resp, &user)
		require.NotNil(t, user.Profile)
		assert.Equal(t, "I write about Go.", user.Profile.Bio)
	})
}

func TestPostDraftVisibility(t *testing.T) {
	env := setupTestServer(t)

	authorToken, authorID := env.registerUser("author@example.com")
	otherToken, _ := env.registerUser("other@example.com")

	draft := env.createPost(authorToken, "My Draft", nil)
	assert.Nil(t, draft.PublishedAt)
	assert.Equal(t, fmt.Sprintf("my-draft_%d", draft.ID), draft.Slug)

	draftPath := fmt.Sprintf("/api/posts/%d", draft.ID)

	t.Run("anonymous list excludes drafts", func(t *testing.T) {
		resp := env.request(http.MethodGet, "/api/posts", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var posts []models.PostSummary
		decodeBody(t, resp, &posts)
		assert.Empty(t, posts)
	})

	t.Run("author list includes own draft", func(t *testing.T) {
		resp := env.request(http.MethodGet, "/api/posts", authorToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var posts []models.PostSummary
		decodeBody(t, resp, &posts)
		require.Len(t, posts, 1)
		assert.Equal(t, authorID, posts[0].AuthorID)
	})

	t.Run("draft detail is 404 for everyone but the author", func(t *testing.T) {
		resp := env.request(http.MethodGet, draftPath, "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = env.request(http.MethodGet, draftPath, otherToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = env.request(http.MethodGet, draftPath, authorToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("publish is forbidden for non-authors", func(t *testing.T) {
		resp := env.request(http.MethodPost, draftPath+"/publish", otherToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("publish stamps now by default", func(t *testing.T) {
		resp := env.request(http.MethodPost, draftPath+"/publish", authorToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var post models.Post
		decodeBody(t, resp, &post)
		require.NotNil(t, post.PublishedAt)
		assert.WithinDuration(t, time.Now(), *post.PublishedAt, time.Minute)
	})

	t.Run("re-publish honors a caller-supplied timestamp", func(t *testing.T) {
		when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		resp := env.request(http.MethodPost, draftPath+"/publish", authorToken, fiber.Map{
			"published_at": when,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var post models.Post
		decodeBody(t, resp, &post)
		require.NotNil(t, post.PublishedAt)
		assert.True(t, post.PublishedAt.Equal(when))
	})

	t.Run("published post is visible anonymously and counts views", func(t *testing.T) {
		resp := env.request(http.MethodGet, draftPath, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var first models.Post
		decodeBody(t, resp, &first)

		resp = env.request(http.MethodGet, draftPath, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var second models.Post
		decodeBody(t, resp, &second)
		assert.Equal(t, first.Views+1, second.Views)
	})
}

func TestPostUpdateAndTags(t *testing.T) {
	env := setupTestServer(t)

	authorToken, _ := env.registerUser("author@example.com")
	otherToken, _ := env.registerUser("other@example.com")

	post := env.createPost(authorToken, "Tagged Post", []string{"go", "web"})
	require.Len(t, post.Tags, 2)

	path := fmt.Sprintf("/api/posts/%d", post.ID)

	t.Run("omitted tags field leaves tags untouched", func(t *testing.T) {
		resp := env.request(http.MethodPatch, path, authorToken, fiber.Map{
			"title": "Tagged Post Revised",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var updated models.Post
		decodeBody(t, resp, &updated)
		assert.Len(t, updated.Tags, 2)
		assert.Equal(t, fmt.Sprintf("tagged-post-revised_%d", post.ID), updated.Slug,
			"slug follows the title on every save")
	})

	t.Run("empty tags list clears associations", func(t *testing.T) {
		resp := env.request(http.MethodPatch, path, authorToken, fiber.Map{
			"tags": []string{},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var updated models.Post
		decodeBody(t, resp, &updated)
		assert.Empty(t, updated.Tags)
	})

	t.Run("non-author mutations read as 404", func(t *testing.T) {
		resp := env.request(http.MethodPatch, path, otherToken, fiber.Map{
			"title": "Hijacked",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = env.request(http.MethodDelete, path, otherToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("author can delete", func(t *testing.T) {
		resp := env.request(http.MethodDelete, path, authorToken, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = env.request(http.MethodGet, path, authorToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCommentFlow(t *testing.T) {
	env := setupTestServer(t)

	authorToken, _ := env.registerUser("author@example.com")
	commenterToken, commenterID := env.registerUser("commenter@example.com")

	post := env.createPost(authorToken, "Discussed Post", nil)

	var comment models.Comment
	t.Run("create stamps the caller as creator", func(t *testing.T) {
		resp := env.request(http.MethodPost, "/api/comments", commenterToken, fiber.Map{
			"content":      "Nice post",
			"content_type": "post",
			"object_id":    post.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		decodeBody(t, resp, &comment)
		assert.Equal(t, commenterID, comment.CreatorID)
	})

	t.Run("comments can target other comments", func(t *testing.T) {
		resp := env.request(http.MethodPost, "/api/comments", authorToken, fiber.Map{
			"content":      "Thanks!",
			"content_type": "comment",
			"object_id":    comment.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = env.request(http.MethodGet,
			fmt.Sprintf("/api/comments?content_type=comment&object_id=%d", comment.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var replies []models.Comment
		decodeBody(t, resp, &replies)
		assert.Len(t, replies, 1)
	})

	t.Run("list requires the full target pair", func(t *testing.T) {
		resp := env.request(http.MethodGet, "/api/comments?content_type=post", "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = env.request(http.MethodGet, "/api/comments?content_type=article&object_id=1", "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = env.request(http.MethodGet,
			fmt.Sprintf("/api/comments?content_type=post&object_id=%d", post.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var comments []models.Comment
		decodeBody(t, resp, &comments)
		assert.Len(t, comments, 1)
	})

	t.Run("comments on other kinds do not mix in", func(t *testing.T) {
		resp := env.request(http.MethodPost, "/api/comments", commenterToken, fiber.Map{
			"content":      "Tag note",
			"content_type": "tag",
			"object_id":    post.ID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = env.request(http.MethodGet,
			fmt.Sprintf("/api/comments?content_type=post&object_id=%d", post.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var comments []models.Comment
		decodeBody(t, resp, &comments)
		assert.Len(t, comments, 1)
	})

	commentPath := func() string { return fmt.Sprintf("/api/comments/%d", comment.ID) }

	t.Run("only the creator can edit", func(t *testing.T) {
		resp := env.request(http.MethodPatch, commentPath(), authorToken, fiber.Map{
			"content": "Edited by someone else",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = env.request(http.MethodPatch, commentPath(), commenterToken, fiber.Map{
			"content": "Nice post, edited",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var updated models.Comment
		decodeBody(t, resp, &updated)
		assert.Equal(t, "Nice post, edited", updated.Content)
	})

	t.Run("delete requires ownership", func(t *testing.T) {
		resp := env.request(http.MethodDelete, commentPath(), authorToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = env.request(http.MethodDelete, commentPath(), commenterToken, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

// multipartUpload builds a multipart body with a "post" field and an "image"
// file field.
func multipartUpload(t *testing.T, postID uint, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("post", fmt.Sprintf("%d", postID)))

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename)}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGalleryUpload(t *testing.T) {
	env := setupTestServer(t)

	authorToken, _ := env.registerUser("author@example.com")
	otherToken, _ := env.registerUser("other@example.com")

	post := env.createPost(authorToken, "Illustrated Post", nil)

	upload := func(token string, postID uint, contentType string, content []byte) *http.Response {
		body, formContentType := multipartUpload(t, postID, "photo.png", contentType, content)
		req := httptest.NewRequest(http.MethodPost, "/api/gallery", body)
		req.Header.Set("Content-Type", formContentType)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	t.Run("author attaches an image", func(t *testing.T) {
		resp := upload(authorToken, post.ID, "image/png", pngBytes(t))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var entry models.Gallery
		decodeBody(t, resp, &entry)
		assert.NotEmpty(t, entry.ImagePath)
		assert.NotEmpty(t, entry.ThumbnailPath)
	})

	t.Run("non-author upload is forbidden", func(t *testing.T) {
		resp := upload(otherToken, post.ID, "image/png", pngBytes(t))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("non-image payload is rejected", func(t *testing.T) {
		resp := upload(authorToken, post.ID, "image/png", []byte("definitely not a PNG"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing post is 404", func(t *testing.T) {
		resp := upload(authorToken, 99999, "image/png", pngBytes(t))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("gallery listing filters by post", func(t *testing.T) {
		resp := env.request(http.MethodGet, fmt.Sprintf("/api/gallery?post=%d", post.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var entries []models.Gallery
		decodeBody(t, resp, &entries)
		assert.Len(t, entries, 1)

		resp = env.request(http.MethodGet, "/api/gallery?post=424242", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &entries)
		assert.Empty(t, entries)
	})
}

func TestTagEndpoints(t *testing.T) {
	env := setupTestServer(t)

	token, _ := env.registerUser("author@example.com")
	env.createPost(token, "Tagged", []string{"go"})

	resp := env.request(http.MethodPost, "/api/tags", token, fiber.Map{"value": "unassigned"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("full listing", func(t *testing.T) {
		resp := env.request(http.MethodGet, "/api/tags", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var tags []models.Tag
		decodeBody(t, resp, &tags)
		assert.Len(t, tags, 2)
	})

	t.Run("assigned only", func(t *testing.T) {
		resp := env.request(http.MethodGet, "/api/tags?assigned_only=1", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var tags []models.Tag
		decodeBody(t, resp, &tags)
		require.Len(t, tags, 1)
		assert.Equal(t, "go", tags[0].Value)
	})

	t.Run("anonymous create is unauthorized", func(t *testing.T) {
		resp := env.request(http.MethodPost, "/api/tags", "", fiber.Map{"value": "nope"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := setupTestServer(t)

	resp := env.request(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.request(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
