package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"obralog/internal/auth"
	"obralog/internal/middleware"
	"obralog/internal/store"
)

var pngBytes = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir, err := os.MkdirTemp("", "obralog-web-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	st := store.Open(filepath.Join(dir, "projects.json"))
	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	authMW := middleware.NewAuthMiddleware(tokens)
	web := New(st, tokens)

	r := chi.NewRouter()
	r.Group(func(pub chi.Router) {
		pub.Use(authMW.OptionalSession)
		pub.Get("/", web.Home)
	})
	r.Get("/login", web.LoginForm)
	r.Post("/login", web.Login)
	r.Get("/register", web.RegisterForm)
	r.Post("/register", web.Register)
	r.Post("/logout", web.Logout)
	r.Group(func(priv chi.Router) {
		priv.Use(authMW.RequireSession)
		priv.Get("/archive", web.Archive)
		priv.Post("/reviews", web.CreateReview)
		priv.Get("/reviews/{idx}/edit", web.EditReviewForm)
		priv.Post("/reviews/{idx}", web.UpdateReview)
		priv.Post("/reviews/{idx}/delete", web.DeleteReview)
		priv.Get("/photos/profile", web.ProfilePhoto)
		priv.Get("/photos/reviews/{idx}", web.ReviewPhoto)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// postMultipart submits fields (and one optional file) the way the
// browser submits the multipart forms.
func postMultipart(t *testing.T, client *http.Client, target string, fields map[string]string, fileField string, file []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileField != "" && len(file) > 0 {
		fw, err := mw.CreateFormFile(fileField, "photo.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(file); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	mw.Close()

	resp, err := client.Post(target, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func register(t *testing.T, client *http.Client, srv *httptest.Server) {
	t.Helper()
	resp := postMultipart(t, client, srv.URL+"/register", map[string]string{
		"username":      "maria",
		"password":      "secret123",
		"email":         "maria@site.com",
		"project_name":  "North Tower",
		"floors":        "5",
		"has_basements": "yes",
		"basements":     "1",
	}, "profile_photo", pngBytes)
	body := readBody(t, resp)
	if !strings.Contains(body, "You can now log in") {
		t.Fatalf("registration did not land on the login notice; got:\n%s", body)
	}
}

func login(t *testing.T, client *http.Client, srv *httptest.Server) {
	t.Helper()
	resp, err := client.PostForm(srv.URL+"/login", url.Values{
		"username": {"maria"},
		"password": {"secret123"},
	})
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "New review") {
		t.Fatalf("login did not land on the review form; got:\n%s", body)
	}
}

func TestWelcomePage(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Welcome to the Column Review Log") {
		t.Errorf("logged-out landing page is not the welcome page:\n%s", body)
	}
}

func TestSessionRequired(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(srv.URL + "/archive")
	if err != nil {
		t.Fatalf("GET /archive: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Log in to your project") {
		t.Errorf("expected redirect to the login page, got:\n%s", body)
	}
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	resp := postMultipart(t, client, srv.URL+"/register", map[string]string{
		"username": "ma",
		"password": "secret123",
		"email":    "maria@site.com",
	}, "", nil)
	body := readBody(t, resp)
	if !strings.Contains(body, "username must be at least 3 characters") {
		t.Errorf("expected validation error, got:\n%s", body)
	}
	// The form keeps what was typed.
	if !strings.Contains(body, `value="ma"`) {
		t.Errorf("expected the form to keep the entered username:\n%s", body)
	}
}

func TestDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	register(t, client, srv)

	resp := postMultipart(t, client, srv.URL+"/register", map[string]string{
		"username": "maria",
		"password": "secret456",
		"email":    "other@site.com",
	}, "", nil)
	body := readBody(t, resp)
	if !strings.Contains(body, "already taken") {
		t.Errorf("expected duplicate username error, got:\n%s", body)
	}
}

func TestLoginFailure(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	register(t, client, srv)

	resp, err := client.PostForm(srv.URL+"/login", url.Values{
		"username": {"maria"},
		"password": {"wrong"},
	})
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Incorrect username or password.") {
		t.Errorf("expected login failure message, got:\n%s", body)
	}
}

func TestReviewLifecycle(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)
	register(t, client, srv)
	login(t, client, srv)

	t.Run("create", func(t *testing.T) {
		resp := postMultipart(t, client, srv.URL+"/reviews", map[string]string{
			"column":       "C1",
			"floor":        "2",
			"reviewed_on":  "2024-03-09",
			"observations": "crack at base",
			"status_cover": "non_compliant",
			"obs_cover":    "too thin",
		}, "photo", pngBytes)
		body := readBody(t, resp)
		if !strings.Contains(body, "Review saved.") {
			t.Fatalf("create did not confirm; got:\n%s", body)
		}
	})

	t.Run("create without column", func(t *testing.T) {
		resp := postMultipart(t, client, srv.URL+"/reviews", map[string]string{
			"column": " ",
			"floor":  "2",
		}, "", nil)
		body := readBody(t, resp)
		if !strings.Contains(body, "column name is required") {
			t.Errorf("expected validation error, got:\n%s", body)
		}
	})

	t.Run("archive shows the review", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/archive")
		if err != nil {
			t.Fatalf("GET /archive: %v", err)
		}
		body := readBody(t, resp)
		for _, want := range []string{"C1", "2024-03-09", "Cover", "too thin", "crack at base"} {
			if !strings.Contains(body, want) {
				t.Errorf("archive page is missing %q:\n%s", want, body)
			}
		}
	})

	t.Run("review photo is served", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/photos/reviews/0")
		if err != nil {
			t.Fatalf("GET photo: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("photo returned %d, want 200", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("photo content type = %q, want image/png", ct)
		}
	})

	t.Run("profile photo is served", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/photos/profile")
		if err != nil {
			t.Fatalf("GET profile photo: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("profile photo returned %d, want 200", resp.StatusCode)
		}
	})

	t.Run("edit form is prefilled", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/reviews/0/edit")
		if err != nil {
			t.Fatalf("GET edit form: %v", err)
		}
		body := readBody(t, resp)
		for _, want := range []string{`value="C1"`, "too thin", "Correction note", "Update review"} {
			if !strings.Contains(body, want) {
				t.Errorf("edit form is missing %q:\n%s", want, body)
			}
		}
	})

	t.Run("edit out of range falls back to blank form", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/reviews/42/edit")
		if err != nil {
			t.Fatalf("GET edit form: %v", err)
		}
		body := readBody(t, resp)
		if !strings.Contains(body, "New review") {
			t.Errorf("expected the blank form, got:\n%s", body)
		}
	})

	t.Run("update records the correction", func(t *testing.T) {
		resp := postMultipart(t, client, srv.URL+"/reviews/0", map[string]string{
			"column":          "C1",
			"floor":           "2",
			"reviewed_on":     "2024-03-10",
			"status_cover":    "compliant",
			"correction_note": "recast with proper cover",
		}, "", nil)
		body := readBody(t, resp)
		if !strings.Contains(body, "Review updated.") {
			t.Fatalf("update did not confirm; got:\n%s", body)
		}

		resp, err := client.Get(srv.URL + "/archive")
		if err != nil {
			t.Fatalf("GET /archive: %v", err)
		}
		archive := readBody(t, resp)
		if !strings.Contains(archive, "Cover corrected.") {
			t.Errorf("archive is missing the history line:\n%s", archive)
		}
		if !strings.Contains(archive, "recast with proper cover") {
			t.Errorf("archive is missing the correction note:\n%s", archive)
		}
	})

	t.Run("photo survives edit without a new upload", func(t *testing.T) {
		resp, err := client.Get(srv.URL + "/photos/reviews/0")
		if err != nil {
			t.Fatalf("GET photo: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("photo after edit returned %d, want 200", resp.StatusCode)
		}
	})

	t.Run("delete asks for confirmation first", func(t *testing.T) {
		resp, err := client.PostForm(srv.URL+"/reviews/0/delete", url.Values{})
		if err != nil {
			t.Fatalf("POST delete: %v", err)
		}
		body := readBody(t, resp)
		if !strings.Contains(body, "Press again to confirm deletion.") {
			t.Fatalf("expected confirmation prompt, got:\n%s", body)
		}
		if !strings.Contains(body, "C1") {
			t.Errorf("review should still exist after the first press:\n%s", body)
		}

		resp, err = client.PostForm(srv.URL+"/reviews/0/delete", url.Values{"confirm": {"1"}})
		if err != nil {
			t.Fatalf("POST delete confirm: %v", err)
		}
		body = readBody(t, resp)
		if !strings.Contains(body, "Review deleted.") {
			t.Errorf("expected deletion notice, got:\n%s", body)
		}
		if !strings.Contains(body, "No reviews yet") {
			t.Errorf("archive should be empty after deletion:\n%s", body)
		}
	})

	t.Run("logout closes the session", func(t *testing.T) {
		resp, err := client.PostForm(srv.URL+"/logout", url.Values{})
		if err != nil {
			t.Fatalf("POST /logout: %v", err)
		}
		readBody(t, resp)

		resp, err = client.Get(srv.URL + "/")
		if err != nil {
			t.Fatalf("GET /: %v", err)
		}
		body := readBody(t, resp)
		if !strings.Contains(body, "Welcome to the Column Review Log") {
			t.Errorf("expected the welcome page after logout, got:\n%s", body)
		}
	})
}
