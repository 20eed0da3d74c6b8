package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/jask/stockterm/internal/api"
	"github.com/jask/stockterm/internal/config"
	"github.com/jask/stockterm/internal/secrets"
)

type fakeServer struct {
	*httptest.Server
	mu      sync.Mutex
	auth    []string
	created []string
	ack     string // raw create response body; empty means a well-formed ack
}

func (f *fakeServer) Auth() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth...)
}

func (f *fakeServer) Created() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{}
	imageURL := "https://img.example.com/pens.png"
	items := []api.Inventory{
		{ID: 1, Title: "Blue pens", Quantity: "12", ItemImage: api.ItemImage{URL: &imageURL}},
		{ID: 2, Title: "Printer paper"},
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			f.auth = append(f.auth, req.Header.Get("Authorization"))
			f.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/v1/inventories", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(items)
	})
	r.Get("/api/v1/inventories/{id}", func(w http.ResponseWriter, req *http.Request) {
		for _, it := range items {
			if chi.URLParam(req, "id") == strconv.FormatInt(it.ID, 10) {
				_ = json.NewEncoder(w).Encode(it)
				return
			}
		}
		http.NotFound(w, req)
	})
	r.Post("/api/v1/inventories", func(w http.ResponseWriter, req *http.Request) {
		var body api.CreateInventoryRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.created = append(f.created, body.Title)
		ack := f.ack
		f.mu.Unlock()
		if ack != "" {
			_, _ = w.Write([]byte(ack))
			return
		}
		_ = json.NewEncoder(w).Encode(api.CreateInventoryResponse{Code: 200, Status: "success", Message: "created"})
	})
	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

// isolate points config, history and the token store at a temp dir.
func isolate(t *testing.T, baseURL, token string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("STOCKTERM_CONFIG", "")
	t.Setenv("STOCKTERM_API_BASE_URL", baseURL)
	t.Setenv("STOCKTERM_API_TOKEN", token)
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	srv := newFakeServer(t)
	isolate(t, srv.URL, "env-token")

	out, err := execute(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "Blue pens")
	require.Contains(t, out, "Printer paper")
	require.Equal(t, []string{"Bearer env-token"}, srv.Auth())

	out, err = execute(t, "list", "--filter", "paper")
	require.NoError(t, err)
	require.Contains(t, out, "Printer paper")
	require.NotContains(t, out, "Blue pens")
}

func TestShowCommand(t *testing.T) {
	srv := newFakeServer(t)
	isolate(t, srv.URL, "env-token")

	out, err := execute(t, "show", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Title:     Printer paper")
	require.Contains(t, out, "Image:     -")

	_, err = execute(t, "show", "abc")
	require.Error(t, err)

	_, err = execute(t, "show", "99")
	var te *api.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusNotFound, te.StatusCode)
}

func TestAddCommandRecordsHistory(t *testing.T) {
	srv := newFakeServer(t)
	home := isolate(t, srv.URL, "env-token")

	out, err := execute(t, "add", "テスト在庫")
	require.NoError(t, err)
	require.Contains(t, out, "Registration succeeded")
	require.Equal(t, []string{"テスト在庫"}, srv.Created())

	_, err = os.Stat(filepath.Join(home, ".local", "share", "stockterm", "history.db"))
	require.NoError(t, err)
}

func TestAddCommandRejectsEmptyTitle(t *testing.T) {
	srv := newFakeServer(t)
	isolate(t, srv.URL, "env-token")

	out, err := execute(t, "add", "")
	require.Error(t, err)
	require.Contains(t, out, "Input error")
	require.Empty(t, srv.Created())
}

func TestTokenStoreIsUsedWithoutEnv(t *testing.T) {
	srv := newFakeServer(t)
	isolate(t, srv.URL, "")

	out, err := execute(t, "token", "set", "stored-token")
	require.NoError(t, err)
	require.Contains(t, out, "token stored")

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	got, err := secrets.FetchToken(u.Host)
	require.NoError(t, err)
	require.Equal(t, "stored-token", got)

	_, err = execute(t, "list")
	require.NoError(t, err)
	require.Equal(t, []string{"Bearer stored-token"}, srv.Auth())

	out, err = execute(t, "token", "clear")
	require.NoError(t, err)
	require.Contains(t, out, "token removed")
	out, err = execute(t, "token", "clear")
	require.NoError(t, err)
	require.Contains(t, out, "no token stored")
}

func TestResolveTokenOrder(t *testing.T) {
	isolate(t, "", "")
	t.Setenv("INV_TOKEN", "")
	cfg := config.Config{API: config.APIConfig{TokenEnv: "INV_TOKEN", Token: "from-config"}}

	require.Equal(t, "from-config", resolveToken(cfg, "inv.example.com"))

	require.NoError(t, secrets.StoreToken("inv.example.com", "from-store"))
	require.Equal(t, "from-store", resolveToken(cfg, "inv.example.com"))

	t.Setenv("INV_TOKEN", "from-env")
	require.Equal(t, "from-env", resolveToken(cfg, "inv.example.com"))
}

func TestConfigInitWritesFile(t *testing.T) {
	home := isolate(t, "https://inv.example.com", "secret")

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	path := filepath.Join(home, ".config", "stockterm", "config.toml")
	require.Contains(t, out, path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "https://inv.example.com")
	require.NotContains(t, string(raw), "secret")
}

func TestBadBaseURL(t *testing.T) {
	isolate(t, "not a url", "x")

	_, err := execute(t, "list")
	require.Error(t, err)
}

func TestAddCommandReportsFailureOnce(t *testing.T) {
	srv := newFakeServer(t)
	srv.mu.Lock()
	srv.ack = `{"error":"nope"}`
	srv.mu.Unlock()
	isolate(t, srv.URL, "env-token")

	out, err := execute(t, "add", "pens")
	require.EqualError(t, err, "Registration failed")
	require.Equal(t, 1, strings.Count(out, "Registration failed"))
	require.Contains(t, out, "decode response")
	require.Equal(t, []string{"pens"}, srv.Created())
}
