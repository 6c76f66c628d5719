package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/wbdrift/internal/model"
	"github.com/verte-zerg/wbdrift/internal/store"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "wb-mapping.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	opts = append([]Option{WithLogger(log.New(io.Discard, "", 0))}, opts...)
	return New(st, opts...), st
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetMappingEmpty(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(t, srv.Routes(), http.MethodGet, "/wb-mapping", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "{}" {
		t.Fatalf("expected empty object, got %s", w.Body.String())
	}
}

func TestAddMappingThenGet(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := doRequest(t, h, http.MethodPost, "/add-mapping", `{"你":"nǐ"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp MergeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Mapping["你"] != "nǐ" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	w = doRequest(t, h, http.MethodGet, "/wb-mapping", "")
	var mapping model.Mapping
	if err := json.NewDecoder(w.Body).Decode(&mapping); err != nil {
		t.Fatalf("decode mapping: %v", err)
	}
	if len(mapping) != 1 || mapping["你"] != "nǐ" {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
}

func TestAddMappingEmptyObject(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Routes()
	doRequest(t, h, http.MethodPost, "/add-mapping", `{"a":"1"}`)
	before, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatalf("read before: %v", err)
	}

	for _, body := range []string{`{}`, `null`, `{"b":""}`} {
		w := doRequest(t, h, http.MethodPost, "/add-mapping", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, w.Code)
		}
		var resp ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if resp.Success || resp.Error == "" {
			t.Fatalf("expected error response for %s, got %+v", body, resp)
		}
	}

	after, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatalf("read after: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("mapping file changed after rejected merges")
	}
}

func TestAddMappingRejectsNonStringValues(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(t, srv.Routes(), http.MethodPost, "/add-mapping", `{"a":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetMappingMalformedFile(t *testing.T) {
	srv, st := newTestServer(t)
	if err := os.WriteFile(st.Path(), []byte("[oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w := doRequest(t, srv.Routes(), http.MethodGet, "/wb-mapping", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestAddCharacters(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Routes()

	w := doRequest(t, h, http.MethodPost, "/add-characters", `{"characters":"你好"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var ok MergeResponse
	if err := json.NewDecoder(w.Body).Decode(&ok); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ok.Success {
		t.Fatalf("expected success, got %+v", ok)
	}
	if _, err := os.Stat(st.Path()); !os.IsNotExist(err) {
		t.Fatalf("add-characters must not write the mapping file")
	}

	w = doRequest(t, h, http.MethodPost, "/add-characters", `{"characters":"  "}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var fail ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&fail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fail.Success || fail.Error == "" {
		t.Fatalf("expected failure response, got %+v", fail)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(t, srv.Routes(), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>drift</h1>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	srv, _ := newTestServer(t, WithStaticDir(dir))
	w := doRequest(t, srv.Routes(), http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "drift") {
		t.Fatalf("expected index page, got %s", w.Body.String())
	}
}
