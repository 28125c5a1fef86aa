package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func uploadRequest(t *testing.T, token string, body any) *http.Request {
	t.Helper()
	var payload string
	switch b := body.(type) {
	case string:
		payload = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		payload = string(data)
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/posts", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// ---------------------------------------------------------------------------
// TestUploadPost - Admin upload endpoint
// ---------------------------------------------------------------------------

func TestUploadPost(t *testing.T) {
	t.Parallel()

	ts := newTestSite(t)
	up := PostUpload{
		Title:                 "Hello",
		Timestamp:             1704067200, // 2024-01-01T00:00:00Z
		Slug:                  "hello",
		FileContentCompressed: helloPostHex,
	}

	rec := ts.do(t, uploadRequest(t, testToken, up))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body)
	}
	var resp uploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.URL != "/blog/hello" {
		t.Errorf("URL = %q, want /blog/hello", resp.URL)
	}

	page := ts.get(t, "/blog/hello")
	if page.Code != http.StatusOK || !strings.Contains(page.Body.String(), "First post body.") {
		t.Errorf("uploaded post not served: %d\n%s", page.Code, page.Body)
	}
	if list := ts.get(t, "/blog"); !strings.Contains(list.Body.String(), "2024-01-01") {
		t.Errorf("post index missing upload date:\n%s", list.Body)
	}

	// Same slug again is refused until overwrite is set.
	if rec := ts.do(t, uploadRequest(t, testToken, up)); rec.Code != http.StatusConflict {
		t.Errorf("duplicate upload status = %d, want 409", rec.Code)
	}
	up.Overwrite = true
	if rec := ts.do(t, uploadRequest(t, testToken, up)); rec.Code != http.StatusOK {
		t.Errorf("overwrite upload status = %d, want 200\n%s", rec.Code, rec.Body)
	}
}

func TestUploadPost_LegacyPath(t *testing.T) {
	t.Parallel()

	ts := newTestSite(t)
	req := uploadRequest(t, testToken, PostUpload{Title: "Legacy", Slug: "legacy", FileContentCompressed: helloPostHex})
	req.URL.Path = "/admin/add"
	if rec := ts.do(t, req); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200\n%s", rec.Code, rec.Body)
	}
}

func TestUploadPost_Auth(t *testing.T) {
	t.Parallel()

	valid := PostUpload{Title: "T", Slug: "t", FileContentCompressed: helloPostHex}

	tests := []struct {
		name   string
		opts   []Option
		header string
	}{
		{"no header", nil, ""},
		{"wrong token", nil, "Bearer nope"},
		{"wrong scheme", nil, "Basic " + testToken},
		{"no token configured", []Option{WithAdminToken("")}, "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestSite(t, tt.opts...)
			req := uploadRequest(t, "", valid)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := ts.do(t, req)
			if rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want JSON error", ct)
			}
			if ts.server.posts.Index().Len() != 2 {
				t.Error("refused upload must not create a post")
			}
		})
	}
}

func TestUploadPost_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body any
	}{
		{"not json", "title=x"},
		{"unknown field", `{"title": "x", "slug": "x", "file_content_compressed": "", "tags": []}`},
		{"not hex", PostUpload{Title: "x", Slug: "x", FileContentCompressed: "zz"}},
		{"not bzip2", PostUpload{Title: "x", Slug: "x", FileContentCompressed: "48656c6c6f"}},
		{"bad slug", PostUpload{Title: "x", Slug: "../etc", FileContentCompressed: helloPostHex}},
		{"missing title", PostUpload{Slug: "x", FileContentCompressed: helloPostHex}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestSite(t)
			rec := ts.do(t, uploadRequest(t, testToken, tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400\n%s", rec.Code, rec.Body)
			}
			var e map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&e); err != nil || e["error"] == "" {
				t.Errorf("want a JSON error body, got %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestContentEncoding - bzip2 + hex
// ---------------------------------------------------------------------------

func TestDecodeContent(t *testing.T) {
	t.Parallel()

	got, err := DecodeContent(helloPostHex)
	if err != nil {
		t.Fatalf("DecodeContent() error = %v", err)
	}
	if got != "# Hello\n\nFirst post body.\n" {
		t.Errorf("DecodeContent() = %q", got)
	}
}

func TestEncodeContent_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, md := range []string{"", "# Title\n", strings.Repeat("Lorem ipsum. ", 5000), "émoji ✓\n"} {
		enc, err := EncodeContent(md)
		if err != nil {
			t.Fatalf("EncodeContent() error = %v", err)
		}
		got, err := DecodeContent(enc)
		if err != nil {
			t.Fatalf("DecodeContent() error = %v", err)
		}
		if got != md {
			t.Errorf("round trip changed content (len %d -> %d)", len(md), len(got))
		}
	}
}

// ---------------------------------------------------------------------------
// TestClient_Publish - Client against a live handler
// ---------------------------------------------------------------------------

func TestClient_Publish(t *testing.T) {
	t.Parallel()

	ts := newTestSite(t)
	srv := httptest.NewServer(ts.server.Handler())
	defer srv.Close()

	enc, err := EncodeContent("Published from the client.\n")
	if err != nil {
		t.Fatalf("EncodeContent() error = %v", err)
	}
	up := PostUpload{Title: "From Client", FileContentCompressed: enc}

	client := &Client{BaseURL: srv.URL + "/", Token: testToken, HTTP: srv.Client()}
	url, err := client.Publish(context.Background(), up)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if url != "/blog/from-client" {
		t.Errorf("Publish() = %q, want /blog/from-client", url)
	}

	if _, err := client.Publish(context.Background(), up); !errors.Is(err, ErrConflict) {
		t.Errorf("second Publish() error = %v, want ErrConflict", err)
	}

	client.Token = "wrong"
	if _, err := client.Publish(context.Background(), up); !errors.Is(err, ErrForbidden) {
		t.Errorf("Publish() with bad token error = %v, want ErrForbidden", err)
	}
}
