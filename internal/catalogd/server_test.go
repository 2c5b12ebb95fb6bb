package catalogd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/zzenonn/framesync/internal/domain"
	"github.com/zzenonn/framesync/internal/repository/assetstore"
)

const (
	testHash      = domain.ContentHash("d41d8cd98f00b204e9800998ecf8427e")
	otherTestHash = domain.ContentHash("9e107d9d372bb6826bd81d3542a419d6")
)

func newTestServer(t *testing.T) (*httptest.Server, map[domain.AssetID]string) {
	t.Helper()

	store := assetstore.NewStore(t.TempDir(), "bmp")
	if err := store.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot() failed: %v", err)
	}

	assets := map[domain.AssetID]string{
		domain.AssetID(uuid.NewString()): "first image bytes",
		domain.AssetID(uuid.NewString()): "second image bytes",
	}
	hashes := []domain.ContentHash{testHash, otherTestHash}
	i := 0
	for id, content := range assets {
		if _, err := store.Write(id, hashes[i], strings.NewReader(content)); err != nil {
			t.Fatalf("Write() failed: %v", err)
		}
		i++
	}

	ts := httptest.NewServer(NewServer(store))
	t.Cleanup(ts.Close)

	return ts, assets
}

// TestServer_Assets verifies the manifest endpoint lists every stored asset.
func TestServer_Assets(t *testing.T) {
	ts, assets := newTestServer(t)

	resp, err := http.Get(ts.URL + "/assets")
	if err != nil {
		t.Fatalf("GET /assets failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /assets status = %d, want 200", resp.StatusCode)
	}
	if ctype := resp.Header.Get("Content-Type"); ctype != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ctype)
	}

	var manifest map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		t.Fatalf("failed to decode manifest: %v", err)
	}

	if len(manifest) != len(assets) {
		t.Errorf("manifest has %d entries, want %d", len(manifest), len(assets))
	}
	for id := range assets {
		if _, ok := manifest[string(id)]; !ok {
			t.Errorf("manifest is missing %s", id)
		}
	}
}

// TestServer_Image verifies image bytes round-trip through the handler.
func TestServer_Image(t *testing.T) {
	ts, assets := newTestServer(t)

	for id, content := range assets {
		resp, err := http.Get(ts.URL + "/image/" + string(id))
		if err != nil {
			t.Fatalf("GET /image/%s failed: %v", id, err)
		}

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET /image/%s status = %d, want 200", id, resp.StatusCode)
		}
		if resp.ContentLength != int64(len(content)) {
			t.Errorf("Content-Length = %d, want %d", resp.ContentLength, len(content))
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if string(body) != content {
			t.Errorf("GET /image/%s = %q, want %q", id, body, content)
		}
	}
}

// TestServer_ImageErrors verifies the JSON error responses for bad and
// unknown ids.
func TestServer_ImageErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed id",
			path:       "/image/not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantError:  "Not a valid UUID",
		},
		{
			name:       "uppercase id",
			path:       "/image/550E8400-E29B-41D4-A716-446655440000",
			wantStatus: http.StatusBadRequest,
			wantError:  "Not a valid UUID",
		},
		{
			name:       "unknown id",
			path:       "/image/" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
			wantError:  "Asset not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s failed: %v", tt.path, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body["error"] != tt.wantError {
				t.Errorf("error = %q, want %q", body["error"], tt.wantError)
			}
		})
	}
}

// TestServer_MethodNotAllowed verifies the router rejects writes to the
// read-only endpoints.
func TestServer_MethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/assets", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST /assets failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /assets status = %d, want 405", resp.StatusCode)
	}
}
