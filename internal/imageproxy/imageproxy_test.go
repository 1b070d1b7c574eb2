package imageproxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"direct", "https://cdn.example/a.png", "https://cdn.example/a.png", nil},
		{"http", "http://cdn.example/a.png", "http://cdn.example/a.png", nil},
		{"ipfs scheme", "ipfs://QmHash", "https://ipfs.io/ipfs/QmHash", nil},
		{"ipfs scheme uppercase", "IPFS://bafyHash", "https://ipfs.io/ipfs/bafyHash", nil},
		{"src param", "https://images.pump.fun/coin-image/x?src=https%3A%2F%2Forigin.example%2Fimg.png", "https://origin.example/img.png", nil},
		{"src wins over ipfs", "https://images.pump.fun/x?ipfs=QmA&src=https%3A%2F%2Fo.example%2Fb", "https://o.example/b", nil},
		{"ipfs cid param", "https://images.pump.fun/x?ipfs=QmABC", "https://ipfs.io/ipfs/QmABC", nil},
		{"ipfs bafy param", "https://images.pump.fun/x?ipfs=bafyXYZ", "https://ipfs.io/ipfs/bafyXYZ", nil},
		{"ipfs non-cid param", "https://images.pump.fun/x?ipfs=%7B%22a%22%3A1%7D", "https://images.pump.fun/x?ipfs=%7B%22a%22%3A1%7D", nil},
		{"empty", "", "", ErrMissingURL},
		{"blank", "   ", "", ErrMissingURL},
		{"ftp", "ftp://host/file.png", "", ErrUnsupportedScheme},
		{"data", "data:image/png;base64,AAAA", "", ErrUnsupportedScheme},
		{"src with bad scheme", "https://images.pump.fun/x?src=file%3A%2F%2F%2Fetc%2Fpasswd", "", ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTarget(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewriteURL(t *testing.T) {
	assert.Equal(t, "", RewriteURL("api.example:3000", ""))

	got := RewriteURL("api.example:3000", "ipfs://QmHash?x=1")
	assert.Equal(t, "https://api.example/image-proxy?url=ipfs%3A%2F%2FQmHash%3Fx%3D1", got)

	got = RewriteURL("api.example", "https://a/b.png")
	assert.Equal(t, "https://api.example/image-proxy?url=https%3A%2F%2Fa%2Fb.png", got)
}

func proxyRequest(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	path := "/image-proxy"
	if target != "" {
		path += "?url=" + url.QueryEscape(target)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_Relays(t *testing.T) {
	var gotUA string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		io.WriteString(w, "PNGDATA")
	}))
	defer upstream.Close()

	h := NewHandler(Config{UserAgent: "watchx-test"}, nil, nil)
	rec := proxyRequest(t, h, upstream.URL+"/a.png")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, CacheControl, rec.Header().Get("Cache-Control"))
	assert.Equal(t, "PNGDATA", rec.Body.String())
	assert.Equal(t, "watchx-test", gotUA)
}

func TestHandler_DefaultContentType(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write([]byte{0x00, 0x01})
	}))
	defer upstream.Close()

	h := NewHandler(Config{}, nil, nil)
	rec := proxyRequest(t, h, upstream.URL)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}

func TestHandler_Errors(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer notFound.Close()

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	h := NewHandler(Config{}, nil, nil)

	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"missing", "", http.StatusBadRequest},
		{"bad scheme", "ftp://x/y", http.StatusBadRequest},
		{"upstream 404", notFound.URL, http.StatusBadGateway},
		{"transport failure", closedURL, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := proxyRequest(t, h, tt.target)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
