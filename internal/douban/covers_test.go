package douban

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/doubanmeta/internal/testutil"
)

// testPNG encodes a solid-color PNG of the given size.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func coverServer(t *testing.T, imageData []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(imageData)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDownloadCoverSmallImageKeptAsIs(t *testing.T) {
	data := testPNG(t, 40, 60)
	server := coverServer(t, data)
	client := testClient(server)

	dest := filepath.Join(t.TempDir(), "covers", "book.png")
	require.NoError(t, client.DownloadCover(context.Background(), server.URL+"/cover.png", dest, 100))

	saved, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, saved)
}

func TestDownloadCoverResizesWideImage(t *testing.T) {
	server := coverServer(t, testPNG(t, 200, 300))
	client := testClient(server)

	dest := filepath.Join(t.TempDir(), "book.png")
	require.NoError(t, client.DownloadCover(context.Background(), server.URL+"/cover.png", dest, 100))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	// Aspect ratio is preserved
	assert.Equal(t, 150, cfg.Height)
}

func TestDownloadCoverNotAnImage(t *testing.T) {
	server := coverServer(t, []byte("<html>forbidden</html>"))
	client := testClient(server)

	dest := filepath.Join(t.TempDir(), "book.png")
	err := client.DownloadCover(context.Background(), server.URL+"/cover.png", dest, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestResolveCoverURLFromMappingCache(t *testing.T) {
	testutil.SetupTestCache(t)
	// No server: the mapping cache must answer without any HTTP traffic
	client := NewClient(WithRateLimiter(nil))

	require.NoError(t, SaveCoverMapping("2567698", "https://img9.doubanio.com/s2768378.jpg"))

	coverURL, err := client.ResolveCoverURL(context.Background(), IdentifyRequest{SubjectID: "2567698"})
	require.NoError(t, err)
	assert.Equal(t, "https://img9.doubanio.com/s2768378.jpg", coverURL)
}

func TestResolveCoverURLViaIdentify(t *testing.T) {
	testutil.SetupTestCache(t)
	cs := newCatalogServer(t)
	client := testClient(cs.Server)

	coverURL, err := client.ResolveCoverURL(context.Background(), IdentifyRequest{Title: "三体"})
	require.NoError(t, err)
	assert.Contains(t, coverURL, "s2768378.jpg")
}

func TestResolveCoverURLNoCover(t *testing.T) {
	testutil.SetupTestCache(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/j/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":["` +
			`<div><a class=\"nbg\" href=\"https://book.douban.com/subject/1/\" target=\"_blank\" title=\"某书\">某书</a></div>` +
			`"],"total":1}`))
	})
	mux.HandleFunc("/subject/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bookPageNoCoverHTML))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := testClient(server)
	_, err := client.ResolveCoverURL(context.Background(), IdentifyRequest{Title: "某书"})
	assert.ErrorIs(t, err, ErrNoCover)
}
