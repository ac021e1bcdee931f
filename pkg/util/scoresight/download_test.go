package scoresight

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexPage = `<html><body>
<a href="mmz4281/2425/E0.csv">Premier League</a>
<a href="mmz4281/2425/E1.csv">Championship</a>
<a href="https://www.football-data.co.uk/mmz4281/2324/E0.csv">Premier League</a>
<a href="/mmz4281/2223/E0.csv">Premier League</a>
<a href="mmz4281/2425/E0.csv">duplicate</a>
<a href="notes.txt">notes</a>
</body></html>`

func TestFootballDataURL(t *testing.T) {
	url, err := FootballDataURL("https://www.football-data.co.uk/", "2024/2025", "E0")
	require.NoError(t, err)
	assert.Equal(t, "https://www.football-data.co.uk/mmz4281/2425/E0.csv", url)

	_, err = FootballDataURL("https://www.football-data.co.uk", "2024", "E0")
	assert.Error(t, err)
}

func TestDiscoverSeasonFiles(t *testing.T) {
	files, err := DiscoverSeasonFiles(indexPage, "https://www.football-data.co.uk", "E0")
	require.NoError(t, err)
	assert.Equal(t, []SeasonFile{
		{Season: "2024/2025", League: "E0", URL: "https://www.football-data.co.uk/mmz4281/2425/E0.csv"},
		{Season: "2023/2024", League: "E0", URL: "https://www.football-data.co.uk/mmz4281/2324/E0.csv"},
		{Season: "2022/2023", League: "E0", URL: "https://www.football-data.co.uk/mmz4281/2223/E0.csv"},
	}, files)
}

// footballDataServer serves sampleCSV for every season and counts requests per path
type footballDataServer struct {
	mu    sync.Mutex
	hits  map[string]int
	body  map[string]string
	gzips bool
}

func (s *footballDataServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	body, ok := s.body[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	if s.gzips {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write([]byte(body))
		zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
		return
	}
	w.Write([]byte(body))
}

func (s *footballDataServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func newDownloader(t *testing.T, srv *httptest.Server, seasons ...string) *Downloader {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CachePath = filepath.Join(t.TempDir(), "cache")
	cfg.DataBaseURL = srv.URL
	cfg.Seasons = seasons
	d := NewDownloader(cfg, srv.Client())
	d.now = func() time.Time { return day(2025, 1, 10) }
	return d
}

func TestDownloadCachesPastSeasonsAndRefreshesTheCurrentOne(t *testing.T) {
	fd := &footballDataServer{
		hits: map[string]int{},
		body: map[string]string{
			"/mmz4281/2324/E0.csv": sampleCSV,
			"/mmz4281/2425/E0.csv": sampleCSV,
		},
		gzips: true,
	}
	srv := httptest.NewServer(fd)
	defer srv.Close()

	d := newDownloader(t, srv, "2024/2025", "2023/2024")
	paths, err := d.Download(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "E0_2324.csv", filepath.Base(paths[0]))
	assert.Equal(t, "E0_2425.csv", filepath.Base(paths[1]))

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))

	_, err = d.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fd.count("/mmz4281/2324/E0.csv"))
	assert.Equal(t, 2, fd.count("/mmz4281/2425/E0.csv"))
	assert.Equal(t, paths, d.CachedFiles())

	// the cached files load straight into a store
	store, err := LoadMatchStore(context.Background(), NewCSVSource(paths[0]))
	require.NoError(t, err)
	assert.False(t, store.IsSynthetic())
}

func TestDownloadKeepsCacheWhenTheNewFileIsBroken(t *testing.T) {
	fd := &footballDataServer{
		hits: map[string]int{},
		body: map[string]string{"/mmz4281/2425/E0.csv": sampleCSV},
	}
	srv := httptest.NewServer(fd)
	defer srv.Close()

	d := newDownloader(t, srv, "2024/2025")
	paths, err := d.Download(context.Background())
	require.NoError(t, err)

	fd.mu.Lock()
	fd.body["/mmz4281/2425/E0.csv"] = "Date,HomeTeam\n01/01/2025,Arsenal\n"
	fd.mu.Unlock()
	_, err = d.Download(context.Background())
	require.Error(t, err)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))
	_, err = os.Stat(paths[0] + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadMissingSeason(t *testing.T) {
	srv := httptest.NewServer(&footballDataServer{hits: map[string]int{}, body: map[string]string{}})
	defer srv.Close()

	d := newDownloader(t, srv, "2023/2024")
	_, err := d.Download(context.Background())
	var se *transport.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Empty(t, d.CachedFiles())
}

func TestDiscover(t *testing.T) {
	srv := httptest.NewServer(&footballDataServer{
		hits: map[string]int{},
		body: map[string]string{"/" + LeagueIndexPage: indexPage},
	})
	defer srv.Close()

	d := newDownloader(t, srv)
	files, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, srv.URL+"/mmz4281/2425/E0.csv", files[0].URL)
}
