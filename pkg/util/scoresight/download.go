package scoresight

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/transport"
)

// LeagueIndexPage lists the England CSV files on football-data.co.uk
const LeagueIndexPage = "englandm.php"

var seasonLinkPattern = regexp.MustCompile(`mmz4281/(\d{4})/([A-Za-z0-9]+)\.csv$`)

// SeasonFile is one downloadable results file
type SeasonFile struct {
	Season string `json:"season"` // YYYY/YYYY
	League string `json:"league"`
	URL    string `json:"url"`
}

// FootballDataURL is the results CSV of league in season, e.g. <base>/mmz4281/2425/E0.csv
func FootballDataURL(base, season, league string) (string, error) {
	native, err := SeasonToNative(season)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/mmz4281/%s/%s.csv", strings.TrimRight(base, "/"), native, league), nil
}

// DiscoverSeasonFiles finds the CSV links for league on a football-data index page, newest first.
// Relative links are resolved against base.
func DiscoverSeasonFiles(html, base, league string) ([]SeasonFile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse index page: %w", err)
	}
	seen := map[string]bool{}
	var files []SeasonFile
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m := seasonLinkPattern.FindStringSubmatch(strings.TrimSpace(href))
		if m == nil || !strings.EqualFold(m[2], league) {
			return
		}
		season, err := ParseSeason(m[1])
		if err != nil || seen[season] {
			return
		}
		seen[season] = true
		url := href
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			url = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
		}
		files = append(files, SeasonFile{Season: season, League: m[2], URL: url})
	})
	sort.Slice(files, func(i, j int) bool {
		return files[i].Season > files[j].Season
	})
	return files, nil
}

// Downloader keeps a local cache of football-data results files
type Downloader struct {
	cfg    *Config
	client *http.Client
	now    func() time.Time
}

// NewDownloader uses client, or the shared transport client when nil
func NewDownloader(cfg *Config, client *http.Client) *Downloader {
	return &Downloader{cfg: cfg, client: client, now: time.Now}
}

// CachePathFor is where the file of season is cached
func (d *Downloader) CachePathFor(season string) (string, error) {
	native, err := SeasonToNative(season)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.cfg.CachePath, fmt.Sprintf("%s_%s.csv", d.cfg.LeagueCode, native)), nil
}

// Discover reads the league index page and lists the seasons available for download
func (d *Downloader) Discover(ctx context.Context) ([]SeasonFile, error) {
	base := strings.TrimRight(d.cfg.DataBaseURL, "/")
	body, err := transport.Get(ctx, d.client, base+"/"+LeagueIndexPage)
	if err != nil {
		return nil, err
	}
	return DiscoverSeasonFiles(string(body), base, d.cfg.LeagueCode)
}

// Download fetches every configured season that is not cached yet and always refreshes the current one.
// Each file is parsed before it replaces the cached copy. Returns the cached paths, oldest season first.
func (d *Downloader) Download(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(d.cfg.CachePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", d.cfg.CachePath, err)
	}
	seasons := append([]string(nil), d.cfg.Seasons...)
	sort.Strings(seasons)

	var paths []string
	for _, season := range seasons {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path, err := d.CachePathFor(season)
		if err != nil {
			return paths, err
		}
		current := IsCurrentSeason(season, d.now())
		if _, err := os.Stat(path); err == nil && !current {
			logger.Debug("Using cached season file", path)
			paths = append(paths, path)
			continue
		}
		if err := d.fetchSeason(ctx, season, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (d *Downloader) fetchSeason(ctx context.Context, season, path string) error {
	url, err := FootballDataURL(d.cfg.DataBaseURL, season, d.cfg.LeagueCode)
	if err != nil {
		return err
	}
	logger.Info("Downloading season", season, url)
	body, err := transport.Get(ctx, d.client, url)
	if err != nil {
		return fmt.Errorf("failed to download season %s: %w", season, err)
	}
	matches, err := ParseFootballDataCSV(bytes.NewReader(body), url)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	logger.Inform("Cached season", season, len(matches), "matches", path)
	return nil
}

// CachedFiles lists the cached CSVs of the configured seasons that exist on disk
func (d *Downloader) CachedFiles() []string {
	var paths []string
	for _, season := range d.cfg.Seasons {
		path, err := d.CachePathFor(season)
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}
