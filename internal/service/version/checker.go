package version

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"panwatch/pkg/metrics"
	"panwatch/pkg/web"
)

// Status is the update-check payload served on the system endpoint.
type Status struct {
	Enabled         bool   `json:"enabled"`
	Source          string `json:"source"`
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
	ReleaseURL      string `json:"release_url"`
	CheckedAt       string `json:"checked_at"`
	Error           string `json:"error,omitempty"`
}

// Config controls the update checker.
type Config struct {
	Enabled  bool
	Repo     string // namespace/repository on the registry
	CacheTTL time.Duration
}

// Checker looks up the newest semver image tag on the container registry
// and compares it against the running version. Results are cached.
type Checker struct {
	cfg      Config
	client   *web.Client
	recorder *metrics.Recorder

	mu        sync.Mutex
	fetchedAt time.Time
	latest    string
	url       string
	fetchErr  string
}

func NewChecker(cfg Config, recorder *metrics.Recorder) *Checker {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &Checker{
		cfg:      cfg,
		client:   web.NewClient(web.WithTimeout(8 * time.Second)),
		recorder: recorder,
	}
}

// Check returns the current update status for the running version.
func (c *Checker) Check(ctx context.Context, currentVersion string) Status {
	tagsURL := fmt.Sprintf("https://hub.docker.com/r/%s/tags", c.cfg.Repo)
	status := Status{
		Enabled:        c.cfg.Enabled,
		Source:         "docker",
		CurrentVersion: normalize(currentVersion),
		ReleaseURL:     tagsURL,
		CheckedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if !c.cfg.Enabled {
		status.Error = "disabled"
		return status
	}

	latest, url, fetchErr := c.cachedLatest(ctx)
	status.LatestVersion = latest
	status.Error = fetchErr
	if url != "" {
		status.ReleaseURL = url
	}

	cur, curOK := parseSemver(status.CurrentVersion)
	lat, latOK := parseSemver(latest)
	status.UpdateAvailable = curOK && latOK && semverLess(cur, lat)
	return status
}

func (c *Checker) cachedLatest(ctx context.Context) (latest, url, fetchErr string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.latest != "" && time.Since(c.fetchedAt) <= c.cfg.CacheTTL {
		return c.latest, c.url, c.fetchErr
	}

	latest, url, fetchErr = c.fetchLatestTag(ctx)
	c.fetchedAt = time.Now()
	c.latest = latest
	c.url = url
	c.fetchErr = fetchErr
	return latest, url, fetchErr
}

type tagsResponse struct {
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
}

func (c *Checker) fetchLatestTag(ctx context.Context) (latest, url, fetchErr string) {
	parts := strings.Split(strings.Trim(c.cfg.Repo, "/"), "/")
	if len(parts) != 2 {
		return "", "", "invalid_repo"
	}
	api := fmt.Sprintf(
		"https://hub.docker.com/v2/namespaces/%s/repositories/%s/tags?page_size=100",
		parts[0], parts[1],
	)

	var resp tagsResponse
	start := time.Now()
	err := c.client.GetJSON(ctx, api, &resp)
	c.recorder.UpstreamRequest("registry", time.Since(start), err)
	if err != nil {
		return "", "", "fetch_failed"
	}

	var (
		best    [3]int
		bestTag string
	)
	for _, r := range resp.Results {
		sem, ok := parseSemver(r.Name)
		if !ok {
			continue
		}
		if bestTag == "" || semverLess(best, sem) {
			best = sem
			bestTag = normalize(r.Name)
		}
	}
	if bestTag == "" {
		return "", "", "no_semver_tags"
	}
	return bestTag, fmt.Sprintf("https://hub.docker.com/r/%s/tags", c.cfg.Repo), ""
}

func normalize(version string) string {
	return strings.TrimLeft(strings.TrimSpace(version), "vV")
}

func parseSemver(version string) ([3]int, bool) {
	parts := strings.Split(normalize(version), ".")
	if len(parts) != 3 {
		return [3]int{}, false
	}
	var out [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return [3]int{}, false
		}
		out[i] = n
	}
	return out, true
}

func semverLess(a, b [3]int) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
