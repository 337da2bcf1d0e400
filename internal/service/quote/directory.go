package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"panwatch/internal/domain/models"
	"panwatch/pkg/cache"
	"panwatch/pkg/logger"
	"panwatch/pkg/metrics"
	"panwatch/pkg/web"
)

const (
	directoryCacheKey = "stock_directory"
	directoryCacheTTL = 7 * 24 * time.Hour
	directoryPageSize = 100
	directoryWorkers  = 8
)

// Directory maintains the searchable mainland symbol list, fetched from
// the paginated upstream directory and cached for a week.
type Directory struct {
	client   *web.Client
	listURL  string
	cache    cache.BytesCache
	recorder *metrics.Recorder
	log      *logger.Logger

	mu sync.Mutex // serializes refreshes
}

func NewDirectory(listURL string, timeout time.Duration, c cache.BytesCache, recorder *metrics.Recorder, log *logger.Logger) *Directory {
	return &Directory{
		client:   web.NewClient(web.WithTimeout(timeout)),
		listURL:  listURL,
		cache:    c,
		recorder: recorder,
		log:      log.Named("directory"),
	}
}

// Search matches the query against symbol prefixes first, then name
// substrings, then symbol substrings, returning at most limit items.
func (d *Directory) Search(ctx context.Context, query string, market models.Market, limit int) ([]models.StockListItem, error) {
	stocks, err := d.list(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return []models.StockListItem{}, nil
	}

	type ranked struct {
		rank int
		item models.StockListItem
	}
	matches := make([]ranked, 0, limit*2)
	for _, s := range stocks {
		if market != "" && s.Market != market {
			continue
		}
		code := strings.ToUpper(s.Symbol)
		name := strings.ToUpper(s.Name)
		switch {
		case strings.HasPrefix(code, q):
			matches = append(matches, ranked{0, s})
		case strings.Contains(name, q):
			matches = append(matches, ranked{1, s})
		case strings.Contains(code, q):
			matches = append(matches, ranked{2, s})
		}
		if len(matches) >= limit*2 {
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]models.StockListItem, len(matches))
	for i, m := range matches {
		out[i] = m.item
	}
	return out, nil
}

// Refresh forces a re-fetch of the directory, replacing the cached copy.
func (d *Directory) Refresh(ctx context.Context) (int, error) {
	stocks, err := d.fetchAll(ctx)
	if err != nil {
		return 0, err
	}
	d.store(ctx, stocks)
	return len(stocks), nil
}

func (d *Directory) list(ctx context.Context) ([]models.StockListItem, error) {
	if raw, err := d.cache.Get(ctx, directoryCacheKey); err == nil {
		var stocks []models.StockListItem
		if err := json.Unmarshal(raw, &stocks); err == nil {
			return stocks, nil
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Another caller may have refreshed while we waited.
	if raw, err := d.cache.Get(ctx, directoryCacheKey); err == nil {
		var stocks []models.StockListItem
		if err := json.Unmarshal(raw, &stocks); err == nil {
			return stocks, nil
		}
	}

	stocks, err := d.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	d.store(ctx, stocks)
	return stocks, nil
}

func (d *Directory) store(ctx context.Context, stocks []models.StockListItem) {
	raw, err := json.Marshal(stocks)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, directoryCacheKey, raw, directoryCacheTTL); err != nil {
		d.log.Warn("directory cache store failed", logger.Error(err))
	}
}

type directoryPage struct {
	Data struct {
		Total int `json:"total"`
		Diff  []struct {
			Symbol string `json:"f12"`
			Name   string `json:"f14"`
		} `json:"diff"`
	} `json:"data"`
}

func (d *Directory) fetchAll(ctx context.Context) ([]models.StockListItem, error) {
	start := time.Now()

	first, err := d.fetchPage(ctx, 1)
	if err != nil {
		d.recorder.UpstreamRequest("directory", time.Since(start), err)
		return nil, err
	}

	stocks := pageItems(first)
	total := first.Data.Total
	if total <= directoryPageSize {
		d.recorder.UpstreamRequest("directory", time.Since(start), nil)
		return stocks, nil
	}

	pages := (total + directoryPageSize - 1) / directoryPageSize
	type result struct {
		page  int
		items []models.StockListItem
		err   error
	}

	jobs := make(chan int)
	results := make(chan result)
	var wg sync.WaitGroup
	for w := 0; w < directoryWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				p, err := d.fetchPage(ctx, page)
				if err != nil {
					results <- result{page: page, err: err}
					continue
				}
				results <- result{page: page, items: pageItems(p)}
			}
		}()
	}
	go func() {
		for page := 2; page <= pages; page++ {
			jobs <- page
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err != nil {
			d.log.Warn("directory page fetch failed",
				logger.Int("page", r.page),
				logger.Error(r.err),
			)
			continue
		}
		stocks = append(stocks, r.items...)
	}

	d.recorder.UpstreamRequest("directory", time.Since(start), nil)
	d.log.Info("stock directory refreshed", logger.Int("count", len(stocks)))
	return stocks, nil
}

func (d *Directory) fetchPage(ctx context.Context, page int) (*directoryPage, error) {
	params := url.Values{
		"po":     {"1"},
		"np":     {"1"},
		"fltt":   {"2"},
		"invt":   {"2"},
		"fid":    {"f12"},
		"fs":     {"m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"},
		"fields": {"f12,f14"},
		"pn":     {fmt.Sprint(page)},
		"pz":     {fmt.Sprint(directoryPageSize)},
	}
	var out directoryPage
	if err := d.client.GetJSON(ctx, d.listURL+"?"+params.Encode(), &out); err != nil {
		return nil, fmt.Errorf("directory page %d: %w", page, err)
	}
	return &out, nil
}

func pageItems(p *directoryPage) []models.StockListItem {
	items := make([]models.StockListItem, 0, len(p.Data.Diff))
	for _, d := range p.Data.Diff {
		items = append(items, models.StockListItem{
			Symbol: d.Symbol,
			Name:   d.Name,
			Market: models.MarketCN,
		})
	}
	return items
}
