package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fantasy-edge/internal/fantasy"
	"github.com/jstittsworth/fantasy-edge/internal/providers"
)

// LinesFetcher pulls the current prop board from a vendor.
type LinesFetcher interface {
	FetchLines(ctx context.Context) ([]fantasy.Line, error)
}

// linesBoardSource keys the redis copy of the normalized board.
const linesBoardSource = "underdog"

// LinesService resolves prop lines through a layered chain: the redis
// board cache when one is configured, then a fresh file cache, then a
// live fetch (written back to both caches), then an offline lines file.
// A scheduled refresh keeps the caches warm between requests.
type LinesService struct {
	fetcher LinesFetcher
	cache   Cache
	logger  *logrus.Logger
	cron    *cron.Cron

	mu        sync.Mutex
	isRunning bool

	fetchEnabled bool
	cachePath    string
	cacheTTL     time.Duration
	offlinePath  string
	schedule     string
}

type LinesOptions struct {
	FetchEnabled bool
	CachePath    string
	CacheTTL     time.Duration
	OfflinePath  string
	// Schedule is a cron spec for background refresh, e.g. "@every 1h".
	Schedule string
}

func NewLinesService(fetcher LinesFetcher, cache Cache, opts LinesOptions, logger *logrus.Logger) *LinesService {
	return &LinesService{
		fetcher:      fetcher,
		cache:        cache,
		logger:       logger,
		cron:         cron.New(),
		fetchEnabled: opts.FetchEnabled,
		cachePath:    opts.CachePath,
		cacheTTL:     opts.CacheTTL,
		offlinePath:  opts.OfflinePath,
		schedule:     opts.Schedule,
	}
}

// GetLines returns the best available lines board. A failed live fetch
// is not an error; the offline file is the fallback and an empty board
// the last resort.
func (s *LinesService) GetLines(ctx context.Context) []fantasy.Line {
	if s.cache != nil {
		var lines []fantasy.Line
		if err := s.cache.Get(ctx, LinesCacheKey(linesBoardSource), &lines); err == nil && len(lines) > 0 {
			return lines
		}
	}

	if lines, ok := s.readCache(); ok {
		return lines
	}

	if s.fetchEnabled && s.fetcher != nil {
		lines, err := s.Refresh(ctx)
		if err == nil && len(lines) > 0 {
			return lines
		}
		if err != nil {
			s.logger.Warnf("Live lines fetch failed, falling back to offline file: %v", err)
		}
	}

	lines, err := LoadOfflineLines(s.offlinePath)
	if err != nil {
		s.logger.Warnf("No offline lines available at %s: %v", s.offlinePath, err)
		return nil
	}
	return lines
}

// Refresh fetches the live board and rewrites the file and redis caches.
func (s *LinesService) Refresh(ctx context.Context) ([]fantasy.Line, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("no lines fetcher configured")
	}
	lines, err := s.fetcher.FetchLines(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		if err := s.writeCache(lines); err != nil {
			s.logger.Warnf("Failed to write lines cache: %v", err)
		}
		if s.cache != nil {
			ttl := s.cacheTTL
			if ttl <= 0 {
				ttl = time.Hour
			}
			if err := s.cache.Set(ctx, LinesCacheKey(linesBoardSource), lines, ttl); err != nil {
				s.logger.Warnf("Failed to cache lines board: %v", err)
			}
		}
	}
	return lines, nil
}

// Start begins the scheduled cache refresh.
func (s *LinesService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("lines refresh is already running")
	}
	if !s.fetchEnabled || s.fetcher == nil {
		return fmt.Errorf("lines refresh requires a configured fetcher")
	}

	schedule := s.schedule
	if schedule == "" {
		schedule = "@every 1h"
	}
	_, err := s.cron.AddFunc(schedule, s.refreshJob)
	if err != nil {
		return fmt.Errorf("failed to schedule lines refresh: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	// Warm the cache immediately
	go s.refreshJob()

	s.logger.Info("Lines refresh service started")
	return nil
}

// Stop halts the scheduled refresh.
func (s *LinesService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Lines refresh service stopped")
}

func (s *LinesService) refreshJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lines, err := s.Refresh(ctx)
	if err != nil {
		s.logger.Errorf("Scheduled lines refresh failed: %v", err)
		return
	}
	s.logger.Infof("Scheduled lines refresh cached %d lines", len(lines))
}

// Status returns the current refresh scheduler state.
func (s *LinesService) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	cacheAge := ""
	if info, err := os.Stat(s.cachePath); err == nil {
		cacheAge = time.Since(info.ModTime()).Round(time.Second).String()
	}

	return map[string]interface{}{
		"is_running":    s.isRunning,
		"fetch_enabled": s.fetchEnabled,
		"schedule":      s.schedule,
		"next_runs":     nextRuns,
		"cache_path":    s.cachePath,
		"cache_age":     cacheAge,
	}
}

// readCache returns the cached board when the file is younger than the
// TTL and holds at least one usable line.
func (s *LinesService) readCache() ([]fantasy.Line, bool) {
	if s.cachePath == "" {
		return nil, false
	}
	info, err := os.Stat(s.cachePath)
	if err != nil {
		return nil, false
	}
	if s.cacheTTL > 0 && time.Since(info.ModTime()) > s.cacheTTL {
		return nil, false
	}
	lines, err := LoadOfflineLines(s.cachePath)
	if err != nil || len(lines) == 0 {
		return nil, false
	}
	return lines, true
}

func (s *LinesService) writeCache(lines []fantasy.Line) error {
	if s.cachePath == "" {
		return nil
	}
	if dir := filepath.Dir(s.cachePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return os.WriteFile(s.cachePath, data, 0o644)
}

// LoadOfflineLines reads a normalized lines JSON file. Items that do not
// carry a player, category and value are dropped.
func LoadOfflineLines(path string) ([]fantasy.Line, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse lines file: %w", err)
	}
	return providers.ExtractNormalizedLines(payload), nil
}
