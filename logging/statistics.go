package logging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// visitorWindow is how far back a visitor counts as recent.
const visitorWindow = 24 * time.Hour

// popularDomainsShown is how many domains the dev-mode statistics list.
const popularDomainsShown = 5

// Statistics collects visitor and report request counts for the dashboard.
type Statistics struct {
	UniqueVisitors  map[string]time.Time `json:"uniqueVisitors"`  // IP -> last visit
	ReportRequests  int                  `json:"reportRequests"`  // total report submissions
	ErrorCount      int                  `json:"errorCount"`      // failed submissions
	PopularDomains  map[string]int       `json:"popularDomains"`  // domain -> count
	AverageLoadTime float64              `json:"averageLoadTime"` // milliseconds
	TotalLoadTime   float64              `json:"totalLoadTime"`
	RequestCount    int                  `json:"requestCount"`
	LastPersisted   time.Time            `json:"lastPersisted"`

	path    string
	devMode bool
	now     func() time.Time
	mutex   sync.RWMutex
	writeMu sync.Mutex
}

// DomainCount is one entry of the popular domains list.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// NewStatistics creates an empty collector persisted at path. Full
// statistics, including searched domains, are only exposed in dev mode.
func NewStatistics(path string, devMode bool) *Statistics {
	return &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		PopularDomains: make(map[string]int),
		path:           path,
		devMode:        devMode,
		now:            time.Now,
	}
}

// TrackVisitor records a visit from ip.
func (s *Statistics) TrackVisitor(ip string) {
	if ip == "" {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = s.now()
}

// cleanDomain reduces user input to a bare host name. Local hosts are not
// tracked and yield "".
func cleanDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}
	if !strings.Contains(domain, "://") {
		domain = "http://" + domain
	}

	u, err := url.Parse(domain)
	if err != nil || u.Hostname() == "" {
		return ""
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return ""
	}
	return host
}

// TrackReport records a report submission and how long it took.
func (s *Statistics) TrackReport(domain string, loadTime time.Duration, hasError bool) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ReportRequests++
	if cleaned := cleanDomain(domain); cleaned != "" {
		s.PopularDomains[cleaned]++
	}
	if hasError {
		s.ErrorCount++
	}

	s.TotalLoadTime += float64(loadTime) / float64(time.Millisecond)
	s.RequestCount++
	s.AverageLoadTime = s.TotalLoadTime / float64(s.RequestCount)

	return s.ReportRequests
}

// UniqueVisitorsCount returns the number of visitors seen in the last 24 hours.
func (s *Statistics) UniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.uniqueVisitorsLocked()
}

func (s *Statistics) uniqueVisitorsLocked() int {
	cutoff := s.now().Add(-visitorWindow)
	count := 0
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// TopDomains returns the n most searched domains, most frequent first.
func (s *Statistics) TopDomains(n int) []DomainCount {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.topDomainsLocked(n)
}

func (s *Statistics) topDomainsLocked(n int) []DomainCount {
	all := make([]DomainCount, 0, len(s.PopularDomains))
	for domain, count := range s.PopularDomains {
		all = append(all, DomainCount{Domain: domain, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Domain < all[j].Domain
	})
	return all[:min(max(n, 0), len(all))]
}

// ErrorRate returns failed submissions as a percentage.
func (s *Statistics) ErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.errorRateLocked()
}

func (s *Statistics) errorRateLocked() float64 {
	if s.ReportRequests == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.ReportRequests) * 100
}

// GetStatistics returns the statistics for the API. Searched domains are
// left out unless dev mode is on.
func (s *Statistics) GetStatistics() map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := map[string]any{
		"uniqueVisitors24h": s.uniqueVisitorsLocked(),
		"totalRequests":     s.ReportRequests,
		"errorRate":         s.errorRateLocked(),
		"averageLoadTime":   s.AverageLoadTime,
	}
	if s.devMode {
		result["popularDomains"] = s.topDomainsLocked(popularDomainsShown)
	}
	return result
}

// Save writes the statistics to disk through a temporary file.
func (s *Statistics) Save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mutex.Lock()
	s.LastPersisted = s.now()
	data, err := json.Marshal(s)
	s.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create statistics directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("could not write statistics file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("could not replace statistics file: %w", err)
	}
	return nil
}

// Load reads previously saved statistics. A missing file is not an error.
func (s *Statistics) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.PopularDomains == nil {
		s.PopularDomains = make(map[string]int)
	}
	return nil
}
