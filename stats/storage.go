// Package stats persists monthly counters of report fetch outcomes.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seo-optimizer/dashboard/client"
)

const (
	monthLayout   = "2006-01"
	fileName      = "stats.json"
	flushInterval = 5 * time.Minute
	writeDebounce = time.Minute
)

// MonthlyStats counts report fetches by outcome for one month.
type MonthlyStats struct {
	Success            int       `json:"success"`
	APIErrors          int       `json:"api_errors"`
	NetworkErrors      int       `json:"network_errors"`
	MalformedResponses int       `json:"malformed_responses"`
	InvalidRequests    int       `json:"invalid_requests"`
	LastUpdated        time.Time `json:"last_updated"`
}

// Total is the number of fetches recorded for the month.
func (m MonthlyStats) Total() int {
	return m.Success + m.APIErrors + m.NetworkErrors + m.MalformedResponses + m.InvalidRequests
}

// Storage handles persistent storage of statistics
type Storage struct {
	mutex       sync.RWMutex
	writeMu     sync.Mutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	stop        chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
	log         *zap.Logger
}

// NewStorage loads dataDir/stats.json if present and starts the background
// writer. Call Shutdown to stop it and flush.
func NewStorage(dataDir string, log *zap.Logger) (*Storage, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, fileName),
		writeBuffer: make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		now:         time.Now,
		log:         log,
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.stats)
}

func (s *Storage) save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

func (s *Storage) flush() {
	if err := s.save(); err != nil {
		s.log.Error("Failed to persist monthly stats", zap.Error(err), zap.String("path", s.filePath))
	}
}

func (s *Storage) backgroundWriter() {
	defer close(s.done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
			s.flush()
		case <-ticker.C:
			s.flush()
		case <-s.stop:
			s.flush()
			return
		}
	}
}

func (s *Storage) currentMonth() string {
	return s.now().Format(monthLayout)
}

// requestWrite signals that a write to disk is needed
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// write already pending
	}
}

// IncrementOutcome counts one fetch under the current month. Unknown
// outcomes are ignored.
func (s *Storage) IncrementOutcome(outcome string) {
	now := s.now()
	month := now.Format(monthLayout)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats, exists := s.stats[month]
	if !exists {
		stats = &MonthlyStats{}
	}

	switch outcome {
	case client.OutcomeSuccess:
		stats.Success++
	case client.OutcomeAPIError:
		stats.APIErrors++
	case client.OutcomeNetworkError:
		stats.NetworkErrors++
	case client.OutcomeMalformedResponse:
		stats.MalformedResponses++
	case client.OutcomeInvalidRequest:
		stats.InvalidRequests++
	default:
		return
	}
	s.stats[month] = stats
	stats.LastUpdated = now

	if now.Sub(s.lastWrite) > writeDebounce {
		s.requestWrite()
		s.lastWrite = now
	}
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	stats, _ := s.GetMonthlyStats(s.currentMonth())
	return stats
}

// GetMonthlyStats returns statistics for a "YYYY-MM" month.
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return *stats, true
	}
	return MonthlyStats{}, false
}

// GetAllMonths returns all months with statistics, newest first.
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// Cleanup keeps the current month and the retainMonths-1 months before it.
// retainMonths below 1 is treated as 1.
func (s *Storage) Cleanup(retainMonths int) {
	retainMonths = max(retainMonths, 1)
	now := s.now()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	keep := make(map[string]struct{}, retainMonths)
	for i := 0; i < retainMonths; i++ {
		keep[current.AddDate(0, -i, 0).Format(monthLayout)] = struct{}{}
	}

	s.mutex.Lock()
	removed := 0
	for key := range s.stats {
		if _, ok := keep[key]; !ok {
			delete(s.stats, key)
			removed++
		}
	}
	s.mutex.Unlock()

	s.requestWrite()

	s.log.Info("Cleaned up monthly stats",
		zap.Int("retain_months", retainMonths),
		zap.Int("removed", removed),
	)
}

// Shutdown stops the background writer after a final write.
func (s *Storage) Shutdown() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
