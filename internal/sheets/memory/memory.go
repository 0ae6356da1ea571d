// Package memory is an in-process SummaryWriter used in tests and local
// development when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"julius/internal/core"
	ports "julius/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	exports map[string][]core.HomeSummary
}

var _ ports.SummaryWriter = (*Store)(nil)

func New() *Store {
	return &Store{exports: make(map[string][]core.HomeSummary)}
}

func (s *Store) WriteMonthSummary(_ context.Context, userID string, summary core.HomeSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := exportKey(userID, summary.Year, summary.Month)
	s.exports[key] = append(s.exports[key], summary)
	return nil
}

// Exports returns every snapshot written for the given user and period, in
// write order.
func (s *Store) Exports(userID string, year, month int) []core.HomeSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]core.HomeSummary(nil), s.exports[exportKey(userID, year, month)]...)
}

func exportKey(userID string, year, month int) string {
	return fmt.Sprintf("%s-%d-%d", userID, year, month)
}
