// Package journal records every decision-engine outcome in an append-only
// write-ahead log for post-hoc audit of why trades did or did not happen.
package journal

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"
)

const (
	DefaultDir = "./wal/decisions"

	segmentThreshold = 1000
	maxSegments      = 100

	decisionKeyPrefix = "decision_"
)

// Outcome is the terminal result of one evaluation cycle for one pair.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeBlocked   Outcome = "blocked"
	OutcomeHold      Outcome = "hold"
	OutcomeSubmitted Outcome = "submitted"
)

// Event is one journaled decision.
type Event struct {
	Pair      string          `json:"pair"`
	Outcome   Outcome         `json:"outcome"`
	Reason    string          `json:"reason,omitempty"`
	Side      string          `json:"side,omitempty"`
	Size      decimal.Decimal `json:"size,omitempty"`
	OrderID   string          `json:"order_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Journal persists decision events in a WAL.
type Journal struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// New initializes a WAL-backed decision journal in dir.
func New(dir string) (*Journal, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "journal_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init decision journal WAL")
	}

	return &Journal{wal: wal}, nil
}

// Append writes one decision event to the WAL.
func (j *Journal) Append(event Event) error {
	if j == nil || j.wal == nil {
		return errors.New("decision journal is not initialized")
	}
	if event.Pair == "" {
		return errors.New("decision event pair is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal decision event")
	}

	key := fmt.Sprintf("%s%s", decisionKeyPrefix, event.Pair)

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.wal.Write(j.wal.CurrentIndex()+1, key, payload)
}

// Events replays every journaled decision in write order. Intended for
// post-hoc audit and tests, not the hot path.
func (j *Journal) Events() ([]Event, error) {
	if j == nil || j.wal == nil {
		return nil, errors.New("decision journal is not initialized")
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.wal.CurrentIndex() == 0 {
		return nil, nil
	}

	var events []Event
	for msg := range j.wal.Iterator() {
		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return nil, errors.Wrap(err, "decode decision event")
		}
		events = append(events, event)
	}
	return events, nil
}

// Close closes the underlying WAL.
func (j *Journal) Close() error {
	if j == nil || j.wal == nil {
		return errors.New("decision journal is not initialized")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.wal.Close()
}
