// Package store owns the persisted farmkeeper aggregate and its load/save
// lifecycle. It is the sole persistence boundary: every handler loads the
// whole aggregate, mutates it in memory, and saves it back before producing
// any outward effect tied to that mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/farmkeeper/internal/logging"
	"github.com/dmitrijs2005/farmkeeper/internal/models"
)

// Aggregate is the single persisted document. Credentials is a namespace
// reserved for future use; it round-trips untouched.
type Aggregate struct {
	Farms       []*models.Farm                       `json:"farms"`
	States      map[string]*models.ConversationState `json:"user_states"`
	Credentials map[string]json.RawMessage           `json:"credentials"`
}

// FindFarm returns the farm whose name matches under case-insensitive
// comparison, or nil.
func (a *Aggregate) FindFarm(name string) *models.Farm {
	for _, f := range a.Farms {
		if f.NameMatches(name) {
			return f
		}
	}
	return nil
}

// FindFarmByID returns the farm with the given ID, or nil.
func (a *Aggregate) FindFarmByID(id string) *models.Farm {
	for _, f := range a.Farms {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// NameTaken reports whether any farm already uses name (case-insensitive).
func (a *Aggregate) NameTaken(name string) bool {
	return a.FindFarm(name) != nil
}

// DeleteFarm removes the farm with the given ID and reports whether it
// existed. Its login entries and history go with it.
func (a *Aggregate) DeleteFarm(id string) bool {
	for i, f := range a.Farms {
		if f.ID == id {
			a.Farms = append(a.Farms[:i], a.Farms[i+1:]...)
			return true
		}
	}
	return false
}

// Store reads and writes the aggregate as one JSON document.
type Store struct {
	path   string
	logger logging.Logger
}

func New(path string, logger logging.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the aggregate from disk. A missing or unparseable file yields a
// fresh empty aggregate: corruption resets state but never fails the caller.
// Farms written by older versions are backfilled with empty login maps,
// history logs, and mark maps so they stay loadable after schema growth.
func (s *Store) Load(ctx context.Context) *Aggregate {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn(ctx, "reading data file", "path", s.path, "error", err)
		}
		return emptyAggregate()
	}

	var agg Aggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		s.logger.Error(ctx, "data file corrupt, resetting to empty aggregate", "path", s.path, "error", err)
		return emptyAggregate()
	}

	backfill(&agg)
	return &agg
}

// Save writes the whole aggregate back to disk. The document goes to a
// sibling temp file first and is renamed over the target, so a crash
// mid-write can never leave a truncated file where the next Load would
// find it.
func (s *Store) Save(ctx context.Context, agg *Aggregate) error {
	data, err := json.MarshalIndent(agg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func emptyAggregate() *Aggregate {
	return &Aggregate{
		Farms:       []*models.Farm{},
		States:      map[string]*models.ConversationState{},
		Credentials: map[string]json.RawMessage{},
	}
}

func backfill(agg *Aggregate) {
	if agg.Farms == nil {
		agg.Farms = []*models.Farm{}
	}
	if agg.States == nil {
		agg.States = map[string]*models.ConversationState{}
	}
	if agg.Credentials == nil {
		agg.Credentials = map[string]json.RawMessage{}
	}
	for _, f := range agg.Farms {
		if f.Logins == nil {
			f.Logins = map[string]models.LoginEntry{}
		}
		if f.History == nil {
			f.History = []models.HistoryEntry{}
		}
		if f.Marks == nil {
			f.Marks = map[int]string{}
		}
	}
}
