package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sanvivo/price-dashboard/internal/metrics"
	"github.com/sanvivo/price-dashboard/internal/storage"
)

// StorageKey is the fixed key the group record is stored under.
const StorageKey = "productGroups"

// Store persists a Collection as a single record. Reads fail soft and writes
// are best effort: neither ever changes the caller's in-memory state.
type Store struct {
	storage storage.Storage
	key     string
	metrics *metrics.Recorder
	logger  *zerolog.Logger
}

// NewStore creates a group store on top of a storage backend.
func NewStore(s storage.Storage, recorder *metrics.Recorder, logger *zerolog.Logger) *Store {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "group_store").Logger()
	return &Store{
		storage: s,
		key:     StorageKey,
		metrics: recorder,
		logger:  &l,
	}
}

// Load reads the persisted collection. Missing or malformed data yields a
// fresh collection with only the empty default group.
func (s *Store) Load(ctx context.Context) Collection {
	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			s.logger.Debug().Str("key", s.key).Msg("No saved groups, starting with defaults")
			s.metrics.RecordGroupFallback("missing")
		case errors.Is(err, storage.ErrCorrupt):
			s.logger.Warn().Err(err).Str("key", s.key).Msg("Saved groups are malformed, starting with defaults")
			s.metrics.RecordGroupFallback("malformed")
		default:
			s.logger.Warn().Err(err).Str("key", s.key).Msg("Failed to read saved groups, starting with defaults")
			s.metrics.RecordGroupFallback("unreadable")
		}
		return New()
	}

	c, err := Unmarshal(data)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("Saved groups are malformed, starting with defaults")
		s.metrics.RecordGroupFallback("malformed")
		return New()
	}

	s.logger.Debug().Int("groups", c.Len()).Msg("Loaded groups")
	return c
}

// Save writes the whole collection as one unit. Errors are logged and returned;
// callers are free to ignore them.
func (s *Store) Save(ctx context.Context, c Collection) error {
	data, err := Marshal(c)
	if err == nil {
		err = s.storage.Put(ctx, s.key, data)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("Failed to save groups")
		s.metrics.RecordGroupWrite(false)
		return fmt.Errorf("failed to save groups: %w", err)
	}

	s.metrics.RecordGroupWrite(true)
	s.logger.Debug().Int("groups", c.Len()).Msg("Saved groups")
	return nil
}

// Reset deletes the persisted record.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to reset groups: %w", err)
	}
	return nil
}
