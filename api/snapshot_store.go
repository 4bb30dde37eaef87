package api

import (
	"sort"
	"strings"
	"sync"
	"time"

	"wunderground-service/models"
)

// SnapshotStore holds the latest snapshot per location and feature set
type SnapshotStore struct {
	data  map[string]map[string]models.Snapshot // key is location, then feature set
	mutex sync.RWMutex
}

// NewSnapshotStore creates a new in-memory snapshot store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string]map[string]models.Snapshot),
	}
}

// FeatureKey identifies a feature set, e.g. "conditions,forecast"
func FeatureKey(features []string) string {
	return strings.Join(features, ",")
}

// Update adds or replaces the snapshot for its location and feature set
func (s *SnapshotStore) Update(snapshot models.Snapshot) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.data[snapshot.Location]; !exists {
		s.data[snapshot.Location] = make(map[string]models.Snapshot)
	}
	s.data[snapshot.Location][FeatureKey(snapshot.Resources)] = snapshot
}

// Get retrieves the snapshot for a location and feature set
func (s *SnapshotStore) Get(location string, features []string) (models.Snapshot, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	byFeatures, exists := s.data[location]
	if !exists {
		return models.Snapshot{}, false
	}
	snapshot, exists := byFeatures[FeatureKey(features)]
	return snapshot, exists
}

// Locations returns all locations with data, sorted
func (s *SnapshotStore) Locations() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	locations := make([]string, 0, len(s.data))
	for loc := range s.data {
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	return locations
}

// PruneOlderThan removes snapshots fetched more than maxAge ago
func (s *SnapshotStore) PruneOlderThan(maxAge time.Duration) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	prunedCount := 0

	for location, byFeatures := range s.data {
		for key, snapshot := range byFeatures {
			if snapshot.Fetched.Before(cutoff) {
				delete(byFeatures, key)
				prunedCount++
			}
		}

		// If location has no more snapshots, remove it
		if len(byFeatures) == 0 {
			delete(s.data, location)
		}
	}

	return prunedCount
}
