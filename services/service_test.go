package services

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/LaCagee/tutorConnect/database"
	"github.com/LaCagee/tutorConnect/events"
	"github.com/LaCagee/tutorConnect/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTest gives each test a fresh in-memory database, an empty review gate
// and an in-process bus, mirroring how the service binaries wire themselves.
func setupTest(t *testing.T) *events.MemoryBus {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Session{},
		&models.Review{},
		&models.User{},
		&models.RatingApplication{},
	))
	database.DB = db

	Gate = NewReviewGate()

	bus := events.NewMemoryBus()
	events.Use(bus)
	return bus
}

// eventRecorder collects every envelope delivered for a topic.
type eventRecorder struct {
	mu   sync.Mutex
	data [][]byte
}

func record(t *testing.T, bus *events.MemoryBus, topic string) *eventRecorder {
	t.Helper()

	recorder := &eventRecorder{}
	require.NoError(t, bus.Subscribe(topic, func(data []byte) error {
		recorder.mu.Lock()
		defer recorder.mu.Unlock()
		recorder.data = append(recorder.data, data)
		return nil
	}))
	return recorder
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

func (r *eventRecorder) last(t *testing.T, payload interface{}) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.data)
	require.NoError(t, json.Unmarshal(r.data[len(r.data)-1], payload))
}
