package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/AnshRaj112/serenify-mood/internal/database"
	"github.com/AnshRaj112/serenify-mood/internal/models"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

var (
	alice   = models.Session{UserID: "user_alice", Email: "alice@example.com"}
	bob     = models.Session{UserID: "user_bob", Email: "bob@example.com"}
	special = models.Session{UserID: SpecialUserID, Email: "demo@example.com", SpecialAccess: true}
)

// fixedClock returns a clock that advances one second per call so
// created_at values stay ordered.
func fixedClock() func() time.Time {
	cur := testNow
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func newTestRecords(t *testing.T) (*RecordStore, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	r := NewRecordStore(store).WithClock(fixedClock()).WithRand(rand.New(rand.NewSource(42)))
	return r, store
}

func day(offset int) string {
	return testNow.AddDate(0, 0, offset).Format(models.DateLayout)
}
