package repos

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Creator{}, &types.Fan{}, &types.FanFact{},
		&types.FanPreference{}, &types.FanLifecycleEvent{}, &types.FanTransaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestFanRepoGetByExternalID(t *testing.T) {
	db := openTestDB(t)
	repo := NewFanRepo(db, testLogger(t))

	creatorID := uuid.New()
	fan := types.Fan{
		ID:         uuid.New(),
		CreatorID:  creatorID,
		OfapiFanID: "fan-123",
		Stage:      "engaged",
	}
	if err := db.Create(&fan).Error; err != nil {
		t.Fatalf("seed fan: %v", err)
	}
	for i := 0; i < 3; i++ {
		confirmed := time.Now().Add(-time.Duration(i) * 24 * time.Hour)
		fact := types.FanFact{
			ID:              uuid.New(),
			FanID:           fan.ID,
			Key:             "pet",
			Value:           "golden retriever",
			Confidence:      0.8,
			LastConfirmedAt: &confirmed,
		}
		if err := db.Create(&fact).Error; err != nil {
			t.Fatalf("seed fact: %v", err)
		}
	}

	got, err := repo.GetByExternalID(creatorID, "fan-123", nil)
	if err != nil {
		t.Fatalf("GetByExternalID: %v", err)
	}
	if got == nil {
		t.Fatal("expected fan, got nil")
	}
	if got.Stage != "engaged" {
		t.Errorf("stage = %q, want engaged", got.Stage)
	}
	if len(got.Facts) != 3 {
		t.Fatalf("facts = %d, want 3", len(got.Facts))
	}
	// Facts preload orders by last confirmation, newest first.
	if got.Facts[0].ConfirmedAt().Before(got.Facts[2].ConfirmedAt()) {
		t.Errorf("facts not ordered by recency: %v then %v", got.Facts[0].ConfirmedAt(), got.Facts[2].ConfirmedAt())
	}
}

func TestFanRepoGetByExternalIDMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewFanRepo(db, testLogger(t))

	got, err := repo.GetByExternalID(uuid.New(), "nope", nil)
	if err != nil {
		t.Fatalf("GetByExternalID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil fan for unknown id, got %+v", got)
	}
}
