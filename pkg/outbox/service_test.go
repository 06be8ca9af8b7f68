package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cafeconecta/cafeconecta-backend/pkg/db/models"
	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	"github.com/cafeconecta/cafeconecta-backend/pkg/outbox/payloads"
)

const outboxSchema = `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.Exec(outboxSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		_ = sqlDB.Close()
	})
	return conn
}

func TestEmitStoresEnvelope(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(NewRepository(conn), nil)

	lotID := uuid.New()
	producerID := uuid.New()
	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventLotDeleted,
			AggregateType: enums.AggregateLot,
			AggregateID:   lotID,
			Actor:         &ActorRef{UserID: producerID, Role: "producer"},
			Data: payloads.LotDeletedEvent{
				LotID:      lotID,
				ProducerID: producerID,
				DeletedAt:  time.Now(),
			},
		})
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	var row models.OutboxEvent
	if err := conn.First(&row).Error; err != nil {
		t.Fatalf("load event: %v", err)
	}
	if row.EventType != enums.EventLotDeleted {
		t.Fatalf("event type mismatch: %s", row.EventType)
	}
	if row.PublishedAt != nil {
		t.Fatal("new event must be unpublished")
	}

	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Version != 1 {
		t.Fatalf("expected default version 1, got %d", envelope.Version)
	}
	if envelope.Actor == nil || envelope.Actor.UserID != producerID {
		t.Fatalf("actor not carried: %+v", envelope.Actor)
	}
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(newTestDB(t)), nil)
	if err := svc.Emit(context.Background(), nil, DomainEvent{}); err == nil {
		t.Fatal("expected error without transaction")
	}
}

func TestRepositoryPublishCycle(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)

	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventDealClosed,
		AggregateType: enums.AggregateNegotiation,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
	}
	if err := conn.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}

	pending, err := repo.FetchUnpublished(10)
	if err != nil {
		t.Fatalf("fetch unpublished: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending event, got %d", len(pending))
	}

	if err := repo.MarkPublished(event.ID); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	pending, err = repo.FetchUnpublished(10)
	if err != nil {
		t.Fatalf("fetch after publish: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected drained outbox, got %d rows", len(pending))
	}
}
