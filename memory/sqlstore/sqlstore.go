// Package sqlstore provides a MemoryStore backed by a SQL database through
// gorm. Each message is one row ordered by a per-thread sequence number; a
// save replaces the thread's rows inside one transaction.
package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/memory"
)

// MessageRecord is the row shape of one persisted message. Payload holds the
// JSON envelope so every role round-trips without extra columns.
type MessageRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ThreadID  string    `gorm:"size:64;not null;index:idx_thread_seq,priority:1"`
	Seq       int       `gorm:"not null;index:idx_thread_seq,priority:2"`
	Role      string    `gorm:"size:16;not null"`
	Payload   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName implements gorm's tabler interface.
func (MessageRecord) TableName() string { return "agentloop_messages" }

// Options configures the SQL store.
type Options struct {
	// MaxItems caps the messages kept per thread. Zero keeps everything.
	MaxItems int
	// AutoMigrate creates or updates the table on construction.
	AutoMigrate bool
}

// Store is a gorm-backed core.MemoryStore.
type Store struct {
	db       *gorm.DB
	maxItems int
}

var _ core.MemoryStore = (*Store)(nil)

// New creates a store on an open gorm handle.
func New(db *gorm.DB, optFns ...func(o *Options)) (*Store, error) {
	if db == nil {
		return nil, core.NewConfigurationError("sql store requires a database handle")
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.AutoMigrate {
		if err := db.AutoMigrate(&MessageRecord{}); err != nil {
			return nil, fmt.Errorf("migrate %s: %w", MessageRecord{}.TableName(), err)
		}
	}

	return &Store{db: db, maxItems: opts.MaxItems}, nil
}

// OpenMySQL opens a MySQL handle. parseTime and utf8mb4 are added to the DSN
// when absent.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, core.NewConfigurationError("mysql dsn is required")
	}

	dsn = ensureParam(dsn, "parseTime", "true")
	if !strings.Contains(dsn, "charset=") {
		dsn = ensureParam(dsn, "charset", "utf8mb4")
		dsn = ensureParam(dsn, "collation", "utf8mb4_unicode_ci")
	}

	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}

	return db, nil
}

// Load returns the thread's history ordered by sequence.
func (s *Store) Load(ctx context.Context, threadID string) ([]core.Message, error) {
	var rows []MessageRecord

	err := s.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}

	return fromRecords(rows)
}

// Save replaces the thread's rows in one transaction.
func (s *Store) Save(ctx context.Context, threadID string, history []core.Message) error {
	rows, err := toRecords(threadID, memory.Truncate(history, s.maxItems), time.Now())
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", threadID).Delete(&MessageRecord{}).Error; err != nil {
			return fmt.Errorf("clear thread %s: %w", threadID, err)
		}

		if len(rows) == 0 {
			return nil
		}

		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("insert thread %s: %w", threadID, err)
		}

		return nil
	})
}

func toRecords(threadID string, msgs []core.Message, now time.Time) ([]MessageRecord, error) {
	rows := make([]MessageRecord, len(msgs))

	for i, m := range msgs {
		payload, err := json.Marshal(core.ToEnvelope(m))
		if err != nil {
			return nil, fmt.Errorf("encode message %d: %w", i, err)
		}

		rows[i] = MessageRecord{
			ThreadID:  threadID,
			Seq:       i,
			Role:      string(m.Role()),
			Payload:   string(payload),
			CreatedAt: now,
		}
	}

	return rows, nil
}

func fromRecords(rows []MessageRecord) ([]core.Message, error) {
	envs := make([]core.Envelope, len(rows))

	for i, r := range rows {
		if err := json.Unmarshal([]byte(r.Payload), &envs[i]); err != nil {
			return nil, &core.Error{Kind: core.ErrConfiguration, Message: "malformed memory", Cause: err}
		}
	}

	return core.FromEnvelopes(envs)
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}
