package topic

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"namesmith/app/internal/llm"
)

// Repository defines persistence operations for the prompt cache and the
// query log.
type Repository interface {
	Lookup(ctx context.Context, promptText string) (*CacheEntry, error)
	Store(ctx context.Context, promptText string, items []llm.Item) error
	AppendQueryLog(ctx context.Context, promptText string) error
}

// GormRepository persists cache entries and query-log rows using a Gorm
// database connection.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormRepository{db: db, logger: logger}, nil
}

var _ Repository = (*GormRepository)(nil)

// Lookup returns the cache entry for the prompt's address, or nil when no
// entry exists. A miss is not an error.
func (r *GormRepository) Lookup(ctx context.Context, promptText string) (*CacheEntry, error) {
	if strings.TrimSpace(promptText) == "" {
		return nil, eris.New("prompt text is required")
	}

	address := Address(promptText)

	var entry CacheEntry
	err := r.db.WithContext(ctx).First(&entry, "address = ?", address).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"address": address}, err, "fetching cache entry by address")
		return nil, eris.Wrapf(err, "fetching cache entry for address: %s", address)
	}

	return &entry, nil
}

// Store upserts the cache entry for the prompt's address. The write is a
// single conditional upsert on the address column, so concurrent stores for
// the same prompt leave one consistent winner rather than a merged row.
func (r *GormRepository) Store(ctx context.Context, promptText string, items []llm.Item) error {
	if strings.TrimSpace(promptText) == "" {
		return eris.New("prompt text is required")
	}
	if len(items) == 0 {
		return eris.New("items are required")
	}

	payload, err := json.Marshal(items)
	if err != nil {
		r.logError(nil, err, "encoding items for storage")
		return eris.Wrap(err, "encoding items for storage")
	}

	address := Address(promptText)
	now := time.Now().UTC()

	entry := CacheEntry{
		Address: address,
		Prompt:  promptText,
		Result:  string(payload),
	}
	entry.CreatedAt = now

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"prompt":     promptText,
			"result":     string(payload),
			"created_at": now,
			"updated_at": now,
		}),
	}).Create(&entry).Error
	if err != nil {
		r.logError(logrus.Fields{"address": address}, err, "storing cache entry")
		return eris.Wrapf(err, "storing cache entry for address: %s", address)
	}

	return nil
}

// AppendQueryLog writes one immutable query-log row for the prompt's address.
func (r *GormRepository) AppendQueryLog(ctx context.Context, promptText string) error {
	if strings.TrimSpace(promptText) == "" {
		return eris.New("prompt text is required")
	}

	record := QueryLogEntry{
		Address:   Address(promptText),
		Timestamp: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		r.logError(logrus.Fields{"address": record.Address}, err, "appending query log entry")
		return eris.Wrapf(err, "appending query log entry for address: %s", record.Address)
	}

	return nil
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
