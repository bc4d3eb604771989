package topic

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"

	"namesmith/app/internal/llm"
)

// CacheEntry is one cached generation result, addressed by the hash of the
// user prompt that produced it. At most one row exists per address; a write
// to an existing address overwrites prompt, result, and created_at.
type CacheEntry struct {
	gorm.Model
	Address string `gorm:"size:64;uniqueIndex:idx_cache_entries_address;not null"`
	Prompt  string `gorm:"type:text;not null"`
	Result  string `gorm:"type:text;not null"`
}

// TableName defines the table name for the CacheEntry model.
func (CacheEntry) TableName() string {
	return "cache_entries"
}

// Items decodes the stored result payload into the structured item list.
func (e *CacheEntry) Items() ([]llm.Item, error) {
	var items []llm.Item
	if err := json.Unmarshal([]byte(e.Result), &items); err != nil {
		return nil, eris.Wrapf(err, "decoding cached result for address %s", e.Address)
	}
	return items, nil
}

// QueryLogEntry records one generation request, hit or miss, keyed by the
// same address scheme as the cache. Rows are written once and never updated
// or deleted; unbounded growth is accepted.
type QueryLogEntry struct {
	ID        uint      `gorm:"primarykey"`
	Address   string    `gorm:"size:64;index:idx_query_log_address;not null"`
	Timestamp time.Time `gorm:"index;not null"`
}

// TableName defines the table name for the QueryLogEntry model.
func (QueryLogEntry) TableName() string {
	return "query_log"
}
