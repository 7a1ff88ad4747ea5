package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulsefeed/backend/internal/models"
)

// DatabaseStore implements the cache Store interface using the primary SQL
// database. It backs deployments that run without Redis; lists are stored
// as JSON arrays inside the entry value.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore constructs a database-backed Store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db}
}

// Get retrieves a value by key, respecting expiry.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s == nil {
		return nil, false, errors.New("cache: database store not initialised")
	}
	ctx = ensureContext(ctx)

	var entry models.CacheEntry
	err := s.db.WithContext(ctx).Take(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}

	return entry.Value, true, nil
}

// Set upserts the value for a given key with expiry.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s == nil {
		return errors.New("cache: database store not initialised")
	}
	ctx = ensureContext(ctx)

	expiry := time.Time{}
	if ttl > 0 {
		expiry = time.Now().Add(ttl)
	}

	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: expiry,
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).Create(&entry).Error
}

// Delete removes keys from the store.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if s == nil {
		return errors.New("cache: database store not initialised")
	}
	if len(keys) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&models.CacheEntry{}).Error
}

// DeletePattern removes every key matching the supplied glob pattern,
// translated to a SQL LIKE expression.
func (s *DatabaseStore) DeletePattern(ctx context.Context, pattern string) error {
	if s == nil {
		return errors.New("cache: database store not initialised")
	}
	ctx = ensureContext(ctx)

	// The ESCAPE clause is required: SQLite has no default escape character
	// for LIKE, so escaped `_` and `%` literals would otherwise stay wildcards.
	return s.db.WithContext(ctx).
		Where("key LIKE ? ESCAPE ?", globToLike(pattern), `\`).
		Delete(&models.CacheEntry{}).Error
}

// Increment adds one to the counter stored at key.
func (s *DatabaseStore) Increment(ctx context.Context, key string) (int64, error) {
	return s.adjustCounter(ctx, key, 1)
}

// Decrement subtracts one from the counter stored at key, clamping at zero.
func (s *DatabaseStore) Decrement(ctx context.Context, key string) (int64, error) {
	return s.adjustCounter(ctx, key, -1)
}

func (s *DatabaseStore) adjustCounter(ctx context.Context, key string, delta int64) (int64, error) {
	if s == nil {
		return 0, errors.New("cache: database store not initialised")
	}
	ctx = ensureContext(ctx)

	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.CacheEntry
		err := lockForUpdate(tx).Take(&entry, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			count = maxInt64(delta, 0)
			entry = models.CacheEntry{
				Key:   key,
				Value: []byte(strconv.FormatInt(count, 10)),
			}
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		current, _ := strconv.ParseInt(string(entry.Value), 10, 64)
		if !entry.ExpiresAt.IsZero() && entry.ExpiresAt.Before(time.Now()) {
			current = 0
			entry.ExpiresAt = time.Time{}
		}
		count = maxInt64(current+delta, 0)
		entry.Value = []byte(strconv.FormatInt(count, 10))

		return tx.Save(&entry).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementWithTTL atomically increments a counter for the supplied key and
// ensures its expiry window.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if s == nil {
		return 0, 0, errors.New("cache: database store not initialised")
	}
	ctx = ensureContext(ctx)
	if window <= 0 {
		window = time.Minute
	}

	now := time.Now()
	expiry := now.Add(window)

	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry models.CacheEntry
		err := lockForUpdate(tx).Take(&entry, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			count = 1
			entry = models.CacheEntry{
				Key:       key,
				Value:     []byte("1"),
				ExpiresAt: expiry,
			}
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		if entry.ExpiresAt.Before(now) {
			count = 1
			entry.Value = []byte("1")
			entry.ExpiresAt = expiry
		} else {
			current, _ := strconv.ParseInt(string(entry.Value), 10, 64)
			count = current + 1
			entry.Value = []byte(strconv.FormatInt(count, 10))
			entry.ExpiresAt = expiry
		}

		return tx.Save(&entry).Error
	})
	if err != nil {
		return 0, 0, err
	}

	return count, expiry.Sub(now), nil
}

// ListPush prepends a value to the JSON-encoded list stored at key.
func (s *DatabaseStore) ListPush(ctx context.Context, key string, value []byte) error {
	if s == nil {
		return errors.New("cache: database store not initialised")
	}
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, entry, err := loadListLocked(tx, key)
		if err != nil {
			return err
		}

		list = append([][]byte{value}, list...)
		return saveListLocked(tx, entry, key, list)
	})
}

// ListTrim bounds the list stored at key to the inclusive [start, stop] range.
func (s *DatabaseStore) ListTrim(ctx context.Context, key string, start, stop int64) error {
	if s == nil {
		return errors.New("cache: database store not initialised")
	}
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, entry, err := loadListLocked(tx, key)
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}

		from, to := sliceBounds(start, stop, int64(len(list)))
		return saveListLocked(tx, entry, key, list[from:to])
	})
}

// ListRange reads the inclusive [start, stop] range of the list stored at key.
func (s *DatabaseStore) ListRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	if s == nil {
		return nil, errors.New("cache: database store not initialised")
	}
	ctx = ensureContext(ctx)

	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return nil, err
	}

	list, err := decodeList(raw)
	if err != nil {
		return nil, err
	}

	from, to := sliceBounds(start, stop, int64(len(list)))
	return list[from:to], nil
}

// Close satisfies the Store interface; the shared DB handle is owned elsewhere.
func (s *DatabaseStore) Close() error {
	return nil
}

// lockForUpdate applies a row-level lock where the dialect supports it.
// SQLite serialises writers on its own and rejects FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func loadListLocked(tx *gorm.DB, key string) ([][]byte, *models.CacheEntry, error) {
	var entry models.CacheEntry
	err := lockForUpdate(tx).Take(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	list, err := decodeList(entry.Value)
	if err != nil {
		return nil, nil, err
	}
	return list, &entry, nil
}

func saveListLocked(tx *gorm.DB, entry *models.CacheEntry, key string, list [][]byte) error {
	encoded, err := encodeList(list)
	if err != nil {
		return err
	}

	if entry == nil {
		return tx.Create(&models.CacheEntry{Key: key, Value: encoded}).Error
	}
	entry.Value = encoded
	return tx.Save(entry).Error
}

func decodeList(raw []byte) ([][]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var encoded []string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, err
	}
	list := make([][]byte, 0, len(encoded))
	for _, item := range encoded {
		list = append(list, []byte(item))
	}
	return list, nil
}

func encodeList(list [][]byte) ([]byte, error) {
	encoded := make([]string, 0, len(list))
	for _, item := range list {
		encoded = append(encoded, string(item))
	}
	return json.Marshal(encoded)
}

func sliceBounds(start, stop, length int64) (int64, int64) {
	if start < 0 {
		start = length + start
	}
	if stop < 0 {
		stop = length + stop
	}
	if start < 0 {
		start = 0
	}
	if stop >= length {
		stop = length - 1
	}
	if length == 0 || start > stop || start >= length {
		return 0, 0
	}
	return start, stop + 1
}

func globToLike(pattern string) string {
	var builder strings.Builder
	builder.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		switch ch := pattern[i]; ch {
		case '*':
			builder.WriteByte('%')
		case '?':
			builder.WriteByte('_')
		case '%', '_', '\\':
			builder.WriteByte('\\')
			builder.WriteByte(ch)
		default:
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
