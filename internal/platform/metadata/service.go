package metadata

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// If the key doesn't exist, return an empty string, which is a valid default.
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key within a transaction.
func SetValue(db *gorm.DB, key, value string) error {
	// Use GORM's OnConflict clause for an efficient and atomic "upsert" operation.
	// It will update the 'value' column if a record with the same 'key' already exists.
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- Specific Helpers for Type Conversion ---

// GetMentorSeedVersion is a helper that retrieves and parses the mentor roster seed version.
func GetMentorSeedVersion(db *gorm.DB) (int, error) {
	valueStr, err := GetValue(db, MentorSeedVersionKey)
	if err != nil {
		return 0, err
	}
	if valueStr == "" {
		return 0, nil
	}
	version, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("无法解析元数据 '%s' 的值: %w", MentorSeedVersionKey, err)
	}
	return version, nil
}

// SetMentorSeedVersion is a helper that formats and sets the mentor roster seed version.
func SetMentorSeedVersion(db *gorm.DB, version int) error {
	return SetValue(db, MentorSeedVersionKey, strconv.Itoa(version))
}

// SetLastRankingResync is a helper that records the unix timestamp of the last
// successful full ranking cache resync.
func SetLastRankingResync(db *gorm.DB, unixTime int64) error {
	return SetValue(db, LastRankingResyncKey, strconv.FormatInt(unixTime, 10))
}
