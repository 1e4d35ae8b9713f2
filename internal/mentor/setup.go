package mentor

import (
	"encoding/json"
	"fmt"

	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/metadata"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedVersion 是内置导师名录的版本号。
// 修改seedRoster后需要递增，启动时会据此决定是否重新写入。
const seedVersion = 1

// seedRoster 是首次启动时写入SQLite的内置导师名录
var seedRoster = []struct {
	MentorID    string
	Name        string
	Specialties []string
}{
	{"gandalf", "Gandalf the Grey", []string{"leadership", "lore", "fireworks"}},
	{"elrond", "Elrond of Rivendell", []string{"healing", "lore", "diplomacy"}},
	{"aragorn", "Aragorn son of Arathorn", []string{"swordsmanship", "tracking", "leadership"}},
	{"galadriel", "Galadriel of Lothlorien", []string{"foresight", "diplomacy"}},
	{"gimli", "Gimli son of Gloin", []string{"axemanship", "smithing"}},
}

// PrimeCachedDB 负责初始化mentor模块的数据库和内存仓库
func PrimeCachedDB() error {
	// 1. 迁移数据库表结构
	if err := migrateDB(); err != nil {
		return err
	}
	// 2. 按需写入内置名录
	if err := seedRosterIfNeeded(); err != nil {
		return err
	}
	// 3. 从数据库加载名录到内存仓库
	if err := InitializeRepository(); err != nil {
		return err
	}
	return nil
}

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Mentor{}); err != nil {
		return fmt.Errorf("无法迁移mentor表: %w", err)
	}
	fmt.Println("Mentor数据库表迁移成功。")
	return nil
}

// seedRosterIfNeeded 在名录版本落后时写入内置导师名录。
// 名录是外部参照数据，这里的内置数据相当于一次本地快照。
func seedRosterIfNeeded() error {
	currentVersion, err := metadata.GetMentorSeedVersion(database.DB)
	if err != nil {
		return fmt.Errorf("无法读取导师名录版本: %w", err)
	}
	if currentVersion >= seedVersion {
		return nil
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		for _, entry := range seedRoster {
			specialtiesJSON, _ := json.Marshal(entry.Specialties)
			m := Mentor{
				MentorID:    entry.MentorID,
				Name:        entry.Name,
				Specialties: string(specialtiesJSON),
			}
			// 以MentorID为冲突键的upsert，保证重复执行安全
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "mentor_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "specialties"}),
			}).Create(&m).Error; err != nil {
				return fmt.Errorf("无法写入导师 %s: %w", entry.MentorID, err)
			}
		}
		if err := metadata.SetMentorSeedVersion(tx, seedVersion); err != nil {
			return fmt.Errorf("无法更新导师名录版本: %w", err)
		}
		fmt.Printf("内置导师名录已写入 (version %d, %d 位导师)。\n", seedVersion, len(seedRoster))
		return nil
	})
}
