package adventurer

import (
	"fmt"

	"github.com/SlpAus/adventurer-progression-backend/internal/platform/config"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
	"github.com/SlpAus/adventurer-progression-backend/internal/progression"
)

// --- 升级曲线 ---
// 两条曲线共用同一形状，基数来自配置。
// 整体等级和专精等级是共享同一经验池的两条独立升级轨道。

var adventurerCurve = progression.Curve{Base: 1000}
var proficiencyCurve = progression.Curve{Base: 300}

// ConfigureModule 从配置加载升级曲线常数
func ConfigureModule(cfg config.ProgressionConfig) {
	if cfg.AdventurerXpBase > 0 {
		adventurerCurve = progression.Curve{Base: cfg.AdventurerXpBase}
	}
	if cfg.ProficiencyXpBase > 0 {
		proficiencyCurve = progression.Curve{Base: cfg.ProficiencyXpBase}
	}
	fmt.Printf("升级曲线已配置: 冒险者基数=%d, 专精基数=%d\n", adventurerCurve.Base, proficiencyCurve.Base)
}

// PrimeCachedDB 负责初始化adventurer模块的数据库和排行榜缓存
func PrimeCachedDB() error {
	// 1. 迁移数据库表结构
	if err := migrateDB(); err != nil {
		return err
	}
	// 2. 将排行榜数据预热到Redis
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(
		&Adventurer{},
		&Proficiency{},
		&MentorAssignment{},
		&GuidanceSession{},
		&ExperienceAward{},
	); err != nil {
		return fmt.Errorf("无法迁移adventurer相关表: %w", err)
	}
	fmt.Println("Adventurer数据库表迁移成功。")
	return nil
}
