package adventurer

import (
	"errors"

	"github.com/SlpAus/adventurer-progression-backend/internal/apperr"
	"github.com/SlpAus/adventurer-progression-backend/pkg/keymutex"
	"gorm.io/gorm"
)

// --- 并发控制 ---

// aggregateLocks 是按冒险者ID分片的锁表。
// 同一个聚合上的变更操作串行执行（单写者），不同聚合完全并行，
// 不存在全局大锁。
var aggregateLocks = keymutex.New()

// LockAggregate 锁定指定冒险者的聚合。
func LockAggregate(adventurerID string) {
	aggregateLocks.Lock(adventurerID)
}

// UnlockAggregate 解锁指定冒险者的聚合。
func UnlockAggregate(adventurerID string) {
	aggregateLocks.Unlock(adventurerID)
}

// --- 聚合加载辅助函数 ---
// 这些函数在事务内外都可使用，软删除的记录被GORM自动排除。

// findAdventurer 按业务ID加载冒险者，不存在时返回NotFound
func findAdventurer(db *gorm.DB, adventurerID string) (*Adventurer, error) {
	var adv Adventurer
	err := db.Where("adventurer_id = ?", adventurerID).First(&adv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.KindNotFound, "找不到ID为 %s 的冒险者", adventurerID)
		}
		return nil, err
	}
	return &adv, nil
}

// findProficiencies 加载冒险者的全部专精，按技能名排序保证输出稳定
func findProficiencies(db *gorm.DB, adventurerID string) ([]Proficiency, error) {
	var profs []Proficiency
	if err := db.Where("adventurer_id = ?", adventurerID).Order("skill asc").Find(&profs).Error; err != nil {
		return nil, err
	}
	return profs, nil
}

// findActiveAssignment 加载当前生效的导师指派，没有时返回nil
func findActiveAssignment(db *gorm.DB, adventurerID string) (*MentorAssignment, error) {
	var assignment MentorAssignment
	err := db.Where("adventurer_id = ? AND active = ?", adventurerID, true).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}
