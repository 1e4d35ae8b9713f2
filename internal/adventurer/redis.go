package adventurer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/metadata"
	"github.com/redis/go-redis/v9"
)

// --- Redis-specific Definitions ---
// 这些定义描述了排行榜缓存在Redis中的数据结构。
// SQLite永远是事实来源，Redis只是可重建的读缓存。

const (
	// SummaryKey 是一个Redis Hash，存储每个冒险者的排行榜展示数据
	SummaryKey = "adventurer:summary"
	// RankingKey 是一个Redis Sorted Set，按化身等级实时排序冒险者
	RankingKey = "adventurer:ranking"
)

// RankingSummary 定义了在Redis adventurer:summary Hash中存储的展示数据
type RankingSummary struct {
	Name                 string `json:"name"`
	Level                int    `json:"level"`
	UniversalAvatarLevel int    `json:"universalAvatarLevel"`
	ExperiencePoints     int    `json:"experiencePoints"`
}

// rankingScore 计算排行榜的排序分数。
// 化身等级是主序，累计经验作为同级之间的次序。
func rankingScore(avatarLevel, experiencePoints int) float64 {
	return float64(avatarLevel)*1e9 + float64(experiencePoints)
}

// RankedAdventurerDTO 是排行榜条目的服务层视图
type RankedAdventurerDTO struct {
	ID      string
	Summary RankingSummary
}

// GetRankedAdventurers 从Redis中获取完整的、已排序的排行榜
func GetRankedAdventurers() ([]RankedAdventurerDTO, error) {
	// 1. 从Sorted Set获取所有冒险者ID，按分数从高到低排序
	ids, err := database.RDB.ZRevRange(database.Ctx, RankingKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("无法从Redis获取排行榜ID: %w", err)
	}
	if len(ids) == 0 {
		return []RankedAdventurerDTO{}, nil
	}

	// 2. 一次性获取所有冒险者的展示数据
	summaryJSONs, err := database.RDB.HMGet(database.Ctx, SummaryKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("无法从Redis获取排行榜展示数据: %w", err)
	}

	// 3. 组合成DTO列表
	ranked := make([]RankedAdventurerDTO, 0, len(ids))
	for i, id := range ids {
		var summary RankingSummary
		if summaryJSONs[i] != nil {
			_ = json.Unmarshal([]byte(summaryJSONs[i].(string)), &summary)
		}
		ranked = append(ranked, RankedAdventurerDTO{ID: id, Summary: summary})
	}
	return ranked, nil
}

// WarmupCache 从SQLite加载全部冒险者，整体重建Redis排行榜缓存。
// 启动时、Redis重启后以及定期校准时调用。
func WarmupCache() error {
	var advs []Adventurer
	if err := database.DB.Find(&advs).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取冒险者数据: %w", err)
	}

	pipe := database.RDB.TxPipeline()
	pipe.Del(database.Ctx, SummaryKey, RankingKey)

	for i := range advs {
		dto, err := buildAdventurerDTO(database.DB, &advs[i])
		if err != nil {
			return err
		}
		summary, score := summaryForDTO(dto)
		summaryJSON, _ := json.Marshal(summary)
		pipe.HSet(database.Ctx, SummaryKey, dto.ID, summaryJSON)
		pipe.ZAdd(database.Ctx, RankingKey, redis.Z{Score: score, Member: dto.ID})
	}

	pipe.Set(database.Ctx, metadata.RedisRankingEpochKey, strconv.FormatInt(time.Now().Unix(), 10), 0)

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热排行榜缓存到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 位冒险者的排行榜缓存。\n", len(advs))
	return nil
}

// summaryForDTO 从聚合视图提取排行榜展示数据和排序分数
func summaryForDTO(dto *AdventurerDTO) (RankingSummary, float64) {
	summary := RankingSummary{
		Name:                 dto.Name,
		Level:                dto.Level,
		UniversalAvatarLevel: dto.UniversalAvatarLevel,
		ExperiencePoints:     dto.ExperiencePoints,
	}
	return summary, rankingScore(dto.UniversalAvatarLevel, dto.ExperiencePoints)
}
