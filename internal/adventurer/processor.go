package adventurer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/metadata"
	"github.com/SlpAus/adventurer-progression-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
)

// rankingEvent 是排行榜缓存的一次更新事件。
// 事件是幂等的逐冒险者覆盖写，因此乱序或重复投递都无害。
type rankingEvent struct {
	AdventurerID string
	Remove       bool
	Score        float64
	SummaryJSON  []byte
}

// rankingProcessor 是一个单一写入者，负责按顺序把排行榜更新应用到Redis
type rankingProcessor struct {
	eventChan chan rankingEvent
}

// globalRankingProcessor 是私有的全局处理器实例。
// eventChan 在InitializeProcessor之前为nil，此时发布的事件被静默丢弃
// （测试等不启用Redis的场景依赖这一点）。
var globalRankingProcessor = &rankingProcessor{}

// InitializeProcessor 初始化全局的rankingProcessor实例
func InitializeProcessor() {
	globalRankingProcessor.eventChan = make(chan rankingEvent, 4096)
}

// StartProcessor 启动排行榜处理器的主循环。
// 收到优雅停机信号后排空剩余事件，强制停机信号会中断排空。
func StartProcessor(gracefulHandle, forcefulHandle *lifecycle.Handle) {
	defer gracefulHandle.Close()
	defer forcefulHandle.Close()
	fmt.Println("排行榜处理器 (Ranking Processor) 已启动。")

	for {
		select {
		case <-gracefulHandle.Done():
			fmt.Println("Ranking Processor: 收到优雅停机信号，正在排空剩余事件...")
			drainEvents(forcefulHandle)
			fmt.Println("Ranking Processor: 优雅停机完成，主循环退出。")
			return
		case event := <-globalRankingProcessor.eventChan:
			applyEventWithRetry(gracefulHandle, event)
		}
	}
}

// drainEvents 在优雅停机阶段尽力处理完channel中剩余的事件
func drainEvents(forcefulHandle *lifecycle.Handle) {
	for {
		select {
		case <-forcefulHandle.Done():
			fmt.Println("Ranking Processor: 收到强制停机信号，排空被中断。")
			return
		case event := <-globalRankingProcessor.eventChan:
			// 排空模式下不再重试，失败由下次启动的预热修复
			if err := applyEvent(event); err != nil {
				fmt.Printf("排空事件时更新排行榜失败，已放弃 (adventurer %s): %v\n", event.AdventurerID, err)
			}
		default:
			return
		}
	}
}

// applyEventWithRetry 应用单个事件，短暂重试后放弃。
// 排行榜只是读缓存，放弃的事件会被定期校准或热重建修复。
func applyEventWithRetry(handle *lifecycle.Handle, event rankingEvent) {
	if !database.IsRedisHealthy() {
		// Redis不健康时直接丢弃：恢复时健康检查器会触发整体重建
		return
	}

	delay := 8 * time.Millisecond
	for {
		err := applyEvent(event)
		if err == nil {
			return
		}
		if delay > time.Second {
			fmt.Printf("错误: 更新排行榜失败，已放弃 (adventurer %s): %v\n", event.AdventurerID, err)
			return
		}
		if err := handle.Sleep(delay); err != nil {
			return
		}
		delay *= 2
	}
}

// applyEvent 将单个事件原子地应用到Redis
func applyEvent(event rankingEvent) error {
	pipe := database.RDB.TxPipeline()
	if event.Remove {
		pipe.HDel(database.Ctx, SummaryKey, event.AdventurerID)
		pipe.ZRem(database.Ctx, RankingKey, event.AdventurerID)
	} else {
		pipe.HSet(database.Ctx, SummaryKey, event.AdventurerID, event.SummaryJSON)
		pipe.ZAdd(database.Ctx, RankingKey, redis.Z{Score: event.Score, Member: event.AdventurerID})
	}
	_, err := pipe.Exec(database.Ctx)
	return err
}

// publishRankingUpdateForDTO 在聚合变更提交后发布排行榜更新事件
func publishRankingUpdateForDTO(dto *AdventurerDTO) {
	if globalRankingProcessor.eventChan == nil {
		return
	}
	summary, score := summaryForDTO(dto)
	summaryJSON, _ := json.Marshal(summary)
	event := rankingEvent{
		AdventurerID: dto.ID,
		Score:        score,
		SummaryJSON:  summaryJSON,
	}
	select {
	case globalRankingProcessor.eventChan <- event:
	default:
		fmt.Printf("警告: 排行榜事件队列已满，放弃更新 adventurer %s\n", dto.ID)
	}
}

// publishRankingRemoval 在冒险者被删除后发布移除事件
func publishRankingRemoval(adventurerID string) {
	if globalRankingProcessor.eventChan == nil {
		return
	}
	select {
	case globalRankingProcessor.eventChan <- rankingEvent{AdventurerID: adventurerID, Remove: true}:
	default:
		fmt.Printf("警告: 排行榜事件队列已满，放弃移除 adventurer %s\n", adventurerID)
	}
}

// resyncInterval 是排行榜缓存定期校准的间隔
const resyncInterval = 10 * time.Minute

// StartResyncScheduler 启动一个后台Goroutine定期整体校准排行榜缓存，
// 修复被丢弃的事件造成的漂移。
func StartResyncScheduler(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("排行榜校准调度器已启动。")

	for {
		// 可中断的休眠，停机信号会立刻唤醒并退出
		if err := handle.Sleep(resyncInterval); err != nil {
			fmt.Println("校准调度器: 休眠被中断，正在关闭...")
			return
		}

		if !database.IsRedisHealthy() {
			fmt.Println("校准调度器: 检测到Redis不可用，跳过本次校准。")
			continue
		}

		if err := WarmupCache(); err != nil {
			fmt.Printf("校准调度器错误: 排行榜校准失败: %v\n", err)
			continue
		}
		if err := metadata.SetLastRankingResync(database.DB, time.Now().Unix()); err != nil {
			fmt.Printf("校准调度器警告: 无法记录校准时间: %v\n", err)
		}
	}
}
