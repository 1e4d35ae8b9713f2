package startup

import (
	"fmt"

	"github.com/SlpAus/adventurer-progression-backend/internal/adventurer"
	"github.com/SlpAus/adventurer-progression-backend/internal/mentor"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/metadata"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := mentor.PrimeCachedDB(); err != nil {
		return err
	}
	if err := adventurer.PrimeCachedDB(); err != nil {
		return err
	}

	// 排行榜处理器的事件通道在模块初始化完成后才开始接收事件
	adventurer.InitializeProcessor()

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 是一个专门用于在运行时热重建Redis缓存的函数。
// Redis重启后数据全部丢失，这里从SQLite整体重建排行榜，
// 并顺便刷新导师名录的内存副本。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := mentor.InitializeRepository(); err != nil {
		return err
	}
	if err := adventurer.WarmupCache(); err != nil {
		return err
	}

	fmt.Println("缓存热重建完成。")
	return nil
}
