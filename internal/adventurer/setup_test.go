package adventurer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/SlpAus/adventurer-progression-backend/internal/mentor"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/metadata"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 为每个测试准备一个独立的内存SQLite数据库。
// 排行榜处理器的事件通道保持未初始化，发布操作是静默的空操作，
// 因此测试不需要Redis。
func setupTestDB(t *testing.T) {
	t.Helper()

	// 每个测试使用独立的命名内存库，cache=shared让连接池共享同一份数据
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.DB = db

	require.NoError(t, metadata.PrimeDB())
	require.NoError(t, mentor.PrimeCachedDB())
	require.NoError(t, migrateDB())
}

// mustCreateAdventurer 是测试中创建冒险者的快捷方式
func mustCreateAdventurer(t *testing.T, name string, skills []string) *AdventurerDTO {
	t.Helper()
	dto, err := CreateAdventurer(name, skills, 1, 0)
	require.NoError(t, err)
	return dto
}
