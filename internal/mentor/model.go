package mentor

import "gorm.io/gorm"

// Mentor 定义了导师名录在SQLite中的持久化模型。
// 导师是外部参照数据：本服务只读取名录，不管理导师的生命周期。
type Mentor struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// MentorID 是导师的唯一字符串ID, 例如 "gandalf"
	// 业务逻辑中的主键
	MentorID string `gorm:"uniqueIndex;not null;type:varchar(64)"`

	// Name 是导师的显示名称
	Name string

	// Specialties 是导师专长领域的JSON数组, 例如 ["swordsmanship","leadership"]
	Specialties string `gorm:"type:text"`
}
