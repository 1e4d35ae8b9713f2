package adventurer

import (
	"time"

	"gorm.io/gorm"
)

// Adventurer 定义了冒险者聚合根在SQLite中的持久化模型
type Adventurer struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	// DeletedAt 实现软删除：删除后的记录对所有查询不可见
	gorm.Model

	// AdventurerID 是冒险者对外的唯一字符串ID, 例如 "adv_0b36..."
	// 创建后不可变，是业务逻辑中的主键
	AdventurerID string `gorm:"uniqueIndex;not null;type:varchar(40)"`

	// Name 是冒险者的名称，可修改
	Name string `gorm:"not null"`

	// Level 是冒险者的整体等级，恒 ≥ 1
	Level int `gorm:"not null;default:1"`

	// ExperiencePoints 是累计获得的总经验，恒 ≥ 0
	// 距离下一级所需经验是派生视图，永远不落库
	ExperiencePoints int `gorm:"not null;default:0"`
}

// Proficiency 定义了单项专精的持久化模型。
// 每条记录恰好属于一个冒险者，(AdventurerID, Skill) 唯一。
type Proficiency struct {
	gorm.Model

	// AdventurerID 是所属冒险者的业务ID
	AdventurerID string `gorm:"index:idx_adventurer_skill,unique;not null;type:varchar(40)"`

	// Skill 是技能名，在所属冒险者内唯一
	Skill string `gorm:"index:idx_adventurer_skill,unique;not null;type:varchar(128)"`

	// Level 是该技能的等级，恒 ≥ 1
	Level int `gorm:"not null;default:1"`

	// XpIntoLevel 是当前等级内已积累的经验，升级时扣除门槛后保留余数
	XpIntoLevel int `gorm:"not null;default:0"`
}

// MentorAssignment 定义了导师指派关系的持久化模型。
// 任一时刻每个冒险者至多有一条Active记录；换导师时旧记录转为非活跃，
// 历史会话仍然归属于旧记录。
type MentorAssignment struct {
	gorm.Model

	// AdventurerID 是所属冒险者的业务ID
	AdventurerID string `gorm:"index;not null;type:varchar(40)"`

	// MentorID 是导师名录中的导师ID
	MentorID string `gorm:"not null;type:varchar(64)"`

	// AssignedAt 是本次指派建立的时间
	AssignedAt time.Time `gorm:"not null"`

	// SessionsCompleted 是本次指派关系内已记录的指导会话数，
	// 必须与归属于本记录的GuidanceSession行数一致
	SessionsCompleted int `gorm:"not null;default:0"`

	// Active 标记这是否是当前生效的指派
	Active bool `gorm:"index;not null;default:false"`
}

// SessionType 定义了指导会话类型的封闭枚举
type SessionType string

const (
	SessionTraining   SessionType = "training"
	SessionMentoring  SessionType = "mentoring"
	SessionMission    SessionType = "mission"
	SessionAssessment SessionType = "assessment"
)

// Valid 在边界校验时对枚举做穷举匹配
func (s SessionType) Valid() bool {
	switch s {
	case SessionTraining, SessionMentoring, SessionMission, SessionAssessment:
		return true
	}
	return false
}

// GuidanceSession 定义了指导会话的持久化模型。
// 会话是不可变的历史记录：创建后从不修改、从不删除。
type GuidanceSession struct {
	gorm.Model

	// SessionID 是会话对外的唯一字符串ID, 例如 "gs_4f21..."
	SessionID string `gorm:"uniqueIndex;not null;type:varchar(40)"`

	// AdventurerID 是所属冒险者的业务ID
	AdventurerID string `gorm:"index;not null;type:varchar(40)"`

	// AssignmentID 是会话发生时生效的MentorAssignment记录ID
	AssignmentID uint `gorm:"index;not null"`

	// SessionType 是会话类型，取值于封闭枚举
	SessionType SessionType `gorm:"not null;type:varchar(20)"`

	// DurationMinutes 是会话时长（分钟），恒为正
	DurationMinutes int `gorm:"not null"`

	// Notes 是可选的会话记录
	Notes string `gorm:"type:text"`

	// SkillsFocused 是会话重点技能名的JSON数组
	SkillsFocused string `gorm:"type:text"`

	// ExperienceGained 是本次会话发放的经验，恒 ≥ 0
	ExperienceGained int `gorm:"not null;default:0"`
}

// ExperienceAward 是经验发放的审计记录。
// reason只用于审计/日志，不参与校验。
type ExperienceAward struct {
	gorm.Model

	// AdventurerID 是所属冒险者的业务ID
	AdventurerID string `gorm:"index;not null;type:varchar(40)"`

	// Amount 是本次发放的经验量
	Amount int `gorm:"not null"`

	// Reason 是发放原因, 例如 "quest completion"
	Reason string `gorm:"type:text"`

	// TargetSkills 是定向分配的技能名JSON数组，空表示按默认策略分配
	TargetSkills string `gorm:"type:text"`

	// LevelAfter 是发放后冒险者的整体等级
	LevelAfter int `gorm:"not null"`
}
