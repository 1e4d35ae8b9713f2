package adventurer

import (
	"encoding/json"
	"time"

	"github.com/SlpAus/adventurer-progression-backend/internal/apperr"
	"github.com/SlpAus/adventurer-progression-backend/internal/mentor"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuidanceSessionDTO 是单次指导会话的完整视图
type GuidanceSessionDTO struct {
	ID               string
	SessionType      SessionType
	DurationMinutes  int
	Notes            string
	SkillsFocused    []string
	ExperienceGained int
	RecordedAt       int64
}

// GuidanceSessionParams 是记录一次指导会话的输入
type GuidanceSessionParams struct {
	SessionType      SessionType
	DurationMinutes  int
	Notes            string
	SkillsFocused    []string
	ExperiencePoints int
}

// AssignMentor 给冒险者指派导师。
// 任何状态下都可以指派：换导师会替换当前指派并把会话计数清零，
// 指派同一位导师同样视为一段全新的关系。历史会话仍归属旧指派。
func AssignMentor(adventurerID string, mentorID string) (*MentorAssignmentDTO, error) {
	// 导师名录（外部协作方）必须能解析该ID
	if _, ok := mentor.LookupMentor(mentorID); !ok {
		return nil, apperr.Newf(apperr.KindNotFound, "导师名录中找不到ID为 %s 的导师", mentorID)
	}

	LockAggregate(adventurerID)
	defer UnlockAggregate(adventurerID)

	var assignment *MentorAssignment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		adv, err := findAdventurer(tx, adventurerID)
		if err != nil {
			return err
		}

		// 让当前指派退位（如果有）
		if err := tx.Model(&MentorAssignment{}).
			Where("adventurer_id = ? AND active = ?", adv.AdventurerID, true).
			Update("active", false).Error; err != nil {
			return err
		}

		assignment = &MentorAssignment{
			AdventurerID:      adv.AdventurerID,
			MentorID:          mentorID,
			AssignedAt:        time.Now(),
			SessionsCompleted: 0,
			Active:            true,
		}
		return tx.Create(assignment).Error
	})
	if err != nil {
		return nil, err
	}

	return buildAssignmentDTO(assignment), nil
}

// RecordGuidanceSession 记录一次指导会话。
// 只有处于已指派状态才允许记录；会话是不可变的历史记录，
// 携带的经验通过聚合的完整经验路径发放（两条轨道都会更新）。
func RecordGuidanceSession(adventurerID string, params GuidanceSessionParams) (*GuidanceSessionDTO, error) {
	if !params.SessionType.Valid() {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "未知的会话类型: %s", params.SessionType)
	}
	if params.DurationMinutes <= 0 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "会话时长必须为正数: %d", params.DurationMinutes)
	}
	if params.ExperiencePoints < 0 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "会话经验不能为负数: %d", params.ExperiencePoints)
	}

	LockAggregate(adventurerID)
	defer UnlockAggregate(adventurerID)

	var session *GuidanceSession
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		adv, err := findAdventurer(tx, adventurerID)
		if err != nil {
			return err
		}

		assignment, err := findActiveAssignment(tx, adv.AdventurerID)
		if err != nil {
			return err
		}
		if assignment == nil {
			return apperr.New(apperr.KindPreconditionFailed, "没有指派导师，无法记录指导会话")
		}

		skillsJSON, _ := json.Marshal(params.SkillsFocused)
		session = &GuidanceSession{
			SessionID:        "gs_" + uuid.New().String(),
			AdventurerID:     adv.AdventurerID,
			AssignmentID:     assignment.ID,
			SessionType:      params.SessionType,
			DurationMinutes:  params.DurationMinutes,
			Notes:            params.Notes,
			SkillsFocused:    string(skillsJSON),
			ExperienceGained: params.ExperiencePoints,
		}
		if err := tx.Create(session).Error; err != nil {
			return err
		}

		// 会话计数与会话记录在同一事务内保持一致
		assignment.SessionsCompleted++
		if err := tx.Save(assignment).Error; err != nil {
			return err
		}

		// 将会话经验转入聚合的经验路径，重点技能作为定向目标
		if params.ExperiencePoints > 0 {
			_, err := applyExperienceTx(tx, adv, params.ExperiencePoints, params.SkillsFocused, "guidance session "+session.SessionID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 会话可能改变了专精与化身等级，刷新排行榜
	if dto, err := GetAdventurer(adventurerID); err == nil {
		publishRankingUpdateForDTO(dto)
	}

	return buildSessionDTO(session), nil
}

// ListGuidanceSessions 返回冒险者的全部会话历史，最新的在前。
// 历史是累积的，从不裁剪，换导师也不影响旧会话。
func ListGuidanceSessions(adventurerID string) ([]GuidanceSessionDTO, error) {
	if _, err := findAdventurer(database.DB, adventurerID); err != nil {
		return nil, err
	}

	var sessions []GuidanceSession
	if err := database.DB.Where("adventurer_id = ?", adventurerID).Order("id desc").Find(&sessions).Error; err != nil {
		return nil, err
	}

	dtos := make([]GuidanceSessionDTO, 0, len(sessions))
	for i := range sessions {
		dtos = append(dtos, *buildSessionDTO(&sessions[i]))
	}
	return dtos, nil
}

// buildSessionDTO 组装会话视图
func buildSessionDTO(session *GuidanceSession) *GuidanceSessionDTO {
	var skills []string
	if session.SkillsFocused != "" {
		_ = json.Unmarshal([]byte(session.SkillsFocused), &skills)
	}
	if skills == nil {
		skills = []string{}
	}
	return &GuidanceSessionDTO{
		ID:               session.SessionID,
		SessionType:      session.SessionType,
		DurationMinutes:  session.DurationMinutes,
		Notes:            session.Notes,
		SkillsFocused:    skills,
		ExperienceGained: session.ExperienceGained,
		RecordedAt:       session.CreatedAt.Unix(),
	}
}
