package adventurer

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/SlpAus/adventurer-progression-backend/internal/apperr"
	"github.com/SlpAus/adventurer-progression-backend/internal/mentor"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
	"github.com/SlpAus/adventurer-progression-backend/internal/progression"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Service-Level Data Transfer Objects (DTOs) ---
// 这些结构体用于在服务层内部和向控制器层传递数据

// ProficiencyDTO 是单项专精的完整视图，含派生的升级进度
type ProficiencyDTO struct {
	Skill            string
	Level            int
	ExperiencePoints int
	ExperienceToNext int
}

// MentorAssignmentDTO 是当前导师指派的完整视图
type MentorAssignmentDTO struct {
	MentorID          string
	MentorName        string
	Specialties       []string
	AssignedAt        int64
	SessionsCompleted int
}

// AdventurerDTO 是冒险者聚合的完整视图
type AdventurerDTO struct {
	ID                   string
	Name                 string
	Level                int
	ExperiencePoints     int
	ExperienceToNext     int
	Proficiencies        []ProficiencyDTO
	UniversalAvatarLevel int
	Mentor               *MentorAssignmentDTO
	CreatedAt            int64
	UpdatedAt            int64
}

// ExperienceResultDTO 是一次经验发放的完整结果
type ExperienceResultDTO struct {
	Adventurer            AdventurerDTO
	LevelUpOccurred       bool
	NewLevel              int
	AffectedProficiencies []string
}

// UpdateFields 描述一次部分更新。nil字段表示不修改。
type UpdateFields struct {
	Name             *string
	Level            *int
	ExperiencePoints *int
	// Proficiencies 中尚不存在的技能会以1级0XP添加
	Proficiencies []string
}

// --- Service Functions ---

// CreateAdventurer 注册一个新的冒险者。
// level默认为1，experiencePoints默认为0；初始专精以1级0XP创建。
func CreateAdventurer(name string, initialSkills []string, level int, experiencePoints int) (*AdventurerDTO, error) {
	if name == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "冒险者名称不能为空")
	}
	if level < 1 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "初始等级不能小于1: %d", level)
	}
	if experiencePoints < 0 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "初始经验不能为负数: %d", experiencePoints)
	}

	adv := Adventurer{
		AdventurerID:     "adv_" + uuid.New().String(),
		Name:             name,
		Level:            level,
		ExperiencePoints: experiencePoints,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&adv).Error; err != nil {
			return err
		}
		seen := make(map[string]bool, len(initialSkills))
		for _, skill := range initialSkills {
			if skill == "" || seen[skill] {
				continue
			}
			seen[skill] = true
			prof := Proficiency{
				AdventurerID: adv.AdventurerID,
				Skill:        skill,
				Level:        1,
				XpIntoLevel:  0,
			}
			if err := tx.Create(&prof).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("创建冒险者失败: %w", err)
	}

	dto, err := buildAdventurerDTO(database.DB, &adv)
	if err != nil {
		return nil, err
	}
	publishRankingUpdateForDTO(dto)
	return dto, nil
}

// GetAdventurer 按ID查询单个冒险者
func GetAdventurer(adventurerID string) (*AdventurerDTO, error) {
	adv, err := findAdventurer(database.DB, adventurerID)
	if err != nil {
		return nil, err
	}
	return buildAdventurerDTO(database.DB, adv)
}

// ListAdventurers 返回全部（未删除的）冒险者，按创建顺序排列
func ListAdventurers() ([]AdventurerDTO, error) {
	var advs []Adventurer
	if err := database.DB.Order("id asc").Find(&advs).Error; err != nil {
		return nil, err
	}

	dtos := make([]AdventurerDTO, 0, len(advs))
	for i := range advs {
		dto, err := buildAdventurerDTO(database.DB, &advs[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

// UpdateAdventurer 对冒险者做部分更新。
// 直接覆写等级/经验属于管理员操作，绕过曲线的单调性约束；
// 覆写之后所有派生视图仍按曲线正常重算。
func UpdateAdventurer(adventurerID string, fields UpdateFields) (*AdventurerDTO, error) {
	if fields.Name != nil && *fields.Name == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "冒险者名称不能为空")
	}
	if fields.Level != nil && *fields.Level < 1 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "等级不能小于1: %d", *fields.Level)
	}
	if fields.ExperiencePoints != nil && *fields.ExperiencePoints < 0 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "经验不能为负数: %d", *fields.ExperiencePoints)
	}

	LockAggregate(adventurerID)
	defer UnlockAggregate(adventurerID)

	var adv *Adventurer
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		adv, err = findAdventurer(tx, adventurerID)
		if err != nil {
			return err
		}

		if fields.Name != nil {
			adv.Name = *fields.Name
		}
		if fields.Level != nil {
			adv.Level = *fields.Level
		}
		if fields.ExperiencePoints != nil {
			adv.ExperiencePoints = *fields.ExperiencePoints
		}
		if err := tx.Save(adv).Error; err != nil {
			return err
		}

		// 添加新专精（已存在的保持原状）
		for _, skill := range fields.Proficiencies {
			if skill == "" {
				continue
			}
			var existing Proficiency
			err := tx.Where("adventurer_id = ? AND skill = ?", adventurerID, skill).First(&existing).Error
			if err == nil {
				continue
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
			prof := Proficiency{
				AdventurerID: adventurerID,
				Skill:        skill,
				Level:        1,
				XpIntoLevel:  0,
			}
			if err := tx.Create(&prof).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto, err := buildAdventurerDTO(database.DB, adv)
	if err != nil {
		return nil, err
	}
	publishRankingUpdateForDTO(dto)
	return dto, nil
}

// DeleteAdventurer 逻辑删除一个冒险者。
// 历史记录（会话、审计）保留；之后的查询一律NotFound。
func DeleteAdventurer(adventurerID string) error {
	LockAggregate(adventurerID)
	defer UnlockAggregate(adventurerID)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		adv, err := findAdventurer(tx, adventurerID)
		if err != nil {
			return err
		}
		// gorm.Model的DeletedAt使Delete成为软删除
		return tx.Delete(adv).Error
	})
	if err != nil {
		return err
	}

	publishRankingRemoval(adventurerID)
	return nil
}

// AddExperience 给冒险者发放一笔经验。
// 同一笔经验同时作用于两条轨道：整体等级经过冒险者曲线，
// 并按分配策略拆分到专精经过专精曲线。
func AddExperience(adventurerID string, amount int, targetSkills []string, reason string) (*ExperienceResultDTO, error) {
	if amount < 0 {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "经验增量不能为负数: %d", amount)
	}

	LockAggregate(adventurerID)
	defer UnlockAggregate(adventurerID)

	var outcome *experienceOutcome
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		adv, err := findAdventurer(tx, adventurerID)
		if err != nil {
			return err
		}
		outcome, err = applyExperienceTx(tx, adv, amount, targetSkills, reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	dto, err := GetAdventurer(adventurerID)
	if err != nil {
		return nil, err
	}
	publishRankingUpdateForDTO(dto)

	return &ExperienceResultDTO{
		Adventurer:            *dto,
		LevelUpOccurred:       outcome.LevelsGained > 0,
		NewLevel:              outcome.NewLevel,
		AffectedProficiencies: outcome.AffectedSkills,
	}, nil
}

// --- 内部辅助函数 ---

// experienceOutcome 汇总一次经验发放在事务内计算出的结果
type experienceOutcome struct {
	NewLevel       int
	LevelsGained   int
	AffectedSkills []string
}

// applyExperienceTx 在已持有聚合锁的事务内应用一笔经验。
// 失败时整个事务回滚，不会留下部分更新。
func applyExperienceTx(tx *gorm.DB, adv *Adventurer, amount int, targetSkills []string, reason string) (*experienceOutcome, error) {
	// 1. 整体等级轨道：从当前状态推导级内进度后经过冒险者曲线
	progress := adventurerCurve.ProgressWithinLevel(adv.Level, adv.ExperiencePoints)
	newLevel, _, levelsGained, err := adventurerCurve.Advance(adv.Level, progress, amount)
	if err != nil {
		return nil, err
	}
	adv.Level = newLevel
	adv.ExperiencePoints += amount
	if err := tx.Save(adv).Error; err != nil {
		return nil, err
	}

	// 2. 专精轨道：同一笔经验按策略分配
	profs, err := findProficiencies(tx, adv.AdventurerID)
	if err != nil {
		return nil, err
	}
	states := proficiencyStates(profs)
	distribution, err := progression.DistributeXp(proficiencyCurve, states, amount, targetSkills)
	if err != nil {
		return nil, err
	}

	// 3. 将分配结果写回专精表
	byName := make(map[string]*Proficiency, len(profs))
	for i := range profs {
		byName[profs[i].Skill] = &profs[i]
	}
	for skill, delta := range distribution.PerSkillDelta {
		if delta == 0 {
			continue
		}
		newState := distribution.NewStates[skill]
		if existing, ok := byName[skill]; ok {
			existing.Level = newState.Level
			existing.XpIntoLevel = newState.XpIntoLevel
			if err := tx.Save(existing).Error; err != nil {
				return nil, err
			}
		} else {
			prof := Proficiency{
				AdventurerID: adv.AdventurerID,
				Skill:        skill,
				Level:        newState.Level,
				XpIntoLevel:  newState.XpIntoLevel,
			}
			if err := tx.Create(&prof).Error; err != nil {
				return nil, err
			}
		}
	}

	// 自动创建的技能即使分到0XP也要落库
	for _, skill := range distribution.Created {
		if distribution.PerSkillDelta[skill] != 0 {
			continue
		}
		newState := distribution.NewStates[skill]
		prof := Proficiency{
			AdventurerID: adv.AdventurerID,
			Skill:        skill,
			Level:        newState.Level,
			XpIntoLevel:  newState.XpIntoLevel,
		}
		if err := tx.Create(&prof).Error; err != nil {
			return nil, err
		}
	}

	// 4. 追加审计记录（reason只存储，不校验）
	targetsJSON, _ := json.Marshal(targetSkills)
	award := ExperienceAward{
		AdventurerID: adv.AdventurerID,
		Amount:       amount,
		Reason:       reason,
		TargetSkills: string(targetsJSON),
		LevelAfter:   adv.Level,
	}
	if err := tx.Create(&award).Error; err != nil {
		return nil, err
	}

	affected := make([]string, 0, len(distribution.PerSkillDelta))
	for skill := range distribution.PerSkillDelta {
		affected = append(affected, skill)
	}
	sort.Strings(affected)

	return &experienceOutcome{
		NewLevel:       adv.Level,
		LevelsGained:   levelsGained,
		AffectedSkills: affected,
	}, nil
}

// proficiencyStates 将专精行转换为分配算法的快照
func proficiencyStates(profs []Proficiency) map[string]progression.SkillState {
	states := make(map[string]progression.SkillState, len(profs))
	for _, p := range profs {
		states[p.Skill] = progression.SkillState{Level: p.Level, XpIntoLevel: p.XpIntoLevel}
	}
	return states
}

// buildAdventurerDTO 组装冒险者聚合的完整视图。
// 化身等级在每次组装时重新计算，从不缓存。
func buildAdventurerDTO(db *gorm.DB, adv *Adventurer) (*AdventurerDTO, error) {
	profs, err := findProficiencies(db, adv.AdventurerID)
	if err != nil {
		return nil, err
	}

	profDTOs := make([]ProficiencyDTO, 0, len(profs))
	for _, p := range profs {
		profDTOs = append(profDTOs, ProficiencyDTO{
			Skill:            p.Skill,
			Level:            p.Level,
			ExperiencePoints: p.XpIntoLevel,
			ExperienceToNext: proficiencyCurve.ExperienceToNext(p.Level, p.XpIntoLevel),
		})
	}

	dto := &AdventurerDTO{
		ID:               adv.AdventurerID,
		Name:             adv.Name,
		Level:            adv.Level,
		ExperiencePoints: adv.ExperiencePoints,
		ExperienceToNext: adventurerCurve.ExperienceToNext(
			adv.Level, adventurerCurve.ProgressWithinLevel(adv.Level, adv.ExperiencePoints)),
		Proficiencies:        profDTOs,
		UniversalAvatarLevel: progression.ComputeAvatarLevel(proficiencyStates(profs)),
		CreatedAt:            adv.CreatedAt.Unix(),
		UpdatedAt:            adv.UpdatedAt.Unix(),
	}

	assignment, err := findActiveAssignment(db, adv.AdventurerID)
	if err != nil {
		return nil, err
	}
	if assignment != nil {
		dto.Mentor = buildAssignmentDTO(assignment)
	}

	return dto, nil
}

// buildAssignmentDTO 组装导师指派视图，名称与专长来自导师名录。
// 名录中已不存在的导师降级为只含ID的视图。
func buildAssignmentDTO(assignment *MentorAssignment) *MentorAssignmentDTO {
	dto := &MentorAssignmentDTO{
		MentorID:          assignment.MentorID,
		AssignedAt:        assignment.AssignedAt.Unix(),
		SessionsCompleted: assignment.SessionsCompleted,
		Specialties:       []string{},
	}
	if info, ok := mentor.LookupMentor(assignment.MentorID); ok {
		dto.MentorName = info.Name
		if info.Specialties != nil {
			dto.Specialties = info.Specialties
		}
	}
	return dto
}
