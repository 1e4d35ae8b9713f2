package adventurer

import (
	"net/http"

	"github.com/SlpAus/adventurer-progression-backend/internal/apperr"
	"github.com/SlpAus/adventurer-progression-backend/internal/platform/database"
	"github.com/gin-gonic/gin"
)

// --- API响应模型 ---
// 字段名与客户端SDK的接口定义保持完全一致

type ProficiencyResponse struct {
	Skill            string `json:"skill"`
	Level            int    `json:"level"`
	ExperiencePoints int    `json:"experience_points"`
	ExperienceToNext int    `json:"experience_to_next_level"`
}

type MentorAssignmentResponse struct {
	MentorID          string   `json:"mentor_id"`
	MentorName        string   `json:"mentor_name"`
	Specialties       []string `json:"specialties"`
	AssignedAt        int64    `json:"assigned_at"`
	SessionsCompleted int      `json:"sessions_completed"`
}

type AdventurerResponse struct {
	ID                   string                    `json:"id"`
	Name                 string                    `json:"name"`
	Level                int                       `json:"level"`
	ExperiencePoints     int                       `json:"experience_points"`
	ExperienceToNext     int                       `json:"experience_to_next_level"`
	Proficiencies        []ProficiencyResponse     `json:"proficiencies"`
	UniversalAvatarLevel int                       `json:"universal_avatar_level"`
	Mentor               *MentorAssignmentResponse `json:"mentor,omitempty"`
	CreatedAt            int64                     `json:"created_at"`
	UpdatedAt            int64                     `json:"updated_at"`
	Object               string                    `json:"object"`
}

type AdventurerListResponse struct {
	Data   []AdventurerResponse `json:"data"`
	Object string               `json:"object"`
	Total  int                  `json:"total"`
}

type AdventurerDeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Object  string `json:"object"`
}

type ExperienceUpdateResponse struct {
	Adventurer            AdventurerResponse `json:"adventurer"`
	LevelUpOccurred       bool               `json:"level_up_occurred"`
	NewLevel              *int               `json:"new_level,omitempty"`
	AffectedProficiencies []string           `json:"affected_proficiencies"`
}

type GuidanceSessionResponse struct {
	ID               string   `json:"id"`
	SessionType      string   `json:"session_type"`
	DurationMinutes  int      `json:"duration_minutes"`
	Notes            string   `json:"notes,omitempty"`
	SkillsFocused    []string `json:"skills_focused"`
	ExperienceGained int      `json:"experience_gained"`
	RecordedAt       int64    `json:"recorded_at"`
	Object           string   `json:"object"`
}

type RankedAdventurerResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Level                int    `json:"level"`
	UniversalAvatarLevel int    `json:"universal_avatar_level"`
	ExperiencePoints     int    `json:"experience_points"`
	Rank                 int    `json:"rank"`
}

// --- API请求模型 ---

type CreateAdventurerRequest struct {
	Name             string   `json:"name" binding:"required"`
	Proficiencies    []string `json:"proficiencies"`
	Level            *int     `json:"level"`
	ExperiencePoints *int     `json:"experience_points"`
}

type UpdateAdventurerRequest struct {
	Name             *string  `json:"name"`
	Level            *int     `json:"level"`
	ExperiencePoints *int     `json:"experience_points"`
	Proficiencies    []string `json:"proficiencies"`
}

type AddExperienceRequest struct {
	ExperiencePoints    *int     `json:"experience_points" binding:"required"`
	TargetProficiencies []string `json:"target_proficiencies"`
	Reason              string   `json:"reason"`
}

type AssignMentorRequest struct {
	MentorID string `json:"mentor_id" binding:"required"`
}

type RecordGuidanceSessionRequest struct {
	SessionType      string   `json:"session_type" binding:"required"`
	DurationMinutes  int      `json:"duration_minutes" binding:"required"`
	Notes            string   `json:"notes"`
	SkillsFocused    []string `json:"skills_focused"`
	ExperiencePoints *int     `json:"experience_points"`
}

// --- 数据格式化辅助函数 ---

func formatAdventurer(dto *AdventurerDTO) AdventurerResponse {
	profs := make([]ProficiencyResponse, 0, len(dto.Proficiencies))
	for _, p := range dto.Proficiencies {
		profs = append(profs, ProficiencyResponse(p))
	}
	resp := AdventurerResponse{
		ID:                   dto.ID,
		Name:                 dto.Name,
		Level:                dto.Level,
		ExperiencePoints:     dto.ExperiencePoints,
		ExperienceToNext:     dto.ExperienceToNext,
		Proficiencies:        profs,
		UniversalAvatarLevel: dto.UniversalAvatarLevel,
		CreatedAt:            dto.CreatedAt,
		UpdatedAt:            dto.UpdatedAt,
		Object:               "adventurer",
	}
	if dto.Mentor != nil {
		mentorResp := formatAssignment(dto.Mentor)
		resp.Mentor = &mentorResp
	}
	return resp
}

func formatAssignment(dto *MentorAssignmentDTO) MentorAssignmentResponse {
	specialties := dto.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	return MentorAssignmentResponse{
		MentorID:          dto.MentorID,
		MentorName:        dto.MentorName,
		Specialties:       specialties,
		AssignedAt:        dto.AssignedAt,
		SessionsCompleted: dto.SessionsCompleted,
	}
}

func formatSession(dto *GuidanceSessionDTO) GuidanceSessionResponse {
	return GuidanceSessionResponse{
		ID:               dto.ID,
		SessionType:      string(dto.SessionType),
		DurationMinutes:  dto.DurationMinutes,
		Notes:            dto.Notes,
		SkillsFocused:    dto.SkillsFocused,
		ExperienceGained: dto.ExperienceGained,
		RecordedAt:       dto.RecordedAt,
		Object:           "guidance_session",
	}
}

// respondError 将核心的结构化错误映射为HTTP状态码
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindInvalidArgument:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindPreconditionFailed, apperr.KindConflict:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		// 内部错误不向外暴露细节
		c.JSON(status, gin.H{"error": "内部错误，请稍后重试"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperr.KindOf(err).String()})
}

// --- 控制器函数 ---

// CreateAdventurerHandler 注册一个新的冒险者
func CreateAdventurerHandler(c *gin.Context) {
	var body CreateAdventurerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	level := 1
	if body.Level != nil {
		level = *body.Level
	}
	experiencePoints := 0
	if body.ExperiencePoints != nil {
		experiencePoints = *body.ExperiencePoints
	}

	dto, err := CreateAdventurer(body.Name, body.Proficiencies, level, experiencePoints)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, formatAdventurer(dto))
}

// GetAdventurerHandler 按ID查询单个冒险者
func GetAdventurerHandler(c *gin.Context) {
	dto, err := GetAdventurer(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatAdventurer(dto))
}

// ListAdventurersHandler 返回全部冒险者
func ListAdventurersHandler(c *gin.Context) {
	dtos, err := ListAdventurers()
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]AdventurerResponse, 0, len(dtos))
	for i := range dtos {
		responses = append(responses, formatAdventurer(&dtos[i]))
	}
	c.JSON(http.StatusOK, AdventurerListResponse{
		Data:   responses,
		Object: "list",
		Total:  len(responses),
	})
}

// UpdateAdventurerHandler 对冒险者做部分更新
func UpdateAdventurerHandler(c *gin.Context) {
	var body UpdateAdventurerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	dto, err := UpdateAdventurer(c.Param("id"), UpdateFields{
		Name:             body.Name,
		Level:            body.Level,
		ExperiencePoints: body.ExperiencePoints,
		Proficiencies:    body.Proficiencies,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatAdventurer(dto))
}

// DeleteAdventurerHandler 逻辑删除一个冒险者
func DeleteAdventurerHandler(c *gin.Context) {
	adventurerID := c.Param("id")
	if err := DeleteAdventurer(adventurerID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AdventurerDeleteResponse{
		ID:      adventurerID,
		Deleted: true,
		Object:  "adventurer",
	})
}

// AddExperienceHandler 给冒险者发放经验
func AddExperienceHandler(c *gin.Context) {
	var body AddExperienceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	result, err := AddExperience(c.Param("id"), *body.ExperiencePoints, body.TargetProficiencies, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := ExperienceUpdateResponse{
		Adventurer:            formatAdventurer(&result.Adventurer),
		LevelUpOccurred:       result.LevelUpOccurred,
		AffectedProficiencies: result.AffectedProficiencies,
	}
	if result.LevelUpOccurred {
		newLevel := result.NewLevel
		resp.NewLevel = &newLevel
	}
	c.JSON(http.StatusOK, resp)
}

// AssignMentorHandler 给冒险者指派导师
func AssignMentorHandler(c *gin.Context) {
	var body AssignMentorRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	dto, err := AssignMentor(c.Param("id"), body.MentorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, formatAssignment(dto))
}

// RecordGuidanceSessionHandler 记录一次指导会话
func RecordGuidanceSessionHandler(c *gin.Context) {
	var body RecordGuidanceSessionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	params := GuidanceSessionParams{
		SessionType:     SessionType(body.SessionType),
		DurationMinutes: body.DurationMinutes,
		Notes:           body.Notes,
		SkillsFocused:   body.SkillsFocused,
	}
	if body.ExperiencePoints != nil {
		params.ExperiencePoints = *body.ExperiencePoints
	}

	dto, err := RecordGuidanceSession(c.Param("id"), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, formatSession(dto))
}

// ListGuidanceSessionsHandler 返回冒险者的会话历史
func ListGuidanceSessionsHandler(c *gin.Context) {
	dtos, err := ListGuidanceSessions(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]GuidanceSessionResponse, 0, len(dtos))
	for i := range dtos {
		responses = append(responses, formatSession(&dtos[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   responses,
		"object": "list",
		"total":  len(responses),
	})
}

// GetRankingHandler 返回按化身等级排序的排行榜
func GetRankingHandler(c *gin.Context) {
	if !database.IsRedisHealthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "服务暂时不可用，请稍后重试"})
		return
	}

	ranked, err := GetRankedAdventurers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取排行榜数据失败"})
		return
	}

	responses := make([]RankedAdventurerResponse, 0, len(ranked))
	for i, entry := range ranked {
		responses = append(responses, RankedAdventurerResponse{
			ID:                   entry.ID,
			Name:                 entry.Summary.Name,
			Level:                entry.Summary.Level,
			UniversalAvatarLevel: entry.Summary.UniversalAvatarLevel,
			ExperiencePoints:     entry.Summary.ExperiencePoints,
			Rank:                 i + 1,
		})
	}
	c.JSON(http.StatusOK, responses)
}
