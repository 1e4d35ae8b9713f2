package mentor

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MentorResponse 是导师名录条目的API响应模型
type MentorResponse struct {
	MentorID    string   `json:"mentor_id"`
	Name        string   `json:"name"`
	Specialties []string `json:"specialties"`
}

// MentorListResponse 是导师名录的API响应模型
type MentorListResponse struct {
	Data   []MentorResponse `json:"data"`
	Object string           `json:"object"`
	Total  int              `json:"total"`
}

// GetMentors 返回完整的导师名录
func GetMentors(c *gin.Context) {
	mentors := ListMentors()

	responses := make([]MentorResponse, 0, len(mentors))
	for _, info := range mentors {
		specialties := info.Specialties
		if specialties == nil {
			specialties = []string{}
		}
		responses = append(responses, MentorResponse{
			MentorID:    info.MentorID,
			Name:        info.Name,
			Specialties: specialties,
		})
	}

	c.JSON(http.StatusOK, MentorListResponse{
		Data:   responses,
		Object: "list",
		Total:  len(responses),
	})
}
