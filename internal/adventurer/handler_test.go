package adventurer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api/adventurers")
	group.POST("", CreateAdventurerHandler)
	group.GET("/:id", GetAdventurerHandler)
	group.POST("/:id/experience", AddExperienceHandler)
	group.POST("/:id/guidance", RecordGuidanceSessionHandler)
	return r
}

func performJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetAdventurerHTTP(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	w := performJSON(t, r, http.MethodPost, "/api/adventurers", gin.H{
		"name":          "Frodo",
		"proficiencies": []string{"stealth"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "adventurer", created["object"])
	assert.Equal(t, "Frodo", created["name"])
	assert.Equal(t, float64(1), created["level"])
	assert.Equal(t, float64(1), created["universal_avatar_level"])
	assert.NotContains(t, created, "mentor")

	id := created["id"].(string)
	w = performJSON(t, r, http.MethodGet, "/api/adventurers/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, id, fetched["id"])
	profs := fetched["proficiencies"].([]interface{})
	require.Len(t, profs, 1)
	prof := profs[0].(map[string]interface{})
	assert.Equal(t, "stealth", prof["skill"])
	assert.Equal(t, float64(300), prof["experience_to_next_level"])
}

func TestGetAdventurerHTTPNotFound(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	w := performJSON(t, r, http.MethodGet, "/api/adventurers/adv_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])
}

func TestAddExperienceHTTP(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	dto := mustCreateAdventurer(t, "Aragorn", nil)

	w := performJSON(t, r, http.MethodPost, "/api/adventurers/"+dto.ID+"/experience", gin.H{
		"experience_points":    750,
		"target_proficiencies": []string{"swordsmanship", "leadership"},
		"reason":               "quest completion",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["level_up_occurred"])
	assert.NotContains(t, body, "new_level")
	affected := body["affected_proficiencies"].([]interface{})
	assert.Equal(t, []interface{}{"leadership", "swordsmanship"}, affected)

	adv := body["adventurer"].(map[string]interface{})
	assert.Equal(t, float64(750), adv["experience_points"])
	assert.Equal(t, float64(2), adv["universal_avatar_level"])
}

func TestAddExperienceHTTPRejectsMissingBody(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	dto := mustCreateAdventurer(t, "Aragorn", nil)

	w := performJSON(t, r, http.MethodPost, "/api/adventurers/"+dto.ID+"/experience", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordGuidanceSessionHTTPWithoutMentor(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()
	dto := mustCreateAdventurer(t, "Frodo", nil)

	w := performJSON(t, r, http.MethodPost, "/api/adventurers/"+dto.ID+"/guidance", gin.H{
		"session_type":     "training",
		"duration_minutes": 60,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "precondition_failed", body["code"])
}
