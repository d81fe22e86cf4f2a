package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/database"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/models"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/service"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// newPieRouter wires the pie routes behind a stub auth layer that always
// authenticates the given user.
func newPieRouter(db *gorm.DB, user *models.User) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("currentUser", user)
	})

	h := NewPieHandler(service.NewPieService(db))
	r.GET("/pies", h.ListPies)
	r.POST("/pies", h.CreatePie)
	r.POST("/pies/reorder", h.ReorderPies)
	r.GET("/pies/:pie_id", h.GetPie)
	r.PATCH("/pies/:pie_id", h.UpdatePie)
	r.DELETE("/pies/:pie_id", h.DeletePie)
	return r
}

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestCreateAndListPies(t *testing.T) {
	db := openTestDB(t)
	user := &models.User{Username: "alice"}
	require.NoError(t, db.Create(user).Error)
	r := newPieRouter(db, user)

	w, env := doJSON(t, r, http.MethodPost, "/pies",
		`{"name":"Growth","target_allocation":60,"color":"#FF8800"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, util.CodeOK, env.Code)

	pie, ok := env.Data["pie"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Growth", pie["name"])

	w, env = doJSON(t, r, http.MethodGet, "/pies", "")
	require.Equal(t, http.StatusOK, w.Code)
	pies, ok := env.Data["pies"].([]interface{})
	require.True(t, ok)
	assert.Len(t, pies, 1)
	assert.Equal(t, "60", env.Data["total_allocation"])
}

func TestCreatePieOverCapReturns400(t *testing.T) {
	db := openTestDB(t)
	user := &models.User{Username: "alice"}
	require.NoError(t, db.Create(user).Error)
	r := newPieRouter(db, user)

	w, env := doJSON(t, r, http.MethodPost, "/pies",
		`{"name":"All","target_allocation":100}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, util.CodeOK, env.Code)

	w, env = doJSON(t, r, http.MethodPost, "/pies",
		`{"name":"Over","target_allocation":0.01}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, util.CodeInvalidParam, env.Code)
	assert.NotEmpty(t, env.Message)
}

func TestCreatePieRejectsBadPercent(t *testing.T) {
	db := openTestDB(t)
	user := &models.User{Username: "alice"}
	require.NoError(t, db.Create(user).Error)
	r := newPieRouter(db, user)

	for _, body := range []string{
		`{"name":"Bad","target_allocation":101}`,
		`{"name":"Bad","target_allocation":-1}`,
		`{"name":"Bad","target_allocation":10.123}`,
		`{"target_allocation":10}`, // name is required
		`{"name":"Bad","target_allocation":10,"color":"red"}`,
	} {
		w, env := doJSON(t, r, http.MethodPost, "/pies", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, util.CodeInvalidParam, env.Code, body)
	}
}

func TestGetPieNotFound(t *testing.T) {
	db := openTestDB(t)
	user := &models.User{Username: "alice"}
	require.NoError(t, db.Create(user).Error)
	r := newPieRouter(db, user)

	w, env := doJSON(t, r, http.MethodGet, "/pies/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, util.CodeNotFound, env.Code)
}

func TestUpdateAndDeletePie(t *testing.T) {
	db := openTestDB(t)
	user := &models.User{Username: "alice"}
	require.NoError(t, db.Create(user).Error)
	r := newPieRouter(db, user)

	_, env := doJSON(t, r, http.MethodPost, "/pies",
		`{"name":"Growth","target_allocation":60}`)
	pie := env.Data["pie"].(map[string]interface{})
	id := pie["id"].(string)

	w, env := doJSON(t, r, http.MethodPatch, "/pies/"+id, `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", env.Data["pie"].(map[string]interface{})["name"])

	w, _ = doJSON(t, r, http.MethodDelete, "/pies/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodDelete, "/pies/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, util.CodeNotFound, env.Code)
}

func TestRequestWithoutUserIs401(t *testing.T) {
	db := openTestDB(t)

	r := gin.New()
	h := NewPieHandler(service.NewPieService(db))
	r.GET("/pies", h.ListPies)

	w, env := doJSON(t, r, http.MethodGet, "/pies", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, util.CodeAuth, env.Code)
}
