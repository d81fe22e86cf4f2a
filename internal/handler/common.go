package handler

import (
	"net/http"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/models"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/service"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated user placed in the context by the
// auth middleware. On failure it writes the 401 response itself.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

// serviceError maps typed service errors to the response envelope.
func serviceError(c *gin.Context, err error) {
	switch {
	case service.IsNotFound(err):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case service.IsValidation(err):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
	}
}
