package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/user"
)

func (s *Server) handleGetPreferences(c *gin.Context) {
	prefs, err := s.users.GetPreferences(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (s *Server) handleSavePreferences(c *gin.Context) {
	var prefs user.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		abortError(c, http.StatusBadRequest, "invalid preferences payload")
		return
	}

	prefs.UserID = currentUserID(c)
	if err := s.users.SavePreferences(c.Request.Context(), &prefs); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}
