package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/nutrition"
)

func (s *Server) handleListNutritionLogs(c *gin.Context) {
	logs, err := s.nutrition.ListLogsByUser(c.Request.Context(), currentUserID(c), c.Query("date"))
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to list nutrition logs")
		return
	}
	if logs == nil {
		logs = []*nutrition.Log{}
	}
	c.JSON(http.StatusOK, logs)
}

func (s *Server) handleCreateNutritionLog(c *gin.Context) {
	var log nutrition.Log
	if err := c.ShouldBindJSON(&log); err != nil {
		abortError(c, http.StatusBadRequest, "invalid nutrition log payload")
		return
	}
	if log.RecipeName == "" {
		abortError(c, http.StatusBadRequest, "recipe_name is required")
		return
	}

	log.ID = ""
	log.UserID = currentUserID(c)
	if err := s.nutrition.CreateLog(c.Request.Context(), &log); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to create nutrition log")
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (s *Server) handleGetNutritionLog(c *gin.Context) {
	log, err := s.nutrition.GetLog(c.Request.Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, nutrition.ErrLogNotFound) {
		abortError(c, http.StatusNotFound, "nutrition log not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to load nutrition log")
		return
	}
	c.JSON(http.StatusOK, log)
}

func (s *Server) handleUpdateNutritionLog(c *gin.Context) {
	var log nutrition.Log
	if err := c.ShouldBindJSON(&log); err != nil {
		abortError(c, http.StatusBadRequest, "invalid nutrition log payload")
		return
	}

	log.ID = c.Param("id")
	log.UserID = currentUserID(c)
	err := s.nutrition.UpdateLog(c.Request.Context(), &log)
	if errors.Is(err, nutrition.ErrLogNotFound) {
		abortError(c, http.StatusNotFound, "nutrition log not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to update nutrition log")
		return
	}
	c.JSON(http.StatusOK, log)
}

func (s *Server) handleDeleteNutritionLog(c *gin.Context) {
	err := s.nutrition.DeleteLog(c.Request.Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, nutrition.ErrLogNotFound) {
		abortError(c, http.StatusNotFound, "nutrition log not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to delete nutrition log")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListNutritionGoals(c *gin.Context) {
	goals, err := s.nutrition.ListGoalsByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to list nutrition goals")
		return
	}
	if goals == nil {
		goals = []*nutrition.Goal{}
	}
	c.JSON(http.StatusOK, goals)
}

func (s *Server) handleCreateNutritionGoal(c *gin.Context) {
	var goal nutrition.Goal
	if err := c.ShouldBindJSON(&goal); err != nil {
		abortError(c, http.StatusBadRequest, "invalid nutrition goal payload")
		return
	}

	goal.ID = ""
	goal.UserID = currentUserID(c)
	if err := s.nutrition.CreateGoal(c.Request.Context(), &goal); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to create nutrition goal")
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (s *Server) handleUpdateNutritionGoal(c *gin.Context) {
	var goal nutrition.Goal
	if err := c.ShouldBindJSON(&goal); err != nil {
		abortError(c, http.StatusBadRequest, "invalid nutrition goal payload")
		return
	}

	goal.ID = c.Param("id")
	goal.UserID = currentUserID(c)
	err := s.nutrition.UpdateGoal(c.Request.Context(), &goal)
	if errors.Is(err, nutrition.ErrGoalNotFound) {
		abortError(c, http.StatusNotFound, "nutrition goal not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to update nutrition goal")
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (s *Server) handleDeleteNutritionGoal(c *gin.Context) {
	err := s.nutrition.DeleteGoal(c.Request.Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, nutrition.ErrGoalNotFound) {
		abortError(c, http.StatusNotFound, "nutrition goal not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to delete nutrition goal")
		return
	}
	c.Status(http.StatusNoContent)
}
