package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/grocery"
	"nutriplan/internal/llm"
	"nutriplan/internal/mealplan"
	"nutriplan/internal/metrics"
)

func (s *Server) handleListPlans(c *gin.Context) {
	plans, err := s.plans.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to list meal plans")
		return
	}
	if plans == nil {
		plans = []*mealplan.MealPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

func (s *Server) handleCreatePlan(c *gin.Context) {
	var plan mealplan.MealPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		abortError(c, http.StatusBadRequest, "invalid meal plan payload")
		return
	}
	if plan.Name == "" {
		abortError(c, http.StatusBadRequest, "name is required")
		return
	}

	plan.ID = ""
	plan.UserID = currentUserID(c)
	if err := s.plans.Create(c.Request.Context(), &plan); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to create meal plan")
		return
	}
	c.JSON(http.StatusCreated, plan)
}

type generatePlanRequest struct {
	Request  string `json:"request"`
	DietType string `json:"diet_type"`
	Days     int    `json:"days"`
	People   int    `json:"people"`
}

func (s *Server) handleGeneratePlan(c *gin.Context) {
	var req generatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	ctx := c.Request.Context()
	userID := currentUserID(c)

	prefs, err := s.users.GetPreferences(ctx, userID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	people := req.People
	if people < 1 {
		people = prefs.NumPeople
	}

	start := time.Now()
	plan, usage, err := s.planGen.Generate(ctx, mealplan.GenerateRequest{
		HealthGoal:   prefs.HealthGoal,
		DietType:     req.DietType,
		FoodsLiked:   prefs.FoodsLiked,
		FoodsAvoided: prefs.FoodsAvoided,
		Request:      joinNonEmpty(prefs.CustomRequirements, req.Request),
		Days:         req.Days,
		People:       people,
	})
	s.recordUsage(ctx, "plan_generate", usage, time.Since(start))
	if err != nil {
		abortError(c, http.StatusBadGateway, "failed to generate meal plan")
		return
	}

	plan.UserID = userID
	if err := s.plans.Create(ctx, plan); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to save meal plan")
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (s *Server) handleGetPlan(c *gin.Context) {
	plan, ok := s.loadPlan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) handleUpdatePlan(c *gin.Context) {
	plan, ok := s.loadPlan(c)
	if !ok {
		return
	}

	var update mealplan.MealPlan
	if err := c.ShouldBindJSON(&update); err != nil {
		abortError(c, http.StatusBadRequest, "invalid meal plan payload")
		return
	}

	if update.Name != "" {
		plan.Name = update.Name
	}
	plan.DietType = update.DietType
	if update.Days != nil {
		plan.Days = update.Days
	}
	if update.GroceryList != nil {
		plan.GroceryList = update.GroceryList
	}

	if err := s.plans.Update(c.Request.Context(), plan); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to update meal plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) handleDeletePlan(c *gin.Context) {
	err := s.plans.Delete(c.Request.Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, mealplan.ErrPlanNotFound) {
		abortError(c, http.StatusNotFound, "meal plan not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to delete meal plan")
		return
	}
	c.Status(http.StatusNoContent)
}

type estimateRequest struct {
	People int `json:"people"`
}

// handleEstimatePlanList prices the grocery list of a plan. Keywords come
// from the plan's meals; the whole keyword set goes out as one batched
// pricing call. A pricing failure is not fatal: the list comes back
// unchanged with a warning and the caller may retry.
func (s *Server) handleEstimatePlanList(c *gin.Context) {
	plan, ok := s.loadPlan(c)
	if !ok {
		return
	}

	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		abortError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	ctx := c.Request.Context()

	keywords := grocery.ExtractKeywords(plan.MealSources())
	if len(keywords) == 0 && plan.GroceryList != nil {
		keywords = grocery.KeywordsFromList(plan.GroceryList)
	}
	if len(keywords) == 0 {
		c.JSON(http.StatusOK, gin.H{"plan": plan, "warning": "no extractable ingredients to price"})
		return
	}

	estimate, ok := s.fetchEstimate(c, keywords, req.People)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"plan": plan, "warning": "pricing unavailable, showing list without prices"})
		return
	}

	if plan.GroceryList == nil {
		plan.GroceryList = grocery.BuildList(estimate)
	} else {
		grocery.Merge(plan.GroceryList, estimate.PriceMap())
	}

	if err := s.plans.Update(ctx, plan); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to save priced list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

type copyListRequest struct {
	Name string `json:"name"`
}

// handleCopyPlanList snapshots the plan's grocery list into a standalone
// list. The copy is deep, so later edits to either side never bleed into
// the other.
func (s *Server) handleCopyPlanList(c *gin.Context) {
	plan, ok := s.loadPlan(c)
	if !ok {
		return
	}
	if plan.GroceryList == nil {
		abortError(c, http.StatusNotFound, "meal plan has no grocery list")
		return
	}

	var req copyListRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		abortError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	name := req.Name
	if name == "" {
		name = plan.Name + " groceries"
	}

	list := &grocery.StandaloneList{
		UserID: currentUserID(c),
		Name:   name,
		Items:  plan.GroceryList.Clone(),
	}
	if err := s.lists.Create(c.Request.Context(), list); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to create grocery list")
		return
	}
	c.JSON(http.StatusCreated, list)
}

type itemPriceRequest struct {
	Category string  `json:"category" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price"`
}

type itemRequest struct {
	Category string `json:"category" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

func (s *Server) handleSetPlanItemPrice(c *gin.Context) {
	plan, ok := s.loadPlan(c)
	if !ok {
		return
	}

	var req itemPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "category, name and price are required")
		return
	}
	if plan.GroceryList == nil {
		abortError(c, http.StatusNotFound, "meal plan has no grocery list")
		return
	}

	if err := grocery.SetManualPrice(plan.GroceryList, req.Category, req.Name, req.Price); err != nil {
		abortError(c, http.StatusNotFound, err.Error())
		return
	}
	if err := s.plans.Update(c.Request.Context(), plan); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to save price")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (s *Server) handleTogglePlanItem(c *gin.Context) {
	plan, ok := s.loadPlan(c)
	if !ok {
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "category and name are required")
		return
	}
	if plan.GroceryList == nil {
		abortError(c, http.StatusNotFound, "meal plan has no grocery list")
		return
	}

	if err := grocery.ToggleChecked(plan.GroceryList, req.Category, req.Name); err != nil {
		abortError(c, http.StatusNotFound, err.Error())
		return
	}
	if err := s.plans.Update(c.Request.Context(), plan); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to save list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// loadPlan fetches the plan in the path, scoped to the caller. Plans of
// other users answer 404, never 403, to avoid leaking existence.
func (s *Server) loadPlan(c *gin.Context) (*mealplan.MealPlan, bool) {
	plan, err := s.plans.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, mealplan.ErrPlanNotFound) {
		abortError(c, http.StatusNotFound, "meal plan not found")
		return nil, false
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to load meal plan")
		return nil, false
	}
	return plan, true
}

// fetchEstimate runs the batched pricing call and records its cost. The
// boolean result tells the caller whether prices are available; the request
// itself never fails the surrounding handler.
func (s *Server) fetchEstimate(c *gin.Context, keywords []string, people int) (*grocery.Estimate, bool) {
	ctx := c.Request.Context()
	if people < 1 {
		if prefs, err := s.users.GetPreferences(ctx, currentUserID(c)); err == nil && prefs.NumPeople > 0 {
			people = prefs.NumPeople
		} else {
			people = s.cfg.DefaultPeople
		}
	}

	start := time.Now()
	estimate, usage, err := s.estimator.FetchEstimates(ctx, keywords, people)
	s.recordUsage(ctx, "grocery_pricing", usage, time.Since(start))
	if err != nil {
		slog.Warn("pricing estimate failed", "error", err, "keywords", len(keywords))
		return nil, false
	}
	return estimate, true
}

func (s *Server) recordUsage(ctx context.Context, operation string, usage llm.TokenUsage, latency time.Duration) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.Record(ctx, metrics.MapUsage(operation, usage, latency)); err != nil {
		slog.Warn("failed to record llm metrics", "operation", operation, "error", err)
	}
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ". "
		}
		out += p
	}
	return out
}
