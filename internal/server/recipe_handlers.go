package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/grocery"
	"nutriplan/internal/recipe"
)

func (s *Server) handleGenerateRecipe(c *gin.Context) {
	var req recipe.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Ingredients == "" {
		abortError(c, http.StatusBadRequest, "ingredients are required")
		return
	}

	start := time.Now()
	rec, usage, err := s.recipeGen.Generate(c.Request.Context(), req)
	s.recordUsage(c.Request.Context(), "recipe_generate", usage, time.Since(start))
	if err != nil {
		abortError(c, http.StatusBadGateway, "failed to generate recipe")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleImportRecipe(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "a valid url is required")
		return
	}

	start := time.Now()
	rec, usage, err := s.importer.ImportURL(c.Request.Context(), req.URL)
	s.recordUsage(c.Request.Context(), "recipe_import", usage, time.Since(start))
	if err != nil {
		abortError(c, http.StatusBadGateway, "failed to import recipe")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleListFavorites(c *gin.Context) {
	meals, err := s.favorites.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to list favorite meals")
		return
	}
	if meals == nil {
		meals = []*recipe.FavoriteMeal{}
	}
	c.JSON(http.StatusOK, meals)
}

type saveFavoriteRequest struct {
	recipe.FavoriteMeal
	EstimateCost bool `json:"estimate_cost"`
	People       int  `json:"people"`
}

// handleSaveFavorite saves a recipe the user wants to keep. When asked, it
// also prices the ingredient list in the same request; a pricing failure
// still saves the meal, just without a grocery list.
func (s *Server) handleSaveFavorite(c *gin.Context) {
	var req saveFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid favorite meal payload")
		return
	}
	if req.Name == "" {
		abortError(c, http.StatusBadRequest, "name is required")
		return
	}

	meal := req.FavoriteMeal
	meal.ID = ""
	meal.UserID = currentUserID(c)

	warning := ""
	if req.EstimateCost && meal.GroceryList == nil && len(meal.Ingredients) > 0 {
		sources := make([]grocery.MealSource, 0, len(meal.Ingredients))
		for _, ing := range meal.Ingredients {
			sources = append(sources, grocery.MealSource{Name: ing})
		}
		keywords := grocery.ExtractKeywords(sources)

		if estimate, ok := s.fetchEstimate(c, keywords, req.People); ok {
			meal.GroceryList = grocery.BuildList(estimate)
		} else {
			warning = "pricing unavailable, saved without grocery costs"
		}
	}

	if err := s.favorites.Save(c.Request.Context(), &meal); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to save favorite meal")
		return
	}

	resp := gin.H{"meal": meal}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleDeleteFavorite(c *gin.Context) {
	err := s.favorites.Delete(c.Request.Context(), c.Param("id"), currentUserID(c))
	if errors.Is(err, recipe.ErrMealNotFound) {
		abortError(c, http.StatusNotFound, "favorite meal not found")
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to delete favorite meal")
		return
	}
	c.Status(http.StatusNoContent)
}
