// Package server wires the REST API: routing, middleware and handlers.
package server

import (
	"github.com/gin-gonic/gin"

	"nutriplan/internal/auth"
	"nutriplan/internal/config"
	"nutriplan/internal/grocery"
	"nutriplan/internal/llm"
	"nutriplan/internal/mealplan"
	"nutriplan/internal/metrics"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/recipe"
	"nutriplan/internal/user"
)

// Server holds the handler dependencies.
type Server struct {
	cfg *config.Config
	jwt *auth.JWTManager

	users     *user.Repository
	plans     *mealplan.Repository
	lists     *grocery.Repository
	favorites *recipe.Repository
	nutrition *nutrition.Repository

	estimator *grocery.Estimator
	planGen   *mealplan.Generator
	recipeGen *recipe.Generator
	importer  *recipe.Importer

	metrics *metrics.Store
}

// New creates a Server with all its dependencies.
func New(
	cfg *config.Config,
	jwtManager *auth.JWTManager,
	users *user.Repository,
	plans *mealplan.Repository,
	lists *grocery.Repository,
	favorites *recipe.Repository,
	nutritionRepo *nutrition.Repository,
	textGen llm.TextGenerator,
	metricsStore *metrics.Store,
) *Server {
	return &Server{
		cfg:       cfg,
		jwt:       jwtManager,
		users:     users,
		plans:     plans,
		lists:     lists,
		favorites: favorites,
		nutrition: nutritionRepo,
		estimator: grocery.NewEstimator(textGen),
		planGen:   mealplan.NewGenerator(textGen),
		recipeGen: recipe.NewGenerator(textGen),
		importer:  recipe.NewImporter(textGen),
		metrics:   metricsStore,
	}
}

// Router builds the gin engine with all routes mounted. Each entity lives
// under exactly one canonical path.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), corsMiddleware(s.cfg.CORSOrigin))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.handleRegister)
	authGroup.POST("/login", s.handleLogin)
	authGroup.POST("/refresh", s.handleRefresh)
	authGroup.GET("/me", s.requireAuth(), s.handleMe)

	protected := api.Group("", s.requireAuth())

	protected.GET("/meal-plans", s.handleListPlans)
	protected.POST("/meal-plans", s.handleCreatePlan)
	protected.POST("/meal-plans/generate", s.handleGeneratePlan)
	protected.GET("/meal-plans/:id", s.handleGetPlan)
	protected.PUT("/meal-plans/:id", s.handleUpdatePlan)
	protected.DELETE("/meal-plans/:id", s.handleDeletePlan)
	protected.POST("/meal-plans/:id/grocery-list/estimate", s.handleEstimatePlanList)
	protected.POST("/meal-plans/:id/grocery-list/copy", s.handleCopyPlanList)
	protected.PUT("/meal-plans/:id/grocery-list/items/price", s.handleSetPlanItemPrice)
	protected.PUT("/meal-plans/:id/grocery-list/items/checked", s.handleTogglePlanItem)

	protected.GET("/grocery-lists", s.handleListGroceryLists)
	protected.POST("/grocery-lists", s.handleCreateGroceryList)
	protected.GET("/grocery-lists/:id", s.handleGetGroceryList)
	protected.PUT("/grocery-lists/:id", s.handleUpdateGroceryList)
	protected.DELETE("/grocery-lists/:id", s.handleDeleteGroceryList)
	protected.POST("/grocery-lists/:id/estimate", s.handleEstimateGroceryList)
	protected.PUT("/grocery-lists/:id/items/price", s.handleSetListItemPrice)
	protected.PUT("/grocery-lists/:id/items/checked", s.handleToggleListItem)

	protected.POST("/recipes/generate", s.handleGenerateRecipe)
	protected.POST("/recipes/import", s.handleImportRecipe)
	protected.GET("/favorite-meals", s.handleListFavorites)
	protected.POST("/favorite-meals", s.handleSaveFavorite)
	protected.DELETE("/favorite-meals/:id", s.handleDeleteFavorite)

	protected.GET("/nutrition-logs", s.handleListNutritionLogs)
	protected.POST("/nutrition-logs", s.handleCreateNutritionLog)
	protected.GET("/nutrition-logs/:id", s.handleGetNutritionLog)
	protected.PUT("/nutrition-logs/:id", s.handleUpdateNutritionLog)
	protected.DELETE("/nutrition-logs/:id", s.handleDeleteNutritionLog)

	protected.GET("/nutrition-goals", s.handleListNutritionGoals)
	protected.POST("/nutrition-goals", s.handleCreateNutritionGoal)
	protected.PUT("/nutrition-goals/:id", s.handleUpdateNutritionGoal)
	protected.DELETE("/nutrition-goals/:id", s.handleDeleteNutritionGoal)

	protected.GET("/preferences", s.handleGetPreferences)
	protected.PUT("/preferences", s.handleSavePreferences)

	return r
}
