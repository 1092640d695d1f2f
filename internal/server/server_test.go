package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/auth"
	"nutriplan/internal/config"
	"nutriplan/internal/database"
	"nutriplan/internal/grocery"
	"nutriplan/internal/llm"
	"nutriplan/internal/mealplan"
	"nutriplan/internal/metrics"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/recipe"
	"nutriplan/internal/user"
)

// fakeGenerator returns queued responses in order, repeating the last one
// when the queue runs out.
type fakeGenerator struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string) (llm.ContentResponse, error) {
	f.calls++
	if f.err != nil {
		return llm.ContentResponse{}, f.err
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return llm.ContentResponse{
		Content: f.responses[i],
		Usage:   llm.TokenUsage{PromptTokens: 5, CompletionTokens: 5, TotalTokens: 10, Model: "fake"},
	}, nil
}

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T, gen llm.TextGenerator) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Port:          "4000",
		DefaultPeople: 1,
	}
	jwtManager := auth.NewJWTManager("test-secret", "test-refresh", 15*time.Minute, time.Hour)

	srv := New(
		cfg,
		jwtManager,
		user.NewRepository(db.SQL),
		mealplan.NewRepository(db.SQL),
		grocery.NewRepository(db.SQL),
		recipe.NewRepository(db.SQL),
		nutrition.NewRepository(db.SQL),
		gen,
		metrics.NewStore(db.SQL),
	)
	return &testServer{router: srv.Router()}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %s: %v", w.Body.String(), err)
	}
	return v
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (ts *testServer) register(t *testing.T, email string) tokens {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": email, "password": "password123", "full_name": "Test User",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body = %s", w.Code, w.Body.String())
	}
	return decode[tokens](t, w)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{responses: []string{"{}"}})

	w := ts.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{responses: []string{"{}"}})

	tok := ts.register(t, "auth@example.com")
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		t.Fatal("register did not return tokens")
	}

	// Duplicate registration conflicts.
	w := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "auth@example.com", "password": "password123",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register: status = %d, want 409", w.Code)
	}

	// Short password rejected.
	w = ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "short@example.com", "password": "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("short password: status = %d, want 400", w.Code)
	}

	// Login with right and wrong credentials.
	w = ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "auth@example.com", "password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Errorf("login: status = %d, body = %s", w.Code, w.Body.String())
	}
	w = ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "auth@example.com", "password": "wrongpassword",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", w.Code)
	}

	// A short wrong password must fail the same way as a long one, or the
	// status code would reveal which passwords can exist.
	w = ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "auth@example.com", "password": "nope",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("short wrong password: status = %d, want 401", w.Code)
	}

	// The access token opens /me; no token does not.
	w = ts.do(t, http.MethodGet, "/api/auth/me", tok.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("me: status = %d", w.Code)
	}
	me := decode[user.User](t, w)
	if me.Email != "auth@example.com" {
		t.Errorf("me.Email = %q", me.Email)
	}
	w = ts.do(t, http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me without token: status = %d, want 401", w.Code)
	}

	// Refresh mints a fresh access token.
	w = ts.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": tok.RefreshToken})
	if w.Code != http.StatusOK {
		t.Errorf("refresh: status = %d, body = %s", w.Code, w.Body.String())
	}
	refreshed := decode[tokens](t, w)
	if refreshed.AccessToken == "" {
		t.Error("refresh did not return an access token")
	}

	// An access token must not work as a refresh token.
	w = ts.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": tok.AccessToken})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh with access token: status = %d, want 401", w.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{responses: []string{"{}"}})

	for _, path := range []string{"/api/meal-plans", "/api/grocery-lists", "/api/favorite-meals", "/api/nutrition-logs", "/api/nutrition-goals", "/api/preferences"} {
		w := ts.do(t, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want 401", path, w.Code)
		}
	}
}

const pricingResponse = `{"items": [{"name": "Greek Yogurt", "category": "Dairy/Alternatives", "price": 4.50, "unit": "tub"}]}`

type planEnvelope struct {
	Plan    mealplan.MealPlan `json:"plan"`
	Warning string            `json:"warning"`
}

func TestPlanPricingFlow(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{responses: []string{pricingResponse}})
	tok := ts.register(t, "plans@example.com")

	w := ts.do(t, http.MethodPost, "/api/meal-plans", tok.AccessToken, gin.H{
		"name": "Yogurt week",
		"days": []gin.H{{"breakfast": gin.H{"name": "Greek Yogurt Bowl"}}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: status = %d, body = %s", w.Code, w.Body.String())
	}
	plan := decode[mealplan.MealPlan](t, w)
	base := "/api/meal-plans/" + plan.ID

	// First estimate builds a fresh priced list from the pricing response.
	w = ts.do(t, http.MethodPost, base+"/grocery-list/estimate", tok.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("estimate: status = %d, body = %s", w.Code, w.Body.String())
	}
	env := decode[planEnvelope](t, w)
	items := env.Plan.GroceryList["Dairy/Alternatives"]
	if len(items) != 1 || items[0].Price == nil || *items[0].Price != 4.50 {
		t.Fatalf("estimated list = %+v", env.Plan.GroceryList)
	}
	if env.Plan.TotalCost == nil || *env.Plan.TotalCost != 4.50 {
		t.Errorf("TotalCost = %v, want 4.50", env.Plan.TotalCost)
	}

	// Manual correction wins over the estimate.
	w = ts.do(t, http.MethodPut, base+"/grocery-list/items/price", tok.AccessToken, gin.H{
		"category": "Dairy/Alternatives", "name": "Greek Yogurt", "price": 3.25,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("set price: status = %d, body = %s", w.Code, w.Body.String())
	}
	env = decode[planEnvelope](t, w)
	if *env.Plan.GroceryList["Dairy/Alternatives"][0].Price != 3.25 {
		t.Errorf("manual price not applied: %+v", env.Plan.GroceryList)
	}
	if env.Plan.TotalCost == nil || *env.Plan.TotalCost != 3.25 {
		t.Errorf("TotalCost = %v, want 3.25", env.Plan.TotalCost)
	}

	// Re-estimating must not clobber the manual price.
	w = ts.do(t, http.MethodPost, base+"/grocery-list/estimate", tok.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("re-estimate: status = %d, body = %s", w.Code, w.Body.String())
	}
	env = decode[planEnvelope](t, w)
	if *env.Plan.GroceryList["Dairy/Alternatives"][0].Price != 3.25 {
		t.Errorf("re-estimate clobbered manual price: %+v", env.Plan.GroceryList)
	}

	// Toggling marks the item bought; unknown items answer 404.
	w = ts.do(t, http.MethodPut, base+"/grocery-list/items/checked", tok.AccessToken, gin.H{
		"category": "Dairy/Alternatives", "name": "Greek Yogurt",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: status = %d, body = %s", w.Code, w.Body.String())
	}
	env = decode[planEnvelope](t, w)
	if !env.Plan.GroceryList["Dairy/Alternatives"][0].Checked {
		t.Error("item not checked after toggle")
	}

	w = ts.do(t, http.MethodPut, base+"/grocery-list/items/checked", tok.AccessToken, gin.H{
		"category": "Dairy/Alternatives", "name": "No Such Item",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("toggle unknown item: status = %d, want 404", w.Code)
	}
	w = ts.do(t, http.MethodPut, base+"/grocery-list/items/price", tok.AccessToken, gin.H{
		"category": "Seafood", "name": "Greek Yogurt", "price": 1.0,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("price in unknown category: status = %d, want 404", w.Code)
	}
}

func TestPlanPricingFailureIsNotFatal(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream down")}
	ts := newTestServer(t, gen)
	tok := ts.register(t, "failure@example.com")

	w := ts.do(t, http.MethodPost, "/api/meal-plans", tok.AccessToken, gin.H{
		"name": "Plan",
		"days": []gin.H{{"dinner": gin.H{"name": "Chicken Curry"}}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: status = %d", w.Code)
	}
	plan := decode[mealplan.MealPlan](t, w)

	w = ts.do(t, http.MethodPost, "/api/meal-plans/"+plan.ID+"/grocery-list/estimate", tok.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("estimate: status = %d, want 200 despite pricing failure", w.Code)
	}
	env := decode[planEnvelope](t, w)
	if env.Warning == "" {
		t.Error("expected a warning in the response")
	}
	if env.Plan.GroceryList != nil {
		t.Errorf("list should stay absent after failed pricing: %+v", env.Plan.GroceryList)
	}
}

func TestPlansAreScopedToOwner(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{responses: []string{"{}"}})
	alice := ts.register(t, "alice@example.com")
	bob := ts.register(t, "bob@example.com")

	w := ts.do(t, http.MethodPost, "/api/meal-plans", alice.AccessToken, gin.H{
		"name": "Alice's plan", "days": []gin.H{},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: status = %d", w.Code)
	}
	plan := decode[mealplan.MealPlan](t, w)

	w = ts.do(t, http.MethodGet, "/api/meal-plans/"+plan.ID, bob.AccessToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("other user's plan: status = %d, want 404", w.Code)
	}
}

func TestGeneratePlanEndpoint(t *testing.T) {
	planJSON := `{"name": "Generated week", "days": [{"lunch": {"name": "Lentil Soup"}}]}`
	ts := newTestServer(t, &fakeGenerator{responses: []string{planJSON}})
	tok := ts.register(t, "generate@example.com")

	w := ts.do(t, http.MethodPost, "/api/meal-plans/generate", tok.AccessToken, gin.H{
		"days": 1, "people": 2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("generate: status = %d, body = %s", w.Code, w.Body.String())
	}
	plan := decode[mealplan.MealPlan](t, w)
	if plan.ID == "" || plan.Name != "Generated week" {
		t.Errorf("generated plan = %+v", plan)
	}

	// The plan is persisted and listed.
	w = ts.do(t, http.MethodGet, "/api/meal-plans", tok.AccessToken, nil)
	plans := decode[[]mealplan.MealPlan](t, w)
	if len(plans) != 1 {
		t.Errorf("got %d plans, want 1", len(plans))
	}
}

func TestCopyPlanList(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{responses: []string{pricingResponse}})
	tok := ts.register(t, "copy@example.com")

	w := ts.do(t, http.MethodPost, "/api/meal-plans", tok.AccessToken, gin.H{
		"name": "Yogurt week",
		"days": []gin.H{{"breakfast": gin.H{"name": "Greek Yogurt Bowl"}}},
	})
	plan := decode[mealplan.MealPlan](t, w)
	base := "/api/meal-plans/" + plan.ID

	// A plan without a grocery list has nothing to copy.
	w = ts.do(t, http.MethodPost, base+"/grocery-list/copy", tok.AccessToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("copy without list: status = %d, want 404", w.Code)
	}

	w = ts.do(t, http.MethodPost, base+"/grocery-list/estimate", tok.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("estimate: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodPost, base+"/grocery-list/copy", tok.AccessToken, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("copy: status = %d, body = %s", w.Code, w.Body.String())
	}
	copied := decode[grocery.StandaloneList](t, w)
	if copied.Name != "Yogurt week groceries" {
		t.Errorf("copied name = %q", copied.Name)
	}
	items := copied.Items["Dairy/Alternatives"]
	if len(items) != 1 || items[0].Price == nil || *items[0].Price != 4.50 {
		t.Fatalf("copied items = %+v", copied.Items)
	}

	// The copy is independent: repricing an item on it must not touch the
	// plan's list.
	w = ts.do(t, http.MethodPut, "/api/grocery-lists/"+copied.ID+"/items/price", tok.AccessToken, gin.H{
		"category": "Dairy/Alternatives", "name": "Greek Yogurt", "price": 9.99,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("set price on copy: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, base, tok.AccessToken, nil)
	fresh := decode[mealplan.MealPlan](t, w)
	if *fresh.GroceryList["Dairy/Alternatives"][0].Price != 4.50 {
		t.Errorf("plan price changed after editing the copy: %+v", fresh.GroceryList)
	}
}

type listEnvelope struct {
	List    grocery.StandaloneList `json:"list"`
	Warning string                 `json:"warning"`
}

func TestStandaloneListFlow(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{responses: []string{pricingResponse}})
	tok := ts.register(t, "lists@example.com")

	w := ts.do(t, http.MethodPost, "/api/grocery-lists", tok.AccessToken, gin.H{
		"name": "Weekend shop",
		"items": gin.H{
			"Dairy/Alternatives": []gin.H{{"name": "Greek Yogurt", "quantity": 1}},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create list: status = %d, body = %s", w.Code, w.Body.String())
	}
	list := decode[grocery.StandaloneList](t, w)
	base := "/api/grocery-lists/" + list.ID

	// Estimating merges prices into the existing items.
	w = ts.do(t, http.MethodPost, base+"/estimate", tok.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("estimate: status = %d, body = %s", w.Code, w.Body.String())
	}
	env := decode[listEnvelope](t, w)
	items := env.List.Items["Dairy/Alternatives"]
	if len(items) != 1 || items[0].Price == nil || *items[0].Price != 4.50 {
		t.Fatalf("estimated items = %+v", env.List.Items)
	}
	if env.List.TotalCost != 4.50 {
		t.Errorf("TotalCost = %v, want 4.50", env.List.TotalCost)
	}

	// The priced list is persisted.
	w = ts.do(t, http.MethodGet, base, tok.AccessToken, nil)
	stored := decode[grocery.StandaloneList](t, w)
	if stored.TotalCost != 4.50 {
		t.Errorf("stored TotalCost = %v, want 4.50", stored.TotalCost)
	}

	// Estimating an empty list is a no-op with a warning.
	w = ts.do(t, http.MethodPost, "/api/grocery-lists", tok.AccessToken, gin.H{"name": "Empty"})
	empty := decode[grocery.StandaloneList](t, w)
	w = ts.do(t, http.MethodPost, "/api/grocery-lists/"+empty.ID+"/estimate", tok.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("estimate empty: status = %d", w.Code)
	}
	if env := decode[listEnvelope](t, w); env.Warning == "" {
		t.Error("expected a warning for an empty list")
	}

	w = ts.do(t, http.MethodDelete, base, tok.AccessToken, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d, want 204", w.Code)
	}
	w = ts.do(t, http.MethodGet, base, tok.AccessToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}
}

func TestNutritionFlow(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{responses: []string{"{}"}})
	tok := ts.register(t, "nutrition@example.com")
	other := ts.register(t, "snoop@example.com")

	w := ts.do(t, http.MethodPost, "/api/nutrition-logs", tok.AccessToken, gin.H{
		"recipe_name": "Oatmeal", "meal_type": "breakfast", "log_date": "2026-08-31",
		"calories": 350, "protein": 12,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create log: status = %d, body = %s", w.Code, w.Body.String())
	}
	logged := decode[nutrition.Log](t, w)
	if logged.ID == "" || logged.Servings != 1 {
		t.Errorf("created log = %+v", logged)
	}

	// Missing recipe name is a client error.
	w = ts.do(t, http.MethodPost, "/api/nutrition-logs", tok.AccessToken, gin.H{"calories": 100})
	if w.Code != http.StatusBadRequest {
		t.Errorf("create log without name: status = %d, want 400", w.Code)
	}

	ts.do(t, http.MethodPost, "/api/nutrition-logs", tok.AccessToken, gin.H{
		"recipe_name": "Soup", "log_date": "2026-08-30",
	})

	// The date filter narrows the listing to one day.
	w = ts.do(t, http.MethodGet, "/api/nutrition-logs?date=2026-08-31", tok.AccessToken, nil)
	logs := decode[[]nutrition.Log](t, w)
	if len(logs) != 1 || logs[0].RecipeName != "Oatmeal" {
		t.Errorf("filtered logs = %+v", logs)
	}
	w = ts.do(t, http.MethodGet, "/api/nutrition-logs", tok.AccessToken, nil)
	if logs = decode[[]nutrition.Log](t, w); len(logs) != 2 {
		t.Errorf("got %d logs, want 2", len(logs))
	}

	// Another user's log answers 404, never 403.
	w = ts.do(t, http.MethodGet, "/api/nutrition-logs/"+logged.ID, other.AccessToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("other user's log: status = %d, want 404", w.Code)
	}

	w = ts.do(t, http.MethodPut, "/api/nutrition-logs/"+logged.ID, tok.AccessToken, gin.H{
		"recipe_name": "Oatmeal", "log_date": "2026-08-31", "calories": 400, "servings": 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update log: status = %d, body = %s", w.Code, w.Body.String())
	}
	if updated := decode[nutrition.Log](t, w); updated.Calories != 400 || updated.Servings != 2 {
		t.Errorf("updated log = %+v", updated)
	}

	w = ts.do(t, http.MethodDelete, "/api/nutrition-logs/"+logged.ID, tok.AccessToken, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete log: status = %d, want 204", w.Code)
	}

	// Goals: activating a new one deactivates the previous active goal.
	w = ts.do(t, http.MethodPost, "/api/nutrition-goals", tok.AccessToken, gin.H{
		"target_calories": 2000, "target_protein": 150, "is_active": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create goal: status = %d, body = %s", w.Code, w.Body.String())
	}
	first := decode[nutrition.Goal](t, w)
	if first.GoalType != "daily" {
		t.Errorf("GoalType = %q, want daily default", first.GoalType)
	}

	w = ts.do(t, http.MethodPost, "/api/nutrition-goals", tok.AccessToken, gin.H{
		"target_calories": 1800, "is_active": true,
	})
	second := decode[nutrition.Goal](t, w)

	w = ts.do(t, http.MethodGet, "/api/nutrition-goals", tok.AccessToken, nil)
	goals := decode[[]nutrition.Goal](t, w)
	if len(goals) != 2 {
		t.Fatalf("got %d goals, want 2", len(goals))
	}
	for _, g := range goals {
		if g.ID == first.ID && g.IsActive {
			t.Error("previous goal still active")
		}
		if g.ID == second.ID && !g.IsActive {
			t.Error("new goal not active")
		}
	}

	w = ts.do(t, http.MethodDelete, "/api/nutrition-goals/"+second.ID, other.AccessToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete other user's goal: status = %d, want 404", w.Code)
	}
	w = ts.do(t, http.MethodDelete, "/api/nutrition-goals/"+second.ID, tok.AccessToken, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete goal: status = %d, want 204", w.Code)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{responses: []string{"{}"}})
	tok := ts.register(t, "prefs@example.com")

	// Defaults before anything is saved.
	w := ts.do(t, http.MethodGet, "/api/preferences", tok.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get preferences: status = %d", w.Code)
	}
	prefs := decode[user.Preferences](t, w)
	if prefs.NumPeople != 1 {
		t.Errorf("default NumPeople = %d, want 1", prefs.NumPeople)
	}

	w = ts.do(t, http.MethodPut, "/api/preferences", tok.AccessToken, gin.H{
		"health_goal": "weight loss", "foods_avoided": "peanuts", "num_people": 3,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save preferences: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/api/preferences", tok.AccessToken, nil)
	prefs = decode[user.Preferences](t, w)
	if prefs.HealthGoal != "weight loss" || prefs.FoodsAvoided != "peanuts" || prefs.NumPeople != 3 {
		t.Errorf("preferences = %+v", prefs)
	}
}

func TestFavoriteMealsFlow(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{responses: []string{pricingResponse}})
	tok := ts.register(t, "favorites@example.com")

	w := ts.do(t, http.MethodPost, "/api/favorite-meals", tok.AccessToken, gin.H{
		"name":          "Yogurt Bowl",
		"ingredients":   []string{"greek yogurt", "berries"},
		"estimate_cost": true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("save favorite: status = %d, body = %s", w.Code, w.Body.String())
	}
	var saved struct {
		Meal recipe.FavoriteMeal `json:"meal"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.Meal.GroceryList == nil {
		t.Error("expected a priced grocery list on the saved meal")
	}
	if saved.Meal.TotalCost == nil || *saved.Meal.TotalCost != 4.50 {
		t.Errorf("TotalCost = %v, want 4.50", saved.Meal.TotalCost)
	}

	w = ts.do(t, http.MethodGet, "/api/favorite-meals", tok.AccessToken, nil)
	meals := decode[[]recipe.FavoriteMeal](t, w)
	if len(meals) != 1 || meals[0].Name != "Yogurt Bowl" {
		t.Errorf("favorites = %+v", meals)
	}

	w = ts.do(t, http.MethodDelete, "/api/favorite-meals/"+meals[0].ID, tok.AccessToken, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete favorite: status = %d, want 204", w.Code)
	}
}

func TestGenerateRecipeEndpoint(t *testing.T) {
	recipeJSON := `{"name": "Tofu Stir Fry", "ingredients": [{"quantity": "200g", "item": "tofu"}], "instructions": ["Fry it"]}`
	ts := newTestServer(t, &fakeGenerator{responses: []string{recipeJSON}})
	tok := ts.register(t, "recipes@example.com")

	w := ts.do(t, http.MethodPost, "/api/recipes/generate", tok.AccessToken, gin.H{
		"ingredients": "tofu, rice",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("generate recipe: status = %d, body = %s", w.Code, w.Body.String())
	}
	rec := decode[recipe.GeneratedRecipe](t, w)
	if rec.Name != "Tofu Stir Fry" {
		t.Errorf("recipe = %+v", rec)
	}

	// Missing ingredients is a client error.
	w = ts.do(t, http.MethodPost, "/api/recipes/generate", tok.AccessToken, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("generate without ingredients: status = %d, want 400", w.Code)
	}
}
