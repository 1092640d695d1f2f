package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"

	"nutriplan/internal/llm"
)

//go:embed recipe_prompt.md
var recipePrompt string

// GenerateRequest carries the recipe-generator form fields.
type GenerateRequest struct {
	RecipeName  string `json:"recipe_name"`
	MealType    string `json:"meal_type"`
	Cuisine     string `json:"cuisine"`
	Dietary     string `json:"dietary"`
	Difficulty  string `json:"difficulty"`
	Ingredients string `json:"ingredients"`
	Servings    int    `json:"servings"`
	CookTime    int    `json:"cook_time"`
	Notes       string `json:"notes"`
}

// Generator produces recipes from form input via the LLM.
type Generator struct {
	textGen llm.TextGenerator
}

// NewGenerator creates a new Generator.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen}
}

// Generate asks the model for a recipe and parses the strict-JSON answer.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GeneratedRecipe, llm.TokenUsage, error) {
	if req.MealType == "" {
		req.MealType = "dinner"
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if req.Dietary == "" {
		req.Dietary = "None"
	}
	if req.Servings < 1 {
		req.Servings = 4
	}
	if req.CookTime < 1 {
		req.CookTime = 30
	}

	prompt, err := buildRecipePrompt(req)
	if err != nil {
		return nil, llm.TokenUsage{}, err
	}

	resp, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to generate recipe: %w", err)
	}

	var rec GeneratedRecipe
	if err := json.Unmarshal([]byte(llm.CleanJSON(resp.Content)), &rec); err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to parse recipe JSON: %w. Response: %s", err, resp.Content)
	}
	if rec.Name == "" || len(rec.Ingredients) == 0 {
		return nil, resp.Usage, fmt.Errorf("generated recipe is incomplete")
	}

	return &rec, resp.Usage, nil
}

func buildRecipePrompt(req GenerateRequest) (string, error) {
	tmpl, err := template.New("recipe").Parse(recipePrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
