package mealplan

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"

	"nutriplan/internal/llm"
)

//go:embed plan_prompt.md
var planPrompt string

// GenerateRequest captures what the diet-planning workflow asks for.
type GenerateRequest struct {
	HealthGoal   string
	DietType     string
	FoodsLiked   string
	FoodsAvoided string
	Request      string
	Days         int
	People       int
}

// Generator produces meal plans from user requests via the LLM.
type Generator struct {
	textGen llm.TextGenerator
}

// NewGenerator creates a new Generator.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen}
}

// Generate asks the model for a plan and parses the strict-JSON answer.
// The returned plan has no ID or owner yet; the caller assigns those before
// saving.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*MealPlan, llm.TokenUsage, error) {
	if req.Days < 1 {
		req.Days = 7
	}
	if req.People < 1 {
		req.People = 1
	}

	prompt, err := buildPlanPrompt(req)
	if err != nil {
		return nil, llm.TokenUsage{}, err
	}

	resp, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to generate meal plan: %w", err)
	}

	var plan MealPlan
	if err := json.Unmarshal([]byte(llm.CleanJSON(resp.Content)), &plan); err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to parse meal plan JSON: %w. Response: %s", err, resp.Content)
	}
	if len(plan.Days) == 0 {
		return nil, resp.Usage, fmt.Errorf("generated plan has no days")
	}
	if plan.Name == "" {
		plan.Name = "Generated meal plan"
	}

	return &plan, resp.Usage, nil
}

func buildPlanPrompt(req GenerateRequest) (string, error) {
	tmpl, err := template.New("plan").Parse(planPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
