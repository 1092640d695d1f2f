package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"nutriplan/internal/llm"
)

// Importer fetches a web page and extracts the recipe on it.
type Importer struct {
	textGen    llm.TextGenerator
	httpClient *http.Client
}

// NewImporter creates a new Importer.
func NewImporter(textGen llm.TextGenerator) *Importer {
	return &Importer{
		textGen:    textGen,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ImportURL fetches the URL and extracts the recipe using the LLM.
func (im *Importer) ImportURL(ctx context.Context, url string) (*GeneratedRecipe, llm.TokenUsage, error) {
	content, err := im.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, llm.TokenUsage{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page content.
Return the result strictly as a JSON object with this structure:
{
  "name": "Recipe name",
  "description": "One-sentence description",
  "ingredients": [{"quantity": "200 g", "item": "tofu"}, ...],
  "instructions": ["Step 1", "Step 2", ...],
  "nutrition": {"calories": 0, "protein": 0, "carbs": 0, "fat": 0},
  "prep_time": "e.g. 30 mins",
  "cook_time": "e.g. 30 mins"
}
Use 0 for nutrition facts the page does not state. Do not include any other text in your response.

Page content:
%s
`, content)

	resp, err := im.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, resp.Usage, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted GeneratedRecipe
	if err := json.Unmarshal([]byte(llm.CleanJSON(resp.Content)), &extracted); err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}
	if extracted.Name == "" || len(extracted.Ingredients) == 0 {
		return nil, resp.Usage, fmt.Errorf("page does not contain an extractable recipe")
	}

	return &extracted, resp.Usage, nil
}

func (im *Importer) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}

	resp, err := im.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
