package main

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"
)

const analyzePrompt = `This is a photo of a word-search puzzle.

Extract:
- "rows": the letter grid, one string per row, top to bottom, letters left to right, no spaces.
  Every row must have the same number of letters.
- "words": the list of words to find, exactly as printed.

Answer ONLY with the JSON object, without comments or markdown.`

// puzzleSchema constrains the model output to {rows: [string], words: [string]}.
var puzzleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"rows":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"words": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"rows", "words"},
}

// GeminiClient reads puzzles from photos with a Gemini model on Vertex AI.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient connects to Vertex AI with Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS). Empty region and model use the defaults.
func NewGeminiClient(ctx context.Context, projectID, region, model string) (*GeminiClient, error) {
	if projectID == "" {
		return nil, errors.New("gemini: project ID is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: cmp.Or(region, defaultRegion),
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &GeminiClient{client: client, model: cmp.Or(model, defaultModel)}, nil
}

// AnalyzeImage sends a photo to Gemini and returns the puzzle it shows.
func (g *GeminiClient) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (*Puzzle, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: analyzePrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
			ResponseSchema:   puzzleSchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}

	return parsePuzzleJSON(text)
}

// parsePuzzleJSON decodes and validates a model answer.
func parsePuzzleJSON(text string) (*Puzzle, error) {
	// Models sometimes wrap JSON in a markdown fence despite the instructions.
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var raw struct {
		Rows  []string `json:"rows"`
		Words []string `json:"words"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse puzzle JSON: %w\nraw response: %s", err, text)
	}

	if raw.Words == nil {
		raw.Words = []string{}
	}
	p := &Puzzle{Rows: raw.Rows, Words: raw.Words, Backwards: true, Source: "image"}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid puzzle in gemini response: %w", err)
	}
	return p, nil
}
