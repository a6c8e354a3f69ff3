package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type describeImageInput struct {
	ImageURL string `json:"image_url" jsonschema_description:"URL of the image to describe"`
	Question string `json:"question,omitempty" jsonschema_description:"Optional question about the image"`
}

// DescribeImageTool sends an image to a local Ollama vision model and returns
// the description.
type DescribeImageTool struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewDescribeImageTool(baseURL, model string) *DescribeImageTool {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llava"
	}
	return &DescribeImageTool{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (t *DescribeImageTool) Name() string { return "describe_image" }

func (t *DescribeImageTool) Description() string {
	return "Describe the contents of an image given its URL, optionally answering a question about it."
}

func (t *DescribeImageTool) InputSchema() map[string]interface{} {
	return generateSchema[describeImageInput]()
}

type ollamaVisionRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type ollamaVisionResponse struct {
	Response string `json:"response"`
}

func (t *DescribeImageTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	imageURL := strings.TrimSpace(stringArg(args, "image_url"))
	if imageURL == "" {
		return "", fmt.Errorf("image_url is required")
	}

	prompt := strings.TrimSpace(stringArg(args, "question"))
	if prompt == "" {
		prompt = "Describe this image in detail."
	}

	encoded, err := t.fetchImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	reqBody, err := json.Marshal(ollamaVisionRequest{
		Model:  t.model,
		Prompt: prompt,
		Images: []string{encoded},
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/generate", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision model request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision model error: %s", string(body))
	}

	var visionResp ollamaVisionResponse
	if err := json.Unmarshal(body, &visionResp); err != nil {
		return "", err
	}
	if strings.TrimSpace(visionResp.Response) == "" {
		return "The vision model returned no description.", nil
	}
	return visionResp.Response, nil
}

func (t *DescribeImageTool) fetchImage(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d fetching image", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
