package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	estimateCacheTTL = 24 * time.Hour
	estimatorSystem  = "You are a Vietnamese grocery market price assistant. " +
		"When asked for the market price of an ingredient, answer with ONLY the " +
		"price in the form <amount>đ/<quantity><unit>, for example 35.000đ/kg or " +
		"12.000đ/chai. If you do not know a realistic current price, answer UNKNOWN."
)

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// AIEstimator is the fallback price source: it asks the DeepSeek API for a
// realistic current market price when scraping found no listing. Answers are
// cached in Redis for a day.
type AIEstimator struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	redis  *redis.Client
	logger *zap.Logger
}

// NewAIEstimator creates an estimator against the DeepSeek chat API.
// redisClient may be nil, in which case answers are not cached.
func NewAIEstimator(apiKey, apiURL string, redisClient *redis.Client, logger *zap.Logger) (*AIEstimator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek api key must be set")
	}
	if apiURL == "" {
		apiURL = "https://api.deepseek.com/v1/chat/completions"
	}
	return &AIEstimator{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  "deepseek-chat",
		client: &http.Client{Timeout: 30 * time.Second},
		redis:  redisClient,
		logger: logger.Named("ai-estimator"),
	}, nil
}

// Name returns the name of the source
func (e *AIEstimator) Name() string {
	return "ai-estimator"
}

// FetchRaw asks the model for the ingredient's market price. An UNKNOWN or
// empty answer is a miss, not an error.
func (e *AIEstimator) FetchRaw(ctx context.Context, name, unit string) (*RawPrice, error) {
	key := fmt.Sprintf("price:ai:%s", strings.ToLower(strings.TrimSpace(name)))
	if e.redis != nil {
		if cached, err := e.redis.Get(ctx, key).Result(); err == nil {
			return e.toRawPrice(cached, unit), nil
		}
	}

	prompt := fmt.Sprintf("Current market price in Vietnam for: %s (sold by %s)", name, unit)
	answer, err := e.chat(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if e.redis != nil {
		if err := e.redis.Set(ctx, key, answer, estimateCacheTTL).Err(); err != nil {
			e.logger.Warn("failed to cache estimate", zap.String("ingredient", name), zap.Error(err))
		}
	}
	return e.toRawPrice(answer, unit), nil
}

func (e *AIEstimator) toRawPrice(answer, unit string) *RawPrice {
	answer = strings.TrimSpace(answer)
	if answer == "" || strings.EqualFold(answer, "UNKNOWN") {
		return nil
	}
	return &RawPrice{Text: answer, Unit: unit}
}

func (e *AIEstimator) chat(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: e.model,
		Messages: []Message{
			{Role: "system", Content: estimatorSystem},
			{Role: "user", Content: prompt},
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call DeepSeek API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("DeepSeek API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}
