package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lysyi3m/trend-comb/app/post"
)

const (
	DefaultBaseURL = "https://open.bigmodel.cn/api/paas/v4"
	DefaultModel   = "glm-4-flash"

	// Posts beyond this are left out of the prompt, least liked first.
	defaultMaxPromptPosts = 60
)

const systemPrompt = `You are a market research analyst. You read social media posts about one topic and report the trend they describe.
Answer with a single JSON object and nothing else, using exactly this shape:
{
  "title": "short trend title",
  "category": "one or two word category",
  "hot_score": 0-100 integer,
  "summary": "two or three sentences",
  "top_mentions": [{"text": "", "author": "", "platform": "", "url": ""}],
  "insights": {
    "pain_points": [{"text": ""}],
    "opportunities": [{"text": ""}],
    "mvp_plan": {"goal": ""}
  },
  "emotion_analysis": {"joy": 0, "sadness": 0, "anger": 0, "sarcasm": 0, "neutral": 0}
}
Emotion values are integer percentages that add up to 100. Quote top_mentions from the posts provided.`

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ZhipuOption func(*ZhipuSynthesizer)

func WithHTTPClient(httpClient HTTPClient) ZhipuOption {
	return func(s *ZhipuSynthesizer) {
		s.httpClient = httpClient
	}
}

func WithBaseURL(baseURL string) ZhipuOption {
	return func(s *ZhipuSynthesizer) {
		if baseURL != "" {
			s.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithModel(model string) ZhipuOption {
	return func(s *ZhipuSynthesizer) {
		if model != "" {
			s.model = model
		}
	}
}

// ZhipuSynthesizer asks an OpenAI-compatible chat completions endpoint
// (Zhipu GLM by default) for the insight. It never retries.
type ZhipuSynthesizer struct {
	httpClient HTTPClient
	baseURL    string
	apiKey     string
	model      string
	maxPosts   int
}

var _ Synthesizer = (*ZhipuSynthesizer)(nil)

func NewZhipuSynthesizer(apiKey string, opts ...ZhipuOption) *ZhipuSynthesizer {
	s := &ZhipuSynthesizer{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		model:      DefaultModel,
		maxPosts:   defaultMaxPromptPosts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ZhipuSynthesizer) Synthesize(ctx context.Context, posts []post.Post) (Insight, error) {
	if len(posts) == 0 {
		return Insight{}, ErrNoPosts
	}
	if s.apiKey == "" {
		return Insight{}, fmt.Errorf("%w: API key is not configured", ErrUnavailable)
	}

	content, err := s.complete(ctx, buildPrompt(posts, s.maxPosts))
	if err != nil {
		return Insight{}, err
	}

	result, err := parseInsight(content)
	if err != nil {
		return Insight{}, err
	}

	if len(result.TopMentions) == 0 {
		result.TopMentions = topMentions(posts, maxMentions)
	}

	return result, nil
}

func (s *ZhipuSynthesizer) complete(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    0.3,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", handleAPIError(resp)
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("%w: failed to decode completion: %v", ErrMalformedResponse, err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", ErrMalformedResponse)
	}

	return completion.Choices[0].Message.Content, nil
}

func handleAPIError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: provider rejected credentials (HTTP %d)", ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", ErrProvider, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
}

func buildPrompt(posts []post.Post, maxPosts int) string {
	selected := posts
	if len(selected) > maxPosts {
		selected = rankByLikes(posts)[:maxPosts]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyse these %d posts:\n", len(selected))
	for i, p := range selected {
		author := p.Author
		if author == "" {
			author = "unknown"
		}
		fmt.Fprintf(&b, "%d. [%s] @%s (%d likes) %s\n   %s\n",
			i+1, p.Platform, author, p.Likes, strings.Join(strings.Fields(p.Text), " "), p.URL)
	}
	return b.String()
}

// parseInsight accepts the model output with or without a markdown code fence.
func parseInsight(content string) (Insight, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result Insight
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return Insight{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if strings.TrimSpace(result.Title) == "" {
		return Insight{}, fmt.Errorf("%w: insight has no title", ErrMalformedResponse)
	}

	result.HotScore = min(max(result.HotScore, 0), 100)

	return result, nil
}

// chat completion wire structs
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
