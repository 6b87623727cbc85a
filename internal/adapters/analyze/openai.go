package analyze

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/time/rate"

	perr "critiq/internal/platform/errors"
	"critiq/internal/platform/logger"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
	defaultRPM     = 30

	systemPrompt = `You are a strict senior code reviewer. ` +
		`Respond with a single JSON object and nothing else, using exactly these keys: ` +
		`"score" (integer 1-10, 10 is flawless), "issues", "security", "performance", "suggestions" ` +
		`(each an array of short strings). Empty arrays are fine.`
)

// Options configures the OpenAI-backed analyzer
type Options struct {
	APIKey string
	Model  string

	// Timeout bounds a single completion call
	Timeout time.Duration

	// RequestsPerMinute paces outbound calls across worker goroutines
	RequestsPerMinute int
}

// OpenAI implements Analyzer against the chat completions API
type OpenAI struct {
	client  openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	log     logger.Logger
}

// NewOpenAI creates an analyzer with sane defaults
func NewOpenAI(o Options) *OpenAI {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RequestsPerMinute <= 0 {
		o.RequestsPerMinute = defaultRPM
	}
	return &OpenAI{
		client:  openai.NewClient(option.WithAPIKey(o.APIKey)),
		model:   o.Model,
		timeout: o.Timeout,
		limiter: rate.NewLimiter(rate.Limit(float64(o.RequestsPerMinute)/60.0), 1),
		log:     *logger.Named("analyze"),
	}
}

// Review asks the model for a structured verdict on the snippet
func (a *OpenAI) Review(ctx context.Context, language, code string) (Result, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "analyze pacing interrupted")
	}

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.client.Chat.Completions.New(cctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Review this " + language + " code:\n\n" + code),
		},
	})
	if err != nil {
		return Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return Result{}, perr.Unavailablef("chat completion returned no choices")
	}

	out, err := decodeResult(resp.Choices[0].Message.Content)
	if err != nil {
		return Result{}, err
	}
	a.log.Debug().
		Str("model", a.model).
		Int("score", out.Score).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")
	return out, nil
}

// decodeResult parses the model output, tolerating markdown code fences
func decodeResult(s string) (Result, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	var wire struct {
		Score       *int     `json:"score"`
		Issues      []string `json:"issues"`
		Security    []string `json:"security"`
		Performance []string `json:"performance"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(s), &wire); err != nil {
		return Result{}, perr.Wrap(err, perr.ErrorCodeJSON, "malformed analyzer output")
	}
	if wire.Score == nil {
		return Result{}, perr.Newf(perr.ErrorCodeJSON, "analyzer output missing score")
	}

	// scores live on a 1-10 scale; clamp model drift instead of failing the run
	score := *wire.Score
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return Result{
		Score:       score,
		Issues:      orEmpty(wire.Issues),
		Security:    orEmpty(wire.Security),
		Performance: orEmpty(wire.Performance),
		Suggestions: orEmpty(wire.Suggestions),
	}, nil
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
