package llm

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Sentinel errors separating the two failure families a caller can see:
// the provider call failed outright, or it answered with something that is
// not a valid item list. Check with eris.Is.
var (
	ErrUpstream      = eris.New("llm request failed")
	ErrInvalidOutput = eris.New("llm output does not match the expected item schema")
)

// Item is one (name, description) pair produced by the model.
type Item struct {
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// Generator produces a structured item list from a prompt pair.
type Generator interface {
	GenerateItems(ctx context.Context, systemPrompt, userPrompt string) ([]Item, error)
}

// GeneratorOptions configures the chat-completion-backed generator.
type GeneratorOptions struct {
	Client          *Client
	Model           string
	MaxOutputTokens int
}

type chatGenerator struct {
	client          *Client
	logger          *logrus.Logger
	model           string
	maxOutputTokens int
}

// Output budget for one item list. Keeps a single request's model cost bounded.
const defaultMaxOutputTokens = 1000

// NewGenerator constructs a Generator backed by the chat-completion client.
func NewGenerator(opts GeneratorOptions) (Generator, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("generator model is required")
	}

	maxOutputTokens := opts.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = defaultMaxOutputTokens
	}

	return &chatGenerator{
		client:          opts.Client,
		logger:          opts.Client.logger,
		model:           model,
		maxOutputTokens: maxOutputTokens,
	}, nil
}

func (g *chatGenerator) GenerateItems(ctx context.Context, systemPrompt, userPrompt string) ([]Item, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, eris.New("system prompt is required")
	}
	if strings.TrimSpace(userPrompt) == "" {
		return nil, eris.New("user prompt is required")
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens: openai.Int(int64(g.maxOutputTokens)),
	}

	completion, err := g.client.chat.New(ctx, params)
	if err != nil {
		g.logError(logrus.Fields{"model": g.model}, err, "requesting chat completion")
		return nil, eris.Wrapf(ErrUpstream, "requesting chat completion: %v", err)
	}

	if len(completion.Choices) == 0 {
		err := eris.Wrap(ErrUpstream, "llm completion returned no choices")
		g.logError(logrus.Fields{"model": g.model}, err, "processing chat completion")
		return nil, err
	}

	choice := completion.Choices[0]
	if reason := strings.TrimSpace(choice.FinishReason); strings.EqualFold(reason, "content_filter") {
		err := eris.Wrap(ErrUpstream, "llm blocked the request via content filter")
		g.logError(logrus.Fields{"model": g.model}, err, "generator blocked")
		return nil, err
	}

	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		err := eris.Wrapf(ErrInvalidOutput, "llm refused to generate content: %s", refusal)
		g.logError(logrus.Fields{"model": g.model}, err, "generator refused")
		return nil, err
	}

	items, err := parseItems(choice.Message.Content)
	if err != nil {
		g.logError(logrus.Fields{"model": g.model}, err, "parsing llm response")
		return nil, err
	}

	return items, nil
}

// parseItems strictly decodes the raw completion text as a JSON array of
// {name, desc} objects. Unknown fields, empty values, trailing data, and
// anything that is not such an array are rejected rather than coerced.
func parseItems(raw string) ([]Item, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, eris.Wrap(ErrInvalidOutput, "llm response content is empty")
	}

	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.DisallowUnknownFields()

	var items []Item
	if err := decoder.Decode(&items); err != nil {
		return nil, eris.Wrapf(ErrInvalidOutput, "decoding item list: %v", err)
	}

	if decoder.More() {
		return nil, eris.Wrap(ErrInvalidOutput, "unexpected trailing data after item list")
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, eris.Wrap(ErrInvalidOutput, "unexpected trailing data after item list")
	}

	if len(items) == 0 {
		return nil, eris.Wrap(ErrInvalidOutput, "item list is empty")
	}

	for idx, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, eris.Wrapf(ErrInvalidOutput, "item %d is missing a name", idx)
		}
		if strings.TrimSpace(item.Desc) == "" {
			return nil, eris.Wrapf(ErrInvalidOutput, "item %d is missing a description", idx)
		}
	}

	return items, nil
}

func (g *chatGenerator) logError(fields logrus.Fields, err error, message string) {
	if g.logger == nil || err == nil {
		return
	}

	entry := g.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
