package topic

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"namesmith/app/internal/llm"
)

// Source tells the caller whether a result came from the cache or from a
// fresh model call.
type Source string

const (
	SourceCache Source = "cache"
	SourceModel Source = "model"
)

// Service defines the generation orchestration built on top of the
// repository and generator.
type Service interface {
	GenerateItems(ctx context.Context, topicName, butnot string) ([]llm.Item, Source, error)
}

type service struct {
	repo      Repository
	generator llm.Generator
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

var _ Service = (*service)(nil)

// NewService wires the topic service with its dependencies.
func NewService(repo Repository, generator llm.Generator, logger *logrus.Logger, hub *sentry.Hub) (Service, error) {
	if repo == nil {
		return nil, eris.New("topic repository is required")
	}
	if generator == nil {
		return nil, eris.New("llm generator is required")
	}

	return &service{
		repo:      repo,
		generator: generator,
		logger:    logger,
		sentryHub: hub,
	}, nil
}

// GenerateItems returns the item list for a topic, serving from the cache
// when the exact prompt has been answered before. Storage failures degrade
// to a miss (lookup) or a no-op (store, log) and never fail the request;
// model and parse failures propagate to the caller.
func (s *service) GenerateItems(ctx context.Context, topicName, butnot string) ([]llm.Item, Source, error) {
	trimmedTopic := strings.TrimSpace(topicName)
	if trimmedTopic == "" {
		return nil, "", eris.New("topic is required")
	}

	userPrompt := BuildUserPrompt(topicName, butnot)

	entry, err := s.repo.Lookup(ctx, userPrompt)
	if err != nil {
		s.recordError(logrus.Fields{"topic": trimmedTopic}, err, "cache lookup failed, treating as miss")
		entry = nil
	}

	if entry != nil {
		items, decodeErr := entry.Items()
		if decodeErr != nil {
			s.recordError(logrus.Fields{"topic": trimmedTopic, "address": entry.Address}, decodeErr, "cached result is unreadable, regenerating")
		} else {
			s.appendQueryLog(ctx, userPrompt, trimmedTopic)
			return items, SourceCache, nil
		}
	}

	items, err := s.generator.GenerateItems(ctx, BuildSystemPrompt(), userPrompt)
	if err != nil {
		s.recordError(logrus.Fields{"topic": trimmedTopic}, err, "llm item generation failed")
		return nil, "", eris.Wrapf(err, "generating items for topic: %s", trimmedTopic)
	}

	if storeErr := s.repo.Store(ctx, userPrompt, items); storeErr != nil {
		s.recordError(logrus.Fields{"topic": trimmedTopic}, storeErr, "storing generated items failed, returning uncached result")
	}

	s.appendQueryLog(ctx, userPrompt, trimmedTopic)

	return items, SourceModel, nil
}

// appendQueryLog is best effort: a failed log write never affects the
// outcome of the request that triggered it.
func (s *service) appendQueryLog(ctx context.Context, userPrompt, topicName string) {
	if err := s.repo.AppendQueryLog(ctx, userPrompt); err != nil {
		s.recordError(logrus.Fields{"topic": topicName}, err, "appending query log failed")
	}
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
