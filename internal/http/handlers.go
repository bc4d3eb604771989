package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"namesmith/app/internal/db"
	"namesmith/app/internal/llm"
)

const (
	jsonContentType      = "application/json; charset=utf-8"
	errorFallbackMessage = "We couldn't process your request right now."
)

type jsonResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type topicItemsInput struct {
	Body struct {
		Topic  string `json:"topic,omitempty" doc:"Topic to generate items for"`
		Butnot string `json:"butnot,omitempty" doc:"Comma-separated items to exclude"`
	}
}

type errorPayload struct {
	Error string `json:"error"`
}

type itemView struct {
	Name string `json:"name"`
	Desc string `json:"desc"`
}

type topicItemsPayload struct {
	Topic string     `json:"topic"`
	Items []itemView `json:"items"`
}

type demoItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
}

func (s *Server) registerHomeRoute() {
	huma.Get(s.api, "/", s.homeHandler, jsonOperation("API welcome message"))
}

func (s *Server) registerItemsRoute() {
	huma.Get(s.api, "/api/items", s.itemsHandler, jsonOperation("List demo items"))
}

func (s *Server) registerTopicItemsRoute() {
	huma.Post(s.api, "/api/topicitems", s.topicItemsHandler, jsonOperation(
		"Generate topic items",
		stdhttp.StatusBadRequest,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) homeHandler(ctx context.Context, _ *struct{}) (*jsonResponse, error) {
	return s.jsonOK(ctx, map[string]string{"message": "Welcome to the API!"})
}

func (s *Server) itemsHandler(ctx context.Context, _ *struct{}) (*jsonResponse, error) {
	items := []demoItem{
		{ID: 1, Name: "Item 1"},
		{ID: 2, Name: "Item 2"},
	}
	return s.jsonOK(ctx, items)
}

func (s *Server) topicItemsHandler(ctx context.Context, input *topicItemsInput) (*jsonResponse, error) {
	topicName := strings.TrimSpace(input.Body.Topic)
	if topicName == "" {
		if s.logger != nil {
			s.logger.Warn("topic items request missing topic field")
		}
		return s.errorResponse(stdhttp.StatusBadRequest, "topic is required"), nil
	}

	items, source, err := s.topics.GenerateItems(ctx, input.Body.Topic, input.Body.Butnot)
	if err != nil {
		status, message := classifyError(err)
		s.recordError(ctx, err, "generating topic items", logrus.Fields{"topic": topicName})
		return s.errorResponse(status, message), nil
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"topic":  topicName,
			"source": string(source),
			"items":  len(items),
		}).Info("topic items generated")
	}

	payload := topicItemsPayload{
		Topic: input.Body.Topic,
		Items: make([]itemView, 0, len(items)),
	}
	for _, item := range items {
		payload.Items = append(payload.Items, itemView{Name: item.Name, Desc: item.Desc})
	}

	return s.jsonOK(ctx, payload)
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"

	sqlDB, err := db.SQLDB(s.db)
	if err != nil {
		s.recordError(ctx, err, "obtaining sql db", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	} else if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		s.recordError(ctx, pingErr, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}

func (s *Server) jsonOK(ctx context.Context, payload any) (*jsonResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.recordError(ctx, err, "encoding response payload", nil)
		return s.errorResponse(stdhttp.StatusInternalServerError, errorFallbackMessage), nil
	}
	return newJSONResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) errorResponse(status int, message string) *jsonResponse {
	body, err := json.Marshal(errorPayload{Error: message})
	if err != nil {
		body = []byte(`{"error":"internal server error"}`)
	}
	return newJSONResponse(status, body)
}

func newJSONResponse(status int, body []byte) *jsonResponse {
	return &jsonResponse{
		Status:      status,
		ContentType: jsonContentType,
		Body:        body,
	}
}

func jsonOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					jsonContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}

func classifyError(err error) (int, string) {
	switch {
	case err == nil:
		return stdhttp.StatusInternalServerError, errorFallbackMessage
	case eris.Is(err, llm.ErrInvalidOutput):
		return stdhttp.StatusInternalServerError, "the model returned output that could not be parsed as an item list"
	case eris.Is(err, llm.ErrUpstream):
		return stdhttp.StatusInternalServerError, "the model request failed"
	case strings.Contains(strings.ToLower(eris.Cause(err).Error()), "topic is required"):
		return stdhttp.StatusBadRequest, "topic is required"
	default:
		return stdhttp.StatusInternalServerError, errorFallbackMessage
	}
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
