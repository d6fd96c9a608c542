package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/furydoc/cybersyn/internal/llm"
	"github.com/furydoc/cybersyn/internal/research"
	"github.com/furydoc/cybersyn/internal/telemetry"
)

type researchRequest struct {
	Query string `json:"query"`
}

type researchResponse struct {
	Content  string `json:"content"`
	Terms    int    `json:"terms"`
	Hits     int    `json:"hits"`
	Batches  int    `json:"batches"`
	Duration string `json:"duration"`
}

// handleResearch runs one full research turn.
func (s *Server) handleResearch(c echo.Context) error {
	var req researchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}

	res, err := s.pipeline.Research(c.Request().Context(), req.Query)
	telemetry.ResearchTurnsTotal.WithLabelValues(telemetry.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	telemetry.ResearchBatches.Observe(float64(res.Batches))

	return c.JSON(http.StatusOK, researchResponse{
		Content:  res.Content,
		Terms:    res.Terms,
		Hits:     res.Hits,
		Batches:  res.Batches,
		Duration: res.Duration.String(),
	})
}

type searchRequest struct {
	Query    string `json:"query"`
	Size     int    `json:"size"`
	Filename string `json:"filename"`
}

// handleSearch exposes raw index search for the UI's result browser.
func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query required")
	}
	if req.Size <= 0 || req.Size > research.DefaultPageSize {
		req.Size = research.DefaultPageSize
	}

	set, err := s.searcher.Search(c.Request().Context(), req.Query, req.Size, req.Filename)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, set)
}

type documentRequest struct {
	Filename string `json:"filename"`
}

// handleDocument fetches one full transcript by name.
func (s *Server) handleDocument(c echo.Context) error {
	var req documentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Filename) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename required")
	}

	doc, err := s.searcher.FetchDocument(c.Request().Context(), req.Filename)
	if errors.Is(err, research.ErrDocumentNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

type chatRequest struct {
	Messages    []research.Message `json:"messages"`
	Model       string             `json:"model"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type chatResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// handleChat is the raw conversation endpoint: the caller supplies the
// message history, the configured system prompt still applies.
func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Messages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "messages array required")
	}
	model := req.Model
	if model == "" {
		model = llm.DefaultModel
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = research.DefaultTemperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = research.DefaultMaxOutputTokens
	}

	content, err := s.gen.Complete(c.Request().Context(), req.Messages, research.GenOptions{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chatResponse{Content: content, Model: model})
}

// handleModels returns the curated model picker list.
func (s *Server) handleModels(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"models": llm.CuratedModels()})
}
