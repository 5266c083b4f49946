package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"ai-calories/internal/models"
	"ai-calories/internal/tracker"
)

var errInvalidParams = errors.New("invalid parameters")

// Service is the tracker as seen by the tool handlers.
type Service interface {
	LogMeal(ctx context.Context, text string) (*models.LogResult, error)
	Summary(ctx context.Context) (*models.Summary, error)
	History(ctx context.Context, days int) ([]models.DayTotals, error)
	Lookup(ctx context.Context, name string) tracker.Outcome
}

type toolHandler func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type LogMealParams struct {
	Text string `json:"text" description:"What the user ate, in free text"`
}

type GetHistoryParams struct {
	Days int `json:"days,omitempty" description:"Number of days to report, ending today (defaults to 7)"`
}

type LookupFoodParams struct {
	Name string `json:"name" description:"Food name to resolve without logging it"`
}

// LookupResult is the lookup_food response.
type LookupResult struct {
	Name     string                  `json:"name"`
	Outcome  string                  `json:"outcome"`
	Status   models.ItemStatus       `json:"status,omitempty"`
	Strategy string                  `json:"strategy,omitempty"`
	Record   *models.NutritionRecord `json:"record,omitempty"`
	Message  string                  `json:"message,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %v", errInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	return nil
}

// handleLogMeal runs one utterance through the tracker. Clarifications are
// returned as a normal result with status clarification_needed.
func (s *CalorieLogServer) handleLogMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	result, err := s.service.LogMeal(ctx, params.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to log meal: %w", err)
	}
	return s.createJSONResponse(result)
}

func (s *CalorieLogServer) handleGetSummary(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	summary, err := s.service.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	return s.createJSONResponse(summary)
}

func (s *CalorieLogServer) handleGetHistory(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetHistoryParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.Days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", errInvalidParams)
	}

	days, err := s.service.History(ctx, params.Days)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return s.createJSONResponse(days)
}

func (s *CalorieLogServer) handleLookupFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LookupFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", errInvalidParams)
	}

	out := s.service.Lookup(ctx, name)
	res := LookupResult{
		Name:     name,
		Outcome:  out.Kind.String(),
		Status:   out.Status,
		Strategy: out.Strategy,
		Record:   out.Record,
		Message:  out.Message,
	}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}
	return s.createJSONResponse(res)
}

func (s *CalorieLogServer) registerTools() {
	s.tools = map[string]toolHandler{
		"log_meal":    s.handleLogMeal,
		"get_summary": s.handleGetSummary,
		"get_history": s.handleGetHistory,
		"lookup_food": s.handleLookupFood,
	}
	for name := range s.tools {
		log.Printf("Registered tool: %s", name)
	}
}
