// Package mcp exposes pane analysis and layout calculation over the Model
// Context Protocol (JSON-RPC 2.0 on stdio or HTTP) so MCP-capable clients
// can drive panefit as a tool server.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/layout"
	"github.com/timvw/panefit/internal/model"
	"github.com/timvw/panefit/internal/mux"
)

const protocolVersion = "2024-11-05"

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Tool describes one MCP tool.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Server handles MCP requests. The multiplexer adapter is detected lazily
// so the server starts outside a tmux session and only the tools that need
// live panes fail.
type Server struct {
	Version string

	analyzer *analyzer.Analyzer

	mu      sync.Mutex
	adapter mux.Adapter
	probed  bool
}

// NewServer creates a server. A nil adapter is detected on first use;
// passing one pins it (used by tests and batch callers).
func NewServer(a *analyzer.Analyzer, adapter mux.Adapter, version string) *Server {
	if a == nil {
		a = analyzer.New()
	}
	if version == "" {
		version = "dev"
	}
	return &Server{
		Version:  version,
		analyzer: a,
		adapter:  adapter,
		probed:   adapter != nil,
	}
}

func (s *Server) mux(ctx context.Context) mux.Adapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.probed {
		s.probed = true
		if a, err := mux.Detect(); err == nil {
			s.adapter = a
		}
	}
	if s.adapter == nil || !s.adapter.IsAvailable(ctx) {
		return nil
	}
	return s.adapter
}

// Handle dispatches one JSON-RPC request.
func (s *Server) Handle(ctx context.Context, req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo": map[string]any{
				"name":    "panefit",
				"version": s.Version,
			},
		}

	case "tools/list":
		resp.Result = map[string]any{"tools": s.Tools()}

	case "tools/call":
		var params struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &RPCError{Code: codeInvalidParams, Message: err.Error()}
			return resp
		}
		result := s.callTool(ctx, params.Name, params.Arguments)
		text, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			text = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
		}
		resp.Result = map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": string(text)},
			},
		}

	default:
		resp.Error = &RPCError{
			Code:    codeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}

	return resp
}

// Tools returns the tool catalog.
func (s *Server) Tools() []Tool {
	strategyProp := map[string]any{
		"type":    "string",
		"enum":    []string{"importance", "entropy", "activity", "balanced", "related"},
		"default": "balanced",
	}
	paneItems := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":      map[string]any{"type": "string"},
			"content": map[string]any{"type": "string"},
			"width":   map[string]any{"type": "integer"},
			"height":  map[string]any{"type": "integer"},
		},
		"required": []string{"id", "content"},
	}

	return []Tool{
		{
			Name:        "panefit_analyze",
			Description: "Analyze pane contents and return importance/interestingness metrics. Can analyze tmux panes automatically or accept custom pane data.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"panes": map[string]any{
						"type":        "array",
						"description": "Optional: Custom pane data. If not provided, reads from tmux.",
						"items":       paneItems,
					},
				},
			},
		},
		{
			Name:        "panefit_calculate_layout",
			Description: "Calculate optimal pane layout based on content analysis.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"panes": map[string]any{
						"type":        "array",
						"description": "Pane data with content",
						"items":       paneItems,
					},
					"window_width":  map[string]any{"type": "integer", "default": 200},
					"window_height": map[string]any{"type": "integer", "default": 50},
					"strategy":      strategyProp,
					"layout_type": map[string]any{
						"type":    "string",
						"enum":    []string{"auto", "horizontal", "vertical", "tiled"},
						"default": "auto",
					},
				},
				"required": []string{"panes"},
			},
		},
		{
			Name:        "panefit_reflow",
			Description: "Analyze tmux panes and apply optimal layout. Only works when running in tmux.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"strategy": strategyProp,
					"dry_run": map[string]any{
						"type":        "boolean",
						"description": "If true, calculate but don't apply layout",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "panefit_get_strategies",
			Description: "Get list of available layout strategies with descriptions.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

// paneArg is the wire shape of a pane in tool arguments.
type paneArg struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

func (p paneArg) snapshot() model.PaneSnapshot {
	snap := model.PaneSnapshot{ID: p.ID, Content: p.Content, Width: p.Width, Height: p.Height}
	if snap.Width == 0 {
		snap.Width = 80
	}
	if snap.Height == 0 {
		snap.Height = 24
	}
	return snap
}

// callTool runs one tool. Tool failures are reported in-band as
// {"error": ...} rather than as JSON-RPC errors, matching MCP convention.
func (s *Server) callTool(ctx context.Context, name string, args json.RawMessage) any {
	var result any
	var err error

	switch name {
	case "panefit_analyze":
		result, err = s.toolAnalyze(ctx, args)
	case "panefit_calculate_layout":
		result, err = s.toolCalculateLayout(args)
	case "panefit_reflow":
		result, err = s.toolReflow(ctx, args)
	case "panefit_get_strategies":
		result = s.toolGetStrategies()
	default:
		err = fmt.Errorf("unknown tool: %s", name)
	}

	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}

func (s *Server) toolAnalyze(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Panes []paneArg `json:"panes"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	var panes []model.PaneSnapshot
	if len(params.Panes) > 0 {
		for _, p := range params.Panes {
			panes = append(panes, p.snapshot())
		}
	} else if adapter := s.mux(ctx); adapter != nil {
		var err error
		panes, err = adapter.Panes(ctx, "")
		if err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("no panes provided and tmux not available")
	}

	results := s.analyzer.AnalyzePanes(panes)

	out := make([]map[string]any, 0, len(panes))
	for _, p := range panes {
		r := results[p.ID]
		out = append(out, map[string]any{
			"id":      p.ID,
			"command": p.Command,
			"active":  p.Active,
			"metrics": map[string]any{
				"importance":      round3(r.ImportanceScore),
				"interestingness": round3(r.InterestingnessScore),
				"entropy":         round3(r.CharEntropy),
				"activity":        round3(r.RecentActivityScore),
				"word_count":      r.WordCount,
			},
		})
	}
	return map[string]any{"panes": out}, nil
}

func (s *Server) toolCalculateLayout(args json.RawMessage) (any, error) {
	var params struct {
		Panes        []paneArg `json:"panes"`
		WindowWidth  int       `json:"window_width"`
		WindowHeight int       `json:"window_height"`
		Strategy     string    `json:"strategy"`
		LayoutType   string    `json:"layout_type"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if len(params.Panes) == 0 {
		return nil, model.ErrNoPanes
	}

	strategy, err := model.ParseStrategy(params.Strategy)
	if err != nil {
		return nil, err
	}
	layoutType, err := model.ParseLayoutType(params.LayoutType)
	if err != nil {
		return nil, err
	}
	if params.WindowWidth <= 0 {
		params.WindowWidth = 200
	}
	if params.WindowHeight <= 0 {
		params.WindowHeight = 50
	}

	panes := make([]model.PaneSnapshot, 0, len(params.Panes))
	for _, p := range params.Panes {
		panes = append(panes, p.snapshot())
	}

	results := s.analyzer.AnalyzePanes(panes)
	matrix := s.analyzer.RelevanceMatrix(panes)

	calc := layout.NewCalculator(strategy)
	target := calc.Calculate(panes, results, params.WindowWidth, params.WindowHeight, matrix, layoutType)

	windowArea := float64(target.WindowWidth * target.WindowHeight)
	outPanes := make([]map[string]any, 0, len(target.Panes))
	for _, p := range target.Panes {
		outPanes = append(outPanes, map[string]any{
			"id":         p.ID,
			"x":          p.X,
			"y":          p.Y,
			"width":      p.Width,
			"height":     p.Height,
			"area_ratio": round3(float64(p.Area()) / windowArea),
		})
	}

	return map[string]any{
		"window": map[string]any{
			"width":  target.WindowWidth,
			"height": target.WindowHeight,
		},
		"strategy": string(target.Strategy),
		"panes":    outPanes,
	}, nil
}

func (s *Server) toolReflow(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Strategy string `json:"strategy"`
		DryRun   bool   `json:"dry_run"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	adapter := s.mux(ctx)
	if adapter == nil {
		return nil, fmt.Errorf("not running in tmux session")
	}

	panes, err := adapter.Panes(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(panes) < 2 {
		return map[string]any{
			"status":  "skipped",
			"message": "Need at least 2 panes",
		}, nil
	}

	strategy, err := model.ParseStrategy(params.Strategy)
	if err != nil {
		return nil, err
	}

	results := s.analyzer.AnalyzePanes(panes)
	matrix := s.analyzer.RelevanceMatrix(panes)
	width, height, err := adapter.WindowSize(ctx, "")
	if err != nil {
		return nil, err
	}

	calc := layout.NewCalculator(strategy)
	target := calc.Calculate(panes, results, width, height, matrix, model.LayoutAuto)

	status := "calculated"
	if !params.DryRun {
		if err := adapter.ApplyLayout(ctx, target, ""); err != nil {
			return nil, err
		}
		status = "applied"
	}

	outPanes := make([]map[string]any, 0, len(panes))
	for _, p := range panes {
		size := "unchanged"
		if tp, ok := target.Pane(p.ID); ok {
			size = fmt.Sprintf("%dx%d", tp.Width, tp.Height)
		}
		outPanes = append(outPanes, map[string]any{
			"id":         p.ID,
			"importance": round3(results[p.ID].ImportanceScore),
			"new_size":   size,
		})
	}

	return map[string]any{
		"status": status,
		"panes":  outPanes,
	}, nil
}

func (s *Server) toolGetStrategies() any {
	return map[string]any{
		"strategies": []map[string]string{
			{
				"name":        "balanced",
				"description": "Weighted combination: 40% importance, 30% interestingness, 30% activity",
			},
			{
				"name":        "importance",
				"description": "Focus on content amount, code keywords, vocabulary richness",
			},
			{
				"name":        "entropy",
				"description": "Information density - higher entropy content gets more space",
			},
			{
				"name":        "activity",
				"description": "Recent activity - shell prompts, running commands",
			},
			{
				"name":        "related",
				"description": "Groups related panes together based on shared topics",
			},
		},
	}
}

// ServeStdio reads newline-delimited JSON-RPC requests from in and writes
// one response per line to out. Returns when in is exhausted or ctx ends.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if encErr := enc.Encode(Response{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: codeParseError, Message: "invalid JSON"},
			}); encErr != nil {
				return encErr
			}
			continue
		}

		if err := enc.Encode(s.Handle(ctx, req)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// ServeHTTP implements http.Handler: one JSON-RPC request per POST body.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(Response{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: codeParseError, Message: "invalid JSON"},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Handle(r.Context(), req))
}

// ListenAndServe runs the HTTP transport on localhost:port until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: s,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
