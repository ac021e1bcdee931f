package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/protocol"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/transport"
)

// toolPrefix is added by some clients in front of tool names
const toolPrefix = "mcp___"

// Server represents an MCP server
type Server struct {
	transport transport.Transport
	info      protocol.ServerInfo

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	tools    []protocol.Tool
}

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(params any) (any, error)

// NewServer creates a server with no tools registered
func NewServer(t transport.Transport, info protocol.ServerInfo) *Server {
	s := &Server{
		transport: t,
		info:      info,
		handlers:  make(map[string]HandlerFunc),
	}
	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodInitialized)] = s.handleInitialized
	s.handlers[string(protocol.MethodPing)] = s.handlePing
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Tool(nil), s.tools...)
}

// toolHandler finds a registered tool by name, with or without the client prefix
func (s *Server) toolHandler(name string) HandlerFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tools {
		if t.Name == name || t.Name == strings.TrimPrefix(name, toolPrefix) {
			return s.handlers[t.Name]
		}
	}
	return nil
}

// Start processes requests until the client disconnects or the process is signalled
func (s *Server) Start() error {
	logger.Info("Starting MCP server", s.info.Name, s.info.Version)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig)
		return nil
	}
}

// ProcessRequests answers requests one at a time until the stream ends or fails.
// A malformed frame is answered with an error and does not stop the loop.
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		var pe *transport.ParseError
		if errors.As(err, &pe) {
			if err := s.transport.WriteResponse(protocol.NewJsonRpcErrorResponse(pe.Code, pe.Error(), nil, nil)); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		// a nil response means none is required
		resp := s.HandleRequest(req)
		if resp == nil {
			continue
		}
		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// HandleRequest processes a request and returns a response, or nil for a notification
func (s *Server) HandleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)

	if strings.HasPrefix(req.Method, "notifications/") {
		logger.Debug("Received notification:", req.Method)
		return nil
	}

	resp := &protocol.JsonRpcResponse{
		JsonRPC: protocol.JsonRpcVersion,
		ID:      req.ID,
	}

	var result any
	var err error
	switch req.Method {
	case string(protocol.MethodToolsCall):
		result, err = s.handleToolsCall(req.Params)
	case string(protocol.MethodInvokeTool):
		result, err = s.handleInvokeTool(req.Params)
	default:
		s.mu.Lock()
		handler := s.handlers[req.Method]
		s.mu.Unlock()
		if handler == nil {
			resp.Error = &protocol.JsonRpcError{
				Code:    protocol.ErrMethodNotFound,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			}
			return resp
		}
		result, err = handler(req.Params)
	}

	if err != nil {
		var rpcErr *protocol.JsonRpcError
		if errors.As(err, &rpcErr) {
			resp.Error = rpcErr
			return resp
		}
		logger.Error("Request failed", req.Method, err)
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrToolExecutionFailed,
			Message: err.Error(),
		}
		return resp
	}
	if result == nil {
		if req.ID == nil {
			return nil
		}
		result = struct{}{}
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		resp.Error = &protocol.JsonRpcError{
			Code:    protocol.ErrInternal,
			Message: "Failed to marshal result: " + err.Error(),
		}
		return resp
	}
	logger.Debug("Result:", string(resultBytes))
	resp.Result = resultBytes
	return resp
}

func (s *Server) handleToolsCall(raw json.RawMessage) (any, error) {
	params, err := protocol.ParseToolCallParams(raw)
	if err != nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "invalid tools/call parameters: " + err.Error()}
	}
	return s.callTool(params.Name, params.Arguments)
}

func (s *Server) handleInvokeTool(raw json.RawMessage) (any, error) {
	var params struct {
		Name       string         `json:"name"`
		Parameters map[string]any `json:"parameters"`
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "Invalid parameters for invoke_tool: " + err.Error()}
	}
	return s.callTool(params.Name, params.Parameters)
}

func (s *Server) callTool(name string, args map[string]any) (any, error) {
	if name == "" {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: "Missing tool name"}
	}
	logger.Info("Tool call requested for:", name)
	handler := s.toolHandler(name)
	if handler == nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrMethodNotFound, Message: fmt.Sprintf("tool not found: %s", name)}
	}
	if args == nil {
		args = map[string]any{}
	}
	result, err := handler(args)
	if err != nil {
		return nil, fmt.Errorf("tool execution failed: %w", err)
	}
	return result, nil
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(params any) (any, error) {
	return protocol.ToolsResponse{Tools: s.GetTools()}, nil
}

func (s *Server) handlePing(params any) (any, error) {
	return struct{}{}, nil
}

// handleInitialize answers with the requested protocol version and our tool capability
func (s *Server) handleInitialize(params any) (any, error) {
	version := protocol.DefaultProtocolVersion
	if raw, ok := params.(json.RawMessage); ok && len(raw) > 0 {
		var p protocol.InitializeParams
		if err := json.Unmarshal(raw, &p); err != nil {
			logger.Warn("Failed to parse initialize params:", err)
		} else if p.ProtocolVersion != "" {
			version = p.ProtocolVersion
		}
	}
	logger.Info("Handling initialize request with", len(s.GetTools()), "tools, protocol", version)

	capabilities := map[string]any{}
	if len(s.GetTools()) > 0 {
		capabilities["tools"] = map[string]any{"listChanged": false}
	}
	return protocol.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    capabilities,
		ServerInfo:      s.info,
	}, nil
}

// handleInitialized handles the initialized notification
// 'initialized' Does not require a response
func (s *Server) handleInitialized(params any) (any, error) {
	logger.Info("Handling initialized notification")
	return nil, nil
}
