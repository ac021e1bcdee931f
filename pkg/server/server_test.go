package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/protocol"
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool() protocol.Tool {
	return protocol.Tool{
		Name:        "echo",
		Description: "Echoes its text argument",
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: map[string]protocol.ToolProperty{"text": {Type: "string"}},
			Required:   []string{"text"},
		},
	}
}

func newTestServer() *Server {
	s := NewServer(nil, protocol.ServerInfo{Name: "scoresight", Version: "test"})
	s.RegisterTool(echoTool(), func(params any) (any, error) {
		args := params.(map[string]any)
		text, ok := args["text"].(string)
		if !ok {
			return nil, fmt.Errorf("text parameter is required")
		}
		return protocol.NewTextResult(text, nil), nil
	})
	return s
}

func request(t *testing.T, method string, params any, id any) *protocol.JsonRpcRequest {
	t.Helper()
	req, err := protocol.NewJsonRpcRequest(method, params, id)
	require.NoError(t, err)
	return req
}

func TestInitialize(t *testing.T) {
	s := newTestServer()
	resp := s.HandleRequest(request(t, "initialize", map[string]any{"protocolVersion": "2025-03-26"}, 0))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{"protocolVersion":"2025-03-26","capabilities":{"tools":{"listChanged":false}},"serverInfo":{"name":"scoresight","version":"test"}}`, string(resp.Result))

	resp = s.HandleRequest(request(t, "initialize", nil, 1))
	assert.Contains(t, string(resp.Result), protocol.DefaultProtocolVersion)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s := newTestServer()
	assert.Nil(t, s.HandleRequest(request(t, "notifications/initialized", nil, nil)))
	assert.Nil(t, s.HandleRequest(request(t, "initialized", nil, nil)))
}

func TestToolsListAndCall(t *testing.T) {
	s := newTestServer()
	resp := s.HandleRequest(request(t, "tools/list", nil, 2))
	var list protocol.ToolsResponse
	require.NoError(t, json.Unmarshal(resp.Result, &list))
	require.Len(t, list.Tools, 1)
	assert.Equal(t, "echo", list.Tools[0].Name)

	for _, name := range []string{"echo", "mcp___echo"} {
		resp = s.HandleRequest(request(t, "tools/call", map[string]any{"name": name, "arguments": map[string]any{"text": "hi"}}, 3))
		require.Nil(t, resp.Error, name)
		assert.JSONEq(t, `{"content":[{"type":"text","text":"hi"}]}`, string(resp.Result))
	}

	resp = s.HandleRequest(request(t, "invoke_tool", map[string]any{"name": "echo", "parameters": map[string]any{"text": "legacy"}}, 4))
	require.Nil(t, resp.Error)
	assert.Contains(t, string(resp.Result), "legacy")
}

func TestErrors(t *testing.T) {
	s := newTestServer()

	resp := s.HandleRequest(request(t, "resources/list", nil, 5))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrMethodNotFound, resp.Error.Code)

	resp = s.HandleRequest(request(t, "tools/call", map[string]any{"name": "nope"}, 6))
	assert.Equal(t, protocol.ErrMethodNotFound, resp.Error.Code)

	resp = s.HandleRequest(request(t, "tools/call", map[string]any{"arguments": map[string]any{}}, 7))
	assert.Equal(t, protocol.ErrInvalidParams, resp.Error.Code)

	resp = s.HandleRequest(request(t, "tools/call", map[string]any{"name": "echo"}, 8))
	assert.Equal(t, protocol.ErrToolExecutionFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "text parameter is required")
	assert.Equal(t, 8, resp.ID)
}

func TestProcessRequestsOverStream(t *testing.T) {
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","method":"initialize","params":{},"id":0}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"echo","arguments":{"text":"done"}},"id":1}`,
	}, "\n")
	var out bytes.Buffer
	s := newTestServer()
	s.transport = transport.NewStreamTransport(strings.NewReader(in), &out)

	require.NoError(t, s.Start())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"serverInfo"`)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"done"}]}}`, lines[1])
}

func TestMalformedFrameIsAnsweredAndServingContinues(t *testing.T) {
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"ping","params":[}`,
		`{"jsonrpc":"1.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n")
	var out bytes.Buffer
	s := newTestServer()
	s.transport = transport.NewStreamTransport(strings.NewReader(in), &out)

	require.NoError(t, s.Start())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var first protocol.JsonRpcResponse
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NotNil(t, first.Error)
	assert.Equal(t, protocol.ErrParse, first.Error.Code)
	assert.Nil(t, first.ID)

	var second protocol.JsonRpcResponse
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.NotNil(t, second.Error)
	assert.Equal(t, protocol.ErrInvalidRequest, second.Error.Code)

	assert.JSONEq(t, `{"jsonrpc":"2.0","id":3,"result":{}}`, lines[2])
}
