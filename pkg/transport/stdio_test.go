package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequestFraming(t *testing.T) {
	input := "\n  {\"jsonrpc\":\"2.0\",\"method\":\"tools/list\",\"id\":1}" +
		"{\"jsonrpc\":\"2.0\",\n\"method\":\"tools/call\",\n\"params\":{\"name\":\"predict_match\",\"arguments\":{\"home\":\"Brighton {H}\",\"away\":\"\\\"quoted\\\" }\"}},\"id\":2}\n" +
		"garbage {\"jsonrpc\":\"2.0\",\"method\":\"notifications/initialized\"}"
	tr := NewStreamTransport(strings.NewReader(input), io.Discard)

	req, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "tools/list", req.Method)
	assert.Equal(t, float64(1), req.ID)

	req, err = tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "tools/call", req.Method)
	var params struct {
		Arguments map[string]string `json:"arguments"`
	}
	require.NoError(t, json.Unmarshal(req.Params, &params))
	assert.Equal(t, "Brighton {H}", params.Arguments["home"])
	assert.Equal(t, `"quoted" }`, params.Arguments["away"])

	req, err = tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "notifications/initialized", req.Method)
	assert.Nil(t, req.ID)

	_, err = tr.ReadRequest()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadRequestRejectsWrongVersion(t *testing.T) {
	tr := NewStreamTransport(strings.NewReader(`{"jsonrpc":"1.0","method":"x","id":1}`), io.Discard)
	_, err := tr.ReadRequest()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, protocol.ErrInvalidRequest, pe.Code)
}

func TestReadRequestMalformedFrameLeavesStreamUsable(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"ping","params":[}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`
	tr := NewStreamTransport(strings.NewReader(input), io.Discard)

	_, err := tr.ReadRequest()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, protocol.ErrParse, pe.Code)

	req, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "ping", req.Method)
	assert.Equal(t, float64(2), req.ID)

	_, err = tr.ReadRequest()
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, errors.As(err, &pe))
}

func TestWriteResponse(t *testing.T) {
	var out bytes.Buffer
	tr := NewStreamTransport(strings.NewReader(""), &out)

	resp, err := protocol.NewJsonRpcResponse(map[string]any{"teams": []string{"Arsenal"}}, 7)
	require.NoError(t, err)
	require.NoError(t, tr.WriteResponse(resp))
	require.NoError(t, tr.WriteResponse(protocol.NewJsonRpcErrorResponse(protocol.ErrInvalidParams, "bad", nil, 8)))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":{"teams":["Arsenal"]}}`, lines[0])
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":8,"error":{"code":-32602,"message":"bad"}}`, lines[1])
}
