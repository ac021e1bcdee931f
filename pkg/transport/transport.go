package transport

import (
	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/pkg/protocol"
)

// Transport defines the interface for communication methods
type Transport interface {
	ReadRequest() (*protocol.JsonRpcRequest, error)
	WriteResponse(*protocol.JsonRpcResponse) error
}

// ParseError is returned by ReadRequest for a frame that was read but is not a usable request.
// The stream is still positioned at the next frame, so the caller can reply and carry on.
type ParseError struct {
	Code int // protocol.ErrParse or protocol.ErrInvalidRequest
	Err  error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
