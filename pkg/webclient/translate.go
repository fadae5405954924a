package webclient

import (
	"restfulwebclient/pkg/transport"
)

type verb uint8

const (
	verbGet verb = iota
	verbPost
	verbPut
	verbDelete
	verbHead
)

func (v verb) String() string {
	switch v {
	case verbGet:
		return "GET"
	case verbPost:
		return "POST"
	case verbPut:
		return "PUT"
	case verbDelete:
		return "DELETE"
	case verbHead:
		return "HEAD"
	default:
		return "UNKNOWN"
	}
}

// shape lists the optional fields a verb fills in on completion.
type shape struct {
	err     bool
	data    bool
	headers bool
}

// Completion shapes differ per verb: DELETE and PUT report only the status code,
// HEAD reports headers instead of a body.
var completionShapes = map[verb]shape{
	verbGet:    {err: true, data: true},
	verbPost:   {err: true, data: true},
	verbPut:    {},
	verbDelete: {},
	verbHead:   {err: true, headers: true},
}

func uniformShape(v verb) shape {
	return shape{err: true, data: v != verbHead, headers: true}
}

func completed(v verb, rep transport.Reply, uniform bool) Response {
	s := completionShapes[v]
	if uniform {
		s = uniformShape(v)
	}

	resp := Response{StatusCode: rep.StatusCode, Outcome: OutcomeCompleted}
	if s.err {
		if msg := statusError(rep.StatusCode); msg != "" {
			resp.Error = strPtr(msg)
		}
	}
	if s.data {
		resp.Data = strPtr(decodeUTF8(rep.Body))
	}
	if s.headers {
		resp.Headers = flattenHeader(rep.Header)
	}
	return resp
}

// networkFailure carries no status code: no response was received.
func networkFailure(err error) Response {
	return Response{
		StatusCode: 0,
		Error:      strPtr(err.Error()),
		Outcome:    OutcomeNetworkError,
	}
}
