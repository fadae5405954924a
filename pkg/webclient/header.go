package webclient

import "restfulwebclient/pkg/transport"

// Header is one outgoing request header. Duplicate keys are sent as repeated header lines.
type Header struct {
	Key   string
	Value string
}

// H is shorthand for building a Header.
func H(key, value string) Header { return Header{Key: key, Value: value} }

func toTransportHeaders(hs []Header) []transport.Header {
	out := make([]transport.Header, 0, len(hs))
	for _, h := range hs {
		out = append(out, transport.Header{Key: h.Key, Value: h.Value})
	}
	return out
}
