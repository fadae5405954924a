package restypool

import (
	"restfulwebclient/pkg/transport"

	"resty.dev/v3"
)

func newReply(r *resty.Response) transport.Reply {
	b := append([]byte(nil), r.Bytes()...)
	return transport.Reply{
		StatusCode: r.StatusCode(),
		Header:     r.Header().Clone(),
		Body:       b,
	}
}
