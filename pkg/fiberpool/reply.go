package fiberpool

import (
	"net/http"

	"restfulwebclient/pkg/transport"

	fibercli "github.com/gofiber/fiber/v3/client"
)

func newReply(r *fibercli.Response) transport.Reply {
	b := append([]byte(nil), r.Body()...)
	h := make(http.Header)
	r.RawResponse.Header.VisitAll(func(k, v []byte) {
		h.Add(string(k), string(v))
	})
	return transport.Reply{
		StatusCode: r.StatusCode(),
		Header:     h,
		Body:       b,
	}
}
