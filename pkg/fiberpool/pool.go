package fiberpool

import (
	"context"
	"sync"

	"restfulwebclient/pkg/config"
	"restfulwebclient/pkg/rr"
	"restfulwebclient/pkg/transport"

	fibercli "github.com/gofiber/fiber/v3/client"
	"github.com/valyala/fasthttp"
)

var _ transport.Transport = (*ClientPool)(nil)

type ClientPool struct {
	clients   []*fibercli.Client
	bases     []*fasthttp.Client
	spin      rr.RR
	cfg       config.Config
	closeOnce sync.Once
}

func New(cfg config.Config) *ClientPool {
	if cfg.Size <= 0 {
		cfg.Size = config.DefaultConfig().Size
	}
	cs := make([]*fibercli.Client, 0, cfg.Size)
	bs := make([]*fasthttp.Client, 0, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		c, b := newFiberClient(cfg)
		cs = append(cs, c)
		bs = append(bs, b)
	}
	return &ClientPool{clients: cs, bases: bs, cfg: cfg}
}

// Do sends req through the next client in the pool. The fasthttp request and
// response are returned to their pools before Do returns.
func (p *ClientPool) Do(ctx context.Context, req transport.Request) (transport.Reply, error) {
	if err := ctx.Err(); err != nil {
		return transport.Reply{}, transport.NetworkError(err)
	}

	i := p.spin.Next(len(p.clients))
	r := p.clients[i].R().
		SetContext(ctx).
		SetMethod(req.Method).
		SetURL(req.URL)
	for _, h := range req.Headers {
		r.AddHeader(h.Key, h.Value)
	}
	if req.Body != nil {
		r.SetRawBody(req.Body)
	}

	res, err := r.Send()
	if err != nil {
		fibercli.ReleaseRequest(r)
		return transport.Reply{}, transport.NetworkError(err)
	}
	defer res.Close()

	return newReply(res), nil
}

// Close drops idle connections of every pooled client. It is idempotent.
func (p *ClientPool) Close() error {
	p.closeOnce.Do(func() {
		for _, b := range p.bases {
			b.CloseIdleConnections()
		}
	})
	return nil
}
