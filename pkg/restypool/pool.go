package restypool

import (
	"context"
	"errors"
	"sync"

	"restfulwebclient/pkg/config"
	"restfulwebclient/pkg/rr"
	"restfulwebclient/pkg/transport"

	resty "resty.dev/v3"
)

var _ transport.Transport = (*ClientPool)(nil)

// ClientPool spreads requests over several resty clients, each with its own
// connection pool, in round-robin order.
type ClientPool struct {
	clients   []*resty.Client
	spin      rr.RR
	cfg       config.Config
	closeOnce sync.Once
	closeErr  error
}

func New(cfg config.Config) *ClientPool {
	if cfg.Size <= 0 {
		cfg.Size = config.DefaultConfig().Size
	}

	cs := make([]*resty.Client, 0, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		cs = append(cs, newRestyClient(cfg))
	}
	return &ClientPool{clients: cs, cfg: cfg}
}

func (p *ClientPool) Do(ctx context.Context, req transport.Request) (transport.Reply, error) {
	i := p.spin.Next(len(p.clients))
	r := p.clients[i].R().SetContext(ctx)
	for _, h := range req.Headers {
		r.Header.Add(h.Key, h.Value)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return transport.Reply{}, transport.NetworkError(err)
	}
	return newReply(resp), nil
}

func (p *ClientPool) Close() error {
	p.closeOnce.Do(func() {
		errs := make([]error, 0, len(p.clients))
		for _, c := range p.clients {
			errs = append(errs, c.Close())
		}
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}
