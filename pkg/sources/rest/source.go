// Package rest queries the hosted data store through its PostgREST compatible API.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/clientcredentials"
	"resty.dev/v3"

	"github.com/matst80/slask-catalog/pkg/types"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// OAuth enables client credentials instead of a static key when ClientID is set.
	OAuth clientcredentials.Config
}

type Source struct {
	client *resty.Client
}

func New(cfg Config) *Source {
	var client *resty.Client
	if cfg.OAuth.ClientID != "" {
		client = resty.NewWithClient(cfg.OAuth.Client(context.Background()))
	} else {
		client = resty.New()
		if cfg.APIKey != "" {
			client.SetHeader("apikey", cfg.APIKey)
			client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Source{client: client}
}

func (s *Source) Close() error {
	return s.client.Close()
}

func (s *Source) Query(ctx context.Context, req types.SourceRequest) (*types.SourceResponse, error) {
	params, err := Params(req)
	if err != nil {
		return nil, fmt.Errorf("build filter for %s: %v: %w", req.Table, err, types.ErrSourceUnavailable)
	}
	r := s.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params)
	if req.Count {
		r.SetHeader("Prefer", "count=exact")
	}
	res, err := r.Get("/" + strings.TrimLeft(req.Table, "/"))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s: %v: %w", req.Table, err, types.ErrSourceUnavailable)
	}
	if err := statusError(req.Table, res.StatusCode(), res.String()); err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := sonic.Unmarshal(res.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("%s: decode rows: %v: %w", req.Table, err, types.ErrSourceUnavailable)
	}
	ret := &types.SourceResponse{Rows: make([]types.Row, 0, len(raw)), Total: -1}
	for _, m := range raw {
		ret.Rows = append(ret.Rows, types.Row(m))
	}
	if req.Count {
		ret.Total = parseContentRange(res.Header().Get("Content-Range"))
	}
	log.WithFields(log.Fields{"table": req.Table, "rows": len(ret.Rows), "total": ret.Total}).Debug("rest query")
	return ret, nil
}

func statusError(table string, status int, body string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: status %d: %w", table, status, types.ErrPermissionDenied)
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return errors.Join(fmt.Errorf("%s: status %d: %s", table, status, body), types.ErrSourceUnavailable)
}
