package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"salesrep_sync/internal/salesrep"
	"salesrep_sync/internal/signer"
	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/config"
	"salesrep_sync/platform/logger"
	"salesrep_sync/platform/metrics"
)

const maxReplyBytes = 1 << 20

// Reply is the sync service's answer to a forwarded notification.
type Reply struct {
	HTTPStatus int             `json:"httpStatus"`
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

// Forwarder signs assignments and POSTs them to the sync service.
type Forwarder struct {
	httpClient *http.Client
	target     string
	header     string
	signer     *signer.Signer
	log        *logger.Logger
}

// ForwarderOption customizes a Forwarder.
type ForwarderOption func(*Forwarder)

// WithForwardHTTPClient replaces the underlying HTTP client.
func WithForwardHTTPClient(hc *http.Client) ForwarderOption {
	return func(f *Forwarder) {
		if hc != nil {
			f.httpClient = hc
		}
	}
}

// NewForwarder creates a forwarder. FORWARD_URL wins over the RESTlet URL.
func NewForwarder(cfg config.ERPConfig, sig *signer.Signer, log *logger.Logger, opts ...ForwarderOption) (*Forwarder, error) {
	target, err := TargetURL(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.GetForwardTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}

	header := cfg.GetSignatureHeader()
	if header == "" {
		header = "X-Signature-SHA256"
	}

	f := &Forwarder{
		httpClient: &http.Client{Timeout: timeout},
		target:     target,
		header:     header,
		signer:     sig,
		log:        log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// TargetURL resolves where notifications are sent.
func TargetURL(cfg config.ERPConfig) (string, error) {
	if raw := strings.TrimSpace(cfg.GetForwardURL()); raw != "" {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return "", apperr.Configuration(fmt.Sprintf("invalid FORWARD_URL: %v", err))
		}
		return raw, nil
	}

	raw := strings.TrimSpace(cfg.GetRESTletURL())
	if raw == "" || cfg.GetRESTletScriptID() == "" || cfg.GetRESTletDeployID() == "" {
		return "", apperr.Configuration("no forward target configured")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", apperr.Configuration(fmt.Sprintf("invalid ERP_RESTLET_URL: %v", err))
	}
	q := u.Query()
	q.Set("script", cfg.GetRESTletScriptID())
	q.Set("deploy", cfg.GetRESTletDeployID())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Target returns the resolved endpoint.
func (f *Forwarder) Target() string {
	return f.target
}

// Forward signs a and sends it. A reply with a non-2xx status is returned
// together with an upstream error.
func (f *Forwarder) Forward(ctx context.Context, a salesrep.Assignment) (*Reply, error) {
	reply, err := f.forward(ctx, a)
	result := "ok"
	if err != nil {
		result = apperr.GetKind(err).String()
		f.log.WithContext(ctx).Error("forward failed", "customer_email", a.CustomerEmail, "sales_rep", a.SalesRep, "error", err)
	} else {
		f.log.WithContext(ctx).Info("forwarded", "customer_email", a.CustomerEmail, "sales_rep", a.SalesRep, "status", reply.HTTPStatus)
	}
	metrics.ForwardedNotifications.WithLabelValues(result).Inc()
	return reply, err
}

func (f *Forwarder) forward(ctx context.Context, a salesrep.Assignment) (*Reply, error) {
	a.CustomerEmail = strings.TrimSpace(a.CustomerEmail)
	if a.CustomerEmail == "" {
		return nil, apperr.Validation("No customer email provided")
	}

	body, digest, err := f.signer.SignJSON(ctx, a)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.target, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Transport("build forward request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(f.header, digest)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Transport("forward request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, apperr.Transport("read forward reply", err)
	}

	reply := &Reply{HTTPStatus: resp.StatusCode, StatusCode: resp.StatusCode}
	var env struct {
		StatusCode int             `json:"statusCode"`
		Body       json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.StatusCode != 0 {
		reply.StatusCode = env.StatusCode
		reply.Body = env.Body
	} else if json.Valid(raw) {
		reply.Body = raw
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return reply, apperr.Upstream(fmt.Sprintf("sync service answered %d", resp.StatusCode), reply.Body)
	}
	return reply, nil
}

// Relay connects a notification source to a forwarder.
type Relay struct {
	source    NotificationSource
	forwarder *Forwarder
}

// NewRelay creates a relay.
func NewRelay(source NotificationSource, forwarder *Forwarder) *Relay {
	return &Relay{source: source, forwarder: forwarder}
}

// Handle forwards the assignment derived from event, if any.
// Returns a nil reply when the source skipped the event.
func (r *Relay) Handle(ctx context.Context, event ChangeEvent) (*Reply, error) {
	assignment, err := r.source.OnChange(ctx, event)
	if err != nil || assignment == nil {
		return nil, err
	}
	return r.forwarder.Forward(ctx, *assignment)
}
