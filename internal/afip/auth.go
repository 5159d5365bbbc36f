package afip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ServiceWSFE is the service name requested in the TRA for electronic
// billing tickets.
const ServiceWSFE = "wsfe"

// traSigner abstracts RequestSigner so the authentication flow can be
// tested without certificate material.
type traSigner interface {
	BuildRequest(service string) ([]byte, error)
	Sign(tra []byte) ([]byte, error)
}

// AuthClient obtains and renews the WSAA access ticket. GetTicket always
// returns a currently valid TA or fails; callers may retry a failed
// authentication freely since it has no effect on invoice numbering.
type AuthClient struct {
	url        string
	service    string
	signer     traSigner
	cache      *TicketCache
	httpClient *http.Client
	now        func() time.Time

	// renewMu serializes the cache-miss path so concurrent callers with an
	// expired TA collapse into a single loginCms exchange.
	renewMu sync.Mutex
}

// NewAuthClient wires the authentication client for the billing service.
func NewAuthClient(url string, signer *RequestSigner, cache *TicketCache) *AuthClient {
	return &AuthClient{
		url:        url,
		service:    ServiceWSFE,
		signer:     signer,
		cache:      cache,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// GetTicket returns the cached TA when still valid, otherwise performs one
// loginCms exchange and refreshes the cache.
func (a *AuthClient) GetTicket(ctx context.Context) (*AccessTicket, error) {
	if t := a.cache.Get(); t.Valid(a.now()) {
		return t, nil
	}

	a.renewMu.Lock()
	defer a.renewMu.Unlock()

	// A concurrent caller may have renewed while we waited on the lock.
	if t := a.cache.Get(); t.Valid(a.now()) {
		return t, nil
	}

	t, err := a.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	a.cache.Put(t)
	return t, nil
}

func (a *AuthClient) authenticate(ctx context.Context) (*AccessTicket, error) {
	tra, err := a.signer.BuildRequest(a.service)
	if err != nil {
		return nil, err
	}
	cms, err := a.signer.Sign(tra)
	if err != nil {
		return nil, err
	}

	envelope := newLoginCmsRequest(base64.StdEncoding.EncodeToString(cms))
	body, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("wsaa: serializar loginCms: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(append([]byte(xml.Header), body...)))
	if err != nil {
		return nil, fmt.Errorf("wsaa: crear request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", "")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wsaa: endpoint inalcanzable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("wsaa: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wsaa: status %d: %s", resp.StatusCode, truncate(raw, 512))
	}

	var env loginCmsResponse
	if err := xml.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("wsaa: respuesta malformada: %w", err)
	}
	if env.Body.Fault != nil {
		return nil, fmt.Errorf("wsaa: fault %s: %s", env.Body.Fault.Code, env.Body.Fault.String)
	}

	// loginCmsReturn embeds the loginTicketResponse document as escaped XML.
	var doc taFile
	if err := xml.Unmarshal([]byte(env.Body.Response.Return), &doc); err != nil {
		return nil, fmt.Errorf("wsaa: ticket embebido malformado: %w", err)
	}
	t, err := ticketFromResponse(&doc)
	if err != nil {
		return nil, fmt.Errorf("wsaa: ticket incompleto: %w", err)
	}
	return t, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}
