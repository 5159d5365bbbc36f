package afip

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSigner avoids certificate material in the authentication flow tests.
type stubSigner struct{}

func (stubSigner) BuildRequest(service string) ([]byte, error) {
	return []byte("<loginTicketRequest/>"), nil
}
func (stubSigner) Sign(tra []byte) ([]byte, error) { return []byte("cms-firmada"), nil }

// wsaaResponse builds a loginCms SOAP response embedding an escaped
// loginTicketResponse with the given credentials.
func wsaaResponse(token, sign string, exp time.Time) string {
	inner := fmt.Sprintf(
		"&lt;loginTicketResponse version=\"1.0\"&gt;"+
			"&lt;header&gt;&lt;source&gt;wsaa&lt;/source&gt;&lt;destination&gt;cuit&lt;/destination&gt;"+
			"&lt;uniqueId&gt;1&lt;/uniqueId&gt;"+
			"&lt;generationTime&gt;%s&lt;/generationTime&gt;"+
			"&lt;expirationTime&gt;%s&lt;/expirationTime&gt;&lt;/header&gt;"+
			"&lt;credentials&gt;&lt;token&gt;%s&lt;/token&gt;&lt;sign&gt;%s&lt;/sign&gt;&lt;/credentials&gt;"+
			"&lt;/loginTicketResponse&gt;",
		exp.Add(-12*time.Hour).Format(time.RFC3339), exp.Format(time.RFC3339), token, sign)
	return `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<soapenv:Body><loginCmsResponse><loginCmsReturn>` + inner +
		`</loginCmsReturn></loginCmsResponse></soapenv:Body></soapenv:Envelope>`
}

func newTestAuthClient(url string, cache *TicketCache) *AuthClient {
	return &AuthClient{
		url:        url,
		service:    ServiceWSFE,
		signer:     stubSigner{},
		cache:      cache,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		now:        time.Now,
	}
}

func TestGetTicket_ReusaTicketVigente(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	cache := NewTicketCache("")
	vigente := &AccessTicket{
		Token:          "tok-1",
		Sign:           "sig-1",
		GenerationTime: time.Now().Add(-time.Hour),
		ExpirationTime: time.Now().Add(11 * time.Hour),
	}
	cache.Put(vigente)

	client := newTestAuthClient(srv.URL, cache)
	got, err := client.GetTicket(context.Background())

	require.NoError(t, err)
	assert.Same(t, vigente, got, "debe devolver exactamente el ticket cacheado")
	assert.Zero(t, calls.Load(), "un ticket vigente no debe generar tráfico")
}

func TestGetTicket_RenuevaTicketVencido(t *testing.T) {
	var calls atomic.Int32
	exp := time.Now().Add(12 * time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, wsaaResponse("tok-nuevo", "sig-nuevo", exp))
	}))
	defer srv.Close()

	cache := NewTicketCache("")
	cache.Put(&AccessTicket{
		Token:          "tok-viejo",
		Sign:           "sig-viejo",
		GenerationTime: time.Now().Add(-24 * time.Hour),
		ExpirationTime: time.Now().Add(-12 * time.Hour),
	})

	client := newTestAuthClient(srv.URL, cache)
	got, err := client.GetTicket(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tok-nuevo", got.Token)
	assert.Equal(t, int32(1), calls.Load(), "exactamente un intercambio loginCms")
	assert.Same(t, got, cache.Get(), "el ticket nuevo queda cacheado")
}

func TestGetTicket_RenovacionConcurrenteColapsa(t *testing.T) {
	var calls atomic.Int32
	exp := time.Now().Add(12 * time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond) // ensancha la ventana de carrera
		fmt.Fprint(w, wsaaResponse("tok-unico", "sig-unico", exp))
	}))
	defer srv.Close()

	client := newTestAuthClient(srv.URL, NewTicketCache(""))

	const n = 10
	tokens := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk, err := client.GetTicket(context.Background())
			if assert.NoError(t, err) {
				tokens[i] = tk.Token
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "N llamadas concurrentes deben colapsar en un intercambio")
	for _, tok := range tokens {
		assert.Equal(t, "tok-unico", tok)
	}
}

func TestGetTicket_ErrorDeTransporte(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	client := newTestAuthClient(srv.URL, NewTicketCache(""))
	_, err := client.GetTicket(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "504", "el error debe conservar el status para diagnóstico")
}
