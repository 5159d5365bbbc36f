package afip

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrClienteNoEncontrado — the invoice references no resolvable client.
var ErrClienteNoEncontrado = errors.New("wsfe: cliente no encontrado")

// ErrDocumentoMalformado — the client's document number does not parse as
// a number once the usual separators are stripped.
var ErrDocumentoMalformado = errors.New("wsfe: número de documento malformado")

// Cliente is the party data the billing flow needs; the caller resolves it
// from its own store.
type Cliente struct {
	RazonSocial   string
	CondicionIVA  string
	TipoDocumento string // CUIT | CUIL | DNI | vacío (consumidor final)
	NroDocumento  string
}

// LineaComprobante is one line item of the invoice being authorized.
type LineaComprobante struct {
	Descripcion    string
	Cantidad       decimal.Decimal
	PrecioUnitario decimal.Decimal
}

// ComprobanteRequest is the invoice aggregate submitted for authorization.
type ComprobanteRequest struct {
	Fecha  time.Time
	Lineas []LineaComprobante
}

// MensajeAFIP is one remote error or observation entry, preserved verbatim
// for audit and support.
type MensajeAFIP struct {
	Codigo  int
	Mensaje string
}

// ResultadoAutorizacion is the outcome of one authorization attempt.
// Invariant: Aprobado implies a non-empty CAE and a future Vencimiento;
// !Aprobado implies Errores is non-empty.
type ResultadoAutorizacion struct {
	Aprobado       bool
	CbteTipo       int
	Numero         int64
	NumeroOficial  string // "00001-00000123"
	CAE            string
	CAEVencimiento time.Time
	ImporteNeto    decimal.Decimal
	ImporteIVA     decimal.Decimal
	ImporteTotal   decimal.Decimal
	Errores        []MensajeAFIP
	Observaciones  []MensajeAFIP
}

// BillingClient requests CAEs from WSFEv1. It never retries a submission:
// the remote service is the source of truth for invoice numbering and a
// resubmission after an ambiguous failure could issue two official numbers
// for one logical invoice.
type BillingClient struct {
	url             string
	cuit            int64
	ptoVta          int
	cbteTipoDefault int
	auth            *AuthClient
	httpClient      *http.Client
	now             func() time.Time
}

// NewBillingClient wires the WSFE client. cbteTipoDefault is the invoice
// class used for clients with no registered tax condition.
func NewBillingClient(url string, cuit int64, ptoVta, cbteTipoDefault int, auth *AuthClient) *BillingClient {
	return &BillingClient{
		url:             url,
		cuit:            cuit,
		ptoVta:          ptoVta,
		cbteTipoDefault: cbteTipoDefault,
		auth:            auth,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		now:             time.Now,
	}
}

// SolicitarAutorizacion runs the full authorization flow for one invoice:
// ticket, classification codes, last-number read, totals, FECAESolicitar,
// response parse.
//
// Error contract: a returned error means the submission never reached the
// authority (auth failure, last-number read failure, local validation) and
// the caller may retry. A returned ResultadoAutorizacion — approved or not
// — is final for this attempt and must not be resubmitted automatically.
func (c *BillingClient) SolicitarAutorizacion(ctx context.Context, comp ComprobanteRequest, cliente *Cliente) (*ResultadoAutorizacion, error) {
	if cliente == nil {
		return nil, ErrClienteNoEncontrado
	}

	cbteTipo := CbteTipoPara(cliente.CondicionIVA, c.cbteTipoDefault)
	docTipo := DocTipoPara(cliente.TipoDocumento)
	// Validate the document number before touching the network: an
	// identified receptor with an unparseable number is a data problem the
	// operator must fix, not something to degrade to DocNro 0.
	var docNro int64
	if docTipo != DocTipoConsumidorFinal {
		n, err := parseDocNro(cliente.NroDocumento)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrDocumentoMalformado, cliente.NroDocumento)
		}
		docNro = n
	}

	ticket, err := c.auth.GetTicket(ctx)
	if err != nil {
		return nil, fmt.Errorf("wsfe: obtener ticket: %w", err)
	}
	auth := feAuth{Token: ticket.Token, Sign: ticket.Sign, Cuit: c.cuit}

	// The read-then-submit pair for this {PtoVta, CbteTipo} must not
	// interleave with another submission; the issuing pipeline serializes
	// all calls to this method behind a single worker.
	ultimo, err := c.ultimoAutorizado(ctx, auth, cbteTipo)
	if err != nil {
		return nil, err
	}
	nro := ultimo + 1

	neto := decimal.Zero
	for _, l := range comp.Lineas {
		neto = neto.Add(l.Cantidad.Mul(l.PrecioUnitario))
	}
	// Único tratamiento impositivo: 21% sobre el neto cuando el receptor
	// es responsable inscripto, cero para el resto de las condiciones.
	iva := decimal.Zero
	if strings.EqualFold(strings.TrimSpace(cliente.CondicionIVA), CondicionResponsableInscripto) {
		iva = neto.Mul(decimal.NewFromFloat(ivaRate)).Round(2)
	}
	total := neto.Add(iva)

	det := feCAEDetRequest{
		Concepto:   1, // productos
		DocTipo:    docTipo,
		DocNro:     docNro,
		CbteDesde:  nro,
		CbteHasta:  nro,
		CbteFch:    comp.Fecha.Format("20060102"),
		ImpTotal:   total.InexactFloat64(),
		ImpTotConc: 0,
		ImpNeto:    neto.InexactFloat64(),
		ImpOpEx:    0,
		ImpTrib:    0,
		ImpIVA:     iva.InexactFloat64(),
		MonID:      "PES",
		MonCotiz:   1,
	}
	if !iva.IsZero() {
		det.IVA = []feAlicIVA{{
			ID:      ivaAlicuotaID21,
			BaseImp: neto.InexactFloat64(),
			Importe: iva.InexactFloat64(),
		}}
	}

	res := &ResultadoAutorizacion{
		CbteTipo:      cbteTipo,
		Numero:        nro,
		NumeroOficial: FormatNumeroOficial(c.ptoVta, nro),
		ImporteNeto:   neto,
		ImporteIVA:    iva,
		ImporteTotal:  total,
	}

	raw, err := c.post(ctx, "FECAESolicitar", newFECAERequest(auth, c.ptoVta, cbteTipo, det))
	if err != nil {
		// The submission may or may not have been recorded remotely. Report
		// a final failure — a human reconciles against the authority before
		// any new attempt.
		log.Error().Err(err).Int64("nro", nro).Int("cbte_tipo", cbteTipo).
			Msg("wsfe: fallo de transporte en FECAESolicitar")
		res.Errores = append(res.Errores, MensajeAFIP{
			Mensaje: fmt.Sprintf("No se pudo contactar a la autoridad fiscal: %v", err),
		})
		return res, nil
	}

	var env feCAEResponse
	if err := xml.Unmarshal(raw, &env); err != nil {
		res.Errores = append(res.Errores, MensajeAFIP{
			Mensaje: fmt.Sprintf("Respuesta de la autoridad fiscal malformada: %v", err),
		})
		return res, nil
	}
	if env.Body.Fault != nil {
		res.Errores = append(res.Errores, MensajeAFIP{
			Mensaje: fmt.Sprintf("Fault de la autoridad fiscal: %s %s", env.Body.Fault.Code, env.Body.Fault.String),
		})
		return res, nil
	}

	result := env.Body.Response.Result
	det2 := result.FeDetResp.Det

	for _, e := range result.Errors {
		res.Errores = append(res.Errores, MensajeAFIP{Codigo: e.Code, Mensaje: e.Msg})
	}
	for _, o := range det2.Observaciones {
		res.Observaciones = append(res.Observaciones, MensajeAFIP{Codigo: o.Code, Mensaje: o.Msg})
	}

	venc, vencErr := time.Parse("20060102", det2.CAEFchVto)
	if det2.Resultado == "A" && det2.CAE != "" && vencErr == nil {
		res.Aprobado = true
		res.CAE = det2.CAE
		res.CAEVencimiento = venc
		return res, nil
	}

	// Approved by the authority but with an expiry we cannot parse: name
	// the real problem instead of calling it a rejection.
	if det2.Resultado == "A" && det2.CAE != "" && len(res.Errores) == 0 {
		res.Errores = append(res.Errores, MensajeAFIP{
			Mensaje: fmt.Sprintf("CAEFchVto inválido: %q", det2.CAEFchVto),
		})
		return res, nil
	}

	if len(res.Errores) == 0 {
		resultado := det2.Resultado
		if resultado == "" {
			resultado = result.FeCabResp.Resultado
		}
		res.Errores = append(res.Errores, MensajeAFIP{
			Mensaje: fmt.Sprintf("Comprobante rechazado. Resultado: %s", resultado),
		})
	}
	return res, nil
}

// UltimoAutorizado exposes the last-number query for reconciliation and
// health tooling.
func (c *BillingClient) UltimoAutorizado(ctx context.Context, cbteTipo int) (int64, error) {
	ticket, err := c.auth.GetTicket(ctx)
	if err != nil {
		return 0, fmt.Errorf("wsfe: obtener ticket: %w", err)
	}
	return c.ultimoAutorizado(ctx, feAuth{Token: ticket.Token, Sign: ticket.Sign, Cuit: c.cuit}, cbteTipo)
}

func (c *BillingClient) ultimoAutorizado(ctx context.Context, auth feAuth, cbteTipo int) (int64, error) {
	raw, err := c.post(ctx, "FECompUltimoAutorizado", newFEUltimoRequest(auth, c.ptoVta, cbteTipo))
	if err != nil {
		return 0, fmt.Errorf("wsfe: FECompUltimoAutorizado: %w", err)
	}
	var env feUltimoResponse
	if err := xml.Unmarshal(raw, &env); err != nil {
		return 0, fmt.Errorf("wsfe: FECompUltimoAutorizado malformado: %w", err)
	}
	if env.Body.Fault != nil {
		return 0, fmt.Errorf("wsfe: fault %s: %s", env.Body.Fault.Code, env.Body.Fault.String)
	}
	if errs := env.Body.Response.Result.Errors; len(errs) > 0 {
		return 0, fmt.Errorf("wsfe: FECompUltimoAutorizado error %d: %s", errs[0].Code, errs[0].Msg)
	}
	return env.Body.Response.Result.CbteNro, nil
}

// post serializes a SOAP envelope and submits it with the operation's
// SOAPAction. Returns the raw body on HTTP 200 only.
func (c *BillingClient) post(ctx context.Context, action string, envelope any) ([]byte, error) {
	body, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("serializar %s: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(append([]byte(xml.Header), body...)))
	if err != nil {
		return nil, fmt.Errorf("crear request %s: %w", action, err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", wsfeNS+action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("leer respuesta %s: %w", action, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s status %d: %s", action, resp.StatusCode, truncate(raw, 512))
	}
	return raw, nil
}
