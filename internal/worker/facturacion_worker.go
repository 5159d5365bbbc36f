package worker

// facturacion_worker.go
// Processes issuance jobs from QueueFacturacion. Solicits the CAE from the
// fiscal authority, persists the outcome, renders the factura PDF with its
// fiscal QR, and enqueues the email delivery when the client has an address.
//
// Error contract with the billing client:
//   - a returned Go error means the comprobante was NEVER submitted
//     (auth or last-number lookup failed) — safe to retry, so a next
//     attempt is scheduled with exponential backoff;
//   - a returned result is FINAL (approved or rejected) and is never
//     retried automatically.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"facturador/internal/afip"
	"facturador/internal/infra"
	"facturador/internal/model"
	"facturador/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxComprobanteRetries bounds automatic re-submission attempts before a
// stalled comprobante lands in the DLQ.
const MaxComprobanteRetries = 5

// FacturacionJobPayload is the job envelope sent to QueueFacturacion.
type FacturacionJobPayload struct {
	ComprobanteID string `json:"comprobante_id"`
}

// Autorizador solicits fiscal authorization for one comprobante.
type Autorizador interface {
	SolicitarAutorizacion(ctx context.Context, comp afip.ComprobanteRequest, cliente *afip.Cliente) (*afip.ResultadoAutorizacion, error)
}

// QRGenerator encodes the fiscal QR for an authorized comprobante.
type QRGenerator interface {
	Encode(comp afip.ComprobanteRequest, cliente *afip.Cliente, res *afip.ResultadoAutorizacion) ([]byte, error)
}

// FacturaRenderer writes the printable factura to disk.
type FacturaRenderer interface {
	GenerateFacturaPDF(comp *model.Comprobante, cliente *model.Cliente, qrPNG []byte) (string, error)
}

// FacturacionWorker is the single consumer of QueueFacturacion.
type FacturacionWorker struct {
	comprobanteRepo repository.ComprobanteRepository
	billing         Autorizador
	qr              QRGenerator
	pdf             FacturaRenderer
	cb              *infra.CircuitBreaker
	dispatcher      *Dispatcher
	rdb             *redis.Client
	razonSocial     string
}

func NewFacturacionWorker(
	comprobanteRepo repository.ComprobanteRepository,
	billing Autorizador,
	qr QRGenerator,
	pdf FacturaRenderer,
	cb *infra.CircuitBreaker,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	razonSocial string,
) *FacturacionWorker {
	return &FacturacionWorker{
		comprobanteRepo: comprobanteRepo,
		billing:         billing,
		qr:              qr,
		pdf:             pdf,
		cb:              cb,
		dispatcher:      dispatcher,
		rdb:             rdb,
		razonSocial:     razonSocial,
	}
}

// Process handles a single issuance job:
//  1. Parse FacturacionJobPayload and load the Comprobante (with cliente+items)
//  2. Skip if already emitted (re-delivered job)
//  3. Solicit the CAE through the circuit breaker
//  4. Persist the outcome per the error contract above
//  5. On approval: fiscal QR + PDF + optional email job
func (w *FacturacionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload FacturacionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("facturacion_worker: invalid payload")
		return
	}

	compID, err := uuid.Parse(payload.ComprobanteID)
	if err != nil {
		log.Error().Str("comprobante_id", payload.ComprobanteID).Msg("facturacion_worker: invalid comprobante_id")
		return
	}

	comp, err := w.comprobanteRepo.FindByID(ctx, compID)
	if err != nil {
		log.Error().Err(err).Str("comprobante_id", payload.ComprobanteID).Msg("facturacion_worker: comprobante not found")
		return
	}
	if comp.Estado == "emitido" {
		log.Warn().Str("comprobante_id", payload.ComprobanteID).Msg("facturacion_worker: already emitted, skipping")
		return
	}

	req, fiscalCliente := buildAuthRequest(comp)

	var res *afip.ResultadoAutorizacion
	cbErr := w.cb.Execute(func() error {
		r, err := w.billing.SolicitarAutorizacion(ctx, req, fiscalCliente)
		if err != nil {
			return err
		}
		res = r
		return nil
	})

	if cbErr != nil {
		// Never submitted — schedule another attempt.
		w.scheduleRetry(ctx, comp, cbErr)
		return
	}

	w.applyResult(ctx, comp, req, fiscalCliente, res)
}

// applyResult persists a FINAL authorization outcome.
func (w *FacturacionWorker) applyResult(ctx context.Context, comp *model.Comprobante, req afip.ComprobanteRequest, fiscalCliente *afip.Cliente, res *afip.ResultadoAutorizacion) {
	comp.CbteTipo = res.CbteTipo
	comp.NextRetryAt = nil
	comp.LastError = nil

	if !res.Aprobado {
		comp.Estado = "rechazado"
		obs := joinMensajes(res.Errores, res.Observaciones)
		comp.Observaciones = &obs
		if err := w.comprobanteRepo.Update(ctx, comp); err != nil {
			log.Error().Err(err).Str("comprobante_id", comp.ID.String()).Msg("facturacion_worker: failed to persist rejection")
			return
		}
		log.Warn().
			Str("comprobante_id", comp.ID.String()).
			Str("observaciones", obs).
			Msg("facturacion_worker: comprobante rejected")
		return
	}

	comp.Estado = "emitido"
	comp.Numero = &res.Numero
	comp.NumeroOficial = &res.NumeroOficial
	comp.CAE = &res.CAE
	venc := res.CAEVencimiento
	comp.CAEVencimiento = &venc
	comp.ImporteNeto = res.ImporteNeto
	comp.ImporteIVA = res.ImporteIVA
	comp.ImporteTotal = res.ImporteTotal
	if len(res.Observaciones) > 0 {
		obs := joinMensajes(nil, res.Observaciones)
		comp.Observaciones = &obs
	}
	if err := w.comprobanteRepo.Update(ctx, comp); err != nil {
		log.Error().Err(err).Str("comprobante_id", comp.ID.String()).Msg("facturacion_worker: failed to persist CAE")
		return
	}
	log.Info().
		Str("comprobante_id", comp.ID.String()).
		Str("cae", res.CAE).
		Str("numero", res.NumeroOficial).
		Msg("facturacion_worker: CAE obtained")

	// QR + PDF are best-effort: the comprobante is already authorized and
	// persisted; rendering failures only cost the printable artifact.
	qrPNG, qrErr := w.qr.Encode(req, fiscalCliente, res)
	if qrErr != nil {
		log.Warn().Err(qrErr).Str("comprobante_id", comp.ID.String()).Msg("facturacion_worker: QR generation failed")
		qrPNG = nil
	}

	pdfPath, pdfErr := w.pdf.GenerateFacturaPDF(comp, comp.Cliente, qrPNG)
	if pdfErr != nil {
		log.Warn().Err(pdfErr).Str("comprobante_id", comp.ID.String()).Msg("facturacion_worker: PDF generation failed")
		return
	}
	comp.PDFPath = &pdfPath
	_ = w.comprobanteRepo.Update(ctx, comp)

	if comp.Cliente != nil && comp.Cliente.Email != nil && *comp.Cliente.Email != "" {
		emailJob := EmailJobPayload{
			ToEmail: *comp.Cliente.Email,
			Subject: fmt.Sprintf("%s — Factura %s", w.razonSocial, res.NumeroOficial),
			Body:    fmt.Sprintf("Adjunto encontrarás tu factura.\nTotal: $%s", res.ImporteTotal.StringFixed(2)),
			PDFPath: pdfPath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("email", *comp.Cliente.Email).Msg("facturacion_worker: failed to enqueue email")
		}
	}
}

// scheduleRetry bumps the retry counter with exponential backoff, routing to
// the DLQ when the budget is exhausted.
func (w *FacturacionWorker) scheduleRetry(ctx context.Context, comp *model.Comprobante, cause error) {
	comp.RetryCount++
	errMsg := cause.Error()
	comp.LastError = &errMsg
	comp.Estado = "error"

	if comp.RetryCount >= MaxComprobanteRetries {
		comp.NextRetryAt = nil
		payload, _ := json.Marshal(FacturacionJobPayload{ComprobanteID: comp.ID.String()})
		SendToDLQ(ctx, w.rdb, QueueFacturacion, "facturacion", payload,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxComprobanteRetries, errMsg),
			comp.RetryCount)
		log.Error().
			Str("comprobante_id", comp.ID.String()).
			Int("retries", comp.RetryCount).
			Msg("facturacion_worker: max retries exceeded, moved to DLQ")
	} else {
		nextRetry := time.Now().Add(computeRetryBackoff(comp.RetryCount))
		comp.NextRetryAt = &nextRetry
		log.Warn().
			Str("comprobante_id", comp.ID.String()).
			Int("retry_count", comp.RetryCount).
			Time("next_retry_at", nextRetry).
			Err(cause).
			Msg("facturacion_worker: submission failed, scheduled next attempt")
	}

	if err := w.comprobanteRepo.Update(ctx, comp); err != nil {
		log.Error().Err(err).Str("comprobante_id", comp.ID.String()).Msg("facturacion_worker: failed to persist retry state")
	}
}

// computeRetryBackoff returns the wait before attempt n: 30s, 1m, 2m, 4m …
// capped at 15 minutes.
func computeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	backoff := 30 * time.Second << uint(retryCount-1)
	if backoff > 15*time.Minute {
		backoff = 15 * time.Minute
	}
	return backoff
}

// buildAuthRequest maps the persisted comprobante to the billing client's
// input types.
func buildAuthRequest(comp *model.Comprobante) (afip.ComprobanteRequest, *afip.Cliente) {
	req := afip.ComprobanteRequest{
		Fecha:  comp.Fecha,
		Lineas: make([]afip.LineaComprobante, len(comp.Items)),
	}
	for i, item := range comp.Items {
		req.Lineas[i] = afip.LineaComprobante{
			Descripcion:    item.Descripcion,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
		}
	}

	if comp.Cliente == nil {
		return req, nil
	}
	return req, &afip.Cliente{
		RazonSocial:   comp.Cliente.RazonSocial,
		CondicionIVA:  comp.Cliente.CondicionIVA,
		TipoDocumento: comp.Cliente.TipoDocumento,
		NroDocumento:  comp.Cliente.NroDocumento,
	}
}

func joinMensajes(errores, observaciones []afip.MensajeAFIP) string {
	parts := make([]string, 0, len(errores)+len(observaciones))
	for _, m := range errores {
		parts = append(parts, fmt.Sprintf("[%d] %s", m.Codigo, m.Mensaje))
	}
	for _, m := range observaciones {
		parts = append(parts, fmt.Sprintf("[%d] %s", m.Codigo, m.Mensaje))
	}
	return strings.Join(parts, "; ")
}
