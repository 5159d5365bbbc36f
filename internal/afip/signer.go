package afip

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.mozilla.org/pkcs7"
	"software.sslmate.com/src/go-pkcs12"
)

var (
	// ErrIdentidad — the PKCS#12 keystore could not be loaded or carries no
	// usable private key. Configuration problem, not retryable.
	ErrIdentidad = errors.New("wsaa: identidad de firma inválida")
	// ErrFirma — the CMS signature itself failed. Fatal for the attempt.
	ErrFirma = errors.New("wsaa: fallo al firmar la solicitud")

	errMissingCredentials = errors.New("wsaa: respuesta sin token o sign")
)

// traTimeLayout is the timestamp format WSAA expects inside the TRA,
// expressed in the fiscal authority's local timezone.
const traTimeLayout = "2006-01-02T15:04:05-07:00"

// traValidityWindow is how far the TRA's generation/expiration timestamps
// sit before and after "now". This window is independent of the validity
// of the TA that WSAA returns.
const traValidityWindow = 10 * time.Minute

// afipLocation resolves the fiscal authority's official timezone. Falls
// back to a fixed UTC-3 offset when the tzdata is unavailable.
func afipLocation() *time.Location {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}

// RequestSigner builds the TRA and produces the CMS signature over it.
// The PKCS#12 identity is re-read from disk on every signature: the key
// material is never held in memory between authentication attempts.
type RequestSigner struct {
	certPath     string
	certPassword string
	now          func() time.Time
	seq          atomic.Uint64
}

// NewRequestSigner creates a signer bound to a PKCS#12 keystore file.
func NewRequestSigner(certPath, certPassword string) *RequestSigner {
	s := &RequestSigner{
		certPath:     certPath,
		certPassword: certPassword,
		now:          time.Now,
	}
	// Seed so uniqueId keeps increasing across restarts in practice;
	// WSAA tolerates occasional collisions anyway.
	s.seq.Store(uint64(time.Now().Unix()))
	return s
}

// BuildRequest assembles the TRA XML for the given service, stamping the
// validity window around "now" in the authority's timezone and the next
// uniqueId of this process.
func (s *RequestSigner) BuildRequest(service string) ([]byte, error) {
	now := s.now().In(afipLocation())

	var tra loginTicketRequest
	tra.Version = "1.0"
	tra.Header.UniqueID = s.seq.Add(1)
	tra.Header.GenerationTime = now.Add(-traValidityWindow).Format(traTimeLayout)
	tra.Header.ExpirationTime = now.Add(traValidityWindow).Format(traTimeLayout)
	tra.Service = service

	data, err := xml.Marshal(&tra)
	if err != nil {
		return nil, fmt.Errorf("wsaa: serializar TRA: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

// Sign produces the CMS (PKCS#7) envelope over the serialized TRA, signed
// with the end-entity certificate only — WSAA does not want the chain.
func (s *RequestSigner) Sign(tra []byte) ([]byte, error) {
	p12, err := os.ReadFile(s.certPath)
	if err != nil {
		return nil, fmt.Errorf("%w: leer %s: %v", ErrIdentidad, s.certPath, err)
	}

	key, cert, err := pkcs12.Decode(p12, s.certPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: decodificar PKCS#12: %v", ErrIdentidad, err)
	}
	if key == nil {
		return nil, fmt.Errorf("%w: el certificado no contiene clave privada", ErrIdentidad)
	}

	signed, err := pkcs7.NewSignedData(tra)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFirma, err)
	}
	if err := signed.AddSigner(cert, key, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFirma, err)
	}
	cms, err := signed.Finish()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFirma, err)
	}
	return cms, nil
}
