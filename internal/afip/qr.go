package afip

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// qrURLPrefix is the authority's fixed verification URL; the base64 payload
// is appended as the p parameter.
const qrURLPrefix = "https://www.afip.gob.ar/fe/qr/?p="

const qrImageSize = 256 // px, square

// QRPayload is the fixed-schema JSON the law requires encoded on every
// printed invoice. Field order matters for byte-identical output.
type QRPayload struct {
	Ver        int     `json:"ver"`
	Fecha      string  `json:"fecha"` // YYYY-MM-DD
	Cuit       int64   `json:"cuit"`
	PtoVta     int     `json:"ptoVta"`
	TipoCmp    int     `json:"tipoCmp"`
	NroCmp     int64   `json:"nroCmp"`
	Importe    float64 `json:"importe"`
	Moneda     string  `json:"moneda"`
	Ctz        float64 `json:"ctz"`
	TipoDocRec int     `json:"tipoDocRec"`
	NroDocRec  int64   `json:"nroDocRec"`
	TipoCodAut string  `json:"tipoCodAut"`
	CodAut     int64   `json:"codAut"`
}

// QREncoder renders the fiscal QR for an authorized invoice. Stateless and
// deterministic: identical inputs produce byte-identical PNGs.
type QREncoder struct {
	cuit            int64
	cbteTipoDefault int
}

// NewQREncoder creates an encoder for the issuing CUIT. cbteTipoDefault
// must be the same configured value the billing path uses, so both paths
// classify unregistered clients identically.
func NewQREncoder(cuit int64, cbteTipoDefault int) *QREncoder {
	return &QREncoder{cuit: cuit, cbteTipoDefault: cbteTipoDefault}
}

// Payload derives the QR content from the authorization result and the
// client. Numeric fields that fail to parse degrade to 0 — the QR is
// advisory; the CAE and official number on the invoice stay authoritative.
func (e *QREncoder) Payload(comp ComprobanteRequest, cliente *Cliente, res *ResultadoAutorizacion) QRPayload {
	ptoVta, nro, err := ParseNumeroOficial(res.NumeroOficial)
	if err != nil {
		ptoVta, nro = 0, 0
	}

	docTipo := DocTipoConsumidorFinal
	var docNro int64
	if cliente != nil {
		docTipo = DocTipoPara(cliente.TipoDocumento)
		if docTipo != DocTipoConsumidorFinal {
			docNro = parseDigits(cliente.NroDocumento)
		}
	}

	tipoCmp := res.CbteTipo
	if tipoCmp == 0 {
		tipoCmp = e.cbteTipoDefault
	}

	return QRPayload{
		Ver:        1,
		Fecha:      comp.Fecha.Format("2006-01-02"),
		Cuit:       e.cuit,
		PtoVta:     ptoVta,
		TipoCmp:    tipoCmp,
		NroCmp:     nro,
		Importe:    res.ImporteTotal.InexactFloat64(),
		Moneda:     "PES",
		Ctz:        1,
		TipoDocRec: docTipo,
		NroDocRec:  docNro,
		TipoCodAut: "E",
		CodAut:     parseDigits(res.CAE),
	}
}

// Encode renders the verification URL for the invoice as a PNG QR image at
// medium error correction.
func (e *QREncoder) Encode(comp ComprobanteRequest, cliente *Cliente, res *ResultadoAutorizacion) ([]byte, error) {
	payload := e.Payload(comp, cliente, res)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("qr: serializar payload: %w", err)
	}
	url := qrURLPrefix + base64.StdEncoding.EncodeToString(data)

	png, err := qrcode.Encode(url, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("qr: generar imagen: %w", err)
	}
	return png, nil
}
