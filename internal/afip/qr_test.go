package afip

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultadoAprobado() *ResultadoAutorizacion {
	return &ResultadoAutorizacion{
		Aprobado:       true,
		CbteTipo:       CbteTipoFacturaA,
		Numero:         123,
		NumeroOficial:  "00001-00000123",
		CAE:            "12345678901234",
		CAEVencimiento: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ImporteNeto:    decimal.NewFromInt(1000),
		ImporteIVA:     decimal.NewFromInt(210),
		ImporteTotal:   decimal.NewFromInt(1210),
	}
}

func TestEncode_Idempotente(t *testing.T) {
	enc := NewQREncoder(20111111112, CbteTipoFacturaC)
	comp := comprobanteDePrueba()
	cliente := &Cliente{TipoDocumento: "CUIT", NroDocumento: "30-70000000-7"}

	a, err := enc.Encode(comp, cliente, resultadoAprobado())
	require.NoError(t, err)
	b, err := enc.Encode(comp, cliente, resultadoAprobado())
	require.NoError(t, err)

	assert.Equal(t, a, b, "entradas idénticas deben producir bytes idénticos")
	assert.NotEmpty(t, a)
}

func TestPayload_CamposFiscales(t *testing.T) {
	enc := NewQREncoder(20111111112, CbteTipoFacturaC)
	cliente := &Cliente{TipoDocumento: "CUIT", NroDocumento: "30-70000000-7"}

	p := enc.Payload(comprobanteDePrueba(), cliente, resultadoAprobado())

	assert.Equal(t, 1, p.Ver)
	assert.Equal(t, "2025-05-12", p.Fecha)
	assert.Equal(t, int64(20111111112), p.Cuit)
	assert.Equal(t, 1, p.PtoVta)
	assert.Equal(t, CbteTipoFacturaA, p.TipoCmp)
	assert.Equal(t, int64(123), p.NroCmp)
	assert.Equal(t, 1210.0, p.Importe)
	assert.Equal(t, "PES", p.Moneda)
	assert.Equal(t, 1.0, p.Ctz)
	assert.Equal(t, DocTipoCUIT, p.TipoDocRec)
	assert.Equal(t, int64(30700000007), p.NroDocRec)
	assert.Equal(t, "E", p.TipoCodAut)
	assert.Equal(t, int64(12345678901234), p.CodAut)
}

func TestPayload_DocumentoMalformadoDegradaACero(t *testing.T) {
	enc := NewQREncoder(20111111112, CbteTipoFacturaC)
	cliente := &Cliente{TipoDocumento: "CUIT", NroDocumento: "3X-ABC-7"}

	p := enc.Payload(comprobanteDePrueba(), cliente, resultadoAprobado())

	assert.Equal(t, int64(0), p.NroDocRec, "un documento no numérico rinde 0, no panic")
}

func TestPayload_ClienteSinRegistrarUsaDefault(t *testing.T) {
	enc := NewQREncoder(20111111112, CbteTipoFacturaC)
	res := resultadoAprobado()
	res.CbteTipo = 0 // sin clasificar

	p := enc.Payload(comprobanteDePrueba(), nil, res)

	assert.Equal(t, CbteTipoFacturaC, p.TipoCmp, "mismo default configurado que usa la facturación")
	assert.Equal(t, DocTipoConsumidorFinal, p.TipoDocRec)
	assert.Equal(t, int64(0), p.NroDocRec)
}

func TestEncode_PayloadViajaEnLaURL(t *testing.T) {
	enc := NewQREncoder(20111111112, CbteTipoFacturaC)
	p := enc.Payload(comprobanteDePrueba(), nil, resultadoAprobado())

	data, err := json.Marshal(p)
	require.NoError(t, err)

	url := qrURLPrefix + base64.StdEncoding.EncodeToString(data)
	require.True(t, strings.HasPrefix(url, "https://www.afip.gob.ar/fe/qr/?p="))

	// El payload debe ser decodificable de vuelta al mismo JSON
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, qrURLPrefix))
	require.NoError(t, err)
	var back QRPayload
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, p, back)
}
