package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"facturador/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T) *PDFGenerator {
	t.Helper()
	return NewPDFGenerator(t.TempDir(), "Facturador SA", "Av. Corrientes 1234, CABA", 30712345675)
}

func buildComprobanteEmitido() *model.Comprobante {
	numero := "00003-00000124"
	cae := "74123456789012"
	venc := time.Now().AddDate(0, 0, 10)
	return &model.Comprobante{
		CbteTipo:       11,
		PuntoVenta:     3,
		NumeroOficial:  &numero,
		Fecha:          time.Now(),
		CAE:            &cae,
		CAEVencimiento: &venc,
		ImporteNeto:    decimal.NewFromFloat(1500),
		ImporteTotal:   decimal.NewFromFloat(1500),
		Estado:         "emitido",
		Items: []model.ComprobanteItem{
			{
				Descripcion:    "Harina 000 x 25kg",
				Cantidad:       decimal.NewFromInt(2),
				PrecioUnitario: decimal.NewFromFloat(750),
				Subtotal:       decimal.NewFromFloat(1500),
			},
		},
	}
}

func TestGenerateFacturaPDF_Exitoso(t *testing.T) {
	g := newTestGenerator(t)
	cliente := &model.Cliente{
		RazonSocial:   "Almacén Don Pedro",
		TipoDocumento: "CUIT",
		NroDocumento:  "20301234560",
		Domicilio:     "San Martín 55, Rosario",
	}

	path, err := g.GenerateFacturaPDF(buildComprobanteEmitido(), cliente, nil)

	require.NoError(t, err)
	assert.Equal(t, "factura_00003-00000124.pdf", filepath.Base(path))
	info, statErr := os.Stat(path)
	require.NoError(t, statErr)
	assert.Greater(t, info.Size(), int64(500), "PDF should have real content")
}

func TestGenerateFacturaPDF_SinClienteNiNumero(t *testing.T) {
	g := newTestGenerator(t)
	comp := buildComprobanteEmitido()
	comp.NumeroOficial = nil

	path, err := g.GenerateFacturaPDF(comp, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "factura_s-n.pdf", filepath.Base(path))
}

func TestGenerateRemitoPDF_Exitoso(t *testing.T) {
	g := newTestGenerator(t)
	rem := &model.Remito{
		Numero: 42,
		Fecha:  time.Now(),
		Estado: "emitido",
		Items: []model.RemitoItem{
			{Descripcion: "Harina 000 x 25kg", Cantidad: decimal.NewFromInt(10)},
			{Descripcion: "Azúcar x 1kg", Cantidad: decimal.NewFromInt(24)},
		},
	}
	cliente := &model.Cliente{RazonSocial: "Almacén Don Pedro", Domicilio: "San Martín 55, Rosario"}

	path, err := g.GenerateRemitoPDF(rem, cliente)

	require.NoError(t, err)
	assert.Equal(t, "remito_00000042.pdf", filepath.Base(path))
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestLetraComprobante(t *testing.T) {
	assert.Equal(t, "A", letraComprobante(1))
	assert.Equal(t, "B", letraComprobante(6))
	assert.Equal(t, "C", letraComprobante(11))
	assert.Equal(t, "X", letraComprobante(99))
}
