package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"facturador/internal/dto"
	"facturador/internal/model"
	"facturador/internal/repository"
	"facturador/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory RemitoRepository stub ──────────────────────────────────────────

type fakeRemitoRepo struct {
	remitos    map[uuid.UUID]*model.Remito
	nextNumero int64
}

func newFakeRemitoRepo() *fakeRemitoRepo {
	return &fakeRemitoRepo{remitos: make(map[uuid.UUID]*model.Remito)}
}

func (r *fakeRemitoRepo) Create(_ context.Context, rem *model.Remito) error {
	if rem.ID == uuid.Nil {
		rem.ID = uuid.New()
	}
	rem.CreatedAt = time.Now()
	cloned := *rem
	r.remitos[rem.ID] = &cloned
	return nil
}
func (r *fakeRemitoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Remito, error) {
	rem, ok := r.remitos[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *rem
	return &cloned, nil
}
func (r *fakeRemitoRepo) List(_ context.Context, _ dto.RemitoFilter) ([]model.Remito, int64, error) {
	var out []model.Remito
	for _, rem := range r.remitos {
		out = append(out, *rem)
	}
	return out, int64(len(out)), nil
}
func (r *fakeRemitoRepo) Update(_ context.Context, rem *model.Remito) error {
	cloned := *rem
	r.remitos[rem.ID] = &cloned
	return nil
}
func (r *fakeRemitoRepo) NextNumero(_ context.Context) (int64, error) {
	r.nextNumero++
	return r.nextNumero, nil
}

var _ repository.RemitoRepository = (*fakeRemitoRepo)(nil)

// fakeRemitoRenderer pretends to write PDFs.
type fakeRemitoRenderer struct {
	err   error
	calls int
}

func (f *fakeRemitoRenderer) GenerateRemitoPDF(rem *model.Remito, _ *model.Cliente) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "/pdfs/remito_00000001.pdf", nil
}

// ── fixtures ─────────────────────────────────────────────────────────────────

type remitoFixture struct {
	svc      service.RemitoService
	repo     *fakeRemitoRepo
	renderer *fakeRemitoRenderer
	cliente  *model.Cliente
}

func newRemitoFixture(t *testing.T) *remitoFixture {
	t.Helper()
	f := &remitoFixture{
		repo:     newFakeRemitoRepo(),
		renderer: &fakeRemitoRenderer{},
	}
	clientes := newFakeClienteRepo()
	f.cliente = &model.Cliente{RazonSocial: "Almacén Don Pedro", Activo: true}
	require.NoError(t, clientes.Create(context.Background(), f.cliente))
	f.svc = service.NewRemitoService(f.repo, clientes, newFakeArticuloRepo(), f.renderer)
	return f
}

// ── Crear ────────────────────────────────────────────────────────────────────

func TestCrearRemito_NumeraYGeneraPDF(t *testing.T) {
	f := newRemitoFixture(t)

	resp, err := f.svc.Crear(context.Background(), dto.CrearRemitoRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemRemitoRequest{
			{Descripcion: "Harina 000 x 25kg", Cantidad: decimal.NewFromInt(10)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Numero)
	assert.Equal(t, "emitido", resp.Estado)
	assert.Equal(t, 1, f.renderer.calls)

	remID, _ := uuid.Parse(resp.ID)
	stored, err := f.repo.FindByID(context.Background(), remID)
	require.NoError(t, err)
	require.NotNil(t, stored.PDFPath)
}

func TestCrearRemito_NumerosConsecutivos(t *testing.T) {
	f := newRemitoFixture(t)
	req := dto.CrearRemitoRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemRemitoRequest{
			{Descripcion: "Azúcar x 1kg", Cantidad: decimal.NewFromInt(5)},
		},
	}

	first, err := f.svc.Crear(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.Crear(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Numero+1, second.Numero)
}

func TestCrearRemito_PDFFalla_RemitoIgualExiste(t *testing.T) {
	f := newRemitoFixture(t)
	f.renderer.err = errors.New("disk full")

	resp, err := f.svc.Crear(context.Background(), dto.CrearRemitoRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemRemitoRequest{
			{Descripcion: "Harina 000 x 25kg", Cantidad: decimal.NewFromInt(1)},
		},
	})

	require.NoError(t, err, "a rendering failure must not block the remito")
	remID, _ := uuid.Parse(resp.ID)
	stored, _ := f.repo.FindByID(context.Background(), remID)
	assert.Nil(t, stored.PDFPath)
}

func TestCrearRemito_ItemSinDescripcion(t *testing.T) {
	f := newRemitoFixture(t)

	_, err := f.svc.Crear(context.Background(), dto.CrearRemitoRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemRemitoRequest{
			{Cantidad: decimal.NewFromInt(1)},
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "descripción")
}

// ── CambiarEstado ────────────────────────────────────────────────────────────

func TestCambiarEstadoRemito_AEntregado(t *testing.T) {
	f := newRemitoFixture(t)
	resp, err := f.svc.Crear(context.Background(), dto.CrearRemitoRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemRemitoRequest{
			{Descripcion: "Harina 000 x 25kg", Cantidad: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	remID, _ := uuid.Parse(resp.ID)

	updated, err := f.svc.CambiarEstado(context.Background(), remID, "entregado")

	require.NoError(t, err)
	assert.Equal(t, "entregado", updated.Estado)
}

func TestCambiarEstadoRemito_AnuladoEsTerminal(t *testing.T) {
	f := newRemitoFixture(t)
	resp, err := f.svc.Crear(context.Background(), dto.CrearRemitoRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemRemitoRequest{
			{Descripcion: "Harina 000 x 25kg", Cantidad: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	remID, _ := uuid.Parse(resp.ID)

	_, err = f.svc.CambiarEstado(context.Background(), remID, "anulado")
	require.NoError(t, err)

	_, err = f.svc.CambiarEstado(context.Background(), remID, "emitido")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anulado")
}
