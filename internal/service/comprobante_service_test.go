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
	"facturador/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory repository stubs ───────────────────────────────────────────────

type fakeClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newFakeClienteRepo() *fakeClienteRepo {
	return &fakeClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *fakeClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}
func (r *fakeClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return c, nil
}
func (r *fakeClienteRepo) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	return nil, 0, nil
}
func (r *fakeClienteRepo) Update(_ context.Context, _ *model.Cliente) error { return nil }
func (r *fakeClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.clientes[id]; ok {
		c.Activo = false
	}
	return nil
}
func (r *fakeClienteRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if c, ok := r.clientes[id]; ok {
		c.Activo = true
	}
	return nil
}

var _ repository.ClienteRepository = (*fakeClienteRepo)(nil)

type fakeArticuloRepo struct {
	articulos map[uuid.UUID]*model.Articulo
}

func newFakeArticuloRepo() *fakeArticuloRepo {
	return &fakeArticuloRepo{articulos: make(map[uuid.UUID]*model.Articulo)}
}

func (r *fakeArticuloRepo) Create(_ context.Context, a *model.Articulo) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.articulos[a.ID] = a
	return nil
}
func (r *fakeArticuloRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Articulo, error) {
	a, ok := r.articulos[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return a, nil
}
func (r *fakeArticuloRepo) FindByCodigo(_ context.Context, codigo string) (*model.Articulo, error) {
	for _, a := range r.articulos {
		if a.Codigo == codigo {
			return a, nil
		}
	}
	return nil, errors.New("record not found")
}
func (r *fakeArticuloRepo) List(_ context.Context, _ dto.ArticuloFilter) ([]model.Articulo, int64, error) {
	return nil, 0, nil
}
func (r *fakeArticuloRepo) Update(_ context.Context, _ *model.Articulo) error  { return nil }
func (r *fakeArticuloRepo) SoftDelete(_ context.Context, _ uuid.UUID) error    { return nil }
func (r *fakeArticuloRepo) Reactivar(_ context.Context, _ uuid.UUID) error     { return nil }

var _ repository.ArticuloRepository = (*fakeArticuloRepo)(nil)

type fakeComprobanteRepo struct {
	comprobantes map[uuid.UUID]*model.Comprobante
}

func newFakeComprobanteRepo() *fakeComprobanteRepo {
	return &fakeComprobanteRepo{comprobantes: make(map[uuid.UUID]*model.Comprobante)}
}

func (r *fakeComprobanteRepo) Create(_ context.Context, c *model.Comprobante) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	cloned := *c
	r.comprobantes[c.ID] = &cloned
	return nil
}
func (r *fakeComprobanteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Comprobante, error) {
	c, ok := r.comprobantes[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cloned := *c
	return &cloned, nil
}
func (r *fakeComprobanteRepo) List(_ context.Context, _ dto.ComprobanteFilter) ([]model.Comprobante, int64, error) {
	var out []model.Comprobante
	for _, c := range r.comprobantes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}
func (r *fakeComprobanteRepo) Update(_ context.Context, c *model.Comprobante) error {
	cloned := *c
	r.comprobantes[c.ID] = &cloned
	return nil
}
func (r *fakeComprobanteRepo) ListPendingRetries(_ context.Context, _ time.Time, _ int) ([]model.Comprobante, error) {
	return nil, nil
}

var _ repository.ComprobanteRepository = (*fakeComprobanteRepo)(nil)

// fakeEncolador records issuance jobs instead of touching Redis.
type fakeEncolador struct {
	jobs []worker.FacturacionJobPayload
	err  error
}

func (f *fakeEncolador) EnqueueFacturacion(_ context.Context, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, payload.(worker.FacturacionJobPayload))
	return nil
}

var _ service.FacturacionEncolador = (*fakeEncolador)(nil)

// ── helpers ──────────────────────────────────────────────────────────────────

type comprobanteFixture struct {
	svc      service.ComprobanteService
	repo     *fakeComprobanteRepo
	clientes *fakeClienteRepo
	arts     *fakeArticuloRepo
	queue    *fakeEncolador
	cliente  *model.Cliente
}

func newComprobanteFixture(t *testing.T) *comprobanteFixture {
	t.Helper()
	f := &comprobanteFixture{
		repo:     newFakeComprobanteRepo(),
		clientes: newFakeClienteRepo(),
		arts:     newFakeArticuloRepo(),
		queue:    &fakeEncolador{},
	}
	f.cliente = &model.Cliente{
		RazonSocial:   "Almacén Don Pedro",
		CondicionIVA:  "monotributo",
		TipoDocumento: "CUIT",
		NroDocumento:  "20301234560",
		Activo:        true,
	}
	require.NoError(t, f.clientes.Create(context.Background(), f.cliente))
	f.svc = service.NewComprobanteService(f.repo, f.clientes, f.arts, f.queue, 3)
	return f
}

func precio(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// ── Crear ────────────────────────────────────────────────────────────────────

func TestCrearComprobante_QuedaPendienteYEncolado(t *testing.T) {
	f := newComprobanteFixture(t)

	resp, err := f.svc.Crear(context.Background(), dto.CrearComprobanteRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemComprobanteRequest{
			{Descripcion: "Flete zona norte", Cantidad: decimal.NewFromInt(2), PrecioUnitario: precio(750)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "pendiente", resp.Estado)

	compID, err := uuid.Parse(resp.ComprobanteID)
	require.NoError(t, err)
	stored, err := f.repo.FindByID(context.Background(), compID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.PuntoVenta)
	assert.True(t, decimal.NewFromFloat(1500).Equal(stored.ImporteNeto))
	assert.Nil(t, stored.CAE, "the CAE only ever comes from the worker")

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, resp.ComprobanteID, f.queue.jobs[0].ComprobanteID)
}

func TestCrearComprobante_TomaPrecioDelArticulo(t *testing.T) {
	f := newComprobanteFixture(t)
	art := &model.Articulo{
		Codigo:         "HAR-025",
		Descripcion:    "Harina 000 x 25kg",
		PrecioUnitario: decimal.NewFromFloat(980.50),
		Activo:         true,
	}
	require.NoError(t, f.arts.Create(context.Background(), art))
	artID := art.ID.String()

	resp, err := f.svc.Crear(context.Background(), dto.CrearComprobanteRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemComprobanteRequest{
			{ArticuloID: &artID, Cantidad: decimal.NewFromInt(3)},
		},
	})

	require.NoError(t, err)
	compID, _ := uuid.Parse(resp.ComprobanteID)
	stored, err := f.repo.FindByID(context.Background(), compID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Harina 000 x 25kg", stored.Items[0].Descripcion)
	assert.True(t, decimal.NewFromFloat(980.50).Equal(stored.Items[0].PrecioUnitario))
	assert.True(t, decimal.NewFromFloat(2941.50).Equal(stored.Items[0].Subtotal))
}

func TestCrearComprobante_PrecioExplicitoPisaElDeLista(t *testing.T) {
	f := newComprobanteFixture(t)
	art := &model.Articulo{
		Codigo:         "HAR-025",
		Descripcion:    "Harina 000 x 25kg",
		PrecioUnitario: decimal.NewFromFloat(980.50),
		Activo:         true,
	}
	require.NoError(t, f.arts.Create(context.Background(), art))
	artID := art.ID.String()

	resp, err := f.svc.Crear(context.Background(), dto.CrearComprobanteRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemComprobanteRequest{
			{ArticuloID: &artID, Cantidad: decimal.NewFromInt(1), PrecioUnitario: precio(900)},
		},
	})

	require.NoError(t, err)
	compID, _ := uuid.Parse(resp.ComprobanteID)
	stored, _ := f.repo.FindByID(context.Background(), compID)
	assert.True(t, decimal.NewFromFloat(900).Equal(stored.Items[0].PrecioUnitario))
}

func TestCrearComprobante_ClienteInactivo(t *testing.T) {
	f := newComprobanteFixture(t)
	require.NoError(t, f.clientes.SoftDelete(context.Background(), f.cliente.ID))

	_, err := f.svc.Crear(context.Background(), dto.CrearComprobanteRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemComprobanteRequest{
			{Descripcion: "Flete", Cantidad: decimal.NewFromInt(1), PrecioUnitario: precio(100)},
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactivo")
	assert.Empty(t, f.queue.jobs)
}

func TestCrearComprobante_ItemSinPrecioNiArticulo(t *testing.T) {
	f := newComprobanteFixture(t)

	_, err := f.svc.Crear(context.Background(), dto.CrearComprobanteRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemComprobanteRequest{
			{Descripcion: "Flete", Cantidad: decimal.NewFromInt(1)},
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "precio unitario")
}

func TestCrearComprobante_CantidadInvalida(t *testing.T) {
	f := newComprobanteFixture(t)

	_, err := f.svc.Crear(context.Background(), dto.CrearComprobanteRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemComprobanteRequest{
			{Descripcion: "Flete", Cantidad: decimal.Zero, PrecioUnitario: precio(100)},
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cantidad")
}

func TestCrearComprobante_EncoladoFalla(t *testing.T) {
	f := newComprobanteFixture(t)
	f.queue.err = errors.New("redis down")

	_, err := f.svc.Crear(context.Background(), dto.CrearComprobanteRequest{
		ClienteID: f.cliente.ID.String(),
		Items: []dto.ItemComprobanteRequest{
			{Descripcion: "Flete", Cantidad: decimal.NewFromInt(1), PrecioUnitario: precio(100)},
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "encolar")
}

// ── Reintentar ───────────────────────────────────────────────────────────────

func TestReintentar_DesdeError(t *testing.T) {
	f := newComprobanteFixture(t)
	lastErr := "wsaa: timeout"
	retryAt := time.Now().Add(time.Minute)
	comp := &model.Comprobante{
		ClienteID:   f.cliente.ID,
		Estado:      "error",
		RetryCount:  3,
		LastError:   &lastErr,
		NextRetryAt: &retryAt,
	}
	require.NoError(t, f.repo.Create(context.Background(), comp))

	resp, err := f.svc.Reintentar(context.Background(), comp.ID)

	require.NoError(t, err)
	assert.Equal(t, "pendiente", resp.Estado)
	stored, _ := f.repo.FindByID(context.Background(), comp.ID)
	assert.Nil(t, stored.NextRetryAt)
	assert.Nil(t, stored.LastError)
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, comp.ID.String(), f.queue.jobs[0].ComprobanteID)
}

func TestReintentar_EmitidoNoSePuede(t *testing.T) {
	f := newComprobanteFixture(t)
	comp := &model.Comprobante{ClienteID: f.cliente.ID, Estado: "emitido"}
	require.NoError(t, f.repo.Create(context.Background(), comp))

	_, err := f.svc.Reintentar(context.Background(), comp.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "emitido")
	assert.Empty(t, f.queue.jobs)
}

// ── ObtenerPDFPath ───────────────────────────────────────────────────────────

func TestObtenerPDFPath_NoDisponible(t *testing.T) {
	f := newComprobanteFixture(t)
	comp := &model.Comprobante{ClienteID: f.cliente.ID, Estado: "pendiente"}
	require.NoError(t, f.repo.Create(context.Background(), comp))

	_, err := f.svc.ObtenerPDFPath(context.Background(), comp.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PDF no disponible")
}

func TestObtenerPDFPath_Disponible(t *testing.T) {
	f := newComprobanteFixture(t)
	path := "/pdfs/factura_00003-00000124.pdf"
	comp := &model.Comprobante{ClienteID: f.cliente.ID, Estado: "emitido", PDFPath: &path}
	require.NoError(t, f.repo.Create(context.Background(), comp))

	got, err := f.svc.ObtenerPDFPath(context.Background(), comp.ID)

	require.NoError(t, err)
	assert.Equal(t, path, got)
}
