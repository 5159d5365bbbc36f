package service_test

import (
	"context"
	"errors"
	"testing"

	"facturador/internal/config"
	"facturador/internal/dto"
	"facturador/internal/model"
	"facturador/internal/repository"
	"facturador/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── In-memory UsuarioRepository stub ─────────────────────────────────────────

type fakeUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newFakeUsuarioRepo() *fakeUsuarioRepo {
	return &fakeUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *fakeUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existing := range r.usuarios {
		if existing.Username == u.Username {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *fakeUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return u, nil
}

func (r *fakeUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = false
	}
	return nil
}

func (r *fakeUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Activo = true
	}
	return nil
}

var _ repository.UsuarioRepository = (*fakeUsuarioRepo)(nil)

// ── helpers ──────────────────────────────────────────────────────────────────

func newAuthFixture(t *testing.T) (service.AuthService, *fakeUsuarioRepo) {
	t.Helper()
	repo := newFakeUsuarioRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret-for-auth-tests",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return service.NewAuthService(repo, cfg), repo
}

func seedUsuario(t *testing.T, repo *fakeUsuarioRepo, username, password, rol string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.Usuario{
		Username:     username,
		Nombre:       "Usuario de Prueba",
		PasswordHash: string(hash),
		Rol:          rol,
		Activo:       true,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

// ── Login / Refresh ──────────────────────────────────────────────────────────

func TestLogin_Exitoso(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "lucia", "secreto-largo", "administrador")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "lucia", Password: "secreto-largo"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "lucia", resp.User.Username)
	assert.Equal(t, "administrador", resp.User.Rol)
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "lucia", "secreto-largo", "operador")

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "lucia", Password: "otra-cosa"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "credenciales invalidas")
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	svc, repo := newAuthFixture(t)
	u := seedUsuario(t, repo, "lucia", "secreto-largo", "operador")
	require.NoError(t, repo.SoftDelete(context.Background(), u.ID))

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "lucia", Password: "secreto-largo"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "credenciales invalidas")
}

func TestRefresh_ConTokenDeLogin(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "lucia", "secreto-largo", "operador")

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "lucia", Password: "secreto-largo"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "lucia", refreshed.User.Username)
}

func TestRefresh_TokenInvalido(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")

	require.Error(t, err)
}

func TestRefresh_UsuarioDesactivadoDespuesDelLogin(t *testing.T) {
	svc, repo := newAuthFixture(t)
	u := seedUsuario(t, repo, "lucia", "secreto-largo", "operador")

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "lucia", Password: "secreto-largo"})
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(context.Background(), u.ID))

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	require.Error(t, err)
}

// ── Gestión de usuarios ──────────────────────────────────────────────────────

func TestCrearUsuario_HasheaPassword(t *testing.T) {
	svc, repo := newAuthFixture(t)

	resp, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "marcos",
		Nombre:   "Marcos Díaz",
		Password: "password-segura",
		Rol:      "operador",
	})

	require.NoError(t, err)
	assert.Equal(t, "marcos", resp.Username)
	assert.True(t, resp.Activo)

	stored, err := repo.FindByUsername(context.Background(), "marcos")
	require.NoError(t, err)
	assert.NotEqual(t, "password-segura", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password-segura")))
}

func TestCrearUsuario_UsernameDuplicado(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "marcos", "password-segura", "operador")

	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "marcos",
		Nombre:   "Otro Marcos",
		Password: "password-segura",
		Rol:      "operador",
	})

	require.Error(t, err)
}

func TestListarUsuarios_FiltraInactivos(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "activa", "password-segura", "operador")
	inactivo := seedUsuario(t, repo, "inactivo", "password-segura", "operador")
	require.NoError(t, repo.SoftDelete(context.Background(), inactivo.ID))

	activos, err := svc.ListarUsuarios(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, activos, 1)

	todos, err := svc.ListarUsuarios(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestActualizarUsuario_CambiaRol(t *testing.T) {
	svc, repo := newAuthFixture(t)
	u := seedUsuario(t, repo, "lucia", "secreto-largo", "operador")

	resp, err := svc.ActualizarUsuario(context.Background(), u.ID, dto.ActualizarUsuarioRequest{Rol: "administrador"})

	require.NoError(t, err)
	assert.Equal(t, "administrador", resp.Rol)
}
