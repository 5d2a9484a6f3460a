package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/testutil/fakeapi"
	"github.com/Skotchmaster/storefront/internal/tokenstore"
	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

type fixture struct {
	api     *fakeapi.Server
	client  *shopclient.Client
	store   *tokenstore.MemoryStore
	session *Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := fakeapi.New()
	srv := api.Start(t)
	client := shopclient.NewClient(srv.URL, time.Second)
	store := tokenstore.NewMemoryStore()
	return &fixture{
		api:     api,
		client:  client,
		store:   store,
		session: NewSession(client, tokenstore.Scope(store, "v1")),
	}
}

func (f *fixture) persisted(t *testing.T) string {
	t.Helper()
	tok, err := f.store.Load(context.Background(), "v1")
	require.NoError(t, err)
	return tok
}

func TestReduce(t *testing.T) {
	t.Parallel()
	ann := models.User{ID: "u1", Name: "Ann", Role: models.RoleUser}

	tests := []struct {
		name   string
		state  State
		action Action
		want   State
	}{
		{
			name:   "login",
			state:  InitialState(),
			action: LoginSucceeded{User: ann, Token: "t"},
			want:   State{User: &ann, Token: "t", Authenticated: true},
		},
		{
			name:   "logout",
			state:  State{User: &ann, Token: "t", Authenticated: true, Loading: true},
			action: LoggedOut{},
			want:   State{},
		},
		{
			name:   "loading",
			state:  State{},
			action: LoadingSet{Loading: true},
			want:   State{Loading: true},
		},
		{
			name:   "merge user",
			state:  State{User: &ann, Token: "t", Authenticated: true},
			action: UserUpdated{Patch: models.User{Phone: "555"}},
			want: State{
				User:          &models.User{ID: "u1", Name: "Ann", Role: models.RoleUser, Phone: "555"},
				Token:         "t",
				Authenticated: true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Reduce(tt.state, tt.action))
		})
	}
}

func TestRestoreWithoutToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.True(t, f.session.State().Loading)
	require.NoError(t, f.session.Restore(context.Background()))

	st := f.session.State()
	assert.False(t, st.Authenticated)
	assert.False(t, st.Loading)
	assert.Empty(t, f.api.Requests())
}

func TestRestoreWithValidToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	u, tok := f.api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	require.NoError(t, f.store.Save(context.Background(), "v1", tok))

	require.NoError(t, f.session.Restore(context.Background()))

	st := f.session.State()
	assert.True(t, st.Authenticated)
	assert.Equal(t, u.ID, st.User.ID)
	assert.Equal(t, tok, st.Token)
	assert.Equal(t, tok, f.client.Token())
}

func TestRestoreKeepsTokenFromIdlePurge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := fakeapi.New()
	srv := api.Start(t)
	_, tok := api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	store, err := tokenstore.NewGormStore(db)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "v1", tok))
	require.NoError(t, db.Model(&tokenstore.StoredToken{}).Where("owner = ?", "v1").
		Update("updated_at", time.Now().UTC().Add(-48*time.Hour)).Error)

	session := NewSession(shopclient.NewClient(srv.URL, time.Second), tokenstore.Scope(store, "v1"))
	require.NoError(t, session.Restore(ctx))
	require.True(t, session.Authenticated())

	n, err := store.Purge(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
	kept, err := store.Load(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, tok, kept)
}

func TestRestoreWithRejectedToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	_, tok := f.api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	f.api.Revoke(tok)
	require.NoError(t, f.store.Save(context.Background(), "v1", tok))

	err := f.session.Restore(context.Background())
	require.ErrorIs(t, err, shopclient.ErrUnauthorized)

	assert.False(t, f.session.State().Authenticated)
	assert.False(t, f.session.State().Loading)
	assert.Empty(t, f.persisted(t))
	assert.Empty(t, f.client.Token())
}

func TestRestoreWithExpiredJWT(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, f.store.Save(context.Background(), "v1", expired))

	require.NoError(t, f.session.Restore(context.Background()))

	assert.False(t, f.session.State().Authenticated)
	assert.Empty(t, f.persisted(t))
	assert.Empty(t, f.api.Requests())
}

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	ctx := context.Background()

	var transitions []State
	f.session.Subscribe(func(_ context.Context, _, next State) {
		transitions = append(transitions, next)
	})

	_, err := f.session.Login(ctx, "ann@example.com", "nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", shopclient.Message(err, ""))
	assert.False(t, f.session.Authenticated())
	assert.Empty(t, transitions)

	user, err := f.session.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Authenticated)
	assert.Equal(t, f.session.State().Token, f.persisted(t))
}

func TestLoginValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.session.Login(context.Background(), " ", "x")
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.api.Requests())
}

func TestLoginFallbackMessage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.api.FailNext("POST /api/auth/login", http.StatusInternalServerError, "")

	_, err := f.session.Login(context.Background(), "ann@example.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, "Login failed", shopclient.Message(err, "other"))
}

func TestRegister(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.session.Register(ctx, shopclient.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "123"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.api.Requests())

	user, err := f.session.Register(ctx, shopclient.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, f.session.Authenticated())

	f.session.Logout(ctx)
	_, err = f.session.Register(ctx, shopclient.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "123456"})
	assert.Equal(t, "User already exists", shopclient.Message(err, ""))
}

func TestLogoutIsLocal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	ctx := context.Background()
	_, err := f.session.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	before := len(f.api.Requests())

	f.session.Logout(ctx)

	assert.Len(t, f.api.Requests(), before)
	assert.Equal(t, State{}, f.session.State())
	assert.Empty(t, f.persisted(t))
	assert.Empty(t, f.client.Token())
}

func TestUnauthorizedClearsSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	_, tok := f.api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, "v1", tok))
	require.NoError(t, f.session.Restore(ctx))

	f.api.Revoke(tok)
	_, err := f.client.Cart(ctx)
	require.ErrorIs(t, err, shopclient.ErrUnauthorized)

	assert.False(t, f.session.Authenticated())
	assert.Empty(t, f.persisted(t))
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	ctx := context.Background()

	_, err := f.session.UpdateProfile(ctx, shopclient.ProfileUpdate{Name: "Annie"})
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, f.api.Requests())

	_, err = f.session.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	addr := &models.Address{City: "Springfield"}
	user, err := f.session.UpdateProfile(ctx, shopclient.ProfileUpdate{Name: "Annie", Phone: "555", Address: addr})
	require.NoError(t, err)
	assert.Equal(t, "Annie", user.Name)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, "Springfield", f.session.State().User.Address.City)
}
