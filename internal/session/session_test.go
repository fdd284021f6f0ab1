package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"media-market/internal/backend"
	"media-market/internal/backend/mocks"
	"media-market/internal/logging"
	"media-market/internal/models"
)

type fakeUsers struct {
	byID    map[uuid.UUID]*models.User
	created int
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User, _ string) error {
	f.byID[u.ID] = u
	f.created++
	return nil
}

func TestResolve_Anonymous(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentity(ctrl)

	r := NewResolver(identity, newFakeUsers(), logging.Discard())
	user, err := r.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestResolve_KnownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentity(ctrl)
	u := &models.User{ID: uuid.New(), Email: "a@b.c", Role: models.RoleArtist}

	identity.EXPECT().GetSession(gomock.Any(), "tok").
		Return(&backend.AuthSession{UserID: u.ID, Email: u.Email}, nil)

	r := NewResolver(identity, newFakeUsers(u), logging.Discard())
	got, err := r.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestResolve_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentity(ctrl)
	identity.EXPECT().GetSession(gomock.Any(), "bad").Return(nil, backend.ErrInvalidSession)

	r := NewResolver(identity, newFakeUsers(), logging.Discard())
	_, err := r.Resolve(context.Background(), "bad")
	assert.ErrorIs(t, err, backend.ErrInvalidSession)
}

func TestResolve_CreatesMissingRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentity(ctrl)
	id := uuid.New()
	identity.EXPECT().GetSession(gomock.Any(), "tok").
		Return(&backend.AuthSession{UserID: id, Email: "new@b.c"}, nil)

	users := newFakeUsers()
	r := NewResolver(identity, users, logging.Discard())
	got, err := r.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.Equal(t, 1, users.created)
}

func TestResolve_BannedForcesSignOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentity(ctrl)
	u := &models.User{ID: uuid.New(), Banned: true}

	identity.EXPECT().GetSession(gomock.Any(), "tok").Return(&backend.AuthSession{UserID: u.ID}, nil)
	identity.EXPECT().SignOut(gomock.Any(), "tok").Return(nil)

	r := NewResolver(identity, newFakeUsers(u), logging.Discard())
	var events []AuthEvent
	defer r.OnAuthStateChange(func(ev AuthEvent) { events = append(events, ev) })()

	_, err := r.Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrBanned)
	assert.Equal(t, []AuthEvent{{Type: SignedOut, UserID: u.ID}}, events)
}

func TestSignUp_NeverAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentity(ctrl)
	id := uuid.New()

	identity.EXPECT().
		SignUp(gomock.Any(), "new@b.c", "password1", map[string]any{"display_name": "N", "role": "user"}).
		Return(&backend.AuthSession{UserID: id, AccessToken: "tok"}, nil)

	r := NewResolver(identity, newFakeUsers(), logging.Discard())
	_, user, err := r.SignUp(context.Background(), " New@B.c ", "password1", "N", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "new@b.c", user.Email)
}

func TestSignIn_EmitsEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentity(ctrl)
	u := &models.User{ID: uuid.New(), Email: "a@b.c"}

	identity.EXPECT().SignIn(gomock.Any(), "a@b.c", "pw").
		Return(&backend.AuthSession{UserID: u.ID, AccessToken: "tok"}, nil)

	r := NewResolver(identity, newFakeUsers(u), logging.Discard())
	var got []AuthEvent
	unsubscribe := r.OnAuthStateChange(func(ev AuthEvent) { got = append(got, ev) })

	_, _, err := r.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	unsubscribe()
	r.Evict(u.ID)

	assert.Equal(t, []AuthEvent{{Type: SignedIn, UserID: u.ID}}, got)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentity(ctrl)
	identity.EXPECT().SignIn(gomock.Any(), "a@b.c", "pw").Return(nil, backend.ErrInvalidCredentials)

	r := NewResolver(identity, newFakeUsers(), logging.Discard())
	_, _, err := r.SignIn(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, backend.ErrInvalidCredentials)
}

func TestCurrentUser(t *testing.T) {
	_, ok := CurrentUser(context.Background())
	assert.False(t, ok)

	_, ok = CurrentUser(WithUser(context.Background(), nil))
	assert.False(t, ok)

	u := &models.User{ID: uuid.New()}
	got, ok := CurrentUser(WithUser(context.Background(), u))
	assert.True(t, ok)
	assert.Same(t, u, got)
}
