package credential_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHXZ7/autofloww/internal/credential"
)

type fakeStore struct{ values map[string]string }

func (f fakeStore) Get(_ context.Context, userID, name string) (string, error) {
	return f.values[userID+"/"+name], nil
}

func TestBroker_UserValueWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	store := fakeStore{values: map[string]string{"u1/openai": "user-key"}}
	b := credential.NewBroker(store, "u1")
	assert.Equal(t, "user-key", b.OpenAI(context.Background()))
}

func TestBroker_FallsBackToEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	b := credential.NewBroker(credential.NoStore{}, "u1")
	assert.Equal(t, "env-key", b.OpenAI(context.Background()))
}

func TestBroker_EmptyWhenNeitherSet(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	b := credential.NewBroker(credential.NoStore{}, "")
	assert.Equal(t, "", b.OpenAI(context.Background()))
}

func TestBroker_CachesResolvedValue(t *testing.T) {
	calls := 0
	store := countingStore{fn: func() string { calls++; return "v" }}
	b := credential.NewBroker(store, "u1")
	ctx := context.Background()
	require.Equal(t, "v", b.OpenAI(ctx))
	require.Equal(t, "v", b.OpenAI(ctx))
	assert.Equal(t, 1, calls)
}

type countingStore struct{ fn func() string }

func (c countingStore) Get(context.Context, string, string) (string, error) {
	return c.fn(), nil
}

func TestBroker_Twilio(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "sid")
	t.Setenv("TWILIO_AUTH_TOKEN", "tok")
	t.Setenv("TWILIO_PHONE_NUMBER", "+1555")
	b := credential.NewBroker(credential.NoStore{}, "")
	tw := b.Twilio(context.Background())
	assert.Equal(t, credential.Twilio{SID: "sid", Token: "tok", Phone: "+1555"}, tw)
}
