package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/models"
)

// ==========================
// RedisStore against miniredis
// ==========================

func newMiniredisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "", ttl), mr
}

func TestRedisStore_LoadUnknownReturnsGreeting(t *testing.T) {
	store, _ := newMiniredisStore(t, time.Hour)

	data, err := store.Load(context.Background(), "new-session")
	require.NoError(t, err)
	assert.Equal(t, "new-session", data.SessionID)
	assert.Equal(t, models.StepGreeting, data.Step)
	assert.Empty(t, data.AskedFields)
	assert.False(t, data.ConsentGiven)
}

func TestRedisStore_SaveLoadRoundTrip(t *testing.T) {
	store, mr := newMiniredisStore(t, time.Hour)
	ctx := context.Background()

	data := models.NewSession("s1", time.Now().UTC())
	data.Step = models.StepQuestioning
	data.ConsentGiven = true
	data.Profile.Region = models.StringPtr("서울")
	data.MarkAsked(models.FieldRegion)

	require.NoError(t, store.Save(ctx, "s1", data))
	assert.True(t, mr.Exists(DefaultKeyPrefix+"s1"))
	assert.Equal(t, time.Hour, mr.TTL(DefaultKeyPrefix+"s1"))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepQuestioning, loaded.Step)
	assert.True(t, loaded.ConsentGiven)
	require.NotNil(t, loaded.Profile.Region)
	assert.Equal(t, "서울", *loaded.Profile.Region)
	assert.Equal(t, []string{models.FieldRegion}, loaded.AskedFields)
}

func TestRedisStore_ExpiredSessionStartsOver(t *testing.T) {
	store, mr := newMiniredisStore(t, time.Minute)
	ctx := context.Background()

	data := models.NewSession("s2", time.Now().UTC())
	data.Step = models.StepComplete
	require.NoError(t, store.Save(ctx, "s2", data))

	mr.FastForward(2 * time.Minute)

	loaded, err := store.Load(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, models.StepGreeting, loaded.Step)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	store, mr := newMiniredisStore(t, 0)
	require.NoError(t, mr.Set(DefaultKeyPrefix+"bad", "{not json"))

	_, err := store.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionDecodeFailed))

	require.NoError(t, mr.Set(DefaultKeyPrefix+"bad", `{"step":"dancing"}`))
	_, err = store.Load(context.Background(), "bad")
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionDecodeFailed))
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := newMiniredisStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "gone", models.NewSession("gone", time.Now())))
	require.NoError(t, store.Delete(ctx, "gone"))
	assert.False(t, mr.Exists(DefaultKeyPrefix+"gone"))
}

// ==========================
// RedisStore failures via redismock
// ==========================

func TestRedisStore_ConnectionErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "p:", time.Hour)
	ctx := context.Background()

	mock.ExpectGet("p:s1").SetErr(fmt.Errorf("connection refused"))
	_, err := store.Load(ctx, "s1")
	require.Error(t, err)

	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSessionStoreUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)

	mock.Regexp().ExpectSet("p:s1", `.*`, time.Hour).SetErr(fmt.Errorf("READONLY"))
	err = store.Save(ctx, "s1", models.NewSession("s1", time.Now()))
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionStoreUnavailable))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// MemoryStore
// ==========================

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data, err := store.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, models.StepGreeting, data.Step)
	assert.Equal(t, 0, store.Len())

	data.ConsentGiven = true
	require.NoError(t, store.Save(ctx, "m1", data))

	// mutation after save must not leak into the store
	data.Step = models.StepComplete

	loaded, err := store.Load(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, loaded.ConsentGiven)
	assert.Equal(t, models.StepGreeting, loaded.Step)

	require.NoError(t, store.Delete(ctx, "m1"))
	assert.Equal(t, 0, store.Len())
}
