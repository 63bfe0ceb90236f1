package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipcam/shipcam/internal/model"
	"github.com/shipcam/shipcam/internal/store"
)

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	sess := NewSession(st, nil)

	_, err := sess.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	s, err := sess.Begin(ctx, testCategories, testForm, t0)
	require.NoError(t, err)
	_, err = sess.Begin(ctx, testCategories, testForm, t0)
	assert.ErrorIs(t, err, ErrSessionActive)

	s, _ = ChooseConversion(s, false)
	s, _, _ = AddPhotos(ctx, s, &fakeAnnotator{}, files("1.jpg", "2.jpg"))
	require.NoError(t, sess.Save(ctx, s))

	loaded, err := sess.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.SessionID, loaded.SessionID)
	assert.Equal(t, 1, loaded.Step)
	assert.Equal(t, model.SlotSkipped, loaded.Slot("conversion_frame").State)
	assert.Equal(t, []string{"1.jpg", "2.jpg"}, names(loaded.Slot("box")))
	assert.Equal(t, model.SlotUnset, loaded.Slot("label").State)
}

func TestSessionAbandonLeavesNoRecords(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	sess := NewSession(st, nil)

	s, err := sess.Begin(ctx, testCategories, testForm, t0)
	require.NoError(t, err)
	s = Advance(Advance(Advance(s)))
	require.NoError(t, sess.Save(ctx, s))

	require.NoError(t, sess.Abandon(ctx))
	_, err = sess.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	all, err := st.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSessionCommit(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	sess := NewSession(st, nil)

	s, err := sess.Begin(ctx, testCategories, testForm, t0)
	require.NoError(t, err)

	_, err = sess.Commit(ctx, s, st, t0)
	assert.ErrorIs(t, err, ErrNotCompleted)
	_, err = sess.Load(ctx)
	require.NoError(t, err, "failed commit keeps the session")

	s, _ = ChooseConversion(s, true)
	s, _, _ = AddPhotos(ctx, s, &fakeAnnotator{}, files("frame.jpg"))
	s = Advance(Advance(Advance(s)))

	r, err := sess.Commit(ctx, s, st, t0)
	require.NoError(t, err)

	got, err := st.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"frame.jpg"}, names(got.Photos["conversion_frame"]))

	_, err = sess.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	top, err := st.TopValues(ctx, model.SuggestCustomer, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME"}, top)
}

func TestSessionLoadCorrupt(t *testing.T) {
	ctx := context.Background()
	st := newSQLiteStore(t)
	require.NoError(t, st.PutSetting(ctx, SessionKey, "{broken"))

	_, err := NewSession(st, nil).Load(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoSession))
}

// stickySettings stores values but cannot delete them.
type stickySettings struct {
	data map[string]string
}

func (m *stickySettings) GetSetting(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *stickySettings) PutSetting(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *stickySettings) DeleteSetting(_ context.Context, key string) error {
	return model.NewStorageError("delete setting "+key, errors.New("database is locked"))
}

func TestSessionCommitTwiceWhenClearFails(t *testing.T) {
	ctx := context.Background()
	sess := NewSession(&stickySettings{data: map[string]string{}}, nil)
	saver := &memSaver{}

	s, err := sess.Begin(ctx, testCategories, testForm, t0)
	require.NoError(t, err)
	s = Advance(Advance(Advance(s)))

	r, err := sess.Commit(ctx, s, saver, t0)
	require.ErrorIs(t, err, ErrNotCleared)
	assert.Equal(t, int64(1), r.ID)

	loaded, err := sess.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.SavedRecord)

	_, err = sess.Commit(ctx, loaded, saver, t0)
	assert.ErrorIs(t, err, ErrAlreadySaved)
	assert.Len(t, saver.records, 1, "retry must not store a second record")
}
