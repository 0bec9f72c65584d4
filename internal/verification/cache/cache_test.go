package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"donorprofile/internal/profile/models"
	"donorprofile/internal/verification/store"
	"donorprofile/pkg/platform/sentinel"
)

const (
	session = "sess-1"
	uuidA   = "3f2b8c1e-6a4d-4e8b-9c2f-1a2b3c4d5e6f"
	uuidB   = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

type CacheSuite struct {
	suite.Suite
	store *store.InMemoryStore
	now   time.Time
	cache *Cache
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.store = store.NewInMemoryStore(time.Hour * 24)
	s.now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.cache = New(s.store, WithClock(func() time.Time { return s.now }))
}

func (s *CacheSuite) answers() models.AnswerSet {
	return models.AnswerSet{
		UUID:        uuidA,
		FullName:    "Nguyễn Văn A",
		Gender:      models.GenderMale,
		DateOfBirth: "1990-05-15",
		IDNumber:    "012345678901",
		PhoneNumber: "0912345678",
	}
}

func (s *CacheSuite) seed(a models.AnswerSet) {
	raw, err := json.Marshal(a)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Set(context.Background(), session, Key, raw))
}

func (s *CacheSuite) TestWriteStampsCurrentTime() {
	stamped, err := s.cache.Write(context.Background(), session, s.answers())
	s.Require().NoError(err)
	s.Equal(s.now.UnixMilli(), stamped.Timestamp)

	got, err := s.cache.Read(context.Background(), session, uuidA)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(stamped, *got)
}

func (s *CacheSuite) TestWriteOverwrites() {
	first := s.answers()
	_, err := s.cache.Write(context.Background(), session, first)
	s.Require().NoError(err)

	second := s.answers()
	second.UUID = uuidB
	_, err = s.cache.Write(context.Background(), session, second)
	s.Require().NoError(err)

	got, err := s.cache.Read(context.Background(), session, uuidB)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(uuidB, got.UUID)
}

func (s *CacheSuite) TestFreshnessBoundary() {
	cases := []struct {
		name  string
		ageMs int64
		fresh bool
	}{
		{"just written", 0, true},
		{"one ms inside window", FreshnessWindowMs - 1, true},
		{"exactly at window", FreshnessWindowMs, false},
		{"past window", FreshnessWindowMs + 1, false},
		{"a day old", 24 * FreshnessWindowMs, false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			a := s.answers()
			a.Timestamp = s.now.UnixMilli() - tc.ageMs
			s.seed(a)

			got, err := s.cache.Read(context.Background(), session, uuidA)
			s.Require().NoError(err)
			if tc.fresh {
				s.NotNil(got)
				return
			}
			s.Nil(got)
			_, err = s.store.Get(context.Background(), session, Key)
			s.ErrorIs(err, sentinel.ErrNotFound, "expired entry must be removed")
		})
	}
}

func (s *CacheSuite) TestIdentifierMismatchIsAbsentRegardlessOfFreshness() {
	a := s.answers()
	a.Timestamp = s.now.UnixMilli()
	s.seed(a)

	got, err := s.cache.Read(context.Background(), session, uuidB)
	s.Require().NoError(err)
	s.Nil(got)

	_, err = s.store.Get(context.Background(), session, Key)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *CacheSuite) TestIdentifierComparisonIgnoresCase() {
	a := s.answers()
	a.Timestamp = s.now.UnixMilli()
	s.seed(a)

	got, err := s.cache.Read(context.Background(), session, "3F2B8C1E-6A4D-4E8B-9C2F-1A2B3C4D5E6F")
	s.Require().NoError(err)
	s.NotNil(got)
}

func (s *CacheSuite) TestCorruptRecordIsRemoved() {
	s.Require().NoError(s.store.Set(context.Background(), session, Key, []byte("{not json")))

	got, err := s.cache.Read(context.Background(), session, uuidA)
	s.Require().NoError(err)
	s.Nil(got)
	s.Equal(0, s.store.Len())
}

func (s *CacheSuite) TestClear() {
	_, err := s.cache.Write(context.Background(), session, s.answers())
	s.Require().NoError(err)
	s.Require().NoError(s.cache.Clear(context.Background(), session))

	got, err := s.cache.Read(context.Background(), session, uuidA)
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *CacheSuite) TestSessionsAreIsolated() {
	_, err := s.cache.Write(context.Background(), session, s.answers())
	s.Require().NoError(err)

	got, err := s.cache.Read(context.Background(), "sess-2", uuidA)
	s.Require().NoError(err)
	s.Nil(got)
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Set(context.Context, string, string, []byte) error   { return f.err }
func (f failingStore) Delete(context.Context, string, string) error        { return f.err }

func TestCacheStoreFailure(t *testing.T) {
	boom := errors.Join(sentinel.ErrUnavailable, errors.New("connection refused"))
	c := New(failingStore{err: boom})

	got, err := c.Read(context.Background(), session, uuidA)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Nil(t, got)

	_, err = c.Write(context.Background(), session, models.AnswerSet{UUID: uuidA})
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

// corruptStore holds a record the store itself cannot decode.
type corruptStore struct{ deleted []string }

func (c *corruptStore) Get(context.Context, string, string) ([]byte, error) {
	return nil, sentinel.ErrCorrupt
}
func (c *corruptStore) Set(context.Context, string, string, []byte) error { return nil }
func (c *corruptStore) Delete(_ context.Context, sessionID, key string) error {
	c.deleted = append(c.deleted, sessionID+"/"+key)
	return nil
}

func TestCacheStoreCorruptRecord(t *testing.T) {
	st := &corruptStore{}
	c := New(st)

	got, err := c.Read(context.Background(), session, uuidA)
	require.NoError(t, err, "a corrupt record reads as absent")
	assert.Nil(t, got)
	assert.Equal(t, []string{session + "/" + Key}, st.deleted)
}

func TestCacheWithoutSession(t *testing.T) {
	c := New(failingStore{err: errors.New("must not be called")})

	got, err := c.Read(context.Background(), "", uuidA)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Clear(context.Background(), ""))
}
