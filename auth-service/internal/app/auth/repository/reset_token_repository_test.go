package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ResetTokenRepositoryTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	repo      ResetTokenRepository
}

func TestResetTokenRepositorySuite(t *testing.T) {
	suite.Run(t, new(ResetTokenRepositoryTestSuite))
}

func (s *ResetTokenRepositoryTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})
	s.repo = NewResetTokenRepository(s.client)
}

func (s *ResetTokenRepositoryTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *ResetTokenRepositoryTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *ResetTokenRepositoryTestSuite) TestSave_StoresHashWithTTL() {
	ctx := context.Background()
	userID := uuid.New()

	// Act
	err := s.repo.Save(ctx, "deadbeef", userID, 10*time.Minute)

	// Assert
	s.Require().NoError(err)
	value, err := s.miniRedis.Get("password_reset:deadbeef")
	s.Require().NoError(err)
	s.Equal(userID.String(), value)
	s.Equal(10*time.Minute, s.miniRedis.TTL("password_reset:deadbeef"))
}

func (s *ResetTokenRepositoryTestSuite) TestConsume_SingleUse() {
	ctx := context.Background()
	userID := uuid.New()
	s.Require().NoError(s.repo.Save(ctx, "cafe", userID, time.Minute))

	// Act
	first, err1 := s.repo.Consume(ctx, "cafe")
	second, err2 := s.repo.Consume(ctx, "cafe")

	// Assert
	s.NoError(err1)
	s.Equal(userID, first)
	s.ErrorIs(err2, ErrNotFound)
	s.Equal(uuid.Nil, second)
	s.False(s.miniRedis.Exists("password_reset:cafe"))
}

func (s *ResetTokenRepositoryTestSuite) TestConsume_Expired() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Save(ctx, "old", uuid.New(), 10*time.Minute))
	s.miniRedis.FastForward(11 * time.Minute)

	// Act
	_, err := s.repo.Consume(ctx, "old")

	// Assert
	s.ErrorIs(err, ErrNotFound)
}

func (s *ResetTokenRepositoryTestSuite) TestConsume_CorruptedValue() {
	ctx := context.Background()
	s.Require().NoError(s.miniRedis.Set("password_reset:broken", "not-a-uuid"))

	// Act
	_, err := s.repo.Consume(ctx, "broken")

	// Assert
	s.Error(err)
	s.NotErrorIs(err, ErrNotFound)
}
