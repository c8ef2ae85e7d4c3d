package cache

import (
	"context"
	"testing"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RedisCategoryCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	cache     *RedisCategoryCache
}

func TestRedisCategoryCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCategoryCacheTestSuite))
}

func (s *RedisCategoryCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})
	s.cache = NewRedisCategoryCache(s.client)
}

func (s *RedisCategoryCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RedisCategoryCacheTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func sampleCategories() []entity.CategoryWithCount {
	return []entity.CategoryWithCount{
		{
			Category: entity.Category{
				ID:       primitive.NewObjectID(),
				Name:     "Кофе",
				Slug:     "kofe",
				IsActive: true,
			},
			ProductCount: 12,
		},
		{
			Category: entity.Category{
				ID:       primitive.NewObjectID(),
				Name:     "Чай",
				Slug:     "chay",
				IsActive: true,
			},
			ProductCount: 0,
		},
	}
}

func (s *RedisCategoryCacheTestSuite) TestGetCategories_Miss() {
	result, err := s.cache.GetCategories(context.Background())

	s.NoError(err)
	s.Nil(result)
}

func (s *RedisCategoryCacheTestSuite) TestSetThenGet() {
	ctx := context.Background()
	categories := sampleCategories()

	// Arrange
	s.Require().NoError(s.cache.SetCategories(ctx, categories, time.Hour))

	// Act
	result, err := s.cache.GetCategories(ctx)

	// Assert
	s.NoError(err)
	s.Require().Len(result, 2)
	s.Equal("kofe", result[0].Slug)
	s.Equal(int64(12), result[0].ProductCount)
	s.Equal(categories[1].ID, result[1].ID)
}

func (s *RedisCategoryCacheTestSuite) TestSetCategories_AppliesTTL() {
	ctx := context.Background()

	s.Require().NoError(s.cache.SetCategories(ctx, sampleCategories(), 10*time.Minute))

	s.Equal(10*time.Minute, s.miniRedis.TTL(categoriesCacheKey))

	s.miniRedis.FastForward(11 * time.Minute)

	result, err := s.cache.GetCategories(ctx)
	s.NoError(err)
	s.Nil(result)
}

func (s *RedisCategoryCacheTestSuite) TestDeleteCategories() {
	ctx := context.Background()
	s.Require().NoError(s.cache.SetCategories(ctx, sampleCategories(), time.Hour))

	s.NoError(s.cache.DeleteCategories(ctx))

	s.False(s.miniRedis.Exists(categoriesCacheKey))
}

func (s *RedisCategoryCacheTestSuite) TestGetCategories_CorruptedValue() {
	s.Require().NoError(s.miniRedis.Set(categoriesCacheKey, "not-json"))

	result, err := s.cache.GetCategories(context.Background())

	s.Error(err)
	s.Nil(result)
}
