package app

import (
	"context"
	"testing"
	"time"

	authdomain "viewtube/internal/auth/domain"
	channeldomain "viewtube/internal/channel/domain"
	"viewtube/internal/video/domain"
	"viewtube/pkg/database"
	"viewtube/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockTrendingCache Mock RedisRepository[[]domain.TrendingEntry]
type MockTrendingCache struct {
	mock.Mock
}

func (m *MockTrendingCache) Set(ctx context.Context, key string, value []domain.TrendingEntry, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
func (m *MockTrendingCache) Get(ctx context.Context, key string) ([]domain.TrendingEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.TrendingEntry), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockTrendingCache) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
func (m *MockTrendingCache) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}
func (m *MockTrendingCache) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

type trendingMocks struct {
	counterRepo *MockCounterRepo
	videoRepo   *MockVideoRepo
	userRepo    *MockUserRepo
	channelRepo *MockChannelRepo
	cache       *MockTrendingCache
}

func newTrendingMocks() *trendingMocks {
	return &trendingMocks{
		counterRepo: new(MockCounterRepo),
		videoRepo:   new(MockVideoRepo),
		userRepo:    new(MockUserRepo),
		channelRepo: new(MockChannelRepo),
		cache:       new(MockTrendingCache),
	}
}

func (m *trendingMocks) usecase() TrendingUseCase {
	return NewTrendingUseCase(m.counterRepo, m.videoRepo, m.userRepo, m.channelRepo, m.cache)
}

func TestTrendingUseCase_Trending(t *testing.T) {
	logger.SetNewNop()

	owner := primitive.NewObjectID()
	channel := primitive.NewObjectID()

	makeVideo := func(id primitive.ObjectID, title string) domain.Video {
		return domain.Video{
			ID:         id,
			Title:      title,
			OwnerID:    owner,
			ChannelID:  channel,
			Visibility: domain.VisibilityPublic,
		}
	}

	// **情境 1: 快取命中就不碰資料庫**
	t.Run("快取命中就不碰資料庫", func(t *testing.T) {
		m := newTrendingMocks()
		v := makeVideo(primitive.NewObjectID(), "cached")
		cached := []domain.TrendingEntry{{Video: &v, PeriodViews: 99}}

		m.cache.On("Get", mock.Anything, "trending:7d").Return(cached, nil).Once()

		entries, err := m.usecase().Trending(context.Background(), 7, 0)

		assert.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, int64(99), entries[0].PeriodViews)
		m.counterRepo.AssertNotCalled(t, "TopWindow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	// **情境 2: 快取未命中走彙總並回寫**
	t.Run("快取未命中走彙總並回寫", func(t *testing.T) {
		m := newTrendingMocks()
		first := primitive.NewObjectID()
		second := primitive.NewObjectID()

		m.cache.On("Get", mock.Anything, "trending:7d").Return(nil, database.ErrCacheMiss).Once()
		m.counterRepo.On("TopWindow", mock.Anything, mock.Anything, mock.Anything, int64(20)).
			Return([]domain.RankedVideo{
				{VideoID: first, PeriodViews: 40},
				{VideoID: second, PeriodViews: 10},
			}, nil).Once()
		m.videoRepo.On("PublicByIDs", mock.Anything, []primitive.ObjectID{first, second}).
			Return([]domain.Video{makeVideo(first, "a"), makeVideo(second, "b")}, nil).Once()
		m.userRepo.On("ProfilesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]authdomain.Profile{owner: {ID: owner, Username: "creator"}}, nil).Once()
		m.channelRepo.On("SummariesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]channeldomain.Summary{channel: {ID: channel, Name: "ch"}}, nil).Once()
		m.cache.On("Set", mock.Anything, "trending:7d", mock.Anything, 30*time.Minute).Return(nil).Once()

		entries, err := m.usecase().Trending(context.Background(), 7, 0)

		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		// 名次照彙總結果
		assert.Equal(t, first, entries[0].Video.ID)
		assert.Equal(t, int64(40), entries[0].PeriodViews)
		assert.Equal(t, "creator", entries[0].Creator.Username)
		m.cache.AssertExpectations(t)
	})

	// **情境 3: 天數壓回上限 30 天並用長視窗 TTL**
	t.Run("天數壓回上限", func(t *testing.T) {
		m := newTrendingMocks()

		m.cache.On("Get", mock.Anything, "trending:30d").Return(nil, database.ErrCacheMiss).Once()
		m.counterRepo.On("TopWindow", mock.Anything, mock.Anything, mock.Anything, int64(20)).
			Return([]domain.RankedVideo{}, nil).Once()
		m.cache.On("Set", mock.Anything, "trending:30d", mock.Anything, 30*time.Minute).Return(nil).Once()

		entries, err := m.usecase().Trending(context.Background(), 365, 0)

		assert.NoError(t, err)
		assert.Empty(t, entries)
		m.cache.AssertExpectations(t)
	})

	// **情境 4: 天數壓回下限 1 天**
	t.Run("天數壓回下限", func(t *testing.T) {
		m := newTrendingMocks()

		m.cache.On("Get", mock.Anything, "trending:1d").Return(nil, database.ErrCacheMiss).Once()
		m.counterRepo.On("TopWindow", mock.Anything, mock.Anything, mock.Anything, int64(20)).
			Return([]domain.RankedVideo{}, nil).Once()
		m.cache.On("Set", mock.Anything, "trending:1d", mock.Anything, 15*time.Minute).Return(nil).Once()

		_, err := m.usecase().Trending(context.Background(), 0, 0)

		assert.NoError(t, err)
		m.cache.AssertExpectations(t)
	})

	// **情境 5: redis 掛掉 fail-open 照樣出結果**
	t.Run("redis 掛掉照樣出結果", func(t *testing.T) {
		m := newTrendingMocks()
		id := primitive.NewObjectID()

		m.cache.On("Get", mock.Anything, "trending:7d").Return(nil, assert.AnError).Once()
		m.counterRepo.On("TopWindow", mock.Anything, mock.Anything, mock.Anything, int64(20)).
			Return([]domain.RankedVideo{{VideoID: id, PeriodViews: 5}}, nil).Once()
		m.videoRepo.On("PublicByIDs", mock.Anything, mock.Anything).
			Return([]domain.Video{makeVideo(id, "x")}, nil).Once()
		m.userRepo.On("ProfilesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]authdomain.Profile{}, nil).Once()
		m.channelRepo.On("SummariesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]channeldomain.Summary{}, nil).Once()
		m.cache.On("Set", mock.Anything, "trending:7d", mock.Anything, mock.Anything).
			Return(assert.AnError).Once()

		entries, err := m.usecase().Trending(context.Background(), 7, 0)

		assert.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	// **情境 6: 下架影片從排行中濾掉**
	t.Run("下架影片從排行中濾掉", func(t *testing.T) {
		m := newTrendingMocks()
		visible := primitive.NewObjectID()
		gone := primitive.NewObjectID()

		m.cache.On("Get", mock.Anything, "trending:7d").Return(nil, database.ErrCacheMiss).Once()
		m.counterRepo.On("TopWindow", mock.Anything, mock.Anything, mock.Anything, int64(20)).
			Return([]domain.RankedVideo{
				{VideoID: gone, PeriodViews: 100},
				{VideoID: visible, PeriodViews: 50},
			}, nil).Once()
		// 私人/已刪影片不會出現在 PublicByIDs 的結果裡
		m.videoRepo.On("PublicByIDs", mock.Anything, mock.Anything).
			Return([]domain.Video{makeVideo(visible, "still here")}, nil).Once()
		m.userRepo.On("ProfilesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]authdomain.Profile{}, nil).Once()
		m.channelRepo.On("SummariesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]channeldomain.Summary{}, nil).Once()
		m.cache.On("Set", mock.Anything, "trending:7d", mock.Anything, mock.Anything).Return(nil).Once()

		entries, err := m.usecase().Trending(context.Background(), 7, 0)

		assert.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, visible, entries[0].Video.ID)
	})

	// **情境 7: 彙總視窗含今天與往前 N 天**
	t.Run("彙總視窗含今天與往前 N 天", func(t *testing.T) {
		m := newTrendingMocks()
		now := time.Now().UTC()
		to := now.Format(domain.CounterDateLayout)
		from := now.AddDate(0, 0, -7).Format(domain.CounterDateLayout)

		m.cache.On("Get", mock.Anything, "trending:7d").Return(nil, database.ErrCacheMiss).Once()
		m.counterRepo.On("TopWindow", mock.Anything, from, to, int64(20)).
			Return([]domain.RankedVideo{}, nil).Once()
		m.cache.On("Set", mock.Anything, "trending:7d", mock.Anything, 30*time.Minute).Return(nil).Once()

		_, err := m.usecase().Trending(context.Background(), 7, 0)

		assert.NoError(t, err)
		m.counterRepo.AssertExpectations(t)
	})
}
