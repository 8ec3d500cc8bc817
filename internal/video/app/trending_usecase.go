package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	authrepo "viewtube/internal/auth/repository"
	channelrepo "viewtube/internal/channel/repository"
	"viewtube/internal/video/domain"
	"viewtube/internal/video/repository"
	"viewtube/pkg/database"
	errprocess "viewtube/pkg/err"
	"viewtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	cacheTimeout = 2 * time.Second

	minWindowDays int64 = 1
	maxWindowDays int64 = 30

	defaultTrendingLimit int64 = 20
	maxTrendingLimit     int64 = 50

	shortWindowTTL = 15 * time.Minute
	longWindowTTL  = 30 * time.Minute
)

// TrendingUseCase 熱門排行：每日計數彙總 + redis 快取
type TrendingUseCase interface {
	Trending(ctx context.Context, days, limit int64) ([]domain.TrendingEntry, error)
}

type trendingUseCase struct {
	counterRepo repository.ViewCounterRepository
	videoRepo   repository.VideoRepository
	userRepo    authrepo.UserRepository
	channelRepo channelrepo.ChannelRepository
	cache       database.RedisRepository[[]domain.TrendingEntry]
}

// NewTrendingUseCase create trending use case
func NewTrendingUseCase(
	counterRepo repository.ViewCounterRepository,
	videoRepo repository.VideoRepository,
	userRepo authrepo.UserRepository,
	channelRepo channelrepo.ChannelRepository,
	cache database.RedisRepository[[]domain.TrendingEntry],
) TrendingUseCase {
	return &trendingUseCase{
		counterRepo: counterRepo,
		videoRepo:   videoRepo,
		userRepo:    userRepo,
		channelRepo: channelRepo,
		cache:       cache,
	}
}

// Trending 近 N 天的熱門影片。
// 視窗壓回 [1, 30]，快取 key 用壓回後的天數，短視窗 15 分鐘、長視窗 30 分鐘。
// 快取失效走 fail-open：redis 掛了就直接查資料庫
func (t *trendingUseCase) Trending(ctx context.Context, days, limit int64) ([]domain.TrendingEntry, error) {
	if days < minWindowDays {
		days = minWindowDays
	}
	if days > maxWindowDays {
		days = maxWindowDays
	}
	if limit < 1 {
		limit = defaultTrendingLimit
	}
	if limit > maxTrendingLimit {
		limit = maxTrendingLimit
	}

	cacheKey := fmt.Sprintf("trending:%dd", days)

	cacheCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	entries, err := t.cache.Get(cacheCtx, cacheKey)
	cancel()
	if err == nil {
		if int64(len(entries)) > limit {
			entries = entries[:limit]
		}
		return entries, nil
	}
	if !errors.Is(err, database.ErrCacheMiss) {
		logger.Log.Warn(fmt.Sprintf("熱門快取讀取失敗 key[%s]: %v", cacheKey, err))
	}

	entries, err = t.aggregate(ctx, days, limit)
	if err != nil {
		return nil, err
	}

	// 單日窗口變動快，快取放短一點
	ttl := shortWindowTTL
	if days > 1 {
		ttl = longWindowTTL
	}
	cacheCtx, cancel = context.WithTimeout(ctx, cacheTimeout)
	if err := t.cache.Set(cacheCtx, cacheKey, entries, ttl); err != nil {
		logger.Log.Warn(fmt.Sprintf("熱門快取寫入失敗 key[%s]: %v", cacheKey, err))
	}
	cancel()

	return entries, nil
}

func (t *trendingUseCase) aggregate(ctx context.Context, days, limit int64) ([]domain.TrendingEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	now := time.Now().UTC()
	// 視窗含今天與往前 days 天，兩端都算
	to := now.Format(domain.CounterDateLayout)
	from := now.AddDate(0, 0, -int(days)).Format(domain.CounterDateLayout)

	ranked, err := t.counterRepo.TopWindow(ctx, from, to, limit)
	if err != nil {
		return nil, errprocess.Dependency("failed to aggregate trending views", err)
	}
	if len(ranked) == 0 {
		return []domain.TrendingEntry{}, nil
	}

	videoIDs := make([]primitive.ObjectID, 0, len(ranked))
	for _, r := range ranked {
		videoIDs = append(videoIDs, r.VideoID)
	}
	videos, err := t.videoRepo.PublicByIDs(ctx, videoIDs)
	if err != nil {
		return nil, errprocess.Dependency("failed to load trending videos", err)
	}

	videoByID := make(map[primitive.ObjectID]*domain.Video, len(videos))
	ownerIDs := make([]primitive.ObjectID, 0, len(videos))
	channelIDs := make([]primitive.ObjectID, 0, len(videos))
	for i := range videos {
		v := &videos[i]
		videoByID[v.ID] = v
		ownerIDs = append(ownerIDs, v.OwnerID)
		channelIDs = append(channelIDs, v.ChannelID)
	}

	profiles, err := t.userRepo.ProfilesByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, errprocess.Dependency("failed to load creators", err)
	}
	summaries, err := t.channelRepo.SummariesByIDs(ctx, channelIDs)
	if err != nil {
		return nil, errprocess.Dependency("failed to load channels", err)
	}

	// 照彙總名次走，非公開影片在 join 時被濾掉
	entries := make([]domain.TrendingEntry, 0, len(ranked))
	for _, r := range ranked {
		video, ok := videoByID[r.VideoID]
		if !ok {
			continue
		}

		entry := domain.TrendingEntry{
			Video:          video,
			PeriodViews:    r.PeriodViews,
			LatestViewDate: r.LatestViewDate,
		}
		if p, ok := profiles[video.OwnerID]; ok {
			entry.Creator = domain.Creator{ID: p.ID, Username: p.Username, Avatar: p.Avatar}
		}
		if s, ok := summaries[video.ChannelID]; ok {
			entry.Channel = domain.ChannelCard{ID: s.ID, Name: s.Name, Avatar: s.Avatar}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
