package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authdomain "viewtube/internal/auth/domain"
	authrepo "viewtube/internal/auth/repository"
	"viewtube/internal/search/domain"
	"viewtube/internal/search/repository"
	videodomain "viewtube/internal/video/domain"
	errprocess "viewtube/pkg/err"
	"viewtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	storeTimeout = 5 * time.Second

	defaultPageSize int64 = 20
	maxPageSize     int64 = 50

	defaultSuggestionLimit int64 = 10

	// historyCap 每人保留的搜尋紀錄上限
	historyCap = 20
)

// VideoSearcher 公開影片的關鍵字查詢
type VideoSearcher interface {
	SearchPublic(ctx context.Context, keyword string, skip, limit int64) ([]videodomain.Video, int64, error)
}

// SearchUseCase 影片搜尋、搜尋建議與個人搜尋紀錄
type SearchUseCase interface {
	Search(ctx context.Context, callerID, query string, page, limit int64) (*domain.SearchResult, error)
	Suggestions(ctx context.Context, prefix string, limit int64) ([]domain.SearchTerm, error)
	History(ctx context.Context, callerID string) ([]authdomain.SearchEntry, error)
}

type searchUseCase struct {
	videos   VideoSearcher
	terms    repository.SearchTermRepository
	userRepo authrepo.UserRepository
}

// NewSearchUseCase create search use case
func NewSearchUseCase(
	videos VideoSearcher,
	terms repository.SearchTermRepository,
	userRepo authrepo.UserRepository,
) SearchUseCase {
	return &searchUseCase{
		videos:   videos,
		terms:    terms,
		userRepo: userRepo,
	}
}

// Search 關鍵字搜尋公開影片。
// 全站詞計數與個人搜尋紀錄都是附帶更新，失敗不影響搜尋結果
func (s *searchUseCase) Search(ctx context.Context, callerID, query string, page, limit int64) (*domain.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errprocess.Validation("query is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	videos, total, err := s.videos.SearchPublic(ctx, query, (page-1)*limit, limit)
	if err != nil {
		return nil, errprocess.Dependency("failed to search videos", err)
	}

	term := strings.ToLower(query)
	if err := s.terms.IncTerm(ctx, term); err != nil {
		logger.Log.Warn(fmt.Sprintf("搜尋詞計數失敗 term[%s]: %v", term, err))
	}
	if callerID != "" {
		s.recordHistory(ctx, callerID, query)
	}

	return &domain.SearchResult{Items: videos, Total: total, Page: page, Limit: limit}, nil
}

// recordHistory 去重後插到最前面，超過上限截尾
func (s *searchUseCase) recordHistory(ctx context.Context, callerID, query string) {
	userID, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return
	}

	user, err := s.userRepo.FindByUser(ctx, &authdomain.UserQuery{ID: &userID})
	if err != nil {
		logger.Log.Warn(fmt.Sprintf("搜尋紀錄讀取失敗 userID[%s]: %v", callerID, err))
		return
	}

	entries := make([]authdomain.SearchEntry, 0, historyCap)
	entries = append(entries, authdomain.SearchEntry{Term: query, SearchedAt: time.Now()})
	for _, e := range user.SearchHistory {
		if strings.EqualFold(e.Term, query) {
			continue
		}
		entries = append(entries, e)
		if len(entries) == historyCap {
			break
		}
	}

	if err := s.userRepo.SetSearchHistory(ctx, userID, entries); err != nil {
		logger.Log.Warn(fmt.Sprintf("搜尋紀錄寫入失敗 userID[%s]: %v", callerID, err))
	}
}

// Suggestions 熱門搜尋詞，可帶前綴過濾
func (s *searchUseCase) Suggestions(ctx context.Context, prefix string, limit int64) ([]domain.SearchTerm, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if limit < 1 || limit > maxPageSize {
		limit = defaultSuggestionLimit
	}

	terms, err := s.terms.TopByPrefix(ctx, strings.ToLower(strings.TrimSpace(prefix)), limit)
	if err != nil {
		return nil, errprocess.Dependency("failed to load search suggestions", err)
	}
	return terms, nil
}

// History 自己的搜尋紀錄，新到舊
func (s *searchUseCase) History(ctx context.Context, callerID string) ([]authdomain.SearchEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}

	user, err := s.userRepo.FindByUser(ctx, &authdomain.UserQuery{ID: &userID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("user not found")
		}
		return nil, errprocess.Dependency("failed to query user", err)
	}
	return user.SearchHistory, nil
}
