package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"viewtube/internal/library/domain"
	"viewtube/internal/library/repository"
	videodomain "viewtube/internal/video/domain"
	"viewtube/pkg"
	errprocess "viewtube/pkg/err"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	storeTimeout = 5 * time.Second

	defaultPageSize int64 = 20
	maxPageSize     int64 = 50
)

// VideoLookup 清單與紀錄 join 影片用
type VideoLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*videodomain.Video, error)
	PublicByIDs(ctx context.Context, ids []primitive.ObjectID) ([]videodomain.Video, error)
}

// LibraryUseCase 播放清單、稍後觀看與觀看紀錄
type LibraryUseCase interface {
	CreatePlaylist(ctx context.Context, callerID string, req domain.CreatePlaylistReq) (*domain.Playlist, error)
	MyPlaylists(ctx context.Context, callerID string) ([]domain.Playlist, error)
	GetPlaylist(ctx context.Context, playlistID string) (*domain.PlaylistView, error)
	UpdatePlaylist(ctx context.Context, callerID, playlistID string, req domain.UpdatePlaylistReq) (*domain.Playlist, error)
	DeletePlaylist(ctx context.Context, callerID, playlistID string) error
	AddToPlaylist(ctx context.Context, callerID, playlistID, videoID string) error
	RemoveFromPlaylist(ctx context.Context, callerID, playlistID, videoID string) error

	SaveVideo(ctx context.Context, callerID, videoID string) error
	UnsaveVideo(ctx context.Context, callerID, videoID string) error
	SavedVideos(ctx context.Context, callerID string) (*domain.SavedList, error)

	WatchHistory(ctx context.Context, callerID string, page, limit int64) (*domain.HistoryPage, error)
	DeleteHistoryEntry(ctx context.Context, callerID, entryID string) error
	ClearHistory(ctx context.Context, callerID string) (int64, error)
}

type libraryUseCase struct {
	playlists repository.PlaylistRepository
	saved     repository.SavedVideoRepository
	history   repository.WatchHistoryRepository
	videos    VideoLookup
}

// NewLibraryUseCase create library use case
func NewLibraryUseCase(
	playlists repository.PlaylistRepository,
	saved repository.SavedVideoRepository,
	history repository.WatchHistoryRepository,
	videos VideoLookup,
) LibraryUseCase {
	return &libraryUseCase{
		playlists: playlists,
		saved:     saved,
		history:   history,
		videos:    videos,
	}
}

// CreatePlaylist 建立自己的播放清單
func (l *libraryUseCase) CreatePlaylist(ctx context.Context, callerID string, req domain.CreatePlaylistReq) (*domain.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errprocess.Validation("playlist name is required")
	}

	playlist := &domain.Playlist{
		OwnerID:     owner,
		Name:        name,
		Description: req.Description,
		VideoIDs:    []primitive.ObjectID{},
	}
	id, err := l.playlists.Create(ctx, playlist)
	if err != nil {
		return nil, errprocess.Dependency("failed to create playlist", err)
	}
	playlist.ID = id
	return playlist, nil
}

// MyPlaylists 自己的清單
func (l *libraryUseCase) MyPlaylists(ctx context.Context, callerID string) ([]domain.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}

	playlists, err := l.playlists.FindByOwner(ctx, owner)
	if err != nil {
		return nil, errprocess.Dependency("failed to list playlists", err)
	}
	return playlists, nil
}

// GetPlaylist 清單內容，join 時只留公開影片
func (l *libraryUseCase) GetPlaylist(ctx context.Context, playlistID string) (*domain.PlaylistView, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	playlist, err := l.loadPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	view := &domain.PlaylistView{Playlist: *playlist, Videos: []videodomain.Video{}}
	if len(playlist.VideoIDs) == 0 {
		return view, nil
	}

	videos, err := l.videos.PublicByIDs(ctx, playlist.VideoIDs)
	if err != nil {
		return nil, errprocess.Dependency("failed to load playlist videos", err)
	}

	// 照清單順序排，不是查詢回來的順序
	videoByID := make(map[primitive.ObjectID]videodomain.Video, len(videos))
	for _, v := range videos {
		videoByID[v.ID] = v
	}
	for _, id := range playlist.VideoIDs {
		if v, ok := videoByID[id]; ok {
			view.Videos = append(view.Videos, v)
		}
	}
	return view, nil
}

// UpdatePlaylist 僅擁有者可改
func (l *libraryUseCase) UpdatePlaylist(ctx context.Context, callerID, playlistID string, req domain.UpdatePlaylistReq) (*domain.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	playlist, err := l.loadOwnedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, errprocess.Validation("playlist name cannot be empty")
	}

	if err := l.playlists.Update(ctx, playlist.ID, &req); err != nil {
		return nil, errprocess.Dependency("failed to update playlist", err)
	}

	updated, err := l.playlists.GetByID(ctx, playlist.ID)
	if err != nil {
		return nil, errprocess.Dependency("failed to reload playlist", err)
	}
	return updated, nil
}

// DeletePlaylist 僅擁有者可刪
func (l *libraryUseCase) DeletePlaylist(ctx context.Context, callerID, playlistID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	playlist, err := l.loadOwnedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return err
	}

	if err := l.playlists.Delete(ctx, playlist.ID); err != nil {
		return errprocess.Dependency("failed to delete playlist", err)
	}
	return nil
}

// AddToPlaylist 加影片進清單，重複加靠 $addToSet 變 no-op
func (l *libraryUseCase) AddToPlaylist(ctx context.Context, callerID, playlistID, videoID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	playlist, err := l.loadOwnedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return err
	}
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return errprocess.Validation("invalid video id")
	}

	// 已在清單內就直接 no-op
	if pkg.ContainsID(playlist.VideoIDs, vid) {
		return nil
	}

	if _, err := l.videos.GetByID(ctx, vid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errprocess.NotFound("video not found")
		}
		return errprocess.Dependency("failed to query video", err)
	}

	if err := l.playlists.AddVideo(ctx, playlist.ID, vid); err != nil {
		return errprocess.Dependency("failed to add video to playlist", err)
	}
	return nil
}

// RemoveFromPlaylist 從清單移除影片
func (l *libraryUseCase) RemoveFromPlaylist(ctx context.Context, callerID, playlistID, videoID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	playlist, err := l.loadOwnedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return err
	}
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return errprocess.Validation("invalid video id")
	}

	if err := l.playlists.RemoveVideo(ctx, playlist.ID, vid); err != nil {
		return errprocess.Dependency("failed to remove video from playlist", err)
	}
	return nil
}

// SaveVideo 加進稍後觀看，重複收藏回 409
func (l *libraryUseCase) SaveVideo(ctx context.Context, callerID, videoID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, vid, err := parseUserAndVideo(callerID, videoID)
	if err != nil {
		return err
	}

	if _, err := l.videos.GetByID(ctx, vid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errprocess.NotFound("video not found")
		}
		return errprocess.Dependency("failed to query video", err)
	}

	if _, err := l.saved.Create(ctx, &domain.SavedVideo{UserID: user, VideoID: vid}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errprocess.Conflict("video already saved")
		}
		return errprocess.Dependency("failed to save video", err)
	}
	return nil
}

// UnsaveVideo 從稍後觀看移除
func (l *libraryUseCase) UnsaveVideo(ctx context.Context, callerID, videoID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, vid, err := parseUserAndVideo(callerID, videoID)
	if err != nil {
		return err
	}

	if err := l.saved.Delete(ctx, user, vid); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errprocess.NotFound("saved video not found")
		}
		return errprocess.Dependency("failed to unsave video", err)
	}
	return nil
}

// SavedVideos 稍後觀看清單，join 公開影片
func (l *libraryUseCase) SavedVideos(ctx context.Context, callerID string) (*domain.SavedList, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}

	saved, err := l.saved.ListByUser(ctx, user)
	if err != nil {
		return nil, errprocess.Dependency("failed to list saved videos", err)
	}

	videoByID, err := l.joinVideos(ctx, savedVideoIDs(saved))
	if err != nil {
		return nil, err
	}

	items := make([]domain.SavedItem, 0, len(saved))
	for _, s := range saved {
		item := domain.SavedItem{Saved: s}
		if v, ok := videoByID[s.VideoID]; ok {
			item.Video = v
		}
		items = append(items, item)
	}
	return &domain.SavedList{Items: items, Total: int64(len(items))}, nil
}

// WatchHistory 觀看紀錄分頁，被刪掉的影片 Video 為 nil
func (l *libraryUseCase) WatchHistory(ctx context.Context, callerID string, page, limit int64) (*domain.HistoryPage, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
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

	entries, total, err := l.history.ListByUser(ctx, user, (page-1)*limit, limit)
	if err != nil {
		return nil, errprocess.Dependency("failed to list watch history", err)
	}

	ids := make([]primitive.ObjectID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.VideoID)
	}
	videoByID, err := l.joinVideos(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.HistoryItem, 0, len(entries))
	for _, e := range entries {
		item := domain.HistoryItem{Entry: e}
		if v, ok := videoByID[e.VideoID]; ok {
			item.Video = v
		}
		items = append(items, item)
	}
	return &domain.HistoryPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// DeleteHistoryEntry 刪單筆觀看紀錄
func (l *libraryUseCase) DeleteHistoryEntry(ctx context.Context, callerID, entryID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return errprocess.Validation("invalid user id")
	}
	id, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return errprocess.Validation("invalid history entry id")
	}

	if err := l.history.Delete(ctx, user, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errprocess.NotFound("history entry not found")
		}
		return errprocess.Dependency("failed to delete history entry", err)
	}
	return nil
}

// ClearHistory 清空觀看紀錄，回刪除筆數
func (l *libraryUseCase) ClearHistory(ctx context.Context, callerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return 0, errprocess.Validation("invalid user id")
	}

	removed, err := l.history.Clear(ctx, user)
	if err != nil {
		return 0, errprocess.Dependency("failed to clear watch history", err)
	}
	return removed, nil
}

func (l *libraryUseCase) loadPlaylist(ctx context.Context, playlistID string) (*domain.Playlist, error) {
	id, err := primitive.ObjectIDFromHex(playlistID)
	if err != nil {
		return nil, errprocess.Validation("invalid playlist id")
	}

	playlist, err := l.playlists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("playlist not found")
		}
		return nil, errprocess.Dependency("failed to query playlist", err)
	}
	return playlist, nil
}

func (l *libraryUseCase) loadOwnedPlaylist(ctx context.Context, callerID, playlistID string) (*domain.Playlist, error) {
	caller, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}

	playlist, err := l.loadPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != caller {
		return nil, errprocess.Authorization("only the owner can modify this playlist")
	}
	return playlist, nil
}

func (l *libraryUseCase) joinVideos(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*videodomain.Video, error) {
	videoByID := map[primitive.ObjectID]*videodomain.Video{}
	if len(ids) == 0 {
		return videoByID, nil
	}

	videos, err := l.videos.PublicByIDs(ctx, ids)
	if err != nil {
		return nil, errprocess.Dependency("failed to load videos", err)
	}
	for i := range videos {
		videoByID[videos[i].ID] = &videos[i]
	}
	return videoByID, nil
}

func savedVideoIDs(saved []domain.SavedVideo) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(saved))
	for _, s := range saved {
		ids = append(ids, s.VideoID)
	}
	return ids
}

func parseUserAndVideo(callerID, videoID string) (primitive.ObjectID, primitive.ObjectID, error) {
	user, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, errprocess.Validation("invalid user id")
	}
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, errprocess.Validation("invalid video id")
	}
	return user, vid, nil
}
