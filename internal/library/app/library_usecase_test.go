package app

import (
	"context"
	"testing"

	"viewtube/internal/library/domain"
	videodomain "viewtube/internal/video/domain"
	errprocess "viewtube/pkg/err"
	"viewtube/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MockPlaylistRepo Mock PlaylistRepository
type MockPlaylistRepo struct {
	mock.Mock
}

func (m *MockPlaylistRepo) Create(ctx context.Context, p *domain.Playlist) (primitive.ObjectID, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}
func (m *MockPlaylistRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Playlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Playlist), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockPlaylistRepo) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Playlist, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Playlist), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockPlaylistRepo) Update(ctx context.Context, id primitive.ObjectID, req *domain.UpdatePlaylistReq) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}
func (m *MockPlaylistRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPlaylistRepo) AddVideo(ctx context.Context, id, videoID primitive.ObjectID) error {
	args := m.Called(ctx, id, videoID)
	return args.Error(0)
}
func (m *MockPlaylistRepo) RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) error {
	args := m.Called(ctx, id, videoID)
	return args.Error(0)
}
func (m *MockPlaylistRepo) RemoveVideoEverywhere(ctx context.Context, videoID primitive.ObjectID) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}
func (m *MockPlaylistRepo) RemoveVideosEverywhere(ctx context.Context, videoIDs []primitive.ObjectID) error {
	args := m.Called(ctx, videoIDs)
	return args.Error(0)
}

// MockSavedRepo Mock SavedVideoRepository
type MockSavedRepo struct {
	mock.Mock
}

func (m *MockSavedRepo) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockSavedRepo) Create(ctx context.Context, s *domain.SavedVideo) (primitive.ObjectID, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}
func (m *MockSavedRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.SavedVideo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.SavedVideo), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockSavedRepo) Delete(ctx context.Context, userID, videoID primitive.ObjectID) error {
	args := m.Called(ctx, userID, videoID)
	return args.Error(0)
}
func (m *MockSavedRepo) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}
func (m *MockSavedRepo) DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error {
	args := m.Called(ctx, videoIDs)
	return args.Error(0)
}

// MockHistoryRepo Mock WatchHistoryRepository
type MockHistoryRepo struct {
	mock.Mock
}

func (m *MockHistoryRepo) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockHistoryRepo) Upsert(ctx context.Context, userID, videoID primitive.ObjectID) error {
	args := m.Called(ctx, userID, videoID)
	return args.Error(0)
}
func (m *MockHistoryRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]videodomain.WatchHistoryEntry, int64, error) {
	args := m.Called(ctx, userID, skip, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]videodomain.WatchHistoryEntry), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}
func (m *MockHistoryRepo) Delete(ctx context.Context, userID, entryID primitive.ObjectID) error {
	args := m.Called(ctx, userID, entryID)
	return args.Error(0)
}
func (m *MockHistoryRepo) Clear(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockHistoryRepo) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}
func (m *MockHistoryRepo) DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error {
	args := m.Called(ctx, videoIDs)
	return args.Error(0)
}

// MockVideoLookup Mock VideoLookup
type MockVideoLookup struct {
	mock.Mock
}

func (m *MockVideoLookup) GetByID(ctx context.Context, id primitive.ObjectID) (*videodomain.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*videodomain.Video), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockVideoLookup) PublicByIDs(ctx context.Context, ids []primitive.ObjectID) ([]videodomain.Video, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]videodomain.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

type libraryMocks struct {
	playlists *MockPlaylistRepo
	saved     *MockSavedRepo
	history   *MockHistoryRepo
	videos    *MockVideoLookup
}

func newLibraryMocks() *libraryMocks {
	return &libraryMocks{
		playlists: new(MockPlaylistRepo),
		saved:     new(MockSavedRepo),
		history:   new(MockHistoryRepo),
		videos:    new(MockVideoLookup),
	}
}

func (m *libraryMocks) usecase() LibraryUseCase {
	return NewLibraryUseCase(m.playlists, m.saved, m.history, m.videos)
}

func TestLibraryUseCase_Playlists(t *testing.T) {
	logger.SetNewNop()

	owner := primitive.NewObjectID()
	playlistID := primitive.NewObjectID()
	videoID := primitive.NewObjectID()

	// **情境 1: 建立清單**
	t.Run("建立清單", func(t *testing.T) {
		m := newLibraryMocks()

		m.playlists.On("Create", mock.Anything, mock.Anything).Return(playlistID, nil).Once()

		playlist, err := m.usecase().CreatePlaylist(context.Background(), owner.Hex(),
			domain.CreatePlaylistReq{Name: "  favorites  "})

		assert.NoError(t, err)
		assert.Equal(t, playlistID, playlist.ID)
		assert.Equal(t, "favorites", playlist.Name)
	})

	// **情境 2: 清單名稱必填**
	t.Run("清單名稱必填", func(t *testing.T) {
		m := newLibraryMocks()

		_, err := m.usecase().CreatePlaylist(context.Background(), owner.Hex(),
			domain.CreatePlaylistReq{Name: "   "})

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindValidation, errprocess.KindOf(err))
	})

	// **情境 3: 清單內容照加入順序且濾掉非公開影片**
	t.Run("清單內容照加入順序", func(t *testing.T) {
		m := newLibraryMocks()
		first := primitive.NewObjectID()
		second := primitive.NewObjectID()
		gone := primitive.NewObjectID()

		m.playlists.On("GetByID", mock.Anything, playlistID).
			Return(&domain.Playlist{ID: playlistID, OwnerID: owner,
				VideoIDs: []primitive.ObjectID{first, gone, second}}, nil).Once()
		// 查詢回來的順序故意反過來
		m.videos.On("PublicByIDs", mock.Anything, []primitive.ObjectID{first, gone, second}).
			Return([]videodomain.Video{{ID: second, Title: "b"}, {ID: first, Title: "a"}}, nil).Once()

		view, err := m.usecase().GetPlaylist(context.Background(), playlistID.Hex())

		assert.NoError(t, err)
		assert.Len(t, view.Videos, 2)
		assert.Equal(t, first, view.Videos[0].ID)
		assert.Equal(t, second, view.Videos[1].ID)
	})

	// **情境 4: 非擁有者不可加影片**
	t.Run("非擁有者不可加影片", func(t *testing.T) {
		m := newLibraryMocks()

		m.playlists.On("GetByID", mock.Anything, playlistID).
			Return(&domain.Playlist{ID: playlistID, OwnerID: primitive.NewObjectID()}, nil).Once()

		err := m.usecase().AddToPlaylist(context.Background(), owner.Hex(), playlistID.Hex(), videoID.Hex())

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindAuthorization, errprocess.KindOf(err))
		m.playlists.AssertNotCalled(t, "AddVideo", mock.Anything, mock.Anything, mock.Anything)
	})

	// **情境 5: 加不存在的影片**
	t.Run("加不存在的影片", func(t *testing.T) {
		m := newLibraryMocks()

		m.playlists.On("GetByID", mock.Anything, playlistID).
			Return(&domain.Playlist{ID: playlistID, OwnerID: owner}, nil).Once()
		m.videos.On("GetByID", mock.Anything, videoID).Return(nil, mongo.ErrNoDocuments).Once()

		err := m.usecase().AddToPlaylist(context.Background(), owner.Hex(), playlistID.Hex(), videoID.Hex())

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindNotFound, errprocess.KindOf(err))
	})

	// **情境 6: 影片已在清單內，直接 no-op**
	t.Run("影片已在清單內直接成功", func(t *testing.T) {
		m := newLibraryMocks()

		m.playlists.On("GetByID", mock.Anything, playlistID).
			Return(&domain.Playlist{ID: playlistID, OwnerID: owner,
				VideoIDs: []primitive.ObjectID{videoID}}, nil).Once()

		err := m.usecase().AddToPlaylist(context.Background(), owner.Hex(), playlistID.Hex(), videoID.Hex())

		assert.NoError(t, err)
		m.videos.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		m.playlists.AssertNotCalled(t, "AddVideo", mock.Anything, mock.Anything, mock.Anything)
	})

	// **情境 7: 擁有者刪清單**
	t.Run("擁有者刪清單", func(t *testing.T) {
		m := newLibraryMocks()

		m.playlists.On("GetByID", mock.Anything, playlistID).
			Return(&domain.Playlist{ID: playlistID, OwnerID: owner}, nil).Once()
		m.playlists.On("Delete", mock.Anything, playlistID).Return(nil).Once()

		err := m.usecase().DeletePlaylist(context.Background(), owner.Hex(), playlistID.Hex())

		assert.NoError(t, err)
		m.playlists.AssertExpectations(t)
	})
}

func TestLibraryUseCase_SavedVideos(t *testing.T) {
	logger.SetNewNop()

	user := primitive.NewObjectID()
	videoID := primitive.NewObjectID()

	// **情境 1: 收藏成功**
	t.Run("收藏成功", func(t *testing.T) {
		m := newLibraryMocks()

		m.videos.On("GetByID", mock.Anything, videoID).
			Return(&videodomain.Video{ID: videoID}, nil).Once()
		m.saved.On("Create", mock.Anything, mock.Anything).
			Return(primitive.NewObjectID(), nil).Once()

		err := m.usecase().SaveVideo(context.Background(), user.Hex(), videoID.Hex())

		assert.NoError(t, err)
	})

	// **情境 2: 重複收藏回 Conflict**
	t.Run("重複收藏回 Conflict", func(t *testing.T) {
		m := newLibraryMocks()
		dupErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

		m.videos.On("GetByID", mock.Anything, videoID).
			Return(&videodomain.Video{ID: videoID}, nil).Once()
		m.saved.On("Create", mock.Anything, mock.Anything).
			Return(primitive.NilObjectID, dupErr).Once()

		err := m.usecase().SaveVideo(context.Background(), user.Hex(), videoID.Hex())

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindConflict, errprocess.KindOf(err))
		assert.Equal(t, "video already saved", errprocess.MessageOf(err))
	})

	// **情境 3: 取消不存在的收藏**
	t.Run("取消不存在的收藏", func(t *testing.T) {
		m := newLibraryMocks()

		m.saved.On("Delete", mock.Anything, user, videoID).Return(mongo.ErrNoDocuments).Once()

		err := m.usecase().UnsaveVideo(context.Background(), user.Hex(), videoID.Hex())

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindNotFound, errprocess.KindOf(err))
	})

	// **情境 4: 收藏清單 join 影片**
	t.Run("收藏清單 join 影片", func(t *testing.T) {
		m := newLibraryMocks()

		m.saved.On("ListByUser", mock.Anything, user).
			Return([]domain.SavedVideo{{UserID: user, VideoID: videoID}}, nil).Once()
		m.videos.On("PublicByIDs", mock.Anything, []primitive.ObjectID{videoID}).
			Return([]videodomain.Video{{ID: videoID, Title: "saved one"}}, nil).Once()

		list, err := m.usecase().SavedVideos(context.Background(), user.Hex())

		assert.NoError(t, err)
		assert.Equal(t, int64(1), list.Total)
		assert.Equal(t, "saved one", list.Items[0].Video.Title)
	})
}

func TestLibraryUseCase_WatchHistory(t *testing.T) {
	logger.SetNewNop()

	user := primitive.NewObjectID()
	videoID := primitive.NewObjectID()
	entryID := primitive.NewObjectID()

	// **情境 1: 紀錄分頁，被刪掉的影片為 nil**
	t.Run("被刪掉的影片為 nil", func(t *testing.T) {
		m := newLibraryMocks()
		deleted := primitive.NewObjectID()
		entries := []videodomain.WatchHistoryEntry{
			{ID: entryID, UserID: user, VideoID: videoID},
			{ID: primitive.NewObjectID(), UserID: user, VideoID: deleted},
		}

		m.history.On("ListByUser", mock.Anything, user, int64(0), int64(20)).
			Return(entries, int64(2), nil).Once()
		m.videos.On("PublicByIDs", mock.Anything, []primitive.ObjectID{videoID, deleted}).
			Return([]videodomain.Video{{ID: videoID, Title: "alive"}}, nil).Once()

		page, err := m.usecase().WatchHistory(context.Background(), user.Hex(), 1, 20)

		assert.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, "alive", page.Items[0].Video.Title)
		assert.Nil(t, page.Items[1].Video)
	})

	// **情境 2: 清空紀錄回筆數**
	t.Run("清空紀錄回筆數", func(t *testing.T) {
		m := newLibraryMocks()

		m.history.On("Clear", mock.Anything, user).Return(int64(7), nil).Once()

		removed, err := m.usecase().ClearHistory(context.Background(), user.Hex())

		assert.NoError(t, err)
		assert.Equal(t, int64(7), removed)
	})

	// **情境 3: 刪不存在的紀錄**
	t.Run("刪不存在的紀錄", func(t *testing.T) {
		m := newLibraryMocks()

		m.history.On("Delete", mock.Anything, user, entryID).Return(mongo.ErrNoDocuments).Once()

		err := m.usecase().DeleteHistoryEntry(context.Background(), user.Hex(), entryID.Hex())

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindNotFound, errprocess.KindOf(err))
	})
}
