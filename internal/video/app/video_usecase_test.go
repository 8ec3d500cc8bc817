package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	authdomain "viewtube/internal/auth/domain"
	channeldomain "viewtube/internal/channel/domain"
	"viewtube/internal/video/domain"
	errprocess "viewtube/pkg/err"
	"viewtube/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MockVideoRepo Mock VideoRepository
type MockVideoRepo struct {
	mock.Mock
}

func (m *MockVideoRepo) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockVideoRepo) Create(ctx context.Context, v *domain.Video) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}
func (m *MockVideoRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Video), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockVideoRepo) Update(ctx context.Context, id primitive.ObjectID, req *domain.UpdateVideoReq) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}
func (m *MockVideoRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockVideoRepo) IncViews(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockVideoRepo) ApplyReaction(ctx context.Context, videoID, userID primitive.ObjectID, ops domain.ReactionOps) error {
	args := m.Called(ctx, videoID, userID, ops)
	return args.Error(0)
}
func (m *MockVideoRepo) PublicByChannel(ctx context.Context, channelID primitive.ObjectID) ([]domain.Video, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Video), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockVideoRepo) PublicByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Video, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Video), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockVideoRepo) DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) != nil {
		return args.Get(0).([]primitive.ObjectID), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockVideoRepo) SearchPublic(ctx context.Context, keyword string, skip, limit int64) ([]domain.Video, int64, error) {
	args := m.Called(ctx, keyword, skip, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Video), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}
func (m *MockVideoRepo) SuggestionsByTags(ctx context.Context, tags []string, exclude primitive.ObjectID, limit int64) ([]domain.Video, error) {
	args := m.Called(ctx, tags, exclude, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCounterRepo Mock ViewCounterRepository
type MockCounterRepo struct {
	mock.Mock
}

func (m *MockCounterRepo) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockCounterRepo) IncDaily(ctx context.Context, videoID primitive.ObjectID, date string) error {
	args := m.Called(ctx, videoID, date)
	return args.Error(0)
}
func (m *MockCounterRepo) TopWindow(ctx context.Context, from, to string, limit int64) ([]domain.RankedVideo, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.RankedVideo), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockCounterRepo) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}
func (m *MockCounterRepo) DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error {
	args := m.Called(ctx, videoIDs)
	return args.Error(0)
}

// MockUserRepo Mock auth repository.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUserRepo) CreateUser(ctx context.Context, user *authdomain.User) (primitive.ObjectID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}
func (m *MockUserRepo) FindByUser(ctx context.Context, q *authdomain.UserQuery) (*authdomain.User, error) {
	args := m.Called(ctx, q)
	if args.Get(0) != nil {
		return args.Get(0).(*authdomain.User), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockUserRepo) ProfilesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]authdomain.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).(map[primitive.ObjectID]authdomain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockUserRepo) AddSubscription(ctx context.Context, userID, channelID primitive.ObjectID) error {
	args := m.Called(ctx, userID, channelID)
	return args.Error(0)
}
func (m *MockUserRepo) RemoveSubscription(ctx context.Context, userID, channelID primitive.ObjectID) error {
	args := m.Called(ctx, userID, channelID)
	return args.Error(0)
}
func (m *MockUserRepo) AddLikedVideo(ctx context.Context, userID, videoID primitive.ObjectID) error {
	args := m.Called(ctx, userID, videoID)
	return args.Error(0)
}
func (m *MockUserRepo) RemoveLikedVideo(ctx context.Context, userID, videoID primitive.ObjectID) error {
	args := m.Called(ctx, userID, videoID)
	return args.Error(0)
}
func (m *MockUserRepo) SetSearchHistory(ctx context.Context, userID primitive.ObjectID, entries []authdomain.SearchEntry) error {
	args := m.Called(ctx, userID, entries)
	return args.Error(0)
}

// MockChannelRepo Mock channel repository.ChannelRepository
type MockChannelRepo struct {
	mock.Mock
}

func (m *MockChannelRepo) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockChannelRepo) Create(ctx context.Context, ch *channeldomain.Channel) (primitive.ObjectID, error) {
	args := m.Called(ctx, ch)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}
func (m *MockChannelRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*channeldomain.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*channeldomain.Channel), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockChannelRepo) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]channeldomain.Channel, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) != nil {
		return args.Get(0).([]channeldomain.Channel), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockChannelRepo) Update(ctx context.Context, id primitive.ObjectID, req *channeldomain.UpdateChannelReq) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}
func (m *MockChannelRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockChannelRepo) IncSubscriberCount(ctx context.Context, id primitive.ObjectID, delta int64) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}
func (m *MockChannelRepo) IncVideoCount(ctx context.Context, id primitive.ObjectID, delta int64) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}
func (m *MockChannelRepo) SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]channeldomain.Summary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).(map[primitive.ObjectID]channeldomain.Summary), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockHistory Mock HistoryRecorder
type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Upsert(ctx context.Context, userID, videoID primitive.ObjectID) error {
	args := m.Called(ctx, userID, videoID)
	return args.Error(0)
}
func (m *MockHistory) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}

// MockSessions Mock SessionStore
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Create(ctx context.Context, s *domain.WatchSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockSessions) StatsByVideo(ctx context.Context, videoID primitive.ObjectID) (*domain.WatchStats, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.WatchStats), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockSessions) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}

// MockPlaylists Mock PlaylistCleaner
type MockPlaylists struct {
	mock.Mock
}

func (m *MockPlaylists) RemoveVideoEverywhere(ctx context.Context, videoID primitive.ObjectID) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}

// MockSaved Mock SavedCleaner
type MockSaved struct {
	mock.Mock
}

func (m *MockSaved) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	args := m.Called(ctx, videoID)
	return args.Error(0)
}

// MockComments Mock CommentPurger
type MockComments struct {
	mock.Mock
}

func (m *MockComments) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMinio Mock database.MinIOClientRepo
type MockMinio struct {
	mock.Mock
}

func (m *MockMinio) UploadFile(ctx context.Context, objectName, filePath, contentType string) error {
	args := m.Called(ctx, objectName, filePath, contentType)
	return args.Error(0)
}
func (m *MockMinio) UploadStream(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, objectName, reader, size, contentType)
	return args.Error(0)
}
func (m *MockMinio) PresignGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}
func (m *MockMinio) PublicURL(objectName string) string {
	args := m.Called(objectName)
	return args.String(0)
}

// MockKafka Mock database.KafkaRepo
type MockKafka struct {
	mock.Mock
}

func (m *MockKafka) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

// MockRabbit Mock database.RabbitRepo
type MockRabbit struct {
	mock.Mock
}

func (m *MockRabbit) GetRabbit() *amqp.Channel {
	args := m.Called()
	if args.Get(0) != nil {
		return args.Get(0).(*amqp.Channel)
	}
	return nil
}
func (m *MockRabbit) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

// MockTxRunner 直接執行 fn，不包交易
type MockTxRunner struct{}

func (MockTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type videoMocks struct {
	videoRepo   *MockVideoRepo
	counterRepo *MockCounterRepo
	userRepo    *MockUserRepo
	channelRepo *MockChannelRepo
	history     *MockHistory
	sessions    *MockSessions
	playlists   *MockPlaylists
	saved       *MockSaved
	comments    *MockComments
	minio       *MockMinio
	kafkaRepo   *MockKafka
	rabbit      *MockRabbit
}

func newVideoMocks() *videoMocks {
	return &videoMocks{
		videoRepo:   new(MockVideoRepo),
		counterRepo: new(MockCounterRepo),
		userRepo:    new(MockUserRepo),
		channelRepo: new(MockChannelRepo),
		history:     new(MockHistory),
		sessions:    new(MockSessions),
		playlists:   new(MockPlaylists),
		saved:       new(MockSaved),
		comments:    new(MockComments),
		minio:       new(MockMinio),
		kafkaRepo:   new(MockKafka),
		rabbit:      new(MockRabbit),
	}
}

func (m *videoMocks) usecase() VideoUseCase {
	return NewVideoUseCase(
		m.videoRepo, m.counterRepo, m.userRepo, m.channelRepo,
		m.history, m.sessions, m.playlists, m.saved, m.comments,
		m.minio, m.kafkaRepo, m.rabbit, MockTxRunner{},
	)
}

func TestVideoUseCase_GetVideo(t *testing.T) {
	logger.SetNewNop()

	videoID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	channel := primitive.NewObjectID()
	viewer := primitive.NewObjectID()

	publicVideo := func() *domain.Video {
		return &domain.Video{
			ID:         videoID,
			Title:      "a video",
			OwnerID:    owner,
			ChannelID:  channel,
			Visibility: domain.VisibilityPublic,
		}
	}

	// **情境 1: 登入者觀看，觀看數/當日計數/觀看紀錄都有寫**
	t.Run("登入者觀看記錄齊全", func(t *testing.T) {
		m := newVideoMocks()
		date := time.Now().UTC().Format(domain.CounterDateLayout)

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(publicVideo(), nil).Once()
		m.videoRepo.On("IncViews", mock.Anything, videoID).Return(nil).Once()
		m.counterRepo.On("IncDaily", mock.Anything, videoID, date).Return(nil).Once()
		m.history.On("Upsert", mock.Anything, viewer, videoID).Return(nil).Once()
		m.kafkaRepo.On("WriteMessages", mock.Anything, mock.Anything).Return(nil).Once()
		m.userRepo.On("ProfilesByIDs", mock.Anything, []primitive.ObjectID{owner}).
			Return(map[primitive.ObjectID]authdomain.Profile{owner: {ID: owner, Username: "creator"}}, nil).Once()
		m.channelRepo.On("SummariesByIDs", mock.Anything, []primitive.ObjectID{channel}).
			Return(map[primitive.ObjectID]channeldomain.Summary{channel: {ID: channel, Name: "ch"}}, nil).Once()

		detail, err := m.usecase().GetVideo(context.Background(), videoID.Hex(), viewer.Hex())

		assert.NoError(t, err)
		assert.Equal(t, "creator", detail.Creator.Username)
		assert.Equal(t, "ch", detail.Channel.Name)
		m.videoRepo.AssertExpectations(t)
		m.counterRepo.AssertExpectations(t)
		m.history.AssertExpectations(t)
	})

	// **情境 2: 匿名觀看不寫觀看紀錄**
	t.Run("匿名觀看不寫觀看紀錄", func(t *testing.T) {
		m := newVideoMocks()

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(publicVideo(), nil).Once()
		m.videoRepo.On("IncViews", mock.Anything, videoID).Return(nil).Once()
		m.counterRepo.On("IncDaily", mock.Anything, videoID, mock.Anything).Return(nil).Once()
		m.kafkaRepo.On("WriteMessages", mock.Anything, mock.Anything).Return(nil).Once()
		m.userRepo.On("ProfilesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]authdomain.Profile{}, nil).Once()
		m.channelRepo.On("SummariesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]channeldomain.Summary{}, nil).Once()

		_, err := m.usecase().GetVideo(context.Background(), videoID.Hex(), "")

		assert.NoError(t, err)
		m.history.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})

	// **情境 3: 私人影片對非擁有者隱藏**
	t.Run("私人影片對非擁有者隱藏", func(t *testing.T) {
		m := newVideoMocks()
		private := publicVideo()
		private.Visibility = domain.VisibilityPrivate

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(private, nil).Once()

		_, err := m.usecase().GetVideo(context.Background(), videoID.Hex(), viewer.Hex())

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindNotFound, errprocess.KindOf(err))
		m.videoRepo.AssertNotCalled(t, "IncViews", mock.Anything, videoID)
	})

	// **情境 4: 私人影片擁有者可看**
	t.Run("私人影片擁有者可看", func(t *testing.T) {
		m := newVideoMocks()
		private := publicVideo()
		private.Visibility = domain.VisibilityPrivate

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(private, nil).Once()
		m.videoRepo.On("IncViews", mock.Anything, videoID).Return(nil).Once()
		m.counterRepo.On("IncDaily", mock.Anything, videoID, mock.Anything).Return(nil).Once()
		m.history.On("Upsert", mock.Anything, owner, videoID).Return(nil).Once()
		m.kafkaRepo.On("WriteMessages", mock.Anything, mock.Anything).Return(nil).Once()
		m.userRepo.On("ProfilesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]authdomain.Profile{}, nil).Once()
		m.channelRepo.On("SummariesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]channeldomain.Summary{}, nil).Once()

		_, err := m.usecase().GetVideo(context.Background(), videoID.Hex(), owner.Hex())

		assert.NoError(t, err)
	})

	// **情境 5: kafka 掛了不影響播放**
	t.Run("kafka 掛了不影響播放", func(t *testing.T) {
		m := newVideoMocks()

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(publicVideo(), nil).Once()
		m.videoRepo.On("IncViews", mock.Anything, videoID).Return(nil).Once()
		m.counterRepo.On("IncDaily", mock.Anything, videoID, mock.Anything).Return(nil).Once()
		m.kafkaRepo.On("WriteMessages", mock.Anything, mock.Anything).
			Return(assert.AnError).Once()
		m.userRepo.On("ProfilesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]authdomain.Profile{}, nil).Once()
		m.channelRepo.On("SummariesByIDs", mock.Anything, mock.Anything).
			Return(map[primitive.ObjectID]channeldomain.Summary{}, nil).Once()

		_, err := m.usecase().GetVideo(context.Background(), videoID.Hex(), "")

		assert.NoError(t, err)
	})
}

func TestVideoUseCase_UploadVideo(t *testing.T) {
	logger.SetNewNop()

	owner := primitive.NewObjectID()
	channel := primitive.NewObjectID()

	// **情境 1: 成功上傳**
	t.Run("成功上傳", func(t *testing.T) {
		m := newVideoMocks()

		tmpDir := t.TempDir()
		origCreateDir, origCreateFile := createDir, createFile
		defer func() { createDir, createFile = origCreateDir, origCreateFile }()
		createDir = func(path string) error { return nil }
		createFile = func(name string) (*os.File, error) {
			return os.Create(filepath.Join(tmpDir, filepath.Base(name)))
		}

		m.channelRepo.On("GetByID", mock.Anything, channel).
			Return(&channeldomain.Channel{ID: channel, OwnerID: owner}, nil).Once()
		m.minio.On("UploadFile", mock.Anything, mock.Anything, mock.Anything, "video/mp4").
			Return(nil).Once()
		m.minio.On("PublicURL", mock.Anything).Return("http://minio/videos/x.mp4").Once()
		m.videoRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		m.channelRepo.On("IncVideoCount", mock.Anything, channel, int64(1)).Return(nil).Once()
		m.rabbit.On("Publish", "", ProcessingQueue, false, false, mock.Anything).Return(nil).Once()

		video, err := m.usecase().UploadVideo(context.Background(), owner.Hex(), &UploadInput{
			Req: domain.UploadVideoReq{
				Title:     "my video",
				ChannelID: channel.Hex(),
			},
			File:     bytes.NewReader([]byte("fake video bytes")),
			FileName: "x.mp4",
		})

		assert.NoError(t, err)
		assert.Equal(t, "my video", video.Title)
		assert.Equal(t, domain.VisibilityPublic, video.Visibility)
		assert.NotEmpty(t, video.VideoURL)
		m.minio.AssertExpectations(t)
		m.videoRepo.AssertExpectations(t)
		m.rabbit.AssertExpectations(t)
	})

	// **情境 2: 不掛頻道也能上傳，影片直接屬於使用者**
	t.Run("不掛頻道也能上傳", func(t *testing.T) {
		m := newVideoMocks()

		tmpDir := t.TempDir()
		origCreateDir, origCreateFile := createDir, createFile
		defer func() { createDir, createFile = origCreateDir, origCreateFile }()
		createDir = func(path string) error { return nil }
		createFile = func(name string) (*os.File, error) {
			return os.Create(filepath.Join(tmpDir, filepath.Base(name)))
		}

		m.minio.On("UploadFile", mock.Anything, mock.Anything, mock.Anything, "video/mp4").
			Return(nil).Once()
		m.minio.On("PublicURL", mock.Anything).Return("http://minio/videos/x.mp4").Once()
		m.videoRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		m.rabbit.On("Publish", "", ProcessingQueue, false, false, mock.Anything).Return(nil).Once()

		video, err := m.usecase().UploadVideo(context.Background(), owner.Hex(), &UploadInput{
			Req:      domain.UploadVideoReq{Title: "solo video"},
			File:     bytes.NewReader([]byte("fake video bytes")),
			FileName: "x.mp4",
		})

		assert.NoError(t, err)
		assert.Equal(t, owner, video.OwnerID)
		assert.True(t, video.ChannelID.IsZero())
		m.channelRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		m.channelRepo.AssertNotCalled(t, "IncVideoCount", mock.Anything, mock.Anything, mock.Anything)
	})

	// **情境 3: 不是頻道擁有者**
	t.Run("不是頻道擁有者", func(t *testing.T) {
		m := newVideoMocks()

		m.channelRepo.On("GetByID", mock.Anything, channel).
			Return(&channeldomain.Channel{ID: channel, OwnerID: primitive.NewObjectID()}, nil).Once()

		_, err := m.usecase().UploadVideo(context.Background(), owner.Hex(), &UploadInput{
			Req:      domain.UploadVideoReq{Title: "t", ChannelID: channel.Hex()},
			File:     bytes.NewReader(nil),
			FileName: "x.mp4",
		})

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindAuthorization, errprocess.KindOf(err))
	})

	// **情境 4: 缺標題**
	t.Run("缺標題", func(t *testing.T) {
		m := newVideoMocks()

		_, err := m.usecase().UploadVideo(context.Background(), owner.Hex(), &UploadInput{
			Req:      domain.UploadVideoReq{ChannelID: channel.Hex()},
			File:     bytes.NewReader(nil),
			FileName: "x.mp4",
		})

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindValidation, errprocess.KindOf(err))
	})
}

func TestVideoUseCase_React(t *testing.T) {
	logger.SetNewNop()

	videoID := primitive.NewObjectID()
	user := primitive.NewObjectID()

	// **情境 1: 第一次按讚並同步 liked_videos**
	t.Run("第一次按讚", func(t *testing.T) {
		m := newVideoMocks()
		video := &domain.Video{ID: videoID, Likes: []primitive.ObjectID{}, Dislikes: []primitive.ObjectID{}}

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(video, nil).Once()
		m.videoRepo.On("ApplyReaction", mock.Anything, videoID, user,
			domain.ReactionOps{AddLike: true, UserLikedAfter: true}).Return(nil).Once()
		m.userRepo.On("AddLikedVideo", mock.Anything, user, videoID).Return(nil).Once()
		m.videoRepo.On("GetByID", mock.Anything, videoID).
			Return(&domain.Video{ID: videoID, Likes: []primitive.ObjectID{user}}, nil).Once()

		updated, err := m.usecase().React(context.Background(), user.Hex(), videoID.Hex(), domain.ReactionLike)

		assert.NoError(t, err)
		assert.Contains(t, updated.Likes, user)
		m.videoRepo.AssertExpectations(t)
		m.userRepo.AssertExpectations(t)
	})

	// **情境 2: 倒讚中按讚換邊**
	t.Run("倒讚中按讚換邊", func(t *testing.T) {
		m := newVideoMocks()
		video := &domain.Video{ID: videoID, Likes: []primitive.ObjectID{}, Dislikes: []primitive.ObjectID{user}}

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(video, nil).Once()
		m.videoRepo.On("ApplyReaction", mock.Anything, videoID, user,
			domain.ReactionOps{AddLike: true, RemoveDislike: true, UserLikedAfter: true}).Return(nil).Once()
		m.userRepo.On("AddLikedVideo", mock.Anything, user, videoID).Return(nil).Once()
		m.videoRepo.On("GetByID", mock.Anything, videoID).
			Return(&domain.Video{ID: videoID, Likes: []primitive.ObjectID{user}}, nil).Once()

		_, err := m.usecase().React(context.Background(), user.Hex(), videoID.Hex(), domain.ReactionLike)

		assert.NoError(t, err)
		m.videoRepo.AssertExpectations(t)
	})

	// **情境 3: 取消讚移出 liked_videos**
	t.Run("取消讚", func(t *testing.T) {
		m := newVideoMocks()
		video := &domain.Video{ID: videoID, Likes: []primitive.ObjectID{user}, Dislikes: []primitive.ObjectID{}}

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(video, nil).Once()
		m.videoRepo.On("ApplyReaction", mock.Anything, videoID, user,
			domain.ReactionOps{RemoveLike: true}).Return(nil).Once()
		m.userRepo.On("RemoveLikedVideo", mock.Anything, user, videoID).Return(nil).Once()
		m.videoRepo.On("GetByID", mock.Anything, videoID).
			Return(&domain.Video{ID: videoID, Likes: []primitive.ObjectID{}}, nil).Once()

		_, err := m.usecase().React(context.Background(), user.Hex(), videoID.Hex(), domain.ReactionLike)

		assert.NoError(t, err)
		m.userRepo.AssertExpectations(t)
	})

	// **情境 4: 影片不存在**
	t.Run("影片不存在", func(t *testing.T) {
		m := newVideoMocks()

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(nil, mongo.ErrNoDocuments).Once()

		_, err := m.usecase().React(context.Background(), user.Hex(), videoID.Hex(), domain.ReactionLike)

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindNotFound, errprocess.KindOf(err))
	})
}

func TestVideoUseCase_DeleteVideo(t *testing.T) {
	logger.SetNewNop()

	videoID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	channel := primitive.NewObjectID()

	// **情境 1: 擁有者刪除並連鎖清理**
	t.Run("擁有者刪除並連鎖清理", func(t *testing.T) {
		m := newVideoMocks()
		video := &domain.Video{ID: videoID, OwnerID: owner, ChannelID: channel}

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(video, nil).Once()
		m.videoRepo.On("Delete", mock.Anything, videoID).Return(nil).Once()
		m.counterRepo.On("DeleteByVideo", mock.Anything, videoID).Return(nil).Once()
		m.history.On("DeleteByVideo", mock.Anything, videoID).Return(nil).Once()
		m.saved.On("DeleteByVideo", mock.Anything, videoID).Return(nil).Once()
		m.playlists.On("RemoveVideoEverywhere", mock.Anything, videoID).Return(nil).Once()
		m.comments.On("DeleteByVideo", mock.Anything, videoID).Return(int64(3), nil).Once()
		m.sessions.On("DeleteByVideo", mock.Anything, videoID).Return(nil).Once()
		m.channelRepo.On("IncVideoCount", mock.Anything, channel, int64(-1)).Return(nil).Once()

		err := m.usecase().DeleteVideo(context.Background(), owner.Hex(), videoID.Hex())

		assert.NoError(t, err)
		m.videoRepo.AssertExpectations(t)
		m.counterRepo.AssertExpectations(t)
		m.history.AssertExpectations(t)
		m.saved.AssertExpectations(t)
		m.playlists.AssertExpectations(t)
		m.comments.AssertExpectations(t)
		m.sessions.AssertExpectations(t)
		m.channelRepo.AssertExpectations(t)
	})

	// **情境 2: 無頻道影片刪除不動頻道計數**
	t.Run("無頻道影片刪除不動頻道計數", func(t *testing.T) {
		m := newVideoMocks()
		video := &domain.Video{ID: videoID, OwnerID: owner}

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(video, nil).Once()
		m.videoRepo.On("Delete", mock.Anything, videoID).Return(nil).Once()
		m.counterRepo.On("DeleteByVideo", mock.Anything, videoID).Return(nil).Once()
		m.history.On("DeleteByVideo", mock.Anything, videoID).Return(nil).Once()
		m.saved.On("DeleteByVideo", mock.Anything, videoID).Return(nil).Once()
		m.playlists.On("RemoveVideoEverywhere", mock.Anything, videoID).Return(nil).Once()
		m.comments.On("DeleteByVideo", mock.Anything, videoID).Return(int64(0), nil).Once()
		m.sessions.On("DeleteByVideo", mock.Anything, videoID).Return(nil).Once()

		err := m.usecase().DeleteVideo(context.Background(), owner.Hex(), videoID.Hex())

		assert.NoError(t, err)
		m.channelRepo.AssertNotCalled(t, "IncVideoCount", mock.Anything, mock.Anything, mock.Anything)
	})

	// **情境 3: 非擁有者不可刪**
	t.Run("非擁有者不可刪", func(t *testing.T) {
		m := newVideoMocks()
		video := &domain.Video{ID: videoID, OwnerID: primitive.NewObjectID(), ChannelID: channel}

		m.videoRepo.On("GetByID", mock.Anything, videoID).Return(video, nil).Once()

		err := m.usecase().DeleteVideo(context.Background(), owner.Hex(), videoID.Hex())

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindAuthorization, errprocess.KindOf(err))
		m.videoRepo.AssertNotCalled(t, "Delete", mock.Anything, videoID)
	})
}

func TestVideoUseCase_VideoStats(t *testing.T) {
	logger.SetNewNop()

	videoID := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	// **情境 1: 擁有者看得到統計**
	t.Run("擁有者看得到統計", func(t *testing.T) {
		m := newVideoMocks()

		m.videoRepo.On("GetByID", mock.Anything, videoID).
			Return(&domain.Video{ID: videoID, OwnerID: owner}, nil).Once()
		m.sessions.On("StatsByVideo", mock.Anything, videoID).
			Return(&domain.WatchStats{VideoID: videoID, TotalDuration: 120, SessionCount: 2}, nil).Once()

		stats, err := m.usecase().VideoStats(context.Background(), owner.Hex(), videoID.Hex())

		assert.NoError(t, err)
		assert.Equal(t, int64(2), stats.SessionCount)
	})

	// **情境 2: 非擁有者被拒**
	t.Run("非擁有者被拒", func(t *testing.T) {
		m := newVideoMocks()

		m.videoRepo.On("GetByID", mock.Anything, videoID).
			Return(&domain.Video{ID: videoID, OwnerID: primitive.NewObjectID()}, nil).Once()

		_, err := m.usecase().VideoStats(context.Background(), owner.Hex(), videoID.Hex())

		assert.Error(t, err)
		assert.Equal(t, errprocess.KindAuthorization, errprocess.KindOf(err))
	})
}
