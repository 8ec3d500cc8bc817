package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	authrepo "viewtube/internal/auth/repository"
	channelrepo "viewtube/internal/channel/repository"
	"viewtube/internal/video/domain"
	"viewtube/internal/video/repository"
	"viewtube/pkg"
	"viewtube/pkg/database"
	errprocess "viewtube/pkg/err"
	"viewtube/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/streadway/amqp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	storeTimeout  = 5 * time.Second
	uploadTimeout = 2 * time.Minute

	// ProcessingQueue 上傳後丟後製工作的 RabbitMQ queue
	ProcessingQueue = "video_processing"
)

// HistoryRecorder 播放時寫觀看紀錄，刪影片時清掉
type HistoryRecorder interface {
	Upsert(ctx context.Context, userID, videoID primitive.ObjectID) error
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error
}

// SessionStore 觀看時長統計，刪影片時一併清掉場次
type SessionStore interface {
	Create(ctx context.Context, s *domain.WatchSession) error
	StatsByVideo(ctx context.Context, videoID primitive.ObjectID) (*domain.WatchStats, error)
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error
}

// PlaylistCleaner 刪影片時把它從所有播放清單拔掉
type PlaylistCleaner interface {
	RemoveVideoEverywhere(ctx context.Context, videoID primitive.ObjectID) error
}

// SavedCleaner 刪影片時清掉稍後觀看的收藏
type SavedCleaner interface {
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error
}

// CommentPurger 刪影片時清掉底下留言
type CommentPurger interface {
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error)
}

// UploadInput multipart 解出來的上傳內容
type UploadInput struct {
	Req              domain.UploadVideoReq
	File             io.Reader
	FileName         string
	ContentType      string
	Thumbnail        io.Reader
	ThumbnailName    string
	ThumbnailSize    int64
	ThumbnailContent string
}

// VideoUseCase 影片的上傳、播放、互動與刪除
type VideoUseCase interface {
	UploadVideo(ctx context.Context, ownerID string, in *UploadInput) (*domain.Video, error)
	GetVideo(ctx context.Context, videoID, viewerID string) (*domain.VideoDetail, error)
	UpdateVideo(ctx context.Context, callerID, videoID string, req domain.UpdateVideoReq) (*domain.Video, error)
	DeleteVideo(ctx context.Context, callerID, videoID string) error
	React(ctx context.Context, callerID, videoID string, kind domain.ReactionKind) (*domain.Video, error)
	Suggestions(ctx context.Context, videoID string, limit int64) ([]domain.Video, error)
	LogWatch(ctx context.Context, callerID, videoID string, duration float64) error
	VideoStats(ctx context.Context, callerID, videoID string) (*domain.WatchStats, error)
}

type videoUseCase struct {
	videoRepo   repository.VideoRepository
	counterRepo repository.ViewCounterRepository
	userRepo    authrepo.UserRepository
	channelRepo channelrepo.ChannelRepository
	history     HistoryRecorder
	sessions    SessionStore
	playlists   PlaylistCleaner
	saved       SavedCleaner
	comments    CommentPurger
	minioClient database.MinIOClientRepo
	kafkaRepo   database.KafkaRepo
	rabbitRepo  database.RabbitRepo
	tx          database.TxRunner
}

// NewVideoUseCase create video use case
func NewVideoUseCase(
	videoRepo repository.VideoRepository,
	counterRepo repository.ViewCounterRepository,
	userRepo authrepo.UserRepository,
	channelRepo channelrepo.ChannelRepository,
	history HistoryRecorder,
	sessions SessionStore,
	playlists PlaylistCleaner,
	saved SavedCleaner,
	comments CommentPurger,
	minioClient database.MinIOClientRepo,
	kafkaRepo database.KafkaRepo,
	rabbitRepo database.RabbitRepo,
	tx database.TxRunner,
) VideoUseCase {
	return &videoUseCase{
		videoRepo:   videoRepo,
		counterRepo: counterRepo,
		userRepo:    userRepo,
		channelRepo: channelRepo,
		history:     history,
		sessions:    sessions,
		playlists:   playlists,
		saved:       saved,
		comments:    comments,
		minioClient: minioClient,
		kafkaRepo:   kafkaRepo,
		rabbitRepo:  rabbitRepo,
		tx:          tx,
	}
}

// 讓測試可以 mock 檔案系統操作的包裝函數
var (
	createDir = func(path string) error {
		return os.MkdirAll(path, 0755)
	}

	createFile = func(name string) (*os.File, error) {
		return os.Create(name)
	}

	copyFile = func(dst *os.File, src io.Reader) (written int64, err error) {
		return io.Copy(dst, src)
	}

	removeFile = func(name string) error {
		return os.Remove(name)
	}
)

// UploadVideo 接收上傳：影片先落地暫存檔再上 MinIO，
// 資料庫寫入後發後製工作到 RabbitMQ
// 暫存檔讓大檔案不佔記憶體，MinIO 上傳成功才刪
func (v *videoUseCase) UploadVideo(ctx context.Context, ownerID string, in *UploadInput) (*domain.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}
	// 頻道可不填，影片直接掛在使用者底下
	var channelID primitive.ObjectID
	if raw := strings.TrimSpace(in.Req.ChannelID); raw != "" {
		if channelID, err = primitive.ObjectIDFromHex(raw); err != nil {
			return nil, errprocess.Validation("invalid channel id")
		}
	}
	title := strings.TrimSpace(in.Req.Title)
	if title == "" {
		return nil, errprocess.Validation("title is required")
	}
	if in.File == nil || in.FileName == "" {
		return nil, errprocess.Validation("video file is required")
	}

	visibility := domain.Visibility(in.Req.Visibility)
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, errprocess.Validation("invalid visibility")
	}

	if !channelID.IsZero() {
		ch, err := v.channelRepo.GetByID(ctx, channelID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, errprocess.NotFound("channel not found")
			}
			return nil, errprocess.Dependency("failed to query channel", err)
		}
		if ch.OwnerID != owner {
			return nil, errprocess.Authorization("only the channel owner can upload to it")
		}
	}

	videoID := primitive.NewObjectID()

	// 影片走暫存檔 + UploadFile，避免大檔案整份讀進記憶體
	tmpDir := "./tmp"
	if err := createDir(tmpDir); err != nil {
		return nil, errprocess.Dependency("failed to create temp dir", err)
	}
	tempPath := filepath.Join(tmpDir, videoID.Hex()+"_"+filepath.Base(in.FileName))
	tempFile, err := createFile(tempPath)
	if err != nil {
		return nil, errprocess.Dependency("failed to create temp file", err)
	}
	if _, err := copyFile(tempFile, in.File); err != nil {
		tempFile.Close()
		return nil, errprocess.Dependency("failed to stage upload", err)
	}
	tempFile.Close()

	contentType := in.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}
	objectName := fmt.Sprintf("videos/%s/%s", videoID.Hex(), filepath.Base(in.FileName))
	if err := v.minioClient.UploadFile(ctx, objectName, tempPath, contentType); err != nil {
		return nil, errprocess.Dependency("failed to upload video", err)
	}
	if err := removeFile(tempPath); err != nil {
		logger.Log.Warn(fmt.Sprintf("暫存檔清除失敗 [%s]: %v", tempPath, err))
	}

	// 縮圖小，直接串流上傳
	thumbnailURL := ""
	if in.Thumbnail != nil && in.ThumbnailName != "" {
		thumbObject := fmt.Sprintf("thumbnails/%s/%s", videoID.Hex(), filepath.Base(in.ThumbnailName))
		thumbType := in.ThumbnailContent
		if thumbType == "" {
			thumbType = "image/jpeg"
		}
		if err := v.minioClient.UploadStream(ctx, thumbObject, in.Thumbnail, in.ThumbnailSize, thumbType); err != nil {
			return nil, errprocess.Dependency("failed to upload thumbnail", err)
		}
		thumbnailURL = v.minioClient.PublicURL(thumbObject)
	}

	video := &domain.Video{
		ID:           videoID,
		Title:        title,
		Description:  in.Req.Description,
		OwnerID:      owner,
		ChannelID:    channelID,
		VideoURL:     v.minioClient.PublicURL(objectName),
		ThumbnailURL: thumbnailURL,
		Duration:     in.Req.Duration,
		Tags:         normalizeTags(in.Req.Tags),
		Visibility:   visibility,
	}
	if err := v.videoRepo.Create(ctx, video); err != nil {
		return nil, errprocess.Dependency("failed to create video", err)
	}
	if !channelID.IsZero() {
		if err := v.channelRepo.IncVideoCount(ctx, channelID, 1); err != nil {
			return nil, errprocess.Dependency("failed to update channel video count", err)
		}
	}

	// 後製工作進 queue，失敗只記 log，不讓上傳整個失敗
	job := domain.ProcessingJob{
		JobID:       uuid.NewString(),
		VideoID:     videoID.Hex(),
		ObjectName:  objectName,
		ContentType: contentType,
	}
	if data, err := json.Marshal(job); err == nil {
		if err := v.rabbitRepo.Publish("", ProcessingQueue, false, false, amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		}); err != nil {
			logger.Log.Warn(fmt.Sprintf("後製工作發布失敗 videoID[%s]: %v", videoID.Hex(), err))
		}
	}

	return video, nil
}

// GetVideo 播放頁：回影片 + 上傳者/頻道投影，同時記一次觀看。
// 觀看紀錄三件事：總觀看數 +1、當日計數 +1、登入者寫觀看紀錄，
// kafka 觀看事件為 best-effort
func (v *videoUseCase) GetVideo(ctx context.Context, videoID, viewerID string) (*domain.VideoDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return nil, errprocess.Validation("invalid video id")
	}

	video, err := v.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("video not found")
		}
		return nil, errprocess.Dependency("failed to query video", err)
	}

	var viewer primitive.ObjectID
	if viewerID != "" {
		if viewer, err = primitive.ObjectIDFromHex(viewerID); err != nil {
			return nil, errprocess.Validation("invalid user id")
		}
	}

	// 私人影片只有擁有者看得到，對外不洩漏存在與否
	if video.Visibility == domain.VisibilityPrivate && video.OwnerID != viewer {
		return nil, errprocess.NotFound("video not found")
	}

	if err := v.videoRepo.IncViews(ctx, id); err != nil {
		return nil, errprocess.Dependency("failed to record view", err)
	}
	date := time.Now().UTC().Format(domain.CounterDateLayout)
	if err := v.counterRepo.IncDaily(ctx, id, date); err != nil {
		return nil, errprocess.Dependency("failed to record daily view", err)
	}
	if viewerID != "" {
		if err := v.history.Upsert(ctx, viewer, id); err != nil {
			return nil, errprocess.Dependency("failed to record watch history", err)
		}
	}

	v.publishWatchEvent(id.Hex(), viewerID, date)

	detail := &domain.VideoDetail{Video: video}
	profiles, err := v.userRepo.ProfilesByIDs(ctx, []primitive.ObjectID{video.OwnerID})
	if err != nil {
		return nil, errprocess.Dependency("failed to load creator", err)
	}
	if p, ok := profiles[video.OwnerID]; ok {
		detail.Creator = domain.Creator{ID: p.ID, Username: p.Username, Avatar: p.Avatar}
	}
	if !video.ChannelID.IsZero() {
		summaries, err := v.channelRepo.SummariesByIDs(ctx, []primitive.ObjectID{video.ChannelID})
		if err != nil {
			return nil, errprocess.Dependency("failed to load channel", err)
		}
		if s, ok := summaries[video.ChannelID]; ok {
			detail.Channel = domain.ChannelCard{ID: s.ID, Name: s.Name, Avatar: s.Avatar}
		}
	}

	return detail, nil
}

// publishWatchEvent 丟觀看事件到 kafka，分析管線失效不影響播放
func (v *videoUseCase) publishWatchEvent(videoID, userID, date string) {
	event := domain.WatchEvent{
		VideoID: videoID,
		UserID:  userID,
		Date:    date,
		At:      time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := v.kafkaRepo.WriteMessages(ctx, kafka.Message{
		Key:   []byte(videoID),
		Value: data,
	}); err != nil {
		logger.Log.Warn(fmt.Sprintf("觀看事件發布失敗 videoID[%s]: %v", videoID, err))
	}
}

// UpdateVideo 僅擁有者可改
func (v *videoUseCase) UpdateVideo(ctx context.Context, callerID, videoID string, req domain.UpdateVideoReq) (*domain.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, caller, err := parseCallerAndVideo(callerID, videoID)
	if err != nil {
		return nil, err
	}

	video, err := v.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("video not found")
		}
		return nil, errprocess.Dependency("failed to query video", err)
	}
	if video.OwnerID != caller {
		return nil, errprocess.Authorization("only the owner can update this video")
	}
	if req.Visibility != nil && !domain.Visibility(*req.Visibility).Valid() {
		return nil, errprocess.Validation("invalid visibility")
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, errprocess.Validation("title cannot be empty")
	}

	if err := v.videoRepo.Update(ctx, id, &req); err != nil {
		return nil, errprocess.Dependency("failed to update video", err)
	}

	updated, err := v.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errprocess.Dependency("failed to reload video", err)
	}
	return updated, nil
}

// DeleteVideo 僅擁有者可刪，計數、紀錄、收藏、清單、留言同交易清掉
func (v *videoUseCase) DeleteVideo(ctx context.Context, callerID, videoID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, caller, err := parseCallerAndVideo(callerID, videoID)
	if err != nil {
		return err
	}

	video, err := v.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errprocess.NotFound("video not found")
		}
		return errprocess.Dependency("failed to query video", err)
	}
	if video.OwnerID != caller {
		return errprocess.Authorization("only the owner can delete this video")
	}

	err = v.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := v.videoRepo.Delete(txCtx, id); err != nil {
			return err
		}
		if err := v.counterRepo.DeleteByVideo(txCtx, id); err != nil {
			return err
		}
		if err := v.history.DeleteByVideo(txCtx, id); err != nil {
			return err
		}
		if err := v.saved.DeleteByVideo(txCtx, id); err != nil {
			return err
		}
		if err := v.playlists.RemoveVideoEverywhere(txCtx, id); err != nil {
			return err
		}
		if _, err := v.comments.DeleteByVideo(txCtx, id); err != nil {
			return err
		}
		if err := v.sessions.DeleteByVideo(txCtx, id); err != nil {
			return err
		}
		if video.ChannelID.IsZero() {
			return nil
		}
		return v.channelRepo.IncVideoCount(txCtx, video.ChannelID, -1)
	})
	if err != nil {
		return errprocess.Dependency("failed to delete video", err)
	}
	return nil
}

// React like/dislike toggle：同方再按一次取消，按另一方就換邊，
// 集合異動與 user.liked_videos 同步
func (v *videoUseCase) React(ctx context.Context, callerID, videoID string, kind domain.ReactionKind) (*domain.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, caller, err := parseCallerAndVideo(callerID, videoID)
	if err != nil {
		return nil, err
	}
	if kind != domain.ReactionLike && kind != domain.ReactionDislike {
		return nil, errprocess.Validation("invalid reaction")
	}

	video, err := v.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("video not found")
		}
		return nil, errprocess.Dependency("failed to query video", err)
	}

	ops := domain.NextReactionOps(video, caller, kind)
	if err := v.videoRepo.ApplyReaction(ctx, id, caller, ops); err != nil {
		return nil, errprocess.Dependency("failed to apply reaction", err)
	}

	if ops.UserLikedAfter {
		err = v.userRepo.AddLikedVideo(ctx, caller, id)
	} else if ops.RemoveLike {
		err = v.userRepo.RemoveLikedVideo(ctx, caller, id)
	}
	if err != nil {
		return nil, errprocess.Dependency("failed to sync liked videos", err)
	}

	updated, err := v.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errprocess.Dependency("failed to reload video", err)
	}
	return updated, nil
}

// Suggestions 同標籤的其他公開影片
func (v *videoUseCase) Suggestions(ctx context.Context, videoID string, limit int64) ([]domain.Video, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return nil, errprocess.Validation("invalid video id")
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	video, err := v.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("video not found")
		}
		return nil, errprocess.Dependency("failed to query video", err)
	}

	videos, err := v.videoRepo.SuggestionsByTags(ctx, video.Tags, id, limit)
	if err != nil {
		return nil, errprocess.Dependency("failed to load suggestions", err)
	}
	return videos, nil
}

// LogWatch 記一筆觀看時長
func (v *videoUseCase) LogWatch(ctx context.Context, callerID, videoID string, duration float64) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, caller, err := parseCallerAndVideo(callerID, videoID)
	if err != nil {
		return err
	}
	if duration <= 0 {
		return errprocess.Validation("duration must be positive")
	}

	session := &domain.WatchSession{
		UserID:   caller,
		VideoID:  id,
		Duration: duration,
	}
	if err := v.sessions.Create(ctx, session); err != nil {
		return errprocess.Dependency("failed to log watch session", err)
	}
	return nil
}

// VideoStats 觀看統計，只開放給影片擁有者
func (v *videoUseCase) VideoStats(ctx context.Context, callerID, videoID string) (*domain.WatchStats, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, caller, err := parseCallerAndVideo(callerID, videoID)
	if err != nil {
		return nil, err
	}

	video, err := v.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("video not found")
		}
		return nil, errprocess.Dependency("failed to query video", err)
	}
	if video.OwnerID != caller {
		return nil, errprocess.Authorization("only the owner can view video stats")
	}

	stats, err := v.sessions.StatsByVideo(ctx, id)
	if err != nil {
		return nil, errprocess.Dependency("failed to load video stats", err)
	}
	return stats, nil
}

// normalizeTags 去空白、去空字串、去重複
func normalizeTags(tags []string) []string {
	out := []string{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || pkg.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func parseCallerAndVideo(callerID, videoID string) (primitive.ObjectID, primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, errprocess.Validation("invalid video id")
	}
	caller, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, errprocess.Validation("invalid user id")
	}
	return id, caller, nil
}
