package app

import (
	"context"
	"errors"
	"strings"
	"time"

	authrepo "viewtube/internal/auth/repository"
	"viewtube/internal/channel/domain"
	"viewtube/internal/channel/repository"
	videodomain "viewtube/internal/video/domain"
	"viewtube/pkg/database"
	errprocess "viewtube/pkg/err"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const storeTimeout = 5 * time.Second

// VideoDirectory 頻道模組對影片資料的依賴
type VideoDirectory interface {
	PublicByChannel(ctx context.Context, channelID primitive.ObjectID) ([]videodomain.Video, error)
	DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// CounterPurger 刪除影片時清掉對應的每日觀看計數
type CounterPurger interface {
	DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error
}

// SubscriptionLedger 頻道模組對訂閱帳的依賴
type SubscriptionLedger interface {
	SubscriberIDsByChannel(ctx context.Context, channelID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByChannel(ctx context.Context, channelID primitive.ObjectID) (int64, error)
}

// CommentPurger 刪頻道時批次清掉旗下影片的留言
type CommentPurger interface {
	DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) (int64, error)
}

// SavedPurger 刪頻道時批次清掉旗下影片的收藏
type SavedPurger interface {
	DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error
}

// HistoryPurger 刪頻道時批次清掉旗下影片的觀看紀錄
type HistoryPurger interface {
	DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error
}

// PlaylistPurger 刪頻道時把旗下影片從所有播放清單拔掉
type PlaylistPurger interface {
	RemoveVideosEverywhere(ctx context.Context, videoIDs []primitive.ObjectID) error
}

// SessionPurger 刪頻道時批次清掉旗下影片的觀看場次
type SessionPurger interface {
	DeleteByVideos(ctx context.Context, videoIDs []primitive.ObjectID) error
}

// ChannelUseCase definition channel use case
type ChannelUseCase interface {
	CreateChannel(ctx context.Context, ownerID string, req domain.CreateChannelReq) (*domain.Channel, error)
	MyChannels(ctx context.Context, ownerID string) ([]domain.Channel, error)
	GetChannel(ctx context.Context, channelID string) (*domain.ChannelPage, error)
	UpdateChannel(ctx context.Context, callerID, channelID string, req domain.UpdateChannelReq) (*domain.Channel, error)
	DeleteChannel(ctx context.Context, callerID, channelID string) error
}

type channelUseCase struct {
	channelRepo   repository.ChannelRepository
	userRepo      authrepo.UserRepository
	videos        VideoDirectory
	counters      CounterPurger
	subscriptions SubscriptionLedger
	comments      CommentPurger
	saved         SavedPurger
	history       HistoryPurger
	playlists     PlaylistPurger
	sessions      SessionPurger
	tx            database.TxRunner
}

// NewChannelUseCase create channel use case
func NewChannelUseCase(
	channelRepo repository.ChannelRepository,
	userRepo authrepo.UserRepository,
	videos VideoDirectory,
	counters CounterPurger,
	subscriptions SubscriptionLedger,
	comments CommentPurger,
	saved SavedPurger,
	history HistoryPurger,
	playlists PlaylistPurger,
	sessions SessionPurger,
	tx database.TxRunner,
) ChannelUseCase {
	return &channelUseCase{
		channelRepo:   channelRepo,
		userRepo:      userRepo,
		videos:        videos,
		counters:      counters,
		subscriptions: subscriptions,
		comments:      comments,
		saved:         saved,
		history:       history,
		playlists:     playlists,
		sessions:      sessions,
		tx:            tx,
	}
}

// CreateChannel 建立頻道，名稱全站唯一
func (c *channelUseCase) CreateChannel(ctx context.Context, ownerID string, req domain.CreateChannelReq) (*domain.Channel, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errprocess.Validation("channel name is required")
	}

	ch := &domain.Channel{
		Name:        name,
		Description: req.Description,
		OwnerID:     owner,
		Avatar:      req.Avatar,
		Banner:      req.Banner,
	}
	id, err := c.channelRepo.Create(ctx, ch)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errprocess.Conflict("channel name already taken")
		}
		return nil, errprocess.Dependency("failed to create channel", err)
	}
	ch.ID = id
	return ch, nil
}

// MyChannels list channels owned by the caller
func (c *channelUseCase) MyChannels(ctx context.Context, ownerID string) ([]domain.Channel, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}

	channels, err := c.channelRepo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, errprocess.Dependency("failed to list channels", err)
	}
	return channels, nil
}

// GetChannel 頻道頁：頻道資料 + 公開影片
func (c *channelUseCase) GetChannel(ctx context.Context, channelID string) (*domain.ChannelPage, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(channelID)
	if err != nil {
		return nil, errprocess.Validation("invalid channel id")
	}

	ch, err := c.channelRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("channel not found")
		}
		return nil, errprocess.Dependency("failed to query channel", err)
	}

	videos, err := c.videos.PublicByChannel(ctx, id)
	if err != nil {
		return nil, errprocess.Dependency("failed to list channel videos", err)
	}

	return &domain.ChannelPage{Channel: ch, Videos: videos}, nil
}

// UpdateChannel 僅頻道擁有者可改
func (c *channelUseCase) UpdateChannel(ctx context.Context, callerID, channelID string, req domain.UpdateChannelReq) (*domain.Channel, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(channelID)
	if err != nil {
		return nil, errprocess.Validation("invalid channel id")
	}
	caller, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}

	ch, err := c.channelRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("channel not found")
		}
		return nil, errprocess.Dependency("failed to query channel", err)
	}
	if ch.OwnerID != caller {
		return nil, errprocess.Authorization("only the channel owner can update it")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, errprocess.Validation("channel name cannot be empty")
	}

	if err := c.channelRepo.Update(ctx, id, &req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errprocess.Conflict("channel name already taken")
		}
		return nil, errprocess.Dependency("failed to update channel", err)
	}

	updated, err := c.channelRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errprocess.Dependency("failed to reload channel", err)
	}
	return updated, nil
}

// DeleteChannel 僅擁有者可刪，影片、訂閱與訂閱者帳目在同一個交易裡清掉，
// 不留孤兒紀錄
func (c *channelUseCase) DeleteChannel(ctx context.Context, callerID, channelID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(channelID)
	if err != nil {
		return errprocess.Validation("invalid channel id")
	}
	caller, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return errprocess.Validation("invalid user id")
	}

	ch, err := c.channelRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errprocess.NotFound("channel not found")
		}
		return errprocess.Dependency("failed to query channel", err)
	}
	if ch.OwnerID != caller {
		return errprocess.Authorization("only the channel owner can delete it")
	}

	err = c.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		videoIDs, err := c.videos.DeleteByChannel(txCtx, id)
		if err != nil {
			return err
		}
		if err := c.counters.DeleteByVideos(txCtx, videoIDs); err != nil {
			return err
		}
		// 影片的衍生紀錄一併清掉，交易失敗全部回滾
		if _, err := c.comments.DeleteByVideos(txCtx, videoIDs); err != nil {
			return err
		}
		if err := c.saved.DeleteByVideos(txCtx, videoIDs); err != nil {
			return err
		}
		if err := c.history.DeleteByVideos(txCtx, videoIDs); err != nil {
			return err
		}
		if err := c.playlists.RemoveVideosEverywhere(txCtx, videoIDs); err != nil {
			return err
		}
		if err := c.sessions.DeleteByVideos(txCtx, videoIDs); err != nil {
			return err
		}

		subscriberIDs, err := c.subscriptions.SubscriberIDsByChannel(txCtx, id)
		if err != nil {
			return err
		}
		if _, err := c.subscriptions.DeleteByChannel(txCtx, id); err != nil {
			return err
		}
		for _, subscriberID := range subscriberIDs {
			if err := c.userRepo.RemoveSubscription(txCtx, subscriberID, id); err != nil {
				return err
			}
		}

		return c.channelRepo.Delete(txCtx, id)
	})
	if err != nil {
		return errprocess.Dependency("failed to delete channel", err)
	}
	return nil
}
