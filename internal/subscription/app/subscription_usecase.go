package app

import (
	"context"
	"errors"
	"time"

	authrepo "viewtube/internal/auth/repository"
	channelrepo "viewtube/internal/channel/repository"
	"viewtube/internal/subscription/domain"
	"viewtube/internal/subscription/repository"
	"viewtube/pkg/database"
	errprocess "viewtube/pkg/err"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	storeTimeout = 5 * time.Second

	defaultPageSize int64 = 20
	maxPageSize     int64 = 50
)

// SubscriptionUseCase 訂閱帳本：帳目、使用者清單、頻道計數
// 三處寫入要嘛全成功要嘛全不動
type SubscriptionUseCase interface {
	Subscribe(ctx context.Context, userID, channelID string) (*domain.Subscription, error)
	Unsubscribe(ctx context.Context, userID, subscriptionID string) error
	MySubscriptions(ctx context.Context, userID string, page, limit int64) (*domain.SubscriptionList, error)
	ChannelSubscribers(ctx context.Context, channelID string, page, limit int64) (*domain.SubscriberList, error)
}

type subscriptionUseCase struct {
	subRepo     repository.SubscriptionRepository
	userRepo    authrepo.UserRepository
	channelRepo channelrepo.ChannelRepository
	tx          database.TxRunner
}

// NewSubscriptionUseCase create subscription use case
func NewSubscriptionUseCase(
	subRepo repository.SubscriptionRepository,
	userRepo authrepo.UserRepository,
	channelRepo channelrepo.ChannelRepository,
	tx database.TxRunner,
) SubscriptionUseCase {
	return &subscriptionUseCase{
		subRepo:     subRepo,
		userRepo:    userRepo,
		channelRepo: channelRepo,
		tx:          tx,
	}
}

// Subscribe 訂閱頻道：
// 頻道不存在 -> 404，訂自己的頻道 -> 400，已訂閱 -> 409。
// 交易內再查一次重複，擋掉 pre-check 與交易之間的競態
func (s *subscriptionUseCase) Subscribe(ctx context.Context, userID, channelID string) (*domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, channel, err := parseIDs(userID, channelID)
	if err != nil {
		return nil, err
	}

	ch, err := s.channelRepo.GetByID(ctx, channel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("channel not found")
		}
		return nil, errprocess.Dependency("failed to query channel", err)
	}
	if ch.OwnerID == user {
		return nil, errprocess.Validation("cannot subscribe to your own channel")
	}

	if _, err := s.subRepo.FindBySubscriberAndChannel(ctx, user, channel); err == nil {
		return nil, errprocess.Conflict("already subscribed")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errprocess.Dependency("failed to check subscription", err)
	}

	sub := &domain.Subscription{
		SubscriberID: user,
		ChannelID:    channel,
		Notify:       true,
	}
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.subRepo.FindBySubscriberAndChannel(txCtx, user, channel); err == nil {
			return errprocess.Conflict("already subscribed")
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}

		id, err := s.subRepo.Create(txCtx, sub)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return errprocess.Conflict("already subscribed")
			}
			return err
		}
		sub.ID = id

		if err := s.userRepo.AddSubscription(txCtx, user, channel); err != nil {
			return err
		}
		return s.channelRepo.IncSubscriberCount(txCtx, channel, 1)
	})
	if err != nil {
		return nil, passOrDependency("failed to subscribe", err)
	}
	return sub, nil
}

// Unsubscribe 依訂閱帳目 id 退訂：帳目刪除、使用者清單、頻道計數同交易回退。
// 別人的帳目回 404，不洩漏存在與否
func (s *subscriptionUseCase) Unsubscribe(ctx context.Context, userID, subscriptionID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errprocess.Validation("invalid user id")
	}
	subID, err := primitive.ObjectIDFromHex(subscriptionID)
	if err != nil {
		return errprocess.Validation("invalid subscription id")
	}

	sub, err := s.subRepo.GetByID(ctx, subID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errprocess.NotFound("subscription not found")
		}
		return errprocess.Dependency("failed to query subscription", err)
	}
	if sub.SubscriberID != user {
		return errprocess.NotFound("subscription not found")
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.subRepo.Delete(txCtx, sub.ID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return errprocess.NotFound("subscription not found")
			}
			return err
		}
		if err := s.userRepo.RemoveSubscription(txCtx, user, sub.ChannelID); err != nil {
			return err
		}
		return s.channelRepo.IncSubscriberCount(txCtx, sub.ChannelID, -1)
	})
	if err != nil {
		return passOrDependency("failed to unsubscribe", err)
	}
	return nil
}

// MySubscriptions 使用者的訂閱清單，join 頻道投影
func (s *subscriptionUseCase) MySubscriptions(ctx context.Context, userID string, page, limit int64) (*domain.SubscriptionList, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}
	page, limit = normalizePage(page, limit)

	subs, total, err := s.subRepo.ListBySubscriber(ctx, user, (page-1)*limit, limit)
	if err != nil {
		return nil, errprocess.Dependency("failed to list subscriptions", err)
	}

	channelIDs := make([]primitive.ObjectID, 0, len(subs))
	for _, sub := range subs {
		channelIDs = append(channelIDs, sub.ChannelID)
	}
	summaries, err := s.channelRepo.SummariesByIDs(ctx, channelIDs)
	if err != nil {
		return nil, errprocess.Dependency("failed to load channel summaries", err)
	}

	items := make([]domain.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		items = append(items, domain.SubscriptionView{
			Subscription: sub,
			Channel:      summaries[sub.ChannelID],
		})
	}
	return &domain.SubscriptionList{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// ChannelSubscribers 頻道的訂閱者清單，join 使用者投影
func (s *subscriptionUseCase) ChannelSubscribers(ctx context.Context, channelID string, page, limit int64) (*domain.SubscriberList, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	channel, err := primitive.ObjectIDFromHex(channelID)
	if err != nil {
		return nil, errprocess.Validation("invalid channel id")
	}
	page, limit = normalizePage(page, limit)

	if _, err := s.channelRepo.GetByID(ctx, channel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("channel not found")
		}
		return nil, errprocess.Dependency("failed to query channel", err)
	}

	subs, total, err := s.subRepo.ListByChannel(ctx, channel, (page-1)*limit, limit)
	if err != nil {
		return nil, errprocess.Dependency("failed to list subscribers", err)
	}

	userIDs := make([]primitive.ObjectID, 0, len(subs))
	for _, sub := range subs {
		userIDs = append(userIDs, sub.SubscriberID)
	}
	profiles, err := s.userRepo.ProfilesByIDs(ctx, userIDs)
	if err != nil {
		return nil, errprocess.Dependency("failed to load user profiles", err)
	}

	items := make([]domain.SubscriberView, 0, len(subs))
	for _, sub := range subs {
		items = append(items, domain.SubscriberView{
			Subscription: sub,
			User:         profiles[sub.SubscriberID],
		})
	}
	return &domain.SubscriberList{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func parseIDs(userID, channelID string) (primitive.ObjectID, primitive.ObjectID, error) {
	user, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, errprocess.Validation("invalid user id")
	}
	channel, err := primitive.ObjectIDFromHex(channelID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, errprocess.Validation("invalid channel id")
	}
	return user, channel, nil
}

func normalizePage(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// passOrDependency 已分類的錯誤原樣往上丟，其餘視為基礎設施失敗
func passOrDependency(msg string, err error) error {
	var e *errprocess.Error
	if errors.As(err, &e) {
		return err
	}
	return errprocess.Dependency(msg, err)
}
