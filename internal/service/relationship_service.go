package service

import (
	"context"

	"warbler/internal/authz"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/session"
)

// DefaultFeedLimit is used when no feed limit is configured.
const DefaultFeedLimit = 100

type RelationshipService struct {
	users     repository.UserRepository
	messages  repository.MessageRepository
	follows   repository.FollowRepository
	likes     repository.LikeRepository
	feed      repository.FeedRepository
	guard     *authz.Guard
	feedLimit int
}

func NewRelationshipService(
	users repository.UserRepository,
	messages repository.MessageRepository,
	follows repository.FollowRepository,
	likes repository.LikeRepository,
	feed repository.FeedRepository,
	guard *authz.Guard,
	feedLimit int,
) *RelationshipService {
	if feedLimit <= 0 {
		feedLimit = DefaultFeedLimit
	}
	return &RelationshipService{
		users:     users,
		messages:  messages,
		follows:   follows,
		likes:     likes,
		feed:      feed,
		guard:     guard,
		feedLimit: feedLimit,
	}
}

// Follow adds the edge caller -> targetID.
func (s *RelationshipService) Follow(ctx context.Context, id session.Identity, targetID uint) error {
	if err := s.guard.Check(id, authz.Follow, authz.Resource{TargetUserID: targetID}); err != nil {
		return err
	}
	if _, err := s.users.GetCachedByID(ctx, targetID); err != nil {
		return err
	}
	if err := s.follows.Create(ctx, id.UserID, targetID); err != nil {
		return err
	}
	observability.EdgeEvents.WithLabelValues("follow", "create").Inc()
	return nil
}

// Unfollow removes the edge caller -> targetID. Removing a missing edge is
// not an error.
func (s *RelationshipService) Unfollow(ctx context.Context, id session.Identity, targetID uint) error {
	if err := s.guard.Check(id, authz.Unfollow, authz.Resource{TargetUserID: targetID}); err != nil {
		return err
	}
	if _, err := s.users.GetCachedByID(ctx, targetID); err != nil {
		return err
	}
	removed, err := s.follows.Delete(ctx, id.UserID, targetID)
	if err != nil {
		return err
	}
	if removed {
		observability.EdgeEvents.WithLabelValues("follow", "delete").Inc()
	}
	return nil
}

// Following lists who userID follows.
func (s *RelationshipService) Following(ctx context.Context, id session.Identity, userID uint) ([]models.User, error) {
	if err := s.guard.Check(id, authz.ViewFollowing, authz.Resource{TargetUserID: userID}); err != nil {
		return nil, err
	}
	if _, err := s.users.GetCachedByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, userID)
}

// Followers lists who follows userID.
func (s *RelationshipService) Followers(ctx context.Context, id session.Identity, userID uint) ([]models.User, error) {
	if err := s.guard.Check(id, authz.ViewFollowers, authz.Resource{TargetUserID: userID}); err != nil {
		return nil, err
	}
	if _, err := s.users.GetCachedByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, userID)
}

func (s *RelationshipService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	if followerID == 0 || followedID == 0 {
		return false, nil
	}
	return s.follows.Exists(ctx, followerID, followedID)
}

// Feed returns the caller's home timeline.
func (s *RelationshipService) Feed(ctx context.Context, id session.Identity) ([]models.Message, error) {
	if err := s.guard.Check(id, authz.ViewFeed, authz.Resource{}); err != nil {
		return nil, err
	}
	return s.feed.Feed(ctx, id.UserID, s.feedLimit)
}

// Likes lists the messages userID has liked.
func (s *RelationshipService) Likes(ctx context.Context, id session.Identity, userID uint) ([]models.Message, error) {
	if err := s.guard.Check(id, authz.ViewLikes, authz.Resource{TargetUserID: userID}); err != nil {
		return nil, err
	}
	if _, err := s.users.GetCachedByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.likes.LikedMessages(ctx, userID)
}

// LikedAmong returns which of msgs the caller has liked.
func (s *RelationshipService) LikedAmong(ctx context.Context, id session.Identity, msgs []models.Message) ([]uint, error) {
	if !id.IsAuthenticated() || len(msgs) == 0 {
		return []uint{}, nil
	}
	ids := make([]uint, len(msgs))
	for i := range msgs {
		ids[i] = msgs[i].ID
	}
	return s.likes.LikedMessageIDs(ctx, id.UserID, ids)
}

// Like records a like by the caller. Liking twice leaves one like.
func (s *RelationshipService) Like(ctx context.Context, id session.Identity, messageID uint) error {
	msg, err := s.likeTarget(ctx, id, authz.Like, messageID)
	if err != nil {
		return err
	}
	if err := s.guard.Check(id, authz.Like, authz.Resource{OwnerID: msg.UserID}); err != nil {
		return err
	}
	created, err := s.likes.Like(ctx, id.UserID, messageID)
	if err != nil {
		return err
	}
	if created {
		observability.EdgeEvents.WithLabelValues("like", "create").Inc()
	}
	return nil
}

// Unlike removes the caller's like if present.
func (s *RelationshipService) Unlike(ctx context.Context, id session.Identity, messageID uint) error {
	msg, err := s.likeTarget(ctx, id, authz.Unlike, messageID)
	if err != nil {
		return err
	}
	if err := s.guard.Check(id, authz.Unlike, authz.Resource{OwnerID: msg.UserID}); err != nil {
		return err
	}
	removed, err := s.likes.Unlike(ctx, id.UserID, messageID)
	if err != nil {
		return err
	}
	if removed {
		observability.EdgeEvents.WithLabelValues("like", "delete").Inc()
	}
	return nil
}

// ToggleLike unlikes a liked message and likes an unliked one. It reports
// whether the message is liked afterwards.
func (s *RelationshipService) ToggleLike(ctx context.Context, id session.Identity, messageID uint) (bool, error) {
	if _, err := s.likeTarget(ctx, id, authz.Like, messageID); err != nil {
		return false, err
	}
	liked, err := s.likes.Exists(ctx, id.UserID, messageID)
	if err != nil {
		return false, err
	}
	if liked {
		return false, s.Unlike(ctx, id, messageID)
	}
	return true, s.Like(ctx, id, messageID)
}

// likeTarget refuses anonymous callers before loading the message.
func (s *RelationshipService) likeTarget(ctx context.Context, id session.Identity, op authz.Operation, messageID uint) (*models.Message, error) {
	if !id.IsAuthenticated() {
		return nil, s.guard.Check(id, op, authz.Resource{})
	}
	return s.messages.GetByID(ctx, messageID)
}
