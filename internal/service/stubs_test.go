package service

import (
	"context"

	"warbler/internal/models"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getCachedByIDFn func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteCascadeFn func(context.Context, uint) error
	searchFn        func(context.Context, string, int) ([]models.User, error)
	statsFn         func(context.Context, uint) (*models.UserStats, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetCachedByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getCachedByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit)
}
func (s *userRepoStub) Stats(ctx context.Context, id uint) (*models.UserStats, error) {
	return s.statsFn(ctx, id)
}

func existingUsers(users ...*models.User) func(context.Context, uint) (*models.User, error) {
	return func(_ context.Context, id uint) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				cp := *u
				return &cp, nil
			}
		}
		return nil, models.NewNotFoundError("User", id)
	}
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       existingUsers(),
		getCachedByIDFn: existingUsers(),
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		deleteCascadeFn: func(context.Context, uint) error { return nil },
		searchFn:        func(context.Context, string, int) ([]models.User, error) { return nil, nil },
		statsFn:         func(context.Context, uint) (*models.UserStats, error) { return &models.UserStats{}, nil },
	}
}

// messageRepoStub is a stub for repository.MessageRepository.
type messageRepoStub struct {
	createFn     func(context.Context, *models.Message) error
	getByIDFn    func(context.Context, uint) (*models.Message, error)
	listByUserFn func(context.Context, uint, int) ([]models.Message, error)
	deleteFn     func(context.Context, uint) error
}

func (s *messageRepoStub) Create(ctx context.Context, msg *models.Message) error {
	return s.createFn(ctx, msg)
}
func (s *messageRepoStub) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	return s.getByIDFn(ctx, id)
}
func (s *messageRepoStub) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	return s.listByUserFn(ctx, userID, limit)
}
func (s *messageRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func existingMessages(msgs ...*models.Message) func(context.Context, uint) (*models.Message, error) {
	return func(_ context.Context, id uint) (*models.Message, error) {
		for _, m := range msgs {
			if m.ID == id {
				cp := *m
				return &cp, nil
			}
		}
		return nil, models.NewNotFoundError("Message", id)
	}
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn:     func(context.Context, *models.Message) error { return nil },
		getByIDFn:    existingMessages(),
		listByUserFn: func(context.Context, uint, int) ([]models.Message, error) { return nil, nil },
		deleteFn:     func(context.Context, uint) error { return nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn    func(context.Context, uint, uint) error
	deleteFn    func(context.Context, uint, uint) (bool, error)
	existsFn    func(context.Context, uint, uint) (bool, error)
	followingFn func(context.Context, uint) ([]models.User, error)
	followersFn func(context.Context, uint) ([]models.User, error)
}

func (s *followRepoStub) Create(ctx context.Context, followerID, followedID uint) error {
	return s.createFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.deleteFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followingFn(ctx, userID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followersFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:    func(context.Context, uint, uint) error { return nil },
		deleteFn:    func(context.Context, uint, uint) (bool, error) { return true, nil },
		existsFn:    func(context.Context, uint, uint) (bool, error) { return false, nil },
		followingFn: func(context.Context, uint) ([]models.User, error) { return nil, nil },
		followersFn: func(context.Context, uint) ([]models.User, error) { return nil, nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	likeFn            func(context.Context, uint, uint) (bool, error)
	unlikeFn          func(context.Context, uint, uint) (bool, error)
	existsFn          func(context.Context, uint, uint) (bool, error)
	likedMessagesFn   func(context.Context, uint) ([]models.Message, error)
	likedMessageIDsFn func(context.Context, uint, []uint) ([]uint, error)
}

func (s *likeRepoStub) Like(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.likeFn(ctx, userID, messageID)
}
func (s *likeRepoStub) Unlike(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, messageID)
}
func (s *likeRepoStub) Exists(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.existsFn(ctx, userID, messageID)
}
func (s *likeRepoStub) LikedMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.likedMessagesFn(ctx, userID)
}
func (s *likeRepoStub) LikedMessageIDs(ctx context.Context, userID uint, messageIDs []uint) ([]uint, error) {
	return s.likedMessageIDsFn(ctx, userID, messageIDs)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		likeFn:            func(context.Context, uint, uint) (bool, error) { return true, nil },
		unlikeFn:          func(context.Context, uint, uint) (bool, error) { return true, nil },
		existsFn:          func(context.Context, uint, uint) (bool, error) { return false, nil },
		likedMessagesFn:   func(context.Context, uint) ([]models.Message, error) { return nil, nil },
		likedMessageIDsFn: func(context.Context, uint, []uint) ([]uint, error) { return nil, nil },
	}
}

// feedRepoStub is a stub for repository.FeedRepository.
type feedRepoStub struct {
	feedFn func(context.Context, uint, int) ([]models.Message, error)
}

func (s *feedRepoStub) Feed(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	return s.feedFn(ctx, userID, limit)
}
