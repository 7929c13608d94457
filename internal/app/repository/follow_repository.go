package repository

import (
	"context"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"gorm.io/gorm"
)

type FollowRepository interface {
	Create(ctx context.Context, follow *model.Follow) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Delete(ctx context.Context, followerID, followingID string) (int64, error)
	ListFollowers(ctx context.Context, userID string, offset, limit int) ([]model.User, int64, error)
	ListFollowing(ctx context.Context, userID string, offset, limit int) ([]model.User, int64, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	ActivityRecipients(ctx context.Context, userID string) ([]string, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *model.Follow) error {
	return r.db.WithContext(ctx).Omit("Follower", "Following").Create(follow).Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// Delete returns the number of removed rows so callers can report a missing follow
func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{})
	return result.RowsAffected, result.Error
}

// ListFollowers 나를 팔로우하는 사용자 (최신 팔로우순)
func (r *followRepository) ListFollowers(ctx context.Context, userID string, offset, limit int) ([]model.User, int64, error) {
	return r.listUsers(ctx, "follows.follower_id", "follows.following_id", userID, offset, limit)
}

// ListFollowing 내가 팔로우하는 사용자
func (r *followRepository) ListFollowing(ctx context.Context, userID string, offset, limit int) ([]model.User, int64, error) {
	return r.listUsers(ctx, "follows.following_id", "follows.follower_id", userID, offset, limit)
}

func (r *followRepository) listUsers(ctx context.Context, joinCol, filterCol, userID string, offset, limit int) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where(filterCol+" = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("users.*").
		Joins("JOIN follows ON users.id = "+joinCol).
		Where(filterCol+" = ?", userID).
		Order("follows.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}

// ActivityRecipients 친구 활동 알림을 켠 팔로워 ID
func (r *followRepository) ActivityRecipients(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Joins("JOIN user_preferences ON user_preferences.user_id = follows.follower_id").
		Where("follows.following_id = ?", userID).
		Where("user_preferences.notify_friend_activity = ?", true).
		Pluck("follows.follower_id", &ids).Error
	return ids, err
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}
