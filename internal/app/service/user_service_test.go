package service

import (
	"context"
	"testing"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	*testEnv
	svc        UserService
	dispatcher *recordingDispatcher
}

func setupUserService(t *testing.T) *userFixture {
	t.Helper()
	env := setupTestEnv(t)
	dispatcher := newRecordingDispatcher()
	svc := NewUserService(env.db, env.users, env.prefs, env.follows, env.reviews, env.notifications, dispatcher)
	return &userFixture{testEnv: env, svc: svc, dispatcher: dispatcher}
}

func TestUserService_Register(t *testing.T) {
	f := setupUserService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		userName string
		wantErr  error
	}{
		{name: "Valid registration", email: "test@example.com", userName: "Test User"},
		{name: "Duplicate email", email: "test@example.com", userName: "Another User", wantErr: ErrEmailAlreadyExists},
		{name: "Missing name", email: "other@example.com", userName: " ", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := f.svc.Register(ctx, tt.email, tt.userName)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
			require.NotNil(t, user.Preferences)

			prefs, err := f.prefs.FindByUserID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, model.DefaultPreferredRadiusKm, prefs.PreferredRadiusKm)
			assert.True(t, prefs.NotifyFriendActivity)
			assert.False(t, prefs.NotifyWeekly)
		})
	}
}

func TestUserService_UpdateMe(t *testing.T) {
	f := setupUserService(t)
	ctx := context.Background()
	user := f.createUser(t, "me@example.com")

	name := "New Name"
	picture := "https://cdn.example/profiles/me.png"
	updated, err := f.svc.UpdateMe(ctx, user.ID, UpdateProfileInput{Name: &name, ProfilePictureURL: &picture})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	got, err := f.svc.GetMe(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	require.NotNil(t, got.ProfilePictureURL)
	assert.Equal(t, picture, *got.ProfilePictureURL)

	_, err = f.svc.GetMe(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Follow(t *testing.T) {
	f := setupUserService(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com")
	bob := f.createUser(t, "bob@example.com")

	assert.ErrorIs(t, f.svc.Follow(ctx, actorOf(alice), alice.ID), ErrSelfFollow)
	assert.ErrorIs(t, f.svc.Follow(ctx, actorOf(alice), "missing"), ErrUserNotFound)

	require.NoError(t, f.svc.Follow(ctx, actorOf(alice), bob.ID))
	assert.ErrorIs(t, f.svc.Follow(ctx, actorOf(alice), bob.ID), ErrConflict)

	list, _, err := f.notifications.List(ctx, bob.ID, true, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.NotificationTypeNewFollower, list[0].Type)
	assert.Equal(t, "New Follower", list[0].Title)
	assert.Equal(t, "alice@example.com started following you", list[0].Body)
	assert.Equal(t, alice.ID, list[0].Data["followerId"])
	assert.Equal(t, 1, f.dispatcher.count(bob.ID))

	followers, err := f.svc.Followers(ctx, bob.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, followers.Users, 1)
	assert.Equal(t, alice.ID, followers.Users[0].ID)

	following, err := f.svc.Following(ctx, alice.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), following.Pagination.Total)

	require.NoError(t, f.svc.Unfollow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, f.svc.Unfollow(ctx, alice.ID, bob.ID), ErrFollowNotFound)
}

func TestUserService_GetProfile(t *testing.T) {
	f := setupUserService(t)
	ctx := context.Background()
	critic := f.createUser(t, "critic@example.com")
	viewer := f.createUser(t, "viewer@example.com")
	cafeA := f.createCafe(t, "pa", 0, 0)
	cafeB := f.createCafe(t, "pb", 0, 0)

	profile, err := f.svc.GetProfile(ctx, critic.ID, viewer.ID)
	require.NoError(t, err)
	assert.Nil(t, profile.Expertise)
	assert.Zero(t, profile.ReviewsCount)

	for _, cafe := range []*model.Cafe{cafeA, cafeB} {
		require.NoError(t, f.reviews.Create(ctx, &model.Review{
			UserID: critic.ID, CafeID: cafe.ID, FoodRating: 3, DrinksRating: 5, AmbienceRating: 4, ServiceRating: 5,
		}))
	}
	f.follow(t, viewer.ID, critic.ID)

	profile, err = f.svc.GetProfile(ctx, critic.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.ReviewsCount)
	assert.Equal(t, int64(2), profile.CafesVisitedCount)
	assert.Equal(t, int64(1), profile.FollowersCount)
	assert.Zero(t, profile.FollowingCount)
	assert.True(t, profile.IsFollowing)
	require.NotNil(t, profile.Expertise)
	assert.Equal(t, model.MetricDrinks, *profile.Expertise)
}

func TestUserService_Search(t *testing.T) {
	f := setupUserService(t)
	ctx := context.Background()
	f.createUser(t, "latte.lover@example.com")
	f.createUser(t, "espresso@example.com")

	users, err := f.svc.Search(ctx, "LATTE", 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "latte.lover@example.com", users[0].Email)

	_, err = f.svc.Search(ctx, "  ", 10)
	assert.ErrorIs(t, err, ErrValidation)
}
