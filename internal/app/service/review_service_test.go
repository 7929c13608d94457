package service

import (
	"context"
	"testing"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewFixture struct {
	*testEnv
	svc        ReviewService
	cache      *fakeNearbyCache
	dispatcher *recordingDispatcher
}

func setupReviewService(t *testing.T) *reviewFixture {
	t.Helper()
	env := setupTestEnv(t)
	cache := newFakeNearbyCache()
	dispatcher := newRecordingDispatcher()
	svc := NewReviewService(env.db, env.reviews, env.cafes, env.follows, env.notifications, env.aggregator, cache, dispatcher)
	return &reviewFixture{testEnv: env, svc: svc, cache: cache, dispatcher: dispatcher}
}

func (f *reviewFixture) ratings(t *testing.T, cafeID string) *model.CafeRatings {
	t.Helper()
	ratings, err := f.cafes.FindRatings(context.Background(), cafeID)
	require.NoError(t, err)
	return ratings
}

func TestReviewService_RatingsFollowReviewLifecycle(t *testing.T) {
	f := setupReviewService(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com")
	bob := f.createUser(t, "bob@example.com")
	cafe := f.createCafe(t, "p1", 37.5, 127.0)

	first, err := f.svc.Create(ctx, actorOf(alice), ratingsInput(cafe.ID, 5, 5, 5, 5))
	require.NoError(t, err)
	ratings := f.ratings(t, cafe.ID)
	assert.Equal(t, 1, ratings.TotalReviews)
	assert.Equal(t, 5.0, ratings.AvgFood)

	second, err := f.svc.Create(ctx, actorOf(bob), ratingsInput(cafe.ID, 1, 1, 1, 1))
	require.NoError(t, err)
	ratings = f.ratings(t, cafe.ID)
	assert.Equal(t, 2, ratings.TotalReviews)
	assert.Equal(t, 3.0, ratings.AvgFood)
	assert.Equal(t, 3.0, ratings.AvgService)

	// removing the high review leaves only the low one
	require.NoError(t, f.svc.Delete(ctx, first.ID, alice.ID))
	ratings = f.ratings(t, cafe.ID)
	assert.Equal(t, 1, ratings.TotalReviews)
	assert.Equal(t, 1.0, ratings.AvgFood)
	assert.Equal(t, 1.0, ratings.AvgDrinks)
	assert.Equal(t, 1.0, ratings.AvgAmbience)
	assert.Equal(t, 1.0, ratings.AvgService)

	_, err = f.svc.Update(ctx, second.ID, bob.ID, UpdateReviewInput{
		FoodRating:   f64(4),
		DrinksRating: f64(2),
	})
	require.NoError(t, err)
	ratings = f.ratings(t, cafe.ID)
	assert.Equal(t, 1, ratings.TotalReviews)
	assert.Equal(t, 4.0, ratings.AvgFood)
	assert.Equal(t, 2.0, ratings.AvgDrinks)
	assert.Equal(t, 1.0, ratings.AvgService)

	require.NoError(t, f.svc.Delete(ctx, second.ID, bob.ID))
	ratings = f.ratings(t, cafe.ID)
	assert.Equal(t, 0, ratings.TotalReviews)
	assert.Equal(t, 0.0, ratings.AvgFood)
	assert.Equal(t, 0.0, ratings.AvgAmbience)

	// every write invalidates the nearby cache
	assert.Equal(t, 5, f.cache.invalidated())
}

func TestReviewService_Create_Errors(t *testing.T) {
	f := setupReviewService(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com")
	cafe := f.createCafe(t, "p1", 0, 0)

	_, err := f.svc.Create(ctx, actorOf(alice), ratingsInput("missing", 3, 3, 3, 3))
	assert.ErrorIs(t, err, ErrCafeNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Create(ctx, actorOf(alice), ratingsInput(cafe.ID, 3, 3, 3, 3))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, actorOf(alice), ratingsInput(cafe.ID, 4, 4, 4, 4))
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "You have already reviewed this cafe. Use update instead.")

	// the rejected write left the aggregate untouched
	ratings := f.ratings(t, cafe.ID)
	assert.Equal(t, 1, ratings.TotalReviews)
	assert.Equal(t, 3.0, ratings.AvgFood)
}

func TestReviewService_OwnerOnly(t *testing.T) {
	f := setupReviewService(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com")
	mallory := f.createUser(t, "mallory@example.com")
	cafe := f.createCafe(t, "p1", 0, 0)

	review, err := f.svc.Create(ctx, actorOf(alice), ratingsInput(cafe.ID, 4, 4, 4, 4))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, review.ID, mallory.ID, UpdateReviewInput{FoodRating: f64(1)})
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.svc.Delete(ctx, review.ID, mallory.ID)
	assert.ErrorIs(t, err, ErrNotReviewOwner)

	_, err = f.svc.Update(ctx, "missing", alice.ID, UpdateReviewInput{})
	assert.ErrorIs(t, err, ErrReviewNotFound)

	ratings := f.ratings(t, cafe.ID)
	assert.Equal(t, 4.0, ratings.AvgFood)
}

func TestReviewService_Update_PartialFields(t *testing.T) {
	f := setupReviewService(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com")
	cafe := f.createCafe(t, "p1", 0, 0)

	input := ratingsInput(cafe.ID, 4, 3, 2, 1)
	input.MoodTags = []string{"study"}
	review, err := f.svc.Create(ctx, actorOf(alice), input)
	require.NoError(t, err)

	comment := "great flat white"
	updated, err := f.svc.Update(ctx, review.ID, alice.ID, UpdateReviewInput{DrinksRating: f64(5), Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.FoodRating)
	assert.Equal(t, 5.0, updated.DrinksRating)
	assert.Equal(t, model.StringArray{"study"}, updated.MoodTags)
	require.NotNil(t, updated.Comment)
	assert.Equal(t, comment, *updated.Comment)
}

func TestReviewService_FriendReviewNotifications(t *testing.T) {
	f := setupReviewService(t)
	ctx := context.Background()
	author := f.createUser(t, "author@example.com")
	fan := f.createUser(t, "fan@example.com")
	quiet := f.createUser(t, "quiet@example.com")
	stranger := f.createUser(t, "stranger@example.com")
	cafe := f.createCafe(t, "p1", 0, 0)

	f.follow(t, fan.ID, author.ID)
	f.follow(t, quiet.ID, author.ID)

	prefs, err := f.prefs.FindByUserID(ctx, quiet.ID)
	require.NoError(t, err)
	prefs.NotifyFriendActivity = false
	require.NoError(t, f.prefs.Update(ctx, prefs))

	review, err := f.svc.Create(ctx, actorOf(author), ratingsInput(cafe.ID, 5, 4, 3, 2))
	require.NoError(t, err)

	list, total, err := f.notifications.List(ctx, fan.ID, false, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	n := list[0]
	assert.Equal(t, model.NotificationTypeFriendReview, n.Type)
	assert.Equal(t, "New Review", n.Title)
	assert.Equal(t, "author@example.com reviewed Cafe p1", n.Body)
	assert.Equal(t, review.ID, n.Data["reviewId"])
	assert.Equal(t, cafe.ID, n.Data["cafeId"])
	assert.Equal(t, author.ID, n.Data["userId"])
	assert.Equal(t, 1, f.dispatcher.count(fan.ID))

	for _, u := range []*model.User{quiet, stranger, author} {
		count, err := f.notifications.CountUnread(ctx, u.ID)
		require.NoError(t, err)
		assert.Zero(t, count, u.Email)
		assert.Zero(t, f.dispatcher.count(u.ID))
	}
}

func TestReviewService_ListForCafe_NewestFirst(t *testing.T) {
	f := setupReviewService(t)
	ctx := context.Background()
	cafe := f.createCafe(t, "p1", 0, 0)

	var ids []string
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u := f.createUser(t, email)
		r, err := f.svc.Create(ctx, actorOf(u), ratingsInput(cafe.ID, 3, 3, 3, 3))
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	page, err := f.svc.ListForCafe(ctx, cafe.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, ids[2], page.Reviews[0].ID)
	assert.Equal(t, ids[1], page.Reviews[1].ID)
	require.NotNil(t, page.Reviews[0].User)

	page, err = f.svc.ListForCafe(ctx, cafe.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, ids[0], page.Reviews[0].ID)
}

func TestReviewService_Photos(t *testing.T) {
	f := setupReviewService(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice@example.com")
	bob := f.createUser(t, "bob@example.com")
	cafe := f.createCafe(t, "p1", 0, 0)

	input := ratingsInput(cafe.ID, 3, 3, 3, 3)
	input.Photos = []string{"u1", "u2"}
	_, err := f.svc.Create(ctx, actorOf(alice), input)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, actorOf(bob), ratingsInput(cafe.ID, 3, 3, 3, 3))
	require.NoError(t, err)

	photos, err := f.svc.CafePhotos(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "u1", photos[0].URL)
	require.NotNil(t, photos[0].User)
	assert.Equal(t, alice.ID, photos[0].User.ID)

	_, err = f.svc.CafePhotos(ctx, "unknown")
	assert.ErrorIs(t, err, ErrCafeNotFound)

	photos, err = f.svc.UserPhotos(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)
}
