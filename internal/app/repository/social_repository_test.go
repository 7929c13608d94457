package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewFollowRepository(gdb)
	ctx := context.Background()

	alice := createUser(t, gdb, "alice@x.com")
	bob := createUser(t, gdb, "bob@x.com")
	carol := createUser(t, gdb, "carol@x.com")

	require.NoError(t, repo.Create(ctx, &model.Follow{FollowerID: bob.ID, FollowingID: alice.ID}))
	require.NoError(t, repo.Create(ctx, &model.Follow{FollowerID: carol.ID, FollowingID: alice.ID}))
	assert.Error(t, repo.Create(ctx, &model.Follow{FollowerID: bob.ID, FollowingID: alice.ID}))

	exists, err := repo.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	followers, total, err := repo.ListFollowers(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, followers, 2)

	following, total, err := repo.ListFollowing(ctx, bob.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, following, 1)
	assert.Equal(t, alice.ID, following[0].ID)

	ids, err := repo.FollowingIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, ids)

	n, err := repo.CountFollowers(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	removed, err := repo.Delete(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	removed, err = repo.Delete(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestFollowRepository_ActivityRecipients(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewFollowRepository(gdb)
	ctx := context.Background()

	author := createUser(t, gdb, "author@x.com")
	optedIn := createUser(t, gdb, "in@x.com")
	optedOut := createUser(t, gdb, "out@x.com")
	noPrefs := createUser(t, gdb, "noprefs@x.com")

	require.NoError(t, gdb.Create(model.DefaultPreferences(optedIn.ID)).Error)
	off := model.DefaultPreferences(optedOut.ID)
	off.NotifyFriendActivity = false
	require.NoError(t, gdb.Create(off).Error)

	for _, u := range []*model.User{optedIn, optedOut, noPrefs} {
		require.NoError(t, repo.Create(ctx, &model.Follow{FollowerID: u.ID, FollowingID: author.ID}))
	}

	ids, err := repo.ActivityRecipients(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{optedIn.ID}, ids)
}

func TestCollectionRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewCollectionRepository(gdb)
	ctx := context.Background()

	user := createUser(t, gdb, "u@x.com")
	cafe := createCafe(t, gdb, "p1", 0, 0)

	require.NoError(t, repo.FollowCafe(ctx, user.ID, cafe.ID))
	require.NoError(t, repo.FollowCafe(ctx, user.ID, cafe.ID))
	following, err := repo.IsFollowingCafe(ctx, user.ID, cafe.ID)
	require.NoError(t, err)
	assert.True(t, following)
	followers, err := NewCafeRepository(gdb).CountFollowers(ctx, cafe.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	require.NoError(t, repo.Save(ctx, &model.SavedCafe{UserID: user.ID, CafeID: cafe.ID}))
	assert.Error(t, repo.Save(ctx, &model.SavedCafe{UserID: user.ID, CafeID: cafe.ID}))
	saved, err := repo.ListSaved(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.NotNil(t, saved[0].Cafe)
	assert.NotNil(t, saved[0].Cafe.Ratings)

	require.NoError(t, repo.MarkVisited(ctx, &model.VisitedCafe{UserID: user.ID, CafeID: cafe.ID}))
	visited, err := repo.IsVisited(ctx, user.ID, cafe.ID)
	require.NoError(t, err)
	assert.True(t, visited)

	n, err := repo.UnmarkVisited(ctx, user.ID, cafe.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repo.Unsave(ctx, user.ID, "other")
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = repo.UnfollowCafe(ctx, user.ID, cafe.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNotificationRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewNotificationRepository(gdb)
	ctx := context.Background()

	user := createUser(t, gdb, "u@x.com")
	batch := make([]model.Notification, 0, 150)
	for i := 0; i < 150; i++ {
		batch = append(batch, model.Notification{
			UserID: user.ID,
			Type:   model.NotificationTypeFriendReview,
			Title:  "New Review",
			Body:   "body",
			Data:   model.JSONMap{"i": i},
		})
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))
	require.NoError(t, repo.CreateBatch(ctx, nil))

	unread, err := repo.CountUnread(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), unread)

	page, total, err := repo.List(ctx, user.ID, false, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(150), total)
	assert.Len(t, page, 20)

	require.NoError(t, repo.MarkRead(ctx, batch[0].ID))
	got, err := repo.FindByID(ctx, batch[0].ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	_, total, err = repo.List(ctx, user.ID, true, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(149), total)

	marked, err := repo.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(149), marked)

	purged, err := repo.DeleteReadBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(150), purged)
}

func TestPreferencesRepository_PersistsFalseFlags(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewPreferencesRepository(gdb)
	ctx := context.Background()

	user := createUser(t, gdb, "u@x.com")
	prefs := model.DefaultPreferences(user.ID)
	require.NoError(t, repo.Create(ctx, prefs))

	prefs.NotifyFriendActivity = false
	prefs.NotifyNewCafes = false
	require.NoError(t, repo.Update(ctx, prefs))

	got, err := repo.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.NotifyFriendActivity)
	assert.False(t, got.NotifyNewCafes)
	assert.Equal(t, 5.0, got.PreferredRadiusKm)
}

func TestMenuRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewMenuRepository(gdb)
	ctx := context.Background()

	user := createUser(t, gdb, "u@x.com")
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"Latte", "Scone", "Mocha"} {
		require.NoError(t, repo.Create(ctx, &model.PersonalMenuItem{
			UserID:      user.ID,
			CafePlaceID: "p1",
			CafeName:    "Bean",
			ItemName:    name,
			ItemType:    model.MenuItemDrink,
			Rating:      4,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	mine, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, "Mocha", mine[0].ItemName)

	forCafe, err := repo.ListByCafePlaceID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, forCafe, 3)
	assert.Equal(t, "Latte", forCafe[0].ItemName)

	forCafe[0].Rating = 2
	require.NoError(t, repo.Update(ctx, &forCafe[0]))
	got, err := repo.FindByID(ctx, forCafe[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Rating)

	require.NoError(t, repo.Delete(ctx, got.ID))
	mine, err = repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
