package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/feedback-board/backend/internal/auth"
	"github.com/emilythestrangee/feedback-board/backend/internal/models"
	"github.com/emilythestrangee/feedback-board/backend/internal/testutil"
)

func newTestService(t *testing.T) (*Service, func() int64) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	countPosts := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.Post{}).Count(&n).Error)
		return n
	}
	return NewService(db), countPosts
}

func TestSyncUserCreatesOnceAndRefreshes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.SyncUser(ctx, auth.Identity{Subject: "user_a", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, models.RoleMember, first.Role)

	again, err := svc.SyncUser(ctx, auth.Identity{Subject: "user_a", Name: "Ada Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "the local id is stable")
	assert.Equal(t, "Ada Lovelace", again.Name)

	blank, err := svc.SyncUser(ctx, auth.Identity{Subject: "user_a"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", blank.Name, "empty claims keep stored values")
	assert.Equal(t, "ada@example.com", blank.Email)

	var n int64
	require.NoError(t, svc.db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSyncUserKeepsRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.SyncUser(ctx, auth.Identity{Subject: "admin_c", Name: "Cy"})
	require.NoError(t, err)
	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", u.ID).Update("role", string(models.RoleAdmin)).Error)

	u, err = svc.SyncUser(ctx, auth.Identity{Subject: "admin_c", Name: "Cy"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestSyncUserConcurrentFirstSight(t *testing.T) {
	svc, _ := newTestService(t)

	var wg sync.WaitGroup
	ids := make([]int, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := svc.SyncUser(context.Background(), auth.Identity{Subject: "user_race", Name: "Racer"})
			errs[i] = err
			if err == nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestSyncUserRequiresSubject(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SyncUser(context.Background(), auth.Identity{Subject: "  "})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSubmitFeedback(t *testing.T) {
	svc, countPosts := newTestService(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)

	post, err := svc.SubmitFeedback(ctx, user, validInput())
	require.NoError(t, err)

	assert.NotZero(t, post.ID)
	assert.Equal(t, models.StatusUnderReview, post.Status)
	assert.Equal(t, models.CategoryFeature, post.Category)
	assert.Equal(t, user.ID, post.AuthorID)
	assert.Zero(t, post.VoteCount)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, int64(1), countPosts())

	stored, err := svc.GetPost(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, stored.Status)
	assert.Zero(t, stored.VoteCount)
	require.NotNil(t, stored.Author)
	assert.Equal(t, user.ID, stored.Author.ID)
}

func TestSubmitFeedbackStoresTrimmedValues(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)

	post, err := svc.SubmitFeedback(ctx, user, SubmitInput{
		Title:       "  Add dark mode \n",
		Category:    " Feature ",
		Description: "\tPlease add a dark theme option  ",
	})
	require.NoError(t, err)

	stored, err := svc.GetPost(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Add dark mode", stored.Title)
	assert.Equal(t, models.CategoryFeature, stored.Category)
	assert.Equal(t, "Please add a dark theme option", stored.Description)
}

func TestSubmitFeedbackRejectsInvalidInput(t *testing.T) {
	svc, countPosts := newTestService(t)
	user := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)

	in := validInput()
	in.Description = "short"

	_, err := svc.SubmitFeedback(context.Background(), user, in)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"description"}, keys(verr.Fields))
	assert.Zero(t, countPosts(), "no partial record is persisted")
}

func TestSubmitFeedbackRequiresUser(t *testing.T) {
	svc, countPosts := newTestService(t)

	_, err := svc.SubmitFeedback(context.Background(), nil, validInput())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, countPosts())
}

func TestToggleVoteAlternates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)
	voter := testutil.CreateTestUser(t, svc.db, "user_b", models.RoleMember)
	post := testutil.CreateTestPost(t, svc.db, author, "Add dark mode", models.CategoryFeature, models.StatusUnderReview)

	res, err := svc.ToggleVote(ctx, voter, post.ID)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Voted: true, Votes: 1}, res)

	res, err = svc.ToggleVote(ctx, voter, post.ID)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Voted: false, Votes: 0}, res)

	assert.Zero(t, testutil.CountVotes(t, svc.db, voter.ID, post.ID))
}

func TestToggleVoteCountsOtherVoters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)
	voter := testutil.CreateTestUser(t, svc.db, "user_b", models.RoleMember)
	post := testutil.CreateTestPost(t, svc.db, author, "Add dark mode", models.CategoryFeature, models.StatusUnderReview)
	testutil.AddTestVote(t, svc.db, author, post)

	res, err := svc.ToggleVote(ctx, voter, post.ID)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Voted: true, Votes: 2}, res)

	viewed, err := svc.GetPost(ctx, voter, post.ID)
	require.NoError(t, err)
	assert.True(t, viewed.HasVoted)
	assert.Equal(t, int64(2), viewed.VoteCount)
}

func TestToggleVoteMissingPost(t *testing.T) {
	svc, _ := newTestService(t)
	voter := testutil.CreateTestUser(t, svc.db, "user_b", models.RoleMember)

	_, err := svc.ToggleVote(context.Background(), voter, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, testutil.CountVotes(t, svc.db, voter.ID, 9999))
}

func TestOutOfRangePostIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	voter := testutil.CreateTestUser(t, svc.db, "user_b", models.RoleMember)
	admin := testutil.CreateTestUser(t, svc.db, "admin_c", models.RoleAdmin)

	for _, id := range []int{0, -1, 3000000000} {
		_, err := svc.GetPost(ctx, voter, id)
		assert.ErrorIs(t, err, ErrNotFound, "get %d", id)

		_, err = svc.ToggleVote(ctx, voter, id)
		assert.ErrorIs(t, err, ErrNotFound, "toggle %d", id)

		_, err = svc.UpdateStatus(ctx, admin, id, "planned")
		assert.ErrorIs(t, err, ErrNotFound, "status %d", id)
	}
}

func TestToggleVoteRequiresUser(t *testing.T) {
	svc, _ := newTestService(t)
	author := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)
	post := testutil.CreateTestPost(t, svc.db, author, "Add dark mode", models.CategoryFeature, models.StatusUnderReview)

	_, err := svc.ToggleVote(context.Background(), nil, post.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, testutil.CountVotes(t, svc.db, 0, post.ID))
}

func TestToggleVoteAfterPostDeleted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)
	voter := testutil.CreateTestUser(t, svc.db, "user_b", models.RoleMember)
	post := testutil.CreateTestPost(t, svc.db, author, "Add dark mode", models.CategoryFeature, models.StatusUnderReview)

	_, err := svc.ToggleVote(ctx, voter, post.ID)
	require.NoError(t, err)

	require.NoError(t, svc.db.Delete(&models.Post{}, post.ID).Error)

	_, err = svc.ToggleVote(ctx, voter, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, testutil.CountVotes(t, svc.db, voter.ID, post.ID))
}

// Concurrent toggles of one pair serialise: with n calls the pair ends voted
// iff n is odd, and exactly one call observed each intermediate state.
func TestToggleVoteConcurrentSamePair(t *testing.T) {
	for _, n := range []int{2, 7, 10} {
		svc, _ := newTestService(t)
		author := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)
		voter := testutil.CreateTestUser(t, svc.db, "user_b", models.RoleMember)
		post := testutil.CreateTestPost(t, svc.db, author, "Add dark mode", models.CategoryFeature, models.StatusUnderReview)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			voted   int
			unvoted int
			errs    []error
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := svc.ToggleVote(context.Background(), voter, post.ID)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				if res.Voted {
					voted++
				} else {
					unvoted++
				}
			}()
		}
		wg.Wait()

		require.Empty(t, errs)
		rows := testutil.CountVotes(t, svc.db, voter.ID, post.ID)
		assert.LessOrEqual(t, rows, int64(1))
		assert.Equal(t, int64(n%2), rows, "n=%d", n)
		assert.Equal(t, (n+1)/2, voted, "n=%d", n)
		assert.Equal(t, n/2, unvoted, "n=%d", n)

		// The last committed call is the one that leaves the final state; a
		// fresh toggle must flip it.
		res, err := svc.ToggleVote(context.Background(), voter, post.ID)
		require.NoError(t, err)
		assert.Equal(t, rows == 0, res.Voted)
	}
}

func TestToggleVoteConcurrentManyUsers(t *testing.T) {
	svc, _ := newTestService(t)
	author := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)
	post := testutil.CreateTestPost(t, svc.db, author, "Add dark mode", models.CategoryFeature, models.StatusUnderReview)

	voters := make([]*models.User, 12)
	for i := range voters {
		voters[i] = testutil.CreateTestUser(t, svc.db, "voter_"+string(rune('a'+i)), models.RoleMember)
	}

	var wg sync.WaitGroup
	for _, v := range voters {
		wg.Add(1)
		go func(v *models.User) {
			defer wg.Done()
			_, err := svc.ToggleVote(context.Background(), v, post.ID)
			assert.NoError(t, err)
		}(v)
	}
	wg.Wait()

	assert.Equal(t, int64(len(voters)), testutil.CountVotes(t, svc.db, 0, post.ID))
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)
	admin := testutil.CreateTestUser(t, svc.db, "admin_c", models.RoleAdmin)
	post := testutil.CreateTestPost(t, svc.db, author, "Add dark mode", models.CategoryFeature, models.StatusUnderReview)
	testutil.AddTestVote(t, svc.db, author, post)

	updated, err := svc.UpdateStatus(ctx, admin, post.ID, "planned")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlanned, updated.Status)
	assert.True(t, updated.UpdatedAt.After(post.UpdatedAt) || updated.UpdatedAt.Equal(post.UpdatedAt))
	assert.Equal(t, int64(1), updated.VoteCount, "votes are untouched")

	// completed is not terminal
	_, err = svc.UpdateStatus(ctx, admin, post.ID, "completed")
	require.NoError(t, err)
	reverted, err := svc.UpdateStatus(ctx, admin, post.ID, "in_progress")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, reverted.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)
	admin := testutil.CreateTestUser(t, svc.db, "admin_c", models.RoleAdmin)
	post := testutil.CreateTestPost(t, svc.db, author, "Add dark mode", models.CategoryFeature, models.StatusUnderReview)

	for _, bad := range []string{"", "shipped", "Planned", "in progress"} {
		_, err := svc.UpdateStatus(ctx, admin, post.ID, bad)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "status %q", bad)
		assert.Contains(t, verr.Fields, "status")
	}

	stored, err := svc.GetPost(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, stored.Status)
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := testutil.CreateTestUser(t, svc.db, "user_a", models.RoleMember)
	post := testutil.CreateTestPost(t, svc.db, author, "Add dark mode", models.CategoryFeature, models.StatusUnderReview)

	_, err := svc.UpdateStatus(ctx, author, post.ID, "planned")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.UpdateStatus(ctx, nil, post.ID, "planned")
	assert.ErrorIs(t, err, ErrUnauthorized)

	stored, err := svc.GetPost(ctx, nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, stored.Status)
}

func TestUpdateStatusMissingPost(t *testing.T) {
	svc, _ := newTestService(t)
	admin := testutil.CreateTestUser(t, svc.db, "admin_c", models.RoleAdmin)

	_, err := svc.UpdateStatus(context.Background(), admin, 4242, "planned")
	assert.ErrorIs(t, err, ErrNotFound)
}

// The end-to-end scenario: submit, vote, unvote, plan.
func TestFeedbackLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.SyncUser(ctx, auth.Identity{Subject: "user_a", Name: "A"})
	require.NoError(t, err)
	b, err := svc.SyncUser(ctx, auth.Identity{Subject: "user_b", Name: "B"})
	require.NoError(t, err)
	c, err := svc.SyncUser(ctx, auth.Identity{Subject: "admin_c", Name: "C"})
	require.NoError(t, err)
	require.NoError(t, svc.db.Model(c).Update("role", string(models.RoleAdmin)).Error)
	c.Role = models.RoleAdmin

	post, err := svc.SubmitFeedback(ctx, a, SubmitInput{
		Title:       "Add dark mode",
		Category:    "Feature",
		Description: "Please add a dark theme option",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, post.Status)
	assert.Zero(t, post.VoteCount)

	res, err := svc.ToggleVote(ctx, b, post.ID)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Voted: true, Votes: 1}, res)

	res, err = svc.ToggleVote(ctx, b, post.ID)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Voted: false, Votes: 0}, res)

	updated, err := svc.UpdateStatus(ctx, c, post.ID, "planned")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlanned, updated.Status)
}

func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
