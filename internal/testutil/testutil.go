// Package testutil starts a throwaway PostgreSQL for integration tests and
// seeds it with fixtures.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/emilythestrangee/feedback-board/backend/internal/database"
	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// PostgresDSN returns the connection string of a PostgreSQL container shared by
// every test in the package. The container is reaped when the test binary
// exits. Tests are skipped under -short or without a container runtime.
func PostgresDSN(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	pgOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		ctr, err := postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("feedback"),
			postgres.WithUsername("feedback"),
			postgres.WithPassword("feedback"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			pgErr = fmt.Errorf("start postgres container: %w", err)
			return
		}
		pgDSN, pgErr = ctr.ConnectionString(ctx, "sslmode=disable")
	})
	require.NoError(t, pgErr)

	return pgDSN
}

// SetupTestDB returns a gorm handle on a freshly migrated, empty database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(PostgresDSN(t), "silent")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, sqlDB))

	_, err = sqlDB.ExecContext(ctx, `TRUNCATE votes, posts, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return db
}

// CreateTestUser inserts a user with the given provider subject and role.
func CreateTestUser(t *testing.T, db *gorm.DB, externalID string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		ExternalID: externalID,
		Name:       "User " + externalID,
		Email:      externalID + "@example.com",
		Role:       role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestPost inserts a post owned by author with the given status.
func CreateTestPost(t *testing.T, db *gorm.DB, author *models.User, title string, category models.Category, status models.Status) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:       title,
		Category:    category,
		Description: "A description that is long enough",
		Status:      status,
		AuthorID:    author.ID,
	}
	require.NoError(t, db.Omit("Author").Create(post).Error)
	return post
}

// AddTestVote records a vote directly, bypassing the toggle.
func AddTestVote(t *testing.T, db *gorm.DB, user *models.User, post *models.Post) {
	t.Helper()
	require.NoError(t, db.Create(&models.Vote{UserID: user.ID, PostID: post.ID}).Error)
}

// CountVotes returns the number of vote rows for (userID, postID). A zero
// userID counts every vote on the post.
func CountVotes(t *testing.T, db *gorm.DB, userID, postID int) int64 {
	t.Helper()

	q := db.Model(&models.Vote{}).Where("post_id = ?", postID)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	var n int64
	require.NoError(t, q.Count(&n).Error)
	return n
}
