package feedback

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

const pgForeignKeyViolation = "23503"

// VoteResult is the state of the (user, post) pair after a toggle.
type VoteResult struct {
	Voted bool  `json:"voted"`
	Votes int64 `json:"votes"`
}

// ToggleVote removes the user's vote on the post if there is one and adds it
// otherwise.
//
// The whole read-branch-write runs in one transaction. The post row is held
// with FOR KEY SHARE so it cannot be deleted underneath us, and a transaction
// scoped advisory lock on (user, post) serialises concurrent toggles of the
// same pair across processes. The unique index on votes(user_id, post_id)
// backs the insert, so the pair never holds more than one row.
func (s *Service) ToggleVote(ctx context.Context, user *models.User, postID int) (VoteResult, error) {
	if user == nil {
		return VoteResult{}, ErrUnauthorized
	}
	if !validPostID(postID) {
		return VoteResult{}, ErrNotFound
	}

	var result VoteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := tx.Clauses(clause.Locking{Strength: "KEY SHARE"}).
			Select("id").
			First(&post, postID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock post %d: %w", postID, err)
		}

		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", user.ID, postID).Error; err != nil {
			return fmt.Errorf("lock vote pair: %w", err)
		}

		res := tx.Where("user_id = ? AND post_id = ?", user.ID, postID).Delete(&models.Vote{})
		if res.Error != nil {
			return fmt.Errorf("delete vote: %w", res.Error)
		}

		if res.RowsAffected > 0 {
			result.Voted = false
		} else {
			vote := models.Vote{UserID: user.ID, PostID: postID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote).Error; err != nil {
				if isForeignKeyViolation(err) {
					return ErrNotFound
				}
				return fmt.Errorf("insert vote: %w", err)
			}
			result.Voted = true
		}

		if err := tx.Model(&models.Vote{}).Where("post_id = ?", postID).Count(&result.Votes).Error; err != nil {
			return fmt.Errorf("count votes: %w", err)
		}
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}

	return result, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
