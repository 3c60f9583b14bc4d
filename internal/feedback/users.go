package feedback

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/feedback-board/backend/internal/auth"
	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

// SyncUser returns the local user for a verified identity, creating it on
// first sight. Name and email are refreshed when the provider reports new
// non-empty values; the role is never touched.
func (s *Service) SyncUser(ctx context.Context, id auth.Identity) (*models.User, error) {
	subject := strings.TrimSpace(id.Subject)
	if subject == "" {
		return nil, ErrUnauthorized
	}

	user := models.User{
		ExternalID: subject,
		Name:       strings.TrimSpace(id.Name),
		Email:      strings.TrimSpace(id.Email),
		Role:       models.RoleMember,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.Set{
				{Column: clause.Column{Name: "name"}, Value: keepIfBlank("name")},
				{Column: clause.Column{Name: "email"}, Value: keepIfBlank("email")},
				{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("EXCLUDED.updated_at")},
			},
		}).
		Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("sync user %s: %w", subject, err)
	}

	var stored models.User
	if err := s.db.WithContext(ctx).Where("external_id = ?", subject).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("load user %s: %w", subject, err)
	}
	return &stored, nil
}

// keepIfBlank keeps the stored value when the provider sent an empty one.
func keepIfBlank(column string) clause.Expr {
	return gorm.Expr("COALESCE(NULLIF(EXCLUDED." + column + ", ''), users." + column + ")")
}
