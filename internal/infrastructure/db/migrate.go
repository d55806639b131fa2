package db

import (
	"innovation-portal/internal/domain/idea"
	"innovation-portal/internal/domain/review"
	"innovation-portal/internal/domain/user"

	"gorm.io/gorm"
)

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&user.User{},
		&idea.Idea{},
		&idea.CoApplicant{},
		&idea.Attachment{},
		&review.Review{},
	}
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}
