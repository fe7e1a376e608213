package internal

import (
	"kvert/account-api/internal/service"
	"kvert/account-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	DB      *gorm.DB
	Argon   *security.ArgonHash
	Mail    *service.MailQueue
	Avatars *service.AvatarService
}
