package logics

import (
	"contaula-server/configs"
	"contaula-server/internal/auth"
	"contaula-server/internal/repositories"
)

// Global service instances, wired once after the repositories are connected.
var (
	UserSvc         *UserService
	ProgressSvc     *ProgressService
	SessionSvc      *SessionService
	AuthzSvc        *AuthzService
	ChatSvc         *ChatService
	InventorySvc    *InventoryService
	DepreciationSvc *DepreciationService
)

// Init builds the service singletons. Must run after repositories.Init.
func Init() error {
	hasher, err := auth.NewHasher(configs.Configs.Authn.BcryptCost)
	if err != nil {
		return err
	}

	logger := configs.Logger

	UserSvc = NewUserService(repositories.NewUserRepository(), repositories.NewProgressRepository(), hasher, logger)
	ProgressSvc = NewProgressService(repositories.NewProgressRepository(), logger)
	SessionSvc = NewSessionService(UserSvc, logger)
	AuthzSvc = NewAuthzService()
	ChatSvc = NewChatService(logger)
	InventorySvc = NewInventoryService(logger)
	DepreciationSvc = NewDepreciationService(logger)

	return nil
}
