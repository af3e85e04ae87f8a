package account

import (
	"github.com/fiskora/fiskora/internal/account/repository"
	"github.com/fiskora/fiskora/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
