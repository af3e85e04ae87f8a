package customer

import (
	"github.com/fiskora/fiskora/internal/customer/repository"
	"github.com/fiskora/fiskora/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
