package closing

import (
	"github.com/fiskora/fiskora/internal/closing/repository"
	"github.com/fiskora/fiskora/internal/closing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("closing",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
