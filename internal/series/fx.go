package series

import (
	"github.com/fiskora/fiskora/internal/series/repository"
	"github.com/fiskora/fiskora/internal/series/service"
	"go.uber.org/fx"
)

var Module = fx.Module("series",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
