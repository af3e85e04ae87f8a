package fiscalyear

import (
	"github.com/fiskora/fiskora/internal/fiscalyear/repository"
	"github.com/fiskora/fiskora/internal/fiscalyear/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fiscalyear",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
