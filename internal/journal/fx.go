package journal

import (
	"github.com/fiskora/fiskora/internal/journal/repository"
	"github.com/fiskora/fiskora/internal/journal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("journal",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
