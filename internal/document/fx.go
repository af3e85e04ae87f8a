package document

import (
	"github.com/fiskora/fiskora/internal/document/repository"
	"github.com/fiskora/fiskora/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
