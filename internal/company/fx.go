package company

import (
	"github.com/fiskora/fiskora/internal/company/repository"
	"github.com/fiskora/fiskora/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
