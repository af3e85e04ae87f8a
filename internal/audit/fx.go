package audit

import (
	"github.com/fiskora/fiskora/internal/audit/repository"
	"github.com/fiskora/fiskora/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
