package providers

import (
	"github.com/fiskora/fiskora/internal/providers/email"
	"github.com/fiskora/fiskora/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
