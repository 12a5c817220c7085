package detection

import (
	"github.com/smallbiznis/shipmentdna/internal/detection/repository"
	"github.com/smallbiznis/shipmentdna/internal/detection/service"
	"go.uber.org/fx"
)

var Module = fx.Module("detection",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
