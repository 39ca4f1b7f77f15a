package gamification

import "go.uber.org/fx"

// Module exposes the gamification service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
