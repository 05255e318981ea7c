package config

import "go.uber.org/fx"

// Module provides the environment-loaded Config.
var Module = fx.Provide(Load)
