// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/carve-build/carve/internal/adapters/config"
	_ "github.com/carve-build/carve/internal/adapters/fs"
	_ "github.com/carve-build/carve/internal/adapters/logger"
	_ "github.com/carve-build/carve/internal/adapters/manifest"
	_ "github.com/carve-build/carve/internal/adapters/telemetry"
	_ "github.com/carve-build/carve/internal/adapters/watcher"
	// Register app nodes.
	_ "github.com/carve-build/carve/internal/app"
)
