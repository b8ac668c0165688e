package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/isdmx/labhub/config"
	"github.com/isdmx/labhub/logger"
	"github.com/isdmx/labhub/sandbox"
	"github.com/isdmx/labhub/usercopy"
)

// NewFromConfig loads the configured catalog and assembles the Service.
func NewFromConfig(
	cfg *config.Config,
	parent *zap.Logger,
	store usercopy.Store,
	executor sandbox.SandboxExecutor,
	frames *sandbox.FrameStore,
) *Service {
	log := logger.Component(parent, "hub")
	cat, notice := LoadCatalog(context.Background(), log, cfg.Catalog.Source)
	return New(log, cat, store, executor, frames).WithNotice(notice)
}
