package sandbox

import (
	"go.uber.org/zap"

	"github.com/isdmx/labhub/config"
	"github.com/isdmx/labhub/logger"
)

// NewFrameStoreFromConfig creates the frame store used as the markup rendering context.
func NewFrameStoreFromConfig(cfg *config.Config) *FrameStore {
	return NewFrameStore(cfg.Server.PublicURL, cfg.Sandbox.FramePolicy)
}

// NewExecutorFromConfig wires an Executor to the frame store.
func NewExecutorFromConfig(log *zap.Logger, frames *FrameStore) SandboxExecutor {
	return NewExecutor(logger.Component(log, "sandbox"), frames)
}
