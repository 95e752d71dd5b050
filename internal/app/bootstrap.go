package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/SAP-F-2025/skill-tracker/internal/config"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
)

// LoadConfig reads the configuration next to cfgPath and installs the process
// logger as the slog default.
func LoadConfig(cfgPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config: %w", err)
	}
	logger := utils.NewLogger(cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
