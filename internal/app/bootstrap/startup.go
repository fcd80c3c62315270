// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// The content roots are checked here so a misconfigured mount fails the
// boot instead of turning every document request into a 404.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	for _, root := range []string{appCfg.DocumentsRoot, appCfg.BatchRoot} {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("content root %q: %w", root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("content root %q is not a directory", root)
		}
	}

	logger.Info("content roots verified",
		zap.String("documents_root", appCfg.DocumentsRoot),
		zap.String("batch_root", appCfg.BatchRoot))
	return nil
}
