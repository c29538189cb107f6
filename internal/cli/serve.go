package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerdneilsfield/go-selection-translator/internal/logger"
	"github.com/nerdneilsfield/go-selection-translator/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动本地 HTTP 服务，接收 TRANSLATE / TEST_TRANSLATION 消息",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, root, logger.FormatJSON)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			// 启动时清理一次过期缓存
			if n, err := a.manager.CleanExpiredCache(ctx); err != nil {
				a.logger.Warn("清理过期缓存失败", zap.Error(err))
			} else if n > 0 {
				a.logger.Info("已清理过期缓存", zap.Int("count", n))
			}

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv := server.New(a.manager, a.logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("正在关闭 HTTP 服务")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if err := <-errCh; err != nil {
				a.logger.Warn("HTTP 服务退出", zap.Error(err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "监听地址，默认取配置中的 server.addr")
	return cmd
}
