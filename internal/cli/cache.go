package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/go-selection-translator/internal/logger"
	"github.com/spf13/cobra"
)

func newCacheCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "查看或清理翻译缓存",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "显示缓存统计",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := newApp(ctx, root, logger.FormatConsole)
				if err != nil {
					return err
				}
				defer a.Close(ctx)

				s, err := a.manager.CacheStats(ctx)
				if err != nil {
					return err
				}
				renderCacheStats(cmd.OutOrStdout(), s)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "清空所有翻译缓存",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := newApp(ctx, root, logger.FormatConsole)
				if err != nil {
					return err
				}
				defer a.Close(ctx)

				if err := a.manager.ClearCache(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("缓存已清空"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "删除过期的缓存条目",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := newApp(ctx, root, logger.FormatConsole)
				if err != nil {
					return err
				}
				defer a.Close(ctx)

				n, err := a.manager.CleanExpiredCache(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "已删除 %d 条过期缓存\n", n)
				return nil
			},
		},
	)

	return cmd
}
