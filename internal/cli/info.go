package cli

import (
	"encoding/json"
	"fmt"

	"github.com/nerdneilsfield/go-selection-translator/internal/logger"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/libretranslate"
	"github.com/nerdneilsfield/go-selection-translator/pkg/translation"
	"github.com/spf13/cobra"
)

func newQuotaCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "显示本进程的剩余请求配额",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, root, logger.FormatConsole)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			renderQuota(cmd.OutOrStdout(), a.manager.Quota(), a.cfg.RateLimit.PerMinute, a.cfg.RateLimit.PerHour)
			return nil
		},
	}
}

func newProvidersCommand(root *rootOptions) *cobra.Command {
	var (
		jsonOutput bool
		languages  bool
	)

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "列出翻译服务、配置状态和调用统计",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, root, logger.FormatConsole)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if languages {
				settings, err := a.manager.Settings(ctx)
				if err != nil {
					return err
				}
				if settings == nil {
					settings = translation.DefaultSettings()
				}
				list, err := libretranslate.New(settings.LibreTranslate, a.logger).Languages(ctx)
				if err != nil {
					return fmt.Errorf("failed to list LibreTranslate languages: %w", err)
				}
				renderLanguages(cmd.OutOrStdout(), settings.LibreTranslate.URL, list)
				return nil
			}

			all := a.manager.ProviderStats()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}

			settings, err := a.manager.Settings(ctx)
			if err != nil {
				return err
			}
			renderProviders(cmd.OutOrStdout(), settings, all)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "以 JSON 输出调用统计")
	cmd.Flags().BoolVar(&languages, "languages", false, "列出 LibreTranslate 服务支持的语言")
	return cmd
}
