package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/go-selection-translator/internal/logger"
	"github.com/nerdneilsfield/go-selection-translator/pkg/langdetect"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/spf13/cobra"
)

type translateOptions struct {
	provider   string
	noCache    bool
	noFallback bool
	jsonOutput bool
	verbose    bool
}

func newTranslateCommand(root *rootOptions) *cobra.Command {
	opts := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "翻译文本，不给参数时从标准输入读取",
		Example: `  translator translate "Hello, world!"
  translator translate 你好世界 --provider deepseek
  echo "selection" | translator translate --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = strings.TrimSpace(string(data))
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, root, logger.FormatConsole)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			settings, err := a.manager.Settings(ctx)
			if err != nil {
				return err
			}
			if settings != nil && opts.overrides() {
				s := settings.Clone()
				if opts.provider != "" {
					s.APIProvider = opts.provider
				}
				if opts.noCache {
					s.EnableCache = false
				}
				if opts.noFallback {
					s.EnableFallback = false
				}
				a.manager.SetSettings(s)
				settings = s
			}

			result := a.manager.Translate(ctx, text)

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else if result.OK() {
				fmt.Fprintln(out, color.New(color.FgGreen).Sprint(result.TranslatedText))
			}

			if opts.verbose {
				provider := ""
				if settings != nil {
					provider = settings.APIProvider
				}
				renderResultDetails(cmd.ErrOrStderr(), result, provider, langdetect.Detect(text))
			}

			if !result.OK() {
				return fmt.Errorf("翻译失败: %s", result.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.provider, "provider", "p", "", "本次使用的翻译服务（baidu, libretranslate, deepseek）")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "不读写缓存")
	cmd.Flags().BoolVar(&opts.noFallback, "no-fallback", false, "主服务失败时不切换备用服务")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "以 JSON 输出完整结果")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "显示翻译方向、耗时等信息")

	return cmd
}

func (o *translateOptions) overrides() bool {
	return o.provider != "" || o.noCache || o.noFallback
}

// statusText 带颜色的状态
func statusText(status providers.Status) string {
	switch status {
	case providers.StatusSuccess:
		return color.GreenString(string(status))
	case providers.StatusTimeout:
		return color.YellowString(string(status))
	default:
		return color.RedString(string(status))
	}
}
