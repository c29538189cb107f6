package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/go-selection-translator/internal/logger"
	"github.com/nerdneilsfield/go-selection-translator/pkg/translation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// defaultTestText 测试翻译使用的默认文本
const defaultTestText = "Hello"

func newSettingsCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "查看、修改或测试翻译设置",
	}

	cmd.AddCommand(
		newSettingsShowCommand(root),
		newSettingsSetCommand(root),
		newSettingsTestCommand(root),
	)
	return cmd
}

func newSettingsShowCommand(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "显示当前设置，密钥只显示前4位",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if settings == nil {
				return fmt.Errorf("请先配置翻译API（设置文件 %s 不存在）", a.settings.Path())
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(settings.Masked())
			}
			renderSettings(out, settings, a.settings.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "以 JSON 输出")
	return cmd
}

// settingsFlags settings set 的可选字段，只应用显式给出的标志
type settingsFlags struct {
	provider       string
	baiduAppID     string
	baiduSecretKey string
	libreURL       string
	libreAPIKey    string
	deepseekAPIKey string
	enableCache    bool
	enableFallback bool
}

func (f *settingsFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.provider, "provider", "", "主翻译服务（baidu, libretranslate, deepseek）")
	fs.StringVar(&f.baiduAppID, "baidu-app-id", "", "百度翻译 APP ID")
	fs.StringVar(&f.baiduSecretKey, "baidu-secret-key", "", "百度翻译 Secret Key")
	fs.StringVar(&f.libreURL, "libre-url", "", "LibreTranslate 服务地址")
	fs.StringVar(&f.libreAPIKey, "libre-api-key", "", "LibreTranslate API Key（可选）")
	fs.StringVar(&f.deepseekAPIKey, "deepseek-api-key", "", "DeepSeek API Key")
	fs.BoolVar(&f.enableCache, "cache", true, "启用翻译缓存")
	fs.BoolVar(&f.enableFallback, "fallback", true, "主服务失败时切换备用服务")
}

func (f *settingsFlags) apply(fs *pflag.FlagSet, s *translation.Settings) {
	if fs.Changed("provider") {
		s.APIProvider = strings.ToLower(strings.TrimSpace(f.provider))
	}
	if fs.Changed("baidu-app-id") {
		s.Baidu.AppID = f.baiduAppID
	}
	if fs.Changed("baidu-secret-key") {
		s.Baidu.SecretKey = f.baiduSecretKey
	}
	if fs.Changed("libre-url") {
		s.LibreTranslate.URL = f.libreURL
	}
	if fs.Changed("libre-api-key") {
		s.LibreTranslate.APIKey = f.libreAPIKey
	}
	if fs.Changed("deepseek-api-key") {
		s.DeepSeek.APIKey = f.deepseekAPIKey
	}
	if fs.Changed("cache") {
		s.EnableCache = f.enableCache
	}
	if fs.Changed("fallback") {
		s.EnableFallback = f.enableFallback
	}
}

func newSettingsSetCommand(root *rootOptions) *cobra.Command {
	flags := &settingsFlags{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "修改并保存设置，未给出的字段保持不变",
		Example: `  translator settings set --provider baidu --baidu-app-id 2015063000000001 --baidu-secret-key xxx
  translator settings set --provider deepseek --deepseek-api-key sk-xxx
  translator settings set --cache=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if settings == nil {
				settings = translation.DefaultSettings()
			}
			flags.apply(cmd.Flags(), settings)

			if err := a.manager.SaveSettings(ctx, settings); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, color.GreenString("设置已保存"))
			renderSettings(out, settings, a.settings.Path())
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newSettingsTestCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test [text...]",
		Short: "用当前设置翻译一段文本，检查服务是否可用",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				text = defaultTestText
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
			if settings == nil {
				settings = translation.DefaultSettings()
			}

			result := a.manager.TestTranslation(ctx, settings, text)
			if !result.OK() {
				msg := result.ErrorMessage
				if msg == "" {
					msg = "翻译失败"
				}
				return fmt.Errorf("测试失败: %s", msg)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("测试成功:"), result.TranslatedText)
			return nil
		},
	}
}
