package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rootOptions 全局标志
type rootOptions struct {
	cfgFile string
	debug   bool
}

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "translator",
		Short: "划词翻译工具，支持百度翻译、LibreTranslate 和 DeepSeek",
		Long: `划词翻译工具：自动判断中英方向，按设置调用翻译服务，并带有结果缓存、
请求限流和备用服务切换。

支持的翻译提供商:
  - baidu: 百度翻译开放平台（需要 APP ID 和 Secret Key）
  - libretranslate: LibreTranslate（开源，可自建）
  - deepseek: DeepSeek 大语言模型（需要 API Key）

设置保存在 settings_file 指定的 YAML 文件中，可以用 "translator settings set" 修改。`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "配置文件路径（默认 $HOME/.translator.yaml 或 ./.translator.yaml）")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "启用调试日志")

	rootCmd.AddCommand(
		newTranslateCommand(opts),
		newServeCommand(opts),
		newCacheCommand(opts),
		newSettingsCommand(opts),
		newQuotaCommand(opts),
		newProvidersCommand(opts),
	)

	return rootCmd
}
