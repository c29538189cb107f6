package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nerdneilsfield/go-selection-translator/pkg/cache"
	"github.com/nerdneilsfield/go-selection-translator/pkg/langdetect"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/libretranslate"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/stats"
	"github.com/nerdneilsfield/go-selection-translator/pkg/ratelimit"
	"github.com/nerdneilsfield/go-selection-translator/pkg/translation"
)

// 提供商的显示名称
var providerLabels = map[string]string{
	providers.NameBaidu:          "百度翻译",
	providers.NameLibreTranslate: "LibreTranslate",
	providers.NameDeepSeek:       "DeepSeek",
}

func newTable(w io.Writer, title string) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	if title != "" {
		tw.SetTitle(title)
	}
	return tw
}

func renderResultDetails(w io.Writer, result providers.Result, provider string, direction langdetect.Direction) {
	tw := newTable(w, "")
	tw.AppendRow(table.Row{"提供商", provider})
	tw.AppendRow(table.Row{"方向", fmt.Sprintf("%s → %s", direction.From, direction.To)})
	tw.AppendRow(table.Row{"状态", statusText(result.Status)})
	tw.AppendRow(table.Row{"耗时", time.Duration(result.ResponseTime) * time.Millisecond})
	if result.ErrorMessage != "" {
		tw.AppendRow(table.Row{"错误", result.ErrorMessage})
	}
	tw.Render()
}

func renderCacheStats(w io.Writer, s cache.Stats) {
	tw := newTable(w, "翻译缓存")
	tw.AppendRow(table.Row{"条目数", s.Count})
	tw.AppendRow(table.Row{"占用空间", humanize.Bytes(uint64(s.Size))})
	oldest := "-"
	if s.OldestTimestamp > 0 {
		oldest = humanize.Time(time.UnixMilli(s.OldestTimestamp))
	}
	tw.AppendRow(table.Row{"最早条目", oldest})
	tw.AppendRow(table.Row{"命中 / 未命中", fmt.Sprintf("%d / %d", s.Hits, s.Misses)})
	tw.Render()
}

func renderQuota(w io.Writer, q ratelimit.Quota, perMinute, perHour int) {
	tw := newTable(w, "请求配额")
	tw.AppendHeader(table.Row{"窗口", "剩余", "上限", "重置于"})
	tw.AppendRow(table.Row{"每分钟", q.PerMinute, perMinute, q.MinuteResetIn.Round(time.Second)})
	tw.AppendRow(table.Row{"每小时", q.PerHour, perHour, q.HourResetIn.Round(time.Second)})
	tw.Render()
}

func renderSettings(w io.Writer, s *translation.Settings, path string) {
	m := s.Masked()
	tw := newTable(w, "翻译设置")
	tw.AppendRow(table.Row{"设置文件", path})
	tw.AppendRow(table.Row{"主服务", m.APIProvider})
	tw.AppendRow(table.Row{"缓存", onOff(m.EnableCache)})
	tw.AppendRow(table.Row{"备用切换", onOff(m.EnableFallback)})
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"百度 APP ID", valueOrDash(m.Baidu.AppID)})
	tw.AppendRow(table.Row{"百度 Secret Key", valueOrDash(m.Baidu.SecretKey)})
	tw.AppendRow(table.Row{"LibreTranslate 地址", valueOrDash(m.LibreTranslate.URL)})
	tw.AppendRow(table.Row{"LibreTranslate API Key", valueOrDash(m.LibreTranslate.APIKey)})
	tw.AppendRow(table.Row{"DeepSeek API Key", valueOrDash(m.DeepSeek.APIKey)})
	tw.Render()
}

func renderProviders(w io.Writer, settings *translation.Settings, all []stats.ProviderStats) {
	byName := make(map[string]stats.ProviderStats, len(all))
	for _, ps := range all {
		byName[ps.ProviderName] = ps
	}

	tw := newTable(w, "翻译服务")
	tw.AppendHeader(table.Row{"名称", "服务", "已配置", "请求数", "成功率", "平均耗时"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	for _, name := range translation.ProviderOrder {
		label := name
		if settings != nil && settings.APIProvider == name {
			label = color.New(color.Bold).Sprint(name + " *")
		}

		configured := color.RedString("否")
		if settings != nil && settings.Eligible(name) {
			configured = color.GreenString("是")
		}

		ps, ok := byName[name]
		if !ok {
			tw.AppendRow(table.Row{label, providerLabels[name], configured, 0, "-", "-"})
			continue
		}
		tw.AppendRow(table.Row{
			label,
			providerLabels[name],
			configured,
			ps.TotalRequests,
			fmt.Sprintf("%.1f%%", ps.SuccessRate()),
			ps.AverageLatency.Round(time.Millisecond),
		})
	}
	tw.Render()
}

func renderLanguages(w io.Writer, url string, languages []libretranslate.Language) {
	tw := newTable(w, "LibreTranslate 支持的语言 ("+url+")")
	tw.AppendHeader(table.Row{"代码", "名称", "可译为"})
	for _, l := range languages {
		tw.AppendRow(table.Row{l.Code, l.Name, len(l.Targets)})
	}
	tw.Render()
}

func onOff(v bool) string {
	if v {
		return color.GreenString("开启")
	}
	return color.YellowString("关闭")
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
