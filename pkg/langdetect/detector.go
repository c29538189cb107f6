// Package langdetect 根据中文字符占比判断翻译方向
package langdetect

import (
	"unicode"

	"golang.org/x/text/language"
)

// chineseThreshold 中文字符占比超过该值时判定为中文
const chineseThreshold = 0.30

// 语言代码
var (
	LangChinese = baseCode(language.Chinese)
	LangEnglish = baseCode(language.English)
)

// LangAuto 由服务端自动识别源语言
const LangAuto = "auto"

// cjkRanges CJK统一表意文字、扩展A、兼容表意文字
var cjkRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4dbf, Stride: 1},
		{Lo: 0x4e00, Hi: 0x9fff, Stride: 1},
		{Lo: 0xf900, Hi: 0xfaff, Stride: 1},
	},
}

// Direction 翻译方向
type Direction struct {
	From      string `json:"from"`
	To        string `json:"to"`
	IsChinese bool   `json:"isChinese"`
}

// Detect 根据文本内容得出翻译方向：中文译为英文，其余译为中文
func Detect(text string) Direction {
	if IsChinese(text) {
		return Direction{From: LangChinese, To: LangEnglish, IsChinese: true}
	}
	return Direction{From: LangAuto, To: LangChinese, IsChinese: false}
}

// IsChinese 文本是否主要为中文
func IsChinese(text string) bool {
	return ChineseRatio(text) > chineseThreshold
}

// ChineseRatio 去除空白和标点后中文字符所占比例，空文本返回0
func ChineseRatio(text string) float64 {
	var total, chinese int
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		total++
		if unicode.Is(cjkRanges, r) {
			chinese++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(chinese) / float64(total)
}

func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
