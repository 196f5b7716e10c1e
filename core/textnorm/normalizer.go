// Package textnorm 提供用于比较的文本规范化。
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripper = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)), // 去除组合变音符号
)

var folder = cases.Fold()

// Normalize 返回小写、去变音符号、去首尾空白的规范化表示。
// 纯函数，对任意输入总是成功；幂等：Normalize(Normalize(s)) == Normalize(s)。
func Normalize(s string) string {
	stripped, _, err := transform.String(stripper, s)
	if err != nil {
		// 变换仅在非法UTF-8时失败，此时按原样折叠
		stripped = s
	}
	return folder.String(strings.TrimSpace(stripped))
}
