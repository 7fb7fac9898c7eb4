package renamer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const pdfExt = ".pdf"

var (
	// \p{Nd} 包括全角、阿拉伯-印度等各种十进制数字
	digitRun    = regexp.MustCompile(`\p{Nd}+`)
	filePattern = regexp.MustCompile(`(?i)^(S\p{Nd}{2})A(\p{Nd}{3})(\p{Nd}{4})\.pdf$`)
)

// HasPrefix 目录名是否以 prefix 开头（不区分大小写）
func HasPrefix(name, prefix string) bool {
	return strings.HasPrefix(strings.ToUpper(name), strings.ToUpper(prefix))
}

// FolderTarget 计算目录的新名称
// 取名称中第一段连续数字并去掉前导零，如 AC001 -> 1
// 名称不以 prefix 开头或不含数字时返回 false
func FolderTarget(name, prefix string) (string, bool) {
	if !HasPrefix(name, prefix) {
		return "", false
	}
	run := digitRun.FindString(name)
	if run == "" {
		return "", false
	}
	return trimLeadingZeros(asciiDigits(run)), true
}

// IsPDF 文件名是否以 .pdf 结尾（不区分大小写）
func IsPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), pdfExt)
}

// FileTarget 计算 PDF 文件的新名称
// S03A0010095.pdf -> S03_1_95.pdf
func FileTarget(name string) (string, bool) {
	m := filePattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	part2 := trimLeadingZeros(asciiDigits(m[2]))
	part3 := trimLeadingZeros(asciiDigits(m[3]))
	return fmt.Sprintf("%s_%s_%s%s", strings.ToUpper(m[1]), part2, part3, pdfExt), true
}

// asciiDigits 把任意十进制数字转换为 0-9
// Nd 类字符在 Unicode 中总是以 0 到 9 连续排列
func asciiDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteByte(byte('0' + digitValue(r)))
	}
	return b.String()
}

func digitValue(r rune) int {
	if r >= '0' && r <= '9' {
		return int(r - '0')
	}
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int((r-lo)/rune(rg.Stride)) % 10
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int((r-lo)/rune(rg.Stride)) % 10
		}
	}
	return 0
}

// 数字串可能超出 int 范围，直接按字符串去掉前导零
func trimLeadingZeros(digits string) string {
	s := strings.TrimLeft(digits, "0")
	if s == "" {
		return "0"
	}
	return s
}
