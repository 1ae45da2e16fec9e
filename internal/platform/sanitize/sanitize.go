package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var strict = bluemonday.StrictPolicy()

// Text はタグをすべて除去した平文を返す。bluemonday がエスケープした実体参照は戻す
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// OptionalText は空文字を nil にする
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Trimmed は空白のみを nil とみなす（タグ除去はしない）
func Trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Search は検索語を NFKC 正規化して小文字にし、LIKE のワイルドカードをエスケープする
func Search(s string) string {
	s = strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
