// Package sanitize は利用者が入力した文字列からタグを落とす。
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// 実体参照を何重にも重ねた入力でも、この回数で落ち着かなければ諦める
const maxRounds = 5

// タグをすべて除去して前後の空白を削る。
// 実体参照で書かれたタグも落とすため、戻してから掃除するのを変化がなくなるまで繰り返す。
func Text(s string) string {
	if s == "" {
		return ""
	}
	cur := s
	for i := 0; i < maxRounds; i++ {
		next := html.UnescapeString(strict.Sanitize(html.UnescapeString(cur)))
		if next == cur {
			return strings.TrimSpace(cur)
		}
		cur = next
	}
	//落ち着かないときは実体参照のまま保存する
	return strings.TrimSpace(strict.Sanitize(cur))
}

// 空になった要素は捨てる。
func Texts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if v := Text(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}
