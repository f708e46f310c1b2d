package search

import "strings"

// maxSuggestions は候補語の上限
const maxSuggestions = 5

// fallbackCategories は0件時に常に提示する汎用カテゴリ
var fallbackCategories = []string{"landscape", "nature", "city"}

// buildSuggestions は0件だったクエリから再検索の候補語を組み立てる。
// 固定カテゴリ、続いて3文字を超えるクエリ中の単語の順に連結し、
// 小文字化して重複を除き、maxSuggestions 件で打ち切る。
func buildSuggestions(query string) []string {
	seen := make(map[string]struct{}, maxSuggestions)
	suggestions := make([]string, 0, maxSuggestions)

	add := func(term string) {
		if len(suggestions) >= maxSuggestions {
			return
		}
		term = strings.ToLower(term)
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		suggestions = append(suggestions, term)
	}

	for _, category := range fallbackCategories {
		add(category)
	}
	for _, word := range strings.Fields(query) {
		if len([]rune(word)) > 3 {
			add(word)
		}
	}

	return suggestions
}
