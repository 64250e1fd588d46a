package analyzer

import "github.com/lotas/tabputz/internal/types"

func rec(url, title string) types.TabRecord {
	return types.TabRecord{URL: url, Title: title}
}
