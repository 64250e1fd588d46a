// Package presenter turns aggregate tab statistics into the toolbar badge,
// tooltip and icon.
package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lotas/tabputz/internal/analyzer"
	"github.com/lotas/tabputz/internal/types"
)

// ErrorBadge is shown while the toolbar is in a degraded state.
const ErrorBadge = "Err"

// Render formats stats for the toolbar.
func Render(stats analyzer.Stats) types.Presentation {
	diff := stats.Diff()

	var b strings.Builder
	fmt.Fprintf(&b, "Tabs: %d || Duplicates: %d\n", stats.TabCount, diff)
	if top := analyzer.FormatTopDomains(stats.Domains); top != "" {
		fmt.Fprintf(&b, "Top Domains:\n%s\n", top)
	}
	if diff > 0 {
		fmt.Fprintf(&b, "Duplicate Sites:\n%s", strings.Join(stats.Duplicates, "\n"))
	}

	p := types.Presentation{
		Tooltip: b.String(),
		Icon:    types.IconDimmed,
	}
	if diff > 0 {
		p.BadgeText = strconv.Itoa(diff)
		p.Icon = types.IconNormal
	}
	return p
}

// ErrorPresentation is the degraded state shown when tabs could not be read.
func ErrorPresentation(title string) types.Presentation {
	return types.Presentation{
		BadgeText: ErrorBadge,
		Tooltip:   title,
		Icon:      types.IconDimmed,
	}
}
