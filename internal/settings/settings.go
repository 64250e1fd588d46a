// Package settings loads the three user options and reports when they change.
package settings

import (
	"context"
	"fmt"

	"github.com/lotas/tabputz/internal/types"
)

// DefaultNamespace is where options live unless configured otherwise.
const DefaultNamespace = "sync"

const (
	KeyAutoClose         = "autoClose"
	KeyCurrentWindowOnly = "currentWindowOnly"
	KeySortTabs          = "sortTabs"
)

// Keys lists every option in display order.
var Keys = []string{KeyAutoClose, KeyCurrentWindowOnly, KeySortTabs}

// Getter resolves option keys against their defaults.
type Getter interface {
	Get(ctx context.Context, namespace string, defaults map[string]bool) (map[string]bool, error)
}

// Defaults returns every option set to false.
func Defaults() map[string]bool {
	m := make(map[string]bool, len(Keys))
	for _, k := range Keys {
		m[k] = false
	}
	return m
}

// IsKey reports whether key names a known option.
func IsKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Load reads the options from g. On failure it returns all-false settings
// together with the error so the caller can log it and carry on.
func Load(ctx context.Context, g Getter, namespace string) (types.Settings, error) {
	values, err := g.Get(ctx, namespace, Defaults())
	if err != nil {
		return types.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return types.Settings{
		AutoClose:         values[KeyAutoClose],
		CurrentWindowOnly: values[KeyCurrentWindowOnly],
		SortTabs:          values[KeySortTabs],
	}, nil
}
