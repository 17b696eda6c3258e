package congress

import (
	"context"
	"fmt"

	"github.com/hpungsan/capitol/internal/errors"
)

// PageFunc fetches one page and returns its items plus the next-page URL
// ("" on the last page).
type PageFunc[T any] func(ctx context.Context, url string) (items []T, next string, err error)

// Drain fetches url and every page after it, one at a time, and returns the
// items concatenated in page order. Errors from fetch are returned unchanged.
func Drain[T any](ctx context.Context, url string, fetch PageFunc[T]) ([]T, error) {
	all := make([]T, 0)
	seen := make(map[string]bool)

	for url != "" {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("pagination")
		}
		seen[url] = true

		items, next, err := fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if next != "" && seen[next] {
			return nil, errors.NewSchemaValidation(redact(url), []string{"pagination.next"},
				fmt.Errorf("next page %s was already fetched", redact(next)))
		}
		url = next
	}

	return all, nil
}
