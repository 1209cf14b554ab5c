// Package inventory walks paginated object listings.
package inventory

import (
	"context"

	"github.com/oxfell/drover/pkg/provider"
)

// Count returns the number of objects under prefix by following continuation
// tokens until the listing is exhausted.
//
// A page with zero objects but a continuation token is not the end: the walk
// continues until the provider stops returning a token.
func Count(ctx context.Context, lister provider.Lister, prefix string) (int64, error) {
	var total int64
	var token string

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		res, err := lister.List(ctx, provider.ListOptions{
			Prefix:            prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return total, err
		}

		total += int64(len(res.Objects))

		if !res.IsTruncated || res.ContinuationToken == "" {
			return total, nil
		}
		token = res.ContinuationToken
	}
}
