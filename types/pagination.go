package types

import "github.com/nicolasparada/go-errs"

const (
	DefaultPageSize = 50
	maxPageSize     = 200
)

// Page is the single list contract the REST adapter hands out. Page numbers
// start at 1, and page 1 holds the most recent items.
type Page[T any] struct {
	Items   []T  `json:"items"`
	HasMore bool `json:"hasMore"`
	Page    uint `json:"page"`
	Limit   uint `json:"limit"`
	Total   int  `json:"total,omitempty"`
}

type PageArgs struct {
	Page  uint
	Limit uint
}

func (args *PageArgs) Validate() error {
	if args.Page == 0 {
		args.Page = 1
	}

	if args.Limit == 0 {
		args.Limit = DefaultPageSize
	}

	if args.Limit > maxPageSize {
		return errs.InvalidArgumentError("limit overflow")
	}

	return nil
}
