// Package services holds the business logic. Services receive repositories and
// collaborators through their constructors and return apperrors for every
// business-rule failure so controllers can map them onto HTTP statuses.
package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/edvios/backend/internal/app/repositories"
)

// Paged is one page of a larger result
type Paged[T any] struct {
	Items []T
	Total int64
	Page  int
	Size  int
}

// listAndCount runs the page query and the total count concurrently
func listAndCount[T any](
	ctx context.Context,
	page repositories.Page,
	list func(ctx context.Context) ([]T, error),
	count func(ctx context.Context) (int64, error),
) (*Paged[T], error) {
	var items []T
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = list(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []T{}
	}
	_, size := page.OffsetLimit()
	return &Paged[T]{Items: items, Total: total, Page: max(page.Page, 1), Size: size}, nil
}

// ChatPublisher pushes realtime chat events to subscribers of a chat
type ChatPublisher interface {
	Publish(chatID, eventType string, data any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, any) {}
