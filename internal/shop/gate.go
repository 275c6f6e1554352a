// Package shop gates ordering on the storefront's availability state.
package shop

import (
	"context"
	"sync"

	"github.com/marhaba-kitchen/storefront/internal/client"
	"github.com/marhaba-kitchen/storefront/internal/enum"
)

// StatusFetcher is the slice of the API client the gate needs.
type StatusFetcher interface {
	ShopStatus(ctx context.Context) (*client.ShopStatus, error)
}

// Gate caches the shop's availability. It starts open so a customer is
// never blocked by a status fetch that has not completed yet; Refresh
// errors keep whatever state was last known.
type Gate struct {
	fetcher StatusFetcher

	mu     sync.Mutex
	status client.ShopStatus
}

func NewGate(fetcher StatusFetcher) *Gate {
	return &Gate{
		fetcher: fetcher,
		status:  client.ShopStatus{IsOpen: true},
	}
}

// Refresh re-fetches availability. On error the previous state stands.
func (g *Gate) Refresh(ctx context.Context) error {
	status, err := g.fetcher.ShopStatus(ctx)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.status = *status
	g.mu.Unlock()
	return nil
}

// CanOrder reports whether checkout should be allowed.
func (g *Gate) CanOrder() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status.IsOpen
}

// ClosedMessage returns the closed banner text for the language,
// falling back to English when the Arabic text is missing.
func (g *Gate) ClosedMessage(lang string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if msg := g.status.ClosedMessage[lang]; msg != "" {
		return msg
	}
	return g.status.ClosedMessage[enum.LanguageEnglish]
}

// OpeningHours returns the hours line for the language.
func (g *Gate) OpeningHours(lang string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if lang == enum.LanguageArabic && g.status.OpeningHoursArabic != "" {
		return g.status.OpeningHoursArabic
	}
	return g.status.OpeningHours
}
