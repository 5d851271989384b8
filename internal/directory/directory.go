// Package directory loads the country directory, falling back to a built-in
// list when the backend cannot provide one.
package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tekus/provider-console/internal/api"
)

// Source tells where a listing came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Listing is one resolved directory.
type Listing struct {
	Entries []api.Country
	Source  Source
	// Err is the remote failure that caused a fallback.
	Err error
}

// Fetcher is the remote directory.
type Fetcher interface {
	ListCountries(ctx context.Context) ([]api.Country, error)
}

// Loader resolves the directory. Concurrent calls share one remote request.
type Loader struct {
	fetcher Fetcher
	group   singleflight.Group
	logger  zerolog.Logger
}

// NewLoader returns a loader over fetcher. A nil fetcher always falls back.
func NewLoader(fetcher Fetcher, logger zerolog.Logger) *Loader {
	return &Loader{fetcher: fetcher, logger: logger}
}

// Countries always returns a usable listing. Remote failures and empty remote
// lists yield the built-in list; fallbacks are not cached. The shared request
// outlives any single caller; a caller whose ctx ends first gets the fallback.
func (l *Loader) Countries(ctx context.Context) Listing {
	ch := l.group.DoChan("countries", func() (any, error) {
		return l.load(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-ch:
		listing := res.Val.(Listing)
		listing.Entries = append([]api.Country(nil), listing.Entries...)
		return listing
	case <-ctx.Done():
		l.logger.Warn().Err(ctx.Err()).Msg("country directory wait abandoned, using built-in list")
		return Listing{Entries: Fallback(), Source: SourceFallback, Err: ctx.Err()}
	}
}

func (l *Loader) load(ctx context.Context) Listing {
	if l.fetcher == nil {
		return Listing{Entries: Fallback(), Source: SourceFallback}
	}
	entries, err := l.fetcher.ListCountries(ctx)
	if err == nil && len(entries) == 0 {
		err = fmt.Errorf("backend returned an empty country list")
	}
	if err != nil {
		l.logger.Warn().Err(err).Msg("country directory unavailable, using built-in list")
		return Listing{Entries: Fallback(), Source: SourceFallback, Err: err}
	}
	return Listing{Entries: entries, Source: SourceRemote}
}

var fallback = []api.Country{
	{ID: 1, ISOCode: "CO", Name: "Colombia"},
	{ID: 2, ISOCode: "US", Name: "Estados Unidos"},
	{ID: 3, ISOCode: "MX", Name: "México"},
	{ID: 4, ISOCode: "BR", Name: "Brasil"},
	{ID: 5, ISOCode: "AR", Name: "Argentina"},
	{ID: 6, ISOCode: "CL", Name: "Chile"},
	{ID: 7, ISOCode: "PE", Name: "Perú"},
	{ID: 8, ISOCode: "EC", Name: "Ecuador"},
	{ID: 9, ISOCode: "VE", Name: "Venezuela"},
	{ID: 10, ISOCode: "ES", Name: "España"},
	{ID: 11, ISOCode: "FR", Name: "Francia"},
	{ID: 12, ISOCode: "DE", Name: "Alemania"},
	{ID: 13, ISOCode: "IT", Name: "Italia"},
	{ID: 14, ISOCode: "GB", Name: "Reino Unido"},
	{ID: 15, ISOCode: "CA", Name: "Canadá"},
}

// Fallback returns a copy of the built-in directory.
func Fallback() []api.Country {
	return append([]api.Country(nil), fallback...)
}

// FlagURL returns the small flag image for an ISO code.
func FlagURL(isoCode string) string {
	code := strings.ToLower(strings.TrimSpace(isoCode))
	if code == "" {
		return ""
	}
	return "https://flagcdn.com/16x12/" + code + ".png"
}

// Flag returns the entry's own image when set, else the generated URL.
func Flag(c api.Country) string {
	if strings.TrimSpace(c.FlagImage) != "" {
		return c.FlagImage
	}
	return FlagURL(c.ISOCode)
}
