// Package providers folds the raw per-availability-type listings into a
// deduplicated, display-ready provider set.
package providers

import "github.com/avetrov/filmweek/internal/models"

// AccessMethod is the way a title can be obtained from a provider.
type AccessMethod string

const (
	Free   AccessMethod = "free"
	Stream AccessMethod = "stream"
	Ads    AccessMethod = "ads"
	Rent   AccessMethod = "rent"
	Buy    AccessMethod = "buy"
)

// Provider is one aggregated entry, keyed by name. Identity fields come
// from the first bucket the name appeared in; later buckets only add
// access methods.
type Provider struct {
	Name          string
	ID            int
	LogoPath      string
	AccessMethods []AccessMethod
}

// Has reports whether the provider carries the given access method.
func (p Provider) Has(m AccessMethod) bool {
	for _, have := range p.AccessMethods {
		if have == m {
			return true
		}
	}
	return false
}

// Aggregate folds the five buckets in the fixed order free, subscription,
// ad-supported, rental, purchase, preserving within-bucket listing order.
// Output order is first-seen insertion order, stable for identical input.
// Aggregate is total: any input, including all buckets empty or absent,
// yields a valid (possibly empty) result. An empty result is the
// "streaming information not available" state, distinct from a fetch
// failure.
func Aggregate(data models.StreamingData) []Provider {
	buckets := []struct {
		listings []models.ProviderListing
		method   AccessMethod
	}{
		{data.Free, Free},
		{data.Flatrate, Stream},
		{data.Ads, Ads},
		{data.Rent, Rent},
		{data.Buy, Buy},
	}

	out := make([]Provider, 0)
	index := make(map[string]int)

	for _, bucket := range buckets {
		for _, listing := range bucket.listings {
			i, seen := index[listing.Name]
			if !seen {
				i = len(out)
				index[listing.Name] = i
				out = append(out, Provider{
					Name:     listing.Name,
					ID:       listing.ID,
					LogoPath: listing.LogoPath,
				})
			}
			if !out[i].Has(bucket.method) {
				out[i].AccessMethods = append(out[i].AccessMethods, bucket.method)
			}
		}
	}

	return out
}
