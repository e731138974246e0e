package config

import (
	"net/url"
	"strings"
)

// Query keys read from the embedding context.
const (
	QueryKeyModel  = "model"
	QueryKeyHideUI = "hideUI"
)

// ViewerConfig is the resolved embedding configuration. It is created once by Resolve or
// ResolveQuery and never changes afterward.
type ViewerConfig struct {
	requestedAsset string
	uiHidden       bool
}

// RequestedAsset returns the asset the viewer should try first.
//
// Returns:
//   - string: the asset name, never empty
func (c ViewerConfig) RequestedAsset() string {
	return c.requestedAsset
}

// UIHidden reports whether the catalog panel starts hidden.
//
// Returns:
//   - bool: true when the panel is hidden
func (c ViewerConfig) UIHidden() bool {
	return c.uiHidden
}

// ResolveQuery resolves a raw query string such as "model=chair.glb&hideUI". A leading '?' is
// allowed. A malformed model pair is skipped and the rest of the query is still honored, so
// ResolveQuery never fails. hideUI is detected on the raw key, so a value that does not unescape
// still hides the panel.
//
// Parameters:
//   - rawQuery: the query string
//   - defaultAsset: the asset used when no model is named
//
// Returns:
//   - ViewerConfig: the resolved configuration
func ResolveQuery(rawQuery, defaultAsset string) ViewerConfig {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	// ParseQuery keeps every well-formed pair even when it reports an error for another one
	values, _ := url.ParseQuery(rawQuery)
	cfg := Resolve(values, defaultAsset)
	cfg.uiHidden = cfg.uiHidden || hasRawKey(rawQuery, QueryKeyHideUI)
	return cfg
}

// hasRawKey reports whether any '&' separated pair of rawQuery has key, whatever its value.
func hasRawKey(rawQuery, key string) bool {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, _, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(k); err == nil {
			k = unescaped
		}
		if k == key {
			return true
		}
	}
	return false
}

// Resolve resolves already parsed query values.
//
// An absent or empty model falls back to defaultAsset. The presence of hideUI hides the panel
// whatever its value, including an empty one.
//
// Parameters:
//   - values: the query values, may be nil
//   - defaultAsset: the asset used when no model is named
//
// Returns:
//   - ViewerConfig: the resolved configuration
func Resolve(values url.Values, defaultAsset string) ViewerConfig {
	cfg := ViewerConfig{requestedAsset: defaultAsset}
	if name := values.Get(QueryKeyModel); name != "" {
		cfg.requestedAsset = name
	}
	_, cfg.uiHidden = values[QueryKeyHideUI]
	return cfg
}
