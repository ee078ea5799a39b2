// Package format provides the validators and codecs for the resource
// families: plain text, CSV and JSON.
package format

import (
	"strings"

	"github.com/tendant/simple-resource/pkg/simpleresource"
)

// All returns one format per supported family
func All() []simpleresource.Format {
	return []simpleresource.Format{Plain{}, CSV{}, JSON{}}
}

// For returns the shipped format for family
func For(family simpleresource.Family) (simpleresource.Format, bool) {
	for _, f := range All() {
		if f.Family() == family {
			return f, true
		}
	}
	return nil, false
}

func hasExtension(name, ext string) bool {
	return strings.HasSuffix(name, ext)
}
