package format

import "github.com/tendant/simple-resource/pkg/simpleresource"

// Plain accepts any content and returns it unchanged. It claims every name in
// the directory when listing.
type Plain struct{}

func (Plain) Family() simpleresource.Family { return simpleresource.FamilyPlain }

func (Plain) Matches(string) bool { return true }

func (Plain) Validate([]byte) error { return nil }

func (Plain) Decode(content []byte) (any, error) {
	return string(content), nil
}
