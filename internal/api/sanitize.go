package api

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips every tag. Free text is stored as plain text.
var textPolicy = bluemonday.StrictPolicy()

// textEntities decodes the entities the policy emits for harmless
// characters. &lt; and &gt; stay encoded so escaped markup in the input can
// never come back as a tag.
var textEntities = strings.NewReplacer(
	"&amp;", "&",
	"&#39;", "'",
	"&#34;", `"`,
	"&quot;", `"`,
)

// sanitizeText removes markup from s. Blank results become nil so an empty
// description clears the field.
func sanitizeText(s *string) *string {
	if s == nil {
		return nil
	}
	clean := strings.TrimSpace(textEntities.Replace(textPolicy.Sanitize(*s)))
	if clean == "" {
		return nil
	}
	return &clean
}
