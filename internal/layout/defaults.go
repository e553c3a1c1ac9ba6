// Package layout supplies the default layout content served when a page
// has no published template yet. It is a pure, stateless lookup: the
// read path invokes it only after the template store reports absence.
package layout

import (
	"encoding/json"

	"storepress/internal/models"
)

// defaults maps each page type to a minimal section tree rendered by the
// storefront client when no template has been published.
var defaults = map[models.PageType]string{
	models.PageTypeHome:    `[{"type":"hero","props":{"title":"Welcome","subtitle":"Set up your storefront in the admin panel."}}]`,
	models.PageTypeCatalog: `[{"type":"product-grid","props":{"columns":3}}]`,
	models.PageTypeProduct: `[{"type":"product-detail"},{"type":"related-products","props":{"limit":4}}]`,
	models.PageTypeAbout:   `[{"type":"text","props":{"body":"Tell your story here."}}]`,
	models.PageTypeContact: `[{"type":"contact-form"}]`,
	models.PageTypeCustom:  `[{"type":"text","props":{"body":""}}]`,
}

// Default returns the fallback section tree for a page type.
func Default(pageType models.PageType) json.RawMessage {
	if content, ok := defaults[pageType]; ok {
		return json.RawMessage(content)
	}
	return json.RawMessage(`[]`)
}
