package seo

import (
	"encoding/json"
)

const schemaContext = "https://schema.org"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url string) map[string]any {
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        schemaContext,
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// WebApplication describes a single free calculator.
func WebApplication(name, description, url, category string) map[string]any {
	m := map[string]any{
		"@context":            schemaContext,
		"@type":               "WebApplication",
		"name":                name,
		"applicationCategory": "UtilitiesApplication",
		"operatingSystem":     "Any",
		"offers": map[string]any{
			"@type":         "Offer",
			"price":         "0",
			"priceCurrency": "USD",
		},
	}
	if description != "" {
		m["description"] = description
	}
	if url != "" {
		m["url"] = url
	}
	if category != "" {
		m["applicationSubCategory"] = category
	}
	return m
}

// CollectionPage describes a category listing.
func CollectionPage(name, description, url string, itemURLs []string) map[string]any {
	items := make([]map[string]any, 0, len(itemURLs))
	for i, u := range itemURLs {
		items = append(items, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"url":      u,
		})
	}
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "CollectionPage",
		"name":     name,
		"url":      url,
		"mainEntity": map[string]any{
			"@type":           "ItemList",
			"numberOfItems":   len(items),
			"itemListElement": items,
		},
	}
	if description != "" {
		m["description"] = description
	}
	return m
}
