package catalog

import (
	"sort"
	"strings"
)

// SearchHit is a product returned by the sample-data search.
type SearchHit struct {
	ID       string   `json:"id"`
	Handle   string   `json:"handle"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Price    int64    `json:"price"`
	Currency string   `json:"currency"`
	Tags     []string `json:"tags"`
}

// sampleProducts stands in for a search index until one is provisioned.
var sampleProducts = []SearchHit{
	{ID: "prod_kurta_cotton", Handle: "cotton-kurta", Title: "Cotton Kurta", Category: "apparel", Price: 1299, Currency: "INR", Tags: []string{"kurta", "cotton", "men"}},
	{ID: "prod_kurti_block", Handle: "block-print-kurti", Title: "Block Print Kurti", Category: "apparel", Price: 999, Currency: "INR", Tags: []string{"kurti", "cotton", "women", "print"}},
	{ID: "prod_saree_silk", Handle: "banarasi-silk-saree", Title: "Banarasi Silk Saree", Category: "apparel", Price: 6499, Currency: "INR", Tags: []string{"saree", "silk", "women"}},
	{ID: "prod_dupatta_chiffon", Handle: "chiffon-dupatta", Title: "Chiffon Dupatta", Category: "accessories", Price: 499, Currency: "INR", Tags: []string{"dupatta", "chiffon", "women"}},
	{ID: "prod_jutti_leather", Handle: "leather-jutti", Title: "Leather Jutti", Category: "footwear", Price: 1499, Currency: "INR", Tags: []string{"jutti", "leather", "footwear"}},
	{ID: "prod_tote_jute", Handle: "jute-tote-bag", Title: "Jute Tote Bag", Category: "accessories", Price: 399, Currency: "INR", Tags: []string{"bag", "jute", "tote"}},
	{ID: "prod_stole_pashmina", Handle: "pashmina-stole", Title: "Pashmina Stole", Category: "accessories", Price: 2999, Currency: "INR", Tags: []string{"stole", "pashmina", "wool"}},
	{ID: "prod_bedsheet_cotton", Handle: "jaipuri-cotton-bedsheet", Title: "Jaipuri Cotton Bedsheet", Category: "home", Price: 1199, Currency: "INR", Tags: []string{"bedsheet", "cotton", "home", "print"}},
}

// Search filters the sample catalogue by whole-word and prefix matches on
// title, tags and category. Results are ordered by match count then title.
func Search(query string, limit int) []SearchHit {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []SearchHit{}
	}
	type scored struct {
		hit   SearchHit
		score int
	}
	var matches []scored
	for _, p := range sampleProducts {
		words := append(strings.Fields(strings.ToLower(p.Title)), p.Category)
		words = append(words, p.Tags...)
		score := 0
		for _, term := range terms {
			for _, w := range words {
				if strings.HasPrefix(w, term) {
					score++
					break
				}
			}
		}
		if score > 0 {
			matches = append(matches, scored{hit: p, score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].hit.Title < matches[j].hit.Title
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	hits := make([]SearchHit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, m.hit)
	}
	return hits
}
