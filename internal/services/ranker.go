package services

import (
	"sort"

	"marketplace/internal/models"
)

// BuildRanking pairs each product with its rating count and orders the
// result by count, most rated first. Products missing from counts rank as
// zero.
func BuildRanking(products []*models.Product, counts map[int]int) []*models.RankedProduct {
	ranked := make([]*models.RankedProduct, 0, len(products))
	for _, product := range products {
		ranked = append(ranked, &models.RankedProduct{
			Product:     product,
			RatingCount: counts[product.ID],
		})
	}

	RankProducts(ranked)
	return ranked
}

// RankProducts sorts in place by rating count descending. The sort is
// stable: equal counts keep their incoming order, so repeated calls on
// unchanged data give identical results.
func RankProducts(ranked []*models.RankedProduct) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RatingCount > ranked[j].RatingCount
	})
}
