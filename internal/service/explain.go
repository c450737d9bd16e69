package service

import (
	"fmt"
	"math"

	"github.com/actuallystonmai/reco-service/internal/domain"
)

const (
	// coldMaxP is the probability given to the most popular item for a cold user.
	coldMaxP = 95
	// Below minDetailedP the explanation does not cite any reason.
	minDetailedP = 10
)

// explainCold scores an item for a user the model knows nothing about: the more popular
// the item, the higher the probability. nItems is the size of the rating table.
func explainCold(item domain.ItemRating, nItems int) domain.Explanation {
	p := coldMaxP
	if nItems > 1 {
		p = int(math.RoundToEven(-coldMaxP*float64(item.Rank-1)/float64(nItems-1) + coldMaxP))
	}
	p = clampP(p)

	if p < minDetailedP {
		return domain.Explanation{P: p, Explanation: negativeSentence(item.Title)}
	}
	return domain.Explanation{
		P: p,
		Explanation: fmt.Sprintf(
			"Movie/series '%s' may interest you with probability %d%% because %d users of the service have already watched it and it is ranked %d in our top",
			item.Title, p, item.Views, item.Rank,
		),
	}
}

// explainWarm turns a model score into a probability and cites the watched item that
// contributed most. contributor is nil when that item has no rating record.
func explainWarm(item domain.ItemRating, score float64, contributorID int64, contributor *domain.ItemRating) domain.Explanation {
	if math.IsNaN(score) {
		score = 0
	}
	p := clampP(int(math.RoundToEven(math.Max(0, math.Min(1, score)) * 100)))

	if contributor != nil && contributor.Title == item.Title {
		return domain.Explanation{
			P:           p,
			Explanation: fmt.Sprintf("Movie/series '%s' may interest you because you have already watched it", item.Title),
		}
	}
	if p < minDetailedP {
		return domain.Explanation{P: p, Explanation: negativeSentence(item.Title)}
	}

	label := fmt.Sprintf("%d", contributorID)
	if contributor != nil {
		label = contributor.Title
	}
	return domain.Explanation{
		P:           p,
		Explanation: fmt.Sprintf("Movie/series '%s' may interest you with probability %d%% because you watched '%s'", item.Title, p, label),
	}
}

func negativeSentence(title string) string {
	return fmt.Sprintf("Movie/series '%s' most likely will not interest you", title)
}

func clampP(p int) int {
	return max(0, min(100, p))
}
