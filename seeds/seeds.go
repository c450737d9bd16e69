// Package seeds fills the rating tables, either from the CSV exports the service reads at
// startup or from a synthetic catalog for local development.
package seeds

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/actuallystonmai/reco-service/internal/domain"
	"github.com/actuallystonmai/reco-service/internal/repository"
)

type Target interface {
	Truncate(ctx context.Context) error
	InsertItemsRating(ctx context.Context, items []domain.ItemRating) (int64, error)
	InsertUsers(ctx context.Context, ids []int64) (int64, error)
}

// Setup replaces the contents of the rating tables with the contents of store.
func Setup(ctx context.Context, target Target, store *repository.RatingStore) error {
	// Truncate existing data before insert
	log.Info().Msg("[seed] truncating existing data")
	if err := target.Truncate(ctx); err != nil {
		return err
	}

	log.Info().Int("count", store.ItemCount()).Msg("[seed] inserting items rating")
	if _, err := target.InsertItemsRating(ctx, store.Items()); err != nil {
		return fmt.Errorf("seed items rating: %w", err)
	}

	log.Info().Int("count", store.UserCount()).Msg("[seed] inserting users")
	if _, err := target.InsertUsers(ctx, store.UserIDs()); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	log.Info().Msg("[seed] seeding complete")
	return nil
}

var titles = map[string][]string{
	"action": {
		"Die Hard", "Mad Max: Fury Road", "John Wick", "The Dark Knight",
		"Gladiator", "Top Gun: Maverick", "The Raid", "Mission: Impossible",
		"Casino Royale", "The Avengers",
	},
	"drama": {
		"The Shawshank Redemption", "Forrest Gump", "The Godfather",
		"Schindler's List", "A Beautiful Mind", "12 Angry Men",
		"Parasite", "Moonlight", "Whiplash", "The Green Mile",
	},
	"comedy": {
		"Superbad", "The Hangover", "Bridesmaids", "Step Brothers",
		"Anchorman", "Mean Girls", "Borat", "Hot Fuzz",
		"Groundhog Day", "The Grand Budapest Hotel",
	},
	"thriller": {
		"Se7en", "Gone Girl", "Zodiac", "Prisoners",
		"Sicario", "No Country for Old Men", "Nightcrawler",
		"Shutter Island", "The Silence of the Lambs", "Oldboy",
	},
	"sci-fi": {
		"Blade Runner 2049", "Interstellar", "The Matrix", "Arrival",
		"Dune", "Ex Machina", "Alien", "Inception",
		"Edge of Tomorrow", "2001: A Space Odyssey",
	},
}

var genres = []string{"action", "drama", "comedy", "thriller", "sci-fi"}

// Synthetic builds a reproducible catalog of nItems items with power-law view counts and
// user ids 1..nUsers. Ranks follow views, ties broken by item id.
func Synthetic(seed int64, nItems, nUsers int) (*repository.RatingStore, error) {
	if nItems < 1 || nUsers < 1 {
		return nil, fmt.Errorf("synthetic catalog needs at least one item and one user, got %d items and %d users", nItems, nUsers)
	}
	rng := rand.New(rand.NewSource(seed))

	items := make([]domain.ItemRating, 0, nItems)
	for i := range nItems {
		genre := genres[i%len(genres)]
		titleList := titles[genre]
		title := titleList[(i/len(genres))%len(titleList)]

		if round := i / (len(genres) * len(titleList)); round > 0 {
			title = fmt.Sprintf("%s %d", title, round+1)
		}

		items = append(items, domain.ItemRating{
			ItemID: int64(i + 1),
			Views:  int64(powerLawScore(rng) * float64(nUsers)),
			Title:  title,
		})
	}

	slices.SortFunc(items, func(a, b domain.ItemRating) int {
		return cmp.Or(cmp.Compare(b.Views, a.Views), cmp.Compare(a.ItemID, b.ItemID))
	})
	for i := range items {
		items[i].Rank = i + 1
	}

	users := make([]int64, nUsers)
	for i := range users {
		users[i] = int64(i + 1)
	}

	return repository.NewRatingStore(items, users)
}

func powerLawScore(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.001
	}
	raw := math.Pow(u, 2.0)
	if raw < 0.01 {
		raw = 0.01
	}
	return math.Round(raw*100) / 100
}
