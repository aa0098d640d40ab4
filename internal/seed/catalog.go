package seed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/laurel/internal/adapters/repository"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/pkg/logger"
)

// Category names cycle through this list; past that, a numbered suffix.
var categoryNames = []string{
	"Best Streamer",
	"Best Editor",
	"Rising Star",
	"Best Community",
	"Clip of the Year",
	"Best Variety Creator",
}

var platforms = []string{"twitch", "youtube", "kick"}

// catalog is the seeded universe of categories and their nominees.
type catalog struct {
	categories []model.Category
	// nomineesByCategory holds approved nominee ids per category id.
	nomineesByCategory map[string][]string
}

func (c *catalog) nomineeIDs() []string {
	var ids []string
	for _, nominees := range c.nomineesByCategory {
		ids = append(ids, nominees...)
	}
	return ids
}

// buildCatalog writes categories, creators, and approved nominees straight
// to the store the service reads from.
func buildCatalog(ctx context.Context, cfg *Config, stats *Stats) (*catalog, error) {
	store, err := repository.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close store", logger.Error(err))
		}
	}()

	now := time.Now().UTC()
	out := &catalog{nomineesByCategory: make(map[string][]string, cfg.Categories)}

	for i := 0; i < cfg.Categories; i++ {
		name := categoryNames[i%len(categoryNames)]
		if i >= len(categoryNames) {
			name += " " + strconv.Itoa(i/len(categoryNames)+1)
		}
		cat := model.Category{
			ID:        uuid.NewString(),
			Name:      name,
			Active:    true,
			CreatedAt: now,
		}
		if err := store.CreateCategory(ctx, cat); err != nil {
			return nil, fmt.Errorf("create category %q: %w", name, err)
		}
		out.categories = append(out.categories, cat)
		stats.CategoriesCreated++

		for j := 0; j < cfg.Creators; j++ {
			creator := model.Creator{
				ID:         uuid.NewString(),
				Name:       fmt.Sprintf("creator-%d-%d", i, j),
				Platform:   platforms[j%len(platforms)],
				CreatedAt:  now,
				ChannelURL: fmt.Sprintf("https://example.com/creator-%d-%d", i, j),
			}
			if err := store.CreateCreator(ctx, creator); err != nil {
				return nil, fmt.Errorf("create creator: %w", err)
			}

			nominee, err := store.EnsureNominee(ctx, model.Nominee{
				ID:         uuid.NewString(),
				CategoryID: cat.ID,
				CreatorID:  creator.ID,
				CreatedAt:  now.Add(time.Duration(j) * time.Millisecond),
			})
			if err != nil {
				return nil, fmt.Errorf("ensure nominee: %w", err)
			}
			out.nomineesByCategory[cat.ID] = append(out.nomineesByCategory[cat.ID], nominee.ID)
			stats.NomineesCreated++
		}
	}

	logger.Get().Info(ctx, "catalog seeded",
		logger.Int("categories", stats.CategoriesCreated),
		logger.Int("nominees", stats.NomineesCreated))
	return out, nil
}
