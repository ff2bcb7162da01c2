package repo

import "context"

type InMemoryStatsRepository struct {
	userRepo   *InMemoryUserRepository
	canvasRepo *InMemoryCanvasRepository
}

func NewInMemoryStatsRepository() *InMemoryStatsRepository {
	return &InMemoryStatsRepository{}
}

func (i *InMemoryStatsRepository) SetRepositories(
	userRepo *InMemoryUserRepository,
	canvasRepo *InMemoryCanvasRepository,
) {
	i.userRepo = userRepo
	i.canvasRepo = canvasRepo
}

// GetStats implements StatsRepository.
func (i *InMemoryStatsRepository) GetStats(ctx context.Context) (Stats, error) {
	s := Stats{Users: len(i.userRepo.All())}

	canvases, err := i.canvasRepo.ListAll(ctx)
	if err != nil {
		return s, err
	}
	s.Canvases = len(canvases)
	for _, c := range canvases {
		if c.IsPublic {
			s.PublicCanvases++
		}
	}
	s.PrivateCanvases = s.Canvases - s.PublicCanvases
	return s, nil
}

// UserCanvasCounts implements StatsRepository.
func (i *InMemoryStatsRepository) UserCanvasCounts(ctx context.Context) ([]UserCanvasCount, error) {
	var counts []UserCanvasCount
	for _, u := range i.userRepo.All() {
		owned, err := i.canvasRepo.ListByOwner(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		counts = append(counts, UserCanvasCount{ID: u.ID, Username: u.Username, Email: u.Email, Canvases: len(owned)})
	}
	return counts, nil
}
