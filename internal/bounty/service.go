package bounty

import (
	"log"
	"math/rand"
	"time"

	"github.com/ini272/majordomo/internal/models"
	"github.com/ini272/majordomo/internal/progression"
)

const dateLayout = "2006-01-02"

// Rand supplies the selector's randomness. Injected so tests can pin the pick.
type Rand interface {
	Intn(n int) int
}

type Service struct {
	store *Store
	rng   Rand
}

func NewService(store *Store) *Service {
	return &Service{
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewServiceWithRand is for tests that need a deterministic selector.
func NewServiceWithRand(store *Store, rng Rand) *Service {
	return &Service{store: store, rng: rng}
}

// localDateIn formats now as a calendar date in the named zone. An empty or
// unknown zone falls back to UTC; the error reports the bad zone name.
func localDateIn(tz string, now time.Time) (string, error) {
	if tz == "" {
		return now.UTC().Format(dateLayout), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return now.UTC().Format(dateLayout), err
	}
	return now.In(loc).Format(dateLayout), nil
}

// localDate resolves "today" in the home's timezone.
func (s *Service) localDate(homeID int64, now time.Time) string {
	tz, err := s.store.HomeTimezone(homeID)
	if err != nil {
		tz = ""
	}
	date, err := localDateIn(tz, now)
	if err != nil {
		log.Printf("[bounty] home %d has invalid timezone %q, using UTC", homeID, tz)
	}
	return date
}

func previousDate(date string) string {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, -1).Format(dateLayout)
}

// filterRepeat drops yesterday's assigned pick from the candidate pool, but
// only when an alternative exists. A lone repeat candidate stays selectable.
func filterRepeat(candidates []int64, yesterday *models.DailyBounty) []int64 {
	if yesterday == nil || yesterday.Status != models.BountyStatusAssigned || yesterday.QuestID == nil {
		return candidates
	}
	if len(candidates) <= 1 {
		return candidates
	}

	filtered := make([]int64, 0, len(candidates))
	for _, id := range candidates {
		if id != *yesterday.QuestID {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return candidates
	}
	return filtered
}

// GetOrCreateToday returns the user's bounty decision for the current local
// day, creating and locking it on first call. Concurrent first calls race on
// the unique constraint; the loser re-fetches the winner's row.
func (s *Service) GetOrCreateToday(homeID, userID int64, now time.Time) (*models.DailyBounty, error) {
	today := s.localDate(homeID, now)

	existing, err := s.store.Get(homeID, userID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	candidates, err := s.store.EligibleQuestIDs(homeID, userID, now.Add(-progression.BountyEligibilityAge))
	if err != nil {
		return nil, err
	}

	var created *models.DailyBounty
	if len(candidates) == 0 {
		created, err = s.store.Insert(homeID, userID, nil, today, models.BountyStatusNoneEligible)
	} else {
		yesterday, yerr := s.store.Get(homeID, userID, previousDate(today))
		if yerr != nil {
			return nil, yerr
		}
		pool := filterRepeat(candidates, yesterday)
		pick := pool[s.rng.Intn(len(pool))]
		created, err = s.store.Insert(homeID, userID, &pick, today, models.BountyStatusAssigned)
	}
	if err == ErrDuplicate {
		return s.store.Get(homeID, userID, today)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Refresh discards today's locked decision and re-runs the selector. Manual
// override only, not part of normal request flow.
func (s *Service) Refresh(homeID, userID int64, now time.Time) (*models.DailyBounty, error) {
	today := s.localDate(homeID, now)
	if err := s.store.Delete(homeID, userID, today); err != nil {
		return nil, err
	}
	return s.GetOrCreateToday(homeID, userID, now)
}

// IsTodayAssigned reports whether questID is the user's locked bounty pick
// for the current local day. It never creates a decision row: completing a
// quest before any bounty read that day earns no bounty bonus.
func (s *Service) IsTodayAssigned(homeID, userID, questID int64, now time.Time) (bool, error) {
	today := s.localDate(homeID, now)
	b, err := s.store.Get(homeID, userID, today)
	if err != nil {
		return false, err
	}
	if b == nil || b.Status != models.BountyStatusAssigned || b.QuestID == nil {
		return false, nil
	}
	return *b.QuestID == questID, nil
}

// Quest resolves the bounty's quest for response payloads.
func (s *Service) Quest(b *models.DailyBounty) (*models.Quest, error) {
	if b.QuestID == nil {
		return nil, nil
	}
	return s.store.Quest(*b.QuestID)
}
