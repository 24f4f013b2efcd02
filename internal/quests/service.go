package quests

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/ini272/majordomo/internal/achievements"
	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/bounty"
	"github.com/ini272/majordomo/internal/models"
	"github.com/ini272/majordomo/internal/progression"
	"github.com/ini272/majordomo/internal/scribe"
	"github.com/ini272/majordomo/internal/users"
)

// generationCooldown keeps the sweep from re-examining every template on
// every single read.
const generationCooldown = time.Hour

type Service struct {
	store        *Store
	users        *users.Store
	bounty       *bounty.Service
	achievements *achievements.Service
	scribe       scribe.Client
}

func NewService(store *Store, userStore *users.Store, bountySvc *bounty.Service,
	achSvc *achievements.Service, scribeClient scribe.Client) *Service {
	return &Service{
		store:        store,
		users:        userStore,
		bounty:       bountySvc,
		achievements: achSvc,
		scribe:       scribeClient,
	}
}

// Templates

func (s *Service) CreateTemplate(homeID, userID int64, req *models.CreateTemplateRequest, skipScribe bool) (*models.QuestTemplate, error) {
	if req.Recurrence == "" {
		req.Recurrence = models.RecurrenceOneOff
	}
	if err := ValidateSchedule(req.Recurrence, req.Schedule); err != nil {
		return nil, err
	}

	tmpl, err := s.store.CreateTemplate(homeID, userID, req)
	if err != nil {
		return nil, err
	}

	if !skipScribe {
		// Fire and forget. Creation never waits on, or fails because of,
		// the scribe.
		go s.enrichTemplate(tmpl.ID, homeID)
	}

	return tmpl, nil
}

// enrichTemplate asks the scribe to fill whatever the template's author left
// blank. Runs in its own goroutine; every failure path just logs and leaves
// the template untouched.
func (s *Service) enrichTemplate(templateID, homeID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tmpl, err := s.store.GetTemplate(templateID, homeID)
	if err != nil {
		log.Printf("[scribe] template %d fetch failed: %v", templateID, err)
		return
	}

	content, err := s.scribe.Enrich(ctx, tmpl.Title)
	if err != nil {
		log.Printf("[scribe] enrichment for template %d failed: %v", templateID, err)
		return
	}

	changed := false
	if (tmpl.DisplayName == nil || *tmpl.DisplayName == "") && content.DisplayName != "" {
		tmpl.DisplayName = &content.DisplayName
		changed = true
	}
	if (tmpl.Description == nil || *tmpl.Description == "") && content.Description != "" {
		tmpl.Description = &content.Description
		changed = true
	}
	if (tmpl.Tags == nil || *tmpl.Tags == "") && content.Tags != "" {
		tmpl.Tags = &content.Tags
		changed = true
	}
	if tmpl.XPReward == 0 {
		tmpl.XPReward = content.XP()
		tmpl.GoldReward = content.Gold()
		changed = true
	}

	if !changed {
		return
	}
	if err := s.store.SaveTemplate(tmpl); err != nil {
		log.Printf("[scribe] template %d save failed: %v", templateID, err)
	}
}

func (s *Service) GetTemplate(id, homeID int64) (*models.QuestTemplate, error) {
	return s.store.GetTemplate(id, homeID)
}

func (s *Service) ListTemplates(homeID int64) ([]models.QuestTemplate, error) {
	return s.store.ListTemplates(homeID)
}

func (s *Service) UpdateTemplate(id, homeID int64, req *models.UpdateTemplateRequest) (*models.QuestTemplate, error) {
	tmpl, err := s.store.GetTemplate(id, homeID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		tmpl.Title = *req.Title
	}
	if req.DisplayName != nil {
		tmpl.DisplayName = req.DisplayName
	}
	if req.Description != nil {
		tmpl.Description = req.Description
	}
	if req.Tags != nil {
		tmpl.Tags = req.Tags
	}
	if req.XPReward != nil {
		tmpl.XPReward = *req.XPReward
	}
	if req.GoldReward != nil {
		tmpl.GoldReward = *req.GoldReward
	}
	if req.Recurrence != nil {
		tmpl.Recurrence = *req.Recurrence
	}
	if req.Schedule != nil {
		tmpl.Schedule = req.Schedule
	}
	if req.DueInHours != nil {
		tmpl.DueInHours = req.DueInHours
	}

	if err := ValidateSchedule(tmpl.Recurrence, tmpl.Schedule); err != nil {
		return nil, err
	}
	if err := s.store.SaveTemplate(tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *Service) DeleteTemplate(id, homeID int64) error {
	return s.store.DeleteTemplate(id, homeID)
}

// Quests

// InstantiateTemplate materializes one quest from a template for the acting
// user, snapshotting the template's fields.
func (s *Service) InstantiateTemplate(homeID, userID int64, req *models.CreateQuestRequest, now time.Time) (*models.Quest, error) {
	tmpl, err := s.store.GetTemplate(req.QuestTemplateID, homeID)
	if err != nil {
		return nil, err
	}

	dueDate := req.DueDate
	if dueDate == nil && tmpl.DueInHours != nil {
		d := now.Add(time.Duration(*tmpl.DueInHours) * time.Hour)
		dueDate = &d
	}

	quest, err := s.store.CreateQuest(&models.Quest{
		HomeID:          homeID,
		UserID:          userID,
		QuestTemplateID: &tmpl.ID,
		Title:           tmpl.Title,
		DisplayName:     tmpl.DisplayName,
		Description:     tmpl.Description,
		Tags:            tmpl.Tags,
		XPReward:        tmpl.XPReward,
		GoldReward:      tmpl.GoldReward,
		QuestType:       models.QuestTypeStandard,
		DueDate:         dueDate,
	})
	if err != nil {
		return nil, err
	}

	// A manual instantiation counts as a generation, so the sweep doesn't
	// immediately produce a duplicate for recurring templates.
	if tmpl.Recurrence != models.RecurrenceOneOff {
		if err := s.store.AdvanceTemplateGeneration(tmpl.ID, now); err != nil {
			log.Printf("[quests] failed to advance generation for template %d: %v", tmpl.ID, err)
		}
	}

	return quest, nil
}

func (s *Service) CreateStandalone(homeID, userID int64, req *models.CreateStandaloneQuestRequest) (*models.Quest, error) {
	if req.Title == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "Title is required")
	}
	if req.XPReward < 0 || req.GoldReward < 0 {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "Rewards cannot be negative")
	}

	return s.store.CreateQuest(&models.Quest{
		HomeID:      homeID,
		UserID:      userID,
		Title:       req.Title,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Tags:        req.Tags,
		XPReward:    req.XPReward,
		GoldReward:  req.GoldReward,
		QuestType:   models.QuestTypeStandard,
		DueDate:     req.DueDate,
	})
}

func (s *Service) GetQuest(id, homeID int64) (*models.Quest, error) {
	return s.store.GetQuest(id, homeID)
}

// ListQuests runs both lazy sweeps, then returns the home's quests. Sweep
// failures degrade to a plain listing rather than failing the read.
func (s *Service) ListQuests(homeID int64, userID *int64, completed *bool, now time.Time) ([]models.Quest, error) {
	if _, err := s.store.CorruptOverdue(homeID, now); err != nil {
		log.Printf("[quests] corruption sweep failed for home %d: %v", homeID, err)
	}
	if err := s.GenerateDueQuests(homeID, now); err != nil {
		log.Printf("[quests] generation sweep failed for home %d: %v", homeID, err)
	}

	return s.store.ListQuests(homeID, userID, completed)
}

func (s *Service) UpdateQuest(id, homeID int64, req *models.UpdateQuestRequest) (*models.Quest, error) {
	quest, err := s.store.GetQuest(id, homeID)
	if err != nil {
		return nil, err
	}
	if quest.Completed {
		return nil, apperr.Conflict(apperr.CodeQuestAlreadyCompleted, "Completed quests cannot be edited")
	}

	if req.Title != nil {
		quest.Title = *req.Title
	}
	if req.DisplayName != nil {
		quest.DisplayName = req.DisplayName
	}
	if req.Description != nil {
		quest.Description = req.Description
	}
	if req.Tags != nil {
		quest.Tags = req.Tags
	}
	if req.XPReward != nil {
		quest.XPReward = *req.XPReward
	}
	if req.GoldReward != nil {
		quest.GoldReward = *req.GoldReward
	}
	if req.DueDate != nil {
		quest.DueDate = req.DueDate
	}

	if quest.XPReward < 0 || quest.GoldReward < 0 {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "Rewards cannot be negative")
	}
	if err := s.store.SaveQuest(quest); err != nil {
		return nil, err
	}
	return quest, nil
}

func (s *Service) DeleteQuest(id, homeID int64) error {
	return s.store.DeleteQuest(id, homeID)
}

// Complete runs the full completion flow: corruption sweep, modifier
// pipeline, atomic commit, then achievement re-evaluation.
func (s *Service) Complete(homeID, userID, questID int64, now time.Time) (*models.CompleteQuestResponse, error) {
	if _, err := s.store.CorruptOverdue(homeID, now); err != nil {
		log.Printf("[quests] corruption sweep failed for home %d: %v", homeID, err)
	}

	quest, err := s.store.GetQuest(questID, homeID)
	if err != nil {
		return nil, err
	}
	if quest.UserID != userID {
		return nil, apperr.NotFound(apperr.CodeQuestNotFound, "Quest not found")
	}
	if quest.Completed {
		return nil, apperr.Conflict(apperr.CodeQuestAlreadyCompleted, "Quest is already completed")
	}

	corrupted, err := s.store.CountActiveCorrupted(homeID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Get(userID)
	if err != nil {
		return nil, err
	}
	isBounty, err := s.bounty.IsTodayAssigned(homeID, userID, questID, now)
	if err != nil {
		return nil, err
	}

	shieldActive := user.ActiveShieldExpiry != nil && user.ActiveShieldExpiry.After(now)
	breakdown := progression.ComputeRewards(quest.XPReward, quest.GoldReward,
		quest.QuestType == models.QuestTypeCorrupted, progression.ModifierState{
			CorruptedCount:   corrupted,
			ShieldActive:     shieldActive,
			IsDailyBounty:    isBounty,
			XPBoostRemaining: user.ActiveXPBoostCount,
		})

	completed, err := s.store.CompleteQuest(questID, userID, now, breakdown, user.ActiveXPBoostCount > 0)
	if err != nil {
		return nil, err
	}

	newly, err := s.achievements.CheckAndAward(userID, homeID)
	if err != nil {
		// The completion itself committed; a failed re-evaluation only
		// delays unlocks until the next one.
		log.Printf("[quests] achievement check failed for user %d: %v", userID, err)
		newly = []models.UserAchievement{}
	}

	return &models.CompleteQuestResponse{
		Quest:        completed,
		Rewards:      breakdown,
		Achievements: newly,
	}, nil
}

// CheckCorruption is the manual sweep trigger, same semantics as the lazy one.
func (s *Service) CheckCorruption(homeID int64, now time.Time) (*models.CorruptionCheckResponse, error) {
	ids, err := s.store.CorruptOverdue(homeID, now)
	if err != nil {
		return nil, err
	}
	return &models.CorruptionCheckResponse{CorruptedCount: len(ids), CorruptedQuestIDs: ids}, nil
}

// Recurring generation

// GenerateDueQuests materializes instances for every due recurring template
// and active subscription in the home. A malformed schedule skips that one
// item, never the whole sweep.
func (s *Service) GenerateDueQuests(homeID int64, now time.Time) error {
	cutoff := now.Add(-generationCooldown)

	templates, err := s.store.DueRecurringTemplates(homeID, cutoff)
	if err != nil {
		return err
	}
	for i := range templates {
		s.generateFromTemplate(&templates[i], now)
	}

	subs, err := s.store.DueActiveSubscriptions(homeID, cutoff)
	if err != nil {
		return err
	}
	for i := range subs {
		s.generateFromSubscription(&subs[i], now)
	}

	return nil
}

func (s *Service) generateFromTemplate(tmpl *models.QuestTemplate, now time.Time) {
	if tmpl.Schedule == nil {
		return
	}
	sched, err := ParseSchedule(*tmpl.Schedule)
	if err != nil {
		log.Printf("[quests] template %d has malformed schedule: %v", tmpl.ID, err)
		return
	}
	next, err := NextGenerationTime(now, tmpl.LastGeneratedAt, sched)
	if err != nil {
		log.Printf("[quests] template %d schedule rejected: %v", tmpl.ID, err)
		return
	}
	if now.Before(next) {
		return
	}

	// One outstanding instance anywhere in the home blocks the whole
	// fanout: no spam while the last round is unfinished.
	open, err := s.store.HasIncompleteInstance(tmpl.ID)
	if err != nil {
		log.Printf("[quests] template %d instance check failed: %v", tmpl.ID, err)
		return
	}
	if open {
		return
	}

	userIDs, err := s.store.UnsubscribedHomeUserIDs(tmpl.HomeID, tmpl.ID)
	if err != nil {
		log.Printf("[quests] template %d user fanout failed: %v", tmpl.ID, err)
		return
	}
	for _, userID := range userIDs {
		if _, err := s.store.CreateQuest(questFromTemplate(tmpl, userID, now)); err != nil {
			log.Printf("[quests] template %d generation for user %d failed: %v", tmpl.ID, userID, err)
		}
	}

	if err := s.store.AdvanceTemplateGeneration(tmpl.ID, now); err != nil {
		log.Printf("[quests] template %d advance failed: %v", tmpl.ID, err)
	}
}

func (s *Service) generateFromSubscription(due *DueSubscription, now time.Time) {
	sub, tmpl := &due.Subscription, &due.Template
	if sub.Schedule == nil {
		return
	}
	sched, err := ParseSchedule(*sub.Schedule)
	if err != nil {
		log.Printf("[quests] subscription %d has malformed schedule: %v", sub.ID, err)
		return
	}
	next, err := NextGenerationTime(now, sub.LastGeneratedAt, sched)
	if err != nil {
		log.Printf("[quests] subscription %d schedule rejected: %v", sub.ID, err)
		return
	}
	if now.Before(next) {
		return
	}

	open, err := s.store.HasIncompleteInstanceForUser(tmpl.ID, sub.UserID)
	if err != nil {
		log.Printf("[quests] subscription %d instance check failed: %v", sub.ID, err)
		return
	}
	if open {
		return
	}

	quest := questFromTemplate(tmpl, sub.UserID, now)
	if sub.DueInHours != nil {
		d := now.Add(time.Duration(*sub.DueInHours) * time.Hour)
		quest.DueDate = &d
	}
	if _, err := s.store.CreateQuest(quest); err != nil {
		log.Printf("[quests] subscription %d generation failed: %v", sub.ID, err)
		return
	}

	if err := s.store.AdvanceSubscriptionGeneration(sub.ID, now); err != nil {
		log.Printf("[quests] subscription %d advance failed: %v", sub.ID, err)
	}
}

func questFromTemplate(tmpl *models.QuestTemplate, userID int64, now time.Time) *models.Quest {
	quest := &models.Quest{
		HomeID:          tmpl.HomeID,
		UserID:          userID,
		QuestTemplateID: &tmpl.ID,
		Title:           tmpl.Title,
		DisplayName:     tmpl.DisplayName,
		Description:     tmpl.Description,
		Tags:            tmpl.Tags,
		XPReward:        tmpl.XPReward,
		GoldReward:      tmpl.GoldReward,
		QuestType:       models.QuestTypeStandard,
	}
	if tmpl.DueInHours != nil {
		d := now.Add(time.Duration(*tmpl.DueInHours) * time.Hour)
		quest.DueDate = &d
	}
	return quest
}

// Subscriptions

func (s *Service) CreateSubscription(homeID, userID int64, req *models.CreateSubscriptionRequest) (*models.UserTemplateSubscription, error) {
	// The template must exist in the caller's home.
	if _, err := s.store.GetTemplate(req.QuestTemplateID, homeID); err != nil {
		return nil, err
	}
	if req.Recurrence == "" {
		req.Recurrence = models.RecurrenceOneOff
	}
	if err := ValidateSchedule(req.Recurrence, req.Schedule); err != nil {
		return nil, err
	}

	return s.store.CreateSubscription(userID, req)
}

func (s *Service) ListSubscriptions(userID int64) ([]models.UserTemplateSubscription, error) {
	return s.store.ListSubscriptions(userID)
}

func (s *Service) UpdateSubscription(id, userID int64, req *models.UpdateSubscriptionRequest) (*models.UserTemplateSubscription, error) {
	sub, err := s.store.GetSubscription(id, userID)
	if err != nil {
		return nil, err
	}

	if req.Recurrence != nil {
		sub.Recurrence = *req.Recurrence
	}
	if req.Schedule != nil {
		sub.Schedule = req.Schedule
	}
	if req.DueInHours != nil {
		sub.DueInHours = req.DueInHours
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}

	if err := ValidateSchedule(sub.Recurrence, sub.Schedule); err != nil {
		return nil, err
	}
	if err := s.store.SaveSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) DeleteSubscription(id, userID int64) error {
	return s.store.DeleteSubscription(id, userID)
}

// UpcomingSubscriptions annotates the user's active subscriptions with their
// computed next spawn instants, soonest first. Subscriptions with broken
// schedules are omitted.
func (s *Service) UpcomingSubscriptions(homeID, userID int64, now time.Time) ([]models.UpcomingSubscription, error) {
	subs, err := s.store.ListSubscriptions(userID)
	if err != nil {
		return nil, err
	}

	upcoming := []models.UpcomingSubscription{}
	for _, sub := range subs {
		if !sub.IsActive || sub.Schedule == nil {
			continue
		}
		sched, err := ParseSchedule(*sub.Schedule)
		if err != nil {
			log.Printf("[quests] subscription %d has malformed schedule: %v", sub.ID, err)
			continue
		}
		next, err := NextGenerationTime(now, sub.LastGeneratedAt, sched)
		if err != nil {
			continue
		}
		tmpl, err := s.store.GetTemplate(sub.QuestTemplateID, homeID)
		if err != nil {
			continue
		}
		upcoming = append(upcoming, models.UpcomingSubscription{
			UserTemplateSubscription: sub,
			NextSpawnAt:              next,
			Template:                 tmpl,
		})
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].NextSpawnAt.Before(upcoming[j].NextSpawnAt)
	})
	return upcoming, nil
}
