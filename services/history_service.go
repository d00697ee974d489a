// services/history_service.go
package services

import (
	"sort"
	"time"

	"snaptrack/models"

	"gorm.io/gorm"
)

// HistoryService rebuilds the two read views from normalized rows on
// every call; there is no materialized cache to invalidate.
type HistoryService struct {
	db      *gorm.DB
	baseURL string // public endpoint prefix for /api/image links
}

func NewHistoryService(db *gorm.DB, baseURL string) *HistoryService {
	return &HistoryService{db: db, baseURL: baseURL}
}

type TranscriptEntry struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      *string   `json:"text"`
	ImageURL  *string   `json:"imageUrl"`
	MealLabel *string   `json:"meal_label"`
	Timestamp time.Time `json:"timestamp"`
}

type SummaryMeal struct {
	ID       string  `json:"id"`
	Time     string  `json:"time"`
	Label    string  `json:"label"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	ImageURL *string `json:"image_url"`
	ProteinG int     `json:"protein_g"`
	CarbsG   int     `json:"carbs_g"`
	FatG     int     `json:"fat_g"`
	FiberG   int     `json:"fiber_g"`
	Edited   bool    `json:"edited"`
}

type DayTotals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
	Fiber    int `json:"fiber"`
}

type DaySummary struct {
	Date   string        `json:"date"`
	Totals DayTotals     `json:"totals"`
	Meals  []SummaryMeal `json:"meals"`
}

// ChatTranscript returns every message for the user in timestamp
// order. Messages without a meal still appear, with a null label.
func (s *HistoryService) ChatTranscript(userIdentifier string) ([]TranscriptEntry, error) {
	user, err := s.findUser(userIdentifier)
	if err != nil || user == nil {
		return []TranscriptEntry{}, err
	}

	var msgs []models.Message
	if err := s.db.Where("user_id = ?", user.ID).
		Order("timestamp ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}

	labels, err := s.mealLabels(user.ID)
	if err != nil {
		return nil, err
	}
	urls, err := s.imageURLs(collectImageIDs(msgs, nil))
	if err != nil {
		return nil, err
	}

	out := make([]TranscriptEntry, 0, len(msgs))
	for _, m := range msgs {
		e := TranscriptEntry{
			ID:        m.ID,
			Sender:    m.Sender,
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
		if m.ImageID != nil {
			if u, ok := urls[*m.ImageID]; ok {
				e.ImageURL = &u
			}
		}
		if m.MealID != nil {
			if label, ok := labels[*m.MealID]; ok {
				e.MealLabel = &label
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// DailySummary buckets the user's meals by creation day (server-local)
// with running macro totals. Days come back most-recent-first; within
// a day, meals keep the query order (creation time descending).
func (s *HistoryService) DailySummary(userIdentifier string) ([]DaySummary, error) {
	user, err := s.findUser(userIdentifier)
	if err != nil || user == nil {
		return []DaySummary{}, err
	}

	var meals []models.Meal
	if err := s.db.Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Find(&meals).Error; err != nil {
		return nil, err
	}

	urls, err := s.imageURLs(collectImageIDs(nil, meals))
	if err != nil {
		return nil, err
	}

	buckets := map[string]*DaySummary{}
	for _, meal := range meals {
		var nlog models.NutritionLog
		err := s.db.Where("meal_id = ?", meal.ID).
			Order("created_at DESC, id DESC").
			First(&nlog).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue // mid-flight meal, never classified
			}
			return nil, err
		}

		dateKey := meal.CreatedAt.Local().Format("2006-01-02")
		day, ok := buckets[dateKey]
		if !ok {
			day = &DaySummary{Date: dateKey, Meals: []SummaryMeal{}}
			buckets[dateKey] = day
		}

		day.Totals.Calories += nlog.CaloriesKcal
		day.Totals.Protein += nlog.ProteinG
		day.Totals.Carbs += nlog.CarbsG
		day.Totals.Fat += nlog.FatG
		day.Totals.Fiber += nlog.FiberG

		entry := SummaryMeal{
			ID:       meal.ID,
			Time:     meal.CreatedAt.Local().Format("15:04"),
			Label:    meal.FriendlyID,
			Name:     nlog.ItemName,
			Calories: nlog.CaloriesKcal,
			ProteinG: nlog.ProteinG,
			CarbsG:   nlog.CarbsG,
			FatG:     nlog.FatG,
			FiberG:   nlog.FiberG,
			Edited:   nlog.Edited,
		}
		if meal.ImageID != nil {
			if u, ok := urls[*meal.ImageID]; ok {
				entry.ImageURL = &u
			}
		}
		day.Meals = append(day.Meals, entry)
	}

	out := make([]DaySummary, 0, len(buckets))
	for _, day := range buckets {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *HistoryService) findUser(identifier string) (*models.User, error) {
	var user models.User
	err := s.db.Where("identifier = ?", identifier).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *HistoryService) mealLabels(userID string) (map[string]string, error) {
	var meals []models.Meal
	if err := s.db.Select("id, friendly_id").
		Where("user_id = ?", userID).
		Find(&meals).Error; err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(meals))
	for _, m := range meals {
		labels[m.ID] = m.FriendlyID
	}
	return labels, nil
}

// imageURLs resolves each image id to its public URL: the CDN copy
// when the photo was offloaded, the local image route otherwise.
func (s *HistoryService) imageURLs(ids []string) (map[string]string, error) {
	urls := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return urls, nil
	}
	var imgs []models.ImageStore
	if err := s.db.Select("id, external_url").
		Where("id IN ?", ids).
		Find(&imgs).Error; err != nil {
		return nil, err
	}
	for _, img := range imgs {
		if img.ExternalURL != "" {
			urls[img.ID] = img.ExternalURL
		} else {
			urls[img.ID] = s.baseURL + "/api/image/" + img.ID
		}
	}
	return urls, nil
}

func collectImageIDs(msgs []models.Message, meals []models.Meal) []string {
	seen := map[string]bool{}
	var ids []string
	for _, m := range msgs {
		if m.ImageID != nil && !seen[*m.ImageID] {
			seen[*m.ImageID] = true
			ids = append(ids, *m.ImageID)
		}
	}
	for _, m := range meals {
		if m.ImageID != nil && !seen[*m.ImageID] {
			seen[*m.ImageID] = true
			ids = append(ids, *m.ImageID)
		}
	}
	return ids
}
