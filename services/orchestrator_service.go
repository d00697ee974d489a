// services/orchestrator_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"snaptrack/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultMealContext = "New meal log"
	replySendPhoto     = "Please send a photo to start tracking!"
	replyNotFood       = "That doesn't look like food."
	replyUpdated       = "Updated."
)

// TurnResult is what the chat endpoint hands back to the client.
type TurnResult struct {
	Reply         string          `json:"reply"`
	TransactionID *string         `json:"transaction_id"`
	Data          *AnalysisResult `json:"data"`
}

// OrchestratorService owns the turn-handling state model: whether an
// inbound message starts a new meal or corrects the active one, and
// every row written along the way. All writes of one turn share a
// single transaction.
type OrchestratorService struct {
	db *gorm.DB
	ai Analyzer

	// Offload pushes the photo to external storage and returns its
	// public URL. Nil keeps images database-only.
	Offload func(data []byte, mimeType string) (string, error)

	now func() time.Time
}

func NewOrchestratorService(db *gorm.DB, ai Analyzer) *OrchestratorService {
	return &OrchestratorService{db: db, ai: ai, now: time.Now}
}

// HandleTurn processes one inbound message (text and/or image) and
// produces the bot reply. Only persistence failures surface as an
// error; adapter failures come back as a normal not-food reply so the
// user always sees something.
func (s *OrchestratorService) HandleTurn(ctx context.Context, userIdentifier, text string, imageBytes []byte, mimeType, language string) (*TurnResult, error) {
	log.Printf("[turn] user=%s text=%q image=%db", userIdentifier, text, len(imageBytes))

	var out TurnResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := s.getOrCreateUser(tx, userIdentifier)
		if err != nil {
			return err
		}

		var imageID *string
		if len(imageBytes) > 0 {
			img := models.ImageStore{Data: imageBytes, MimeType: mimeOrJPEG(mimeType)}
			if s.Offload != nil {
				if url, err := s.Offload(imageBytes, img.MimeType); err == nil {
					img.ExternalURL = url
				} else {
					log.Printf("[turn] image offload failed, keeping db copy only: %v", err)
				}
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
			imageID = &img.ID
		}

		userMsg := models.Message{UserID: user.ID, Sender: models.SenderUser, ImageID: imageID}
		if text != "" {
			userMsg.Text = &text
		}
		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}

		activeMeal, err := s.latestMeal(tx, user.ID)
		if err != nil {
			return err
		}

		var reply string
		switch {
		case len(imageBytes) > 0:
			userContext := text
			if userContext == "" {
				userContext = defaultMealContext
			}
			result := s.ai.AnalyzeImage(ctx, imageBytes, mimeOrJPEG(mimeType), userContext, language)

			if result.IsFood {
				friendlyID, err := s.generateFriendlyID(tx, user.ID, result.MealType)
				if err != nil {
					return err
				}
				meal := models.Meal{
					UserID:     user.ID,
					FriendlyID: friendlyID,
					Status:     "draft",
					ImageID:    imageID,
				}
				if err := tx.Create(&meal).Error; err != nil {
					return err
				}
				nlog := models.NutritionLog{MealID: meal.ID}
				applyResult(&nlog, result)
				if err := tx.Create(&nlog).Error; err != nil {
					return err
				}
				if err := tx.Model(&userMsg).Update("meal_id", meal.ID).Error; err != nil {
					return err
				}
				activeMeal = &meal
				reply = result.ReplyText
				out.Data = &result
			} else {
				reply = result.ReplyText
				if reply == "" {
					reply = replyNotFood
				}
				// A rejected image never touches the active meal.
				activeMeal = nil
			}

		case text != "" && activeMeal != nil:
			nlog, err := s.currentLog(tx, activeMeal.ID)
			if err == gorm.ErrRecordNotFound {
				// A meal without a log row still takes corrections;
				// they start from an empty estimate.
				nlog = &models.NutritionLog{MealID: activeMeal.ID}
			} else if err != nil {
				return err
			}
			var prior AnalysisResult
			if nlog.RawJSON != "" {
				prior = ParseAnalysisResult(nlog.RawJSON)
			}
			result := s.ai.AnalyzeCorrection(ctx, prior, text, language)

			applyResult(nlog, result)
			if err := tx.Save(nlog).Error; err != nil {
				return err
			}
			if err := tx.Model(&userMsg).Update("meal_id", activeMeal.ID).Error; err != nil {
				return err
			}
			reply = result.ReplyText
			if reply == "" {
				reply = replyUpdated
			}
			// Corrections echo the refreshed totals too, so the
			// caller can re-render without a history round trip.
			out.Data = &result

		default:
			reply = replySendPhoto
		}

		botMsg := models.Message{UserID: user.ID, Sender: models.SenderBot, Text: &reply}
		if activeMeal != nil {
			botMsg.MealID = &activeMeal.ID
			out.TransactionID = &activeMeal.FriendlyID
		}
		if err := tx.Create(&botMsg).Error; err != nil {
			return err
		}

		out.Reply = reply
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *OrchestratorService) getOrCreateUser(tx *gorm.DB, identifier string) (*models.User, error) {
	var user models.User
	err := tx.Where(models.User{Identifier: identifier}).
		FirstOrCreate(&user, models.User{Identifier: identifier, Platform: "web"}).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// latestMeal is the single accessor for "active meal": the most
// recently created meal for the user, regardless of status.
func (s *OrchestratorService) latestMeal(tx *gorm.DB, userID string) (*models.Meal, error) {
	var meal models.Meal
	err := tx.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&meal).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &meal, nil
}

// currentLog treats the most recent log row as the single
// authoritative log for the meal.
func (s *OrchestratorService) currentLog(tx *gorm.DB, mealID string) (*models.NutritionLog, error) {
	var nlog models.NutritionLog
	err := tx.Where("meal_id = ?", mealID).
		Order("created_at DESC, id DESC").
		First(&nlog).Error
	if err != nil {
		return nil, err
	}
	return &nlog, nil
}

// generateFriendlyID builds the {mon}-{dd}-{mealtype} label and
// disambiguates with -2, -3, ... per user. Runs inside the same
// transaction that creates the meal, so two simultaneous turns cannot
// hand out the same suffix.
func (s *OrchestratorService) generateFriendlyID(tx *gorm.DB, userID, mealType string) (string, error) {
	base := strings.ToLower(s.now().Format("Jan-02")) + "-" + mealType

	var count int64
	err := tx.Model(&models.Meal{}).
		Where("user_id = ? AND friendly_id LIKE ?", userID, base+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	if count == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, count+1), nil
}

// applyResult maps an adapter result onto the log row. Typed columns
// and the raw copy are set together, always.
func applyResult(nlog *models.NutritionLog, res AnalysisResult) {
	nlog.ItemName = res.ItemName
	nlog.MealType = res.MealType
	nlog.IsComposedMeal = res.IsComposedMeal
	nlog.EstimatedWeightG = res.EstimatedWeightG
	nlog.CaloriesKcal = res.Nutrition.CaloriesKcal
	nlog.ProteinG = res.Nutrition.ProteinG
	nlog.CarbsG = res.Nutrition.CarbsG
	nlog.FatG = res.Nutrition.FatG
	nlog.FiberG = res.Nutrition.FiberG
	nlog.ConfidenceScore = res.ConfidenceScore
	nlog.Reasoning = res.Reasoning
	nlog.DietaryFlags = datatypes.NewJSONSlice(res.DietaryFlags)
	nlog.RawJSON = res.Raw()
}

func mimeOrJPEG(mimeType string) string {
	if mimeType == "" {
		return "image/jpeg"
	}
	return mimeType
}
