package services

import (
	"context"
	"testing"

	"snaptrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetUser_RemovesEverything(t *testing.T) {
	db := newTestDB(t)
	ai := &fakeAnalyzer{imageResult: foodResult("Curry", "dinner", 600, 25, 60, 25, 6)}
	orc := newOrchestrator(db, ai)

	_, err := orc.HandleTurn(context.Background(), "alice", "", jpeg, "image/jpeg", "en")
	require.NoError(t, err)
	ai.correctionResult = foodResult("Curry with rice", "dinner", 750, 28, 90, 26, 6)
	_, err = orc.HandleTurn(context.Background(), "alice", "plus rice", nil, "", "en")
	require.NoError(t, err)

	// another user's rows must survive the reset
	_, err = orc.HandleTurn(context.Background(), "bob", "", jpeg, "image/jpeg", "en")
	require.NoError(t, err)

	require.NoError(t, NewUserService(db).ResetUser("alice"))

	var users, meals, logs, msgs, imgs int64
	db.Model(&models.User{}).Where("identifier = ?", "alice").Count(&users)
	db.Model(&models.Meal{}).Count(&meals)
	db.Model(&models.NutritionLog{}).Count(&logs)
	db.Model(&models.Message{}).Count(&msgs)
	db.Model(&models.ImageStore{}).Count(&imgs)

	assert.Zero(t, users)
	assert.EqualValues(t, 1, meals, "bob's meal remains")
	assert.EqualValues(t, 1, logs)
	assert.EqualValues(t, 2, msgs)
	assert.EqualValues(t, 1, imgs, "only images referenced by alice's rows were swept")

	days, err := NewHistoryService(db, testBase).DailySummary("alice")
	require.NoError(t, err)
	assert.Empty(t, days)

	entries, err := NewHistoryService(db, testBase).ChatTranscript("alice")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResetUser_UnknownIdentifierIsNoOp(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, NewUserService(db).ResetUser("ghost"))
}
