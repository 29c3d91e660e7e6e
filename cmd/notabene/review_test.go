package main

import (
	"context"
	"errors"
	"testing"

	"github.com/notabene-app/notabene/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConfirmStore struct {
	updated   []string
	applied   []int64
	updateErr error
	statsErr  error
}

func (m *mockConfirmStore) UpdateNoteClassification(_ context.Context, noteID string, _ model.ClassificationResult, status model.NoteStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if status != model.NoteConfirmed {
		return errors.New("unexpected status")
	}
	m.updated = append(m.updated, noteID)
	return nil
}

func (m *mockConfirmStore) RecordRuleApplied(_ context.Context, ruleID int64) error {
	if m.statsErr != nil {
		return m.statsErr
	}
	m.applied = append(m.applied, ruleID)
	return nil
}

func acceptedNote(ruleID *int64) model.Note {
	return model.Note{
		ID:     "note-1",
		Title:  "Daily Standup",
		Status: model.NoteInReview,
		Result: &model.ClassificationResult{
			Type:          model.TypeInternal,
			Method:        model.MethodRule,
			Confidence:    0.8,
			MatchedRuleID: ruleID,
		},
	}
}

func TestConfirmNoteCreditsMatchedRule(t *testing.T) {
	store := &mockConfirmStore{}
	ruleID := int64(5)

	require.NoError(t, confirmNote(context.Background(), store, acceptedNote(&ruleID)))
	assert.Equal(t, []string{"note-1"}, store.updated)
	assert.Equal(t, []int64{5}, store.applied)
}

func TestConfirmNoteWithoutMatchedRule(t *testing.T) {
	store := &mockConfirmStore{}

	require.NoError(t, confirmNote(context.Background(), store, acceptedNote(nil)))
	assert.Equal(t, []string{"note-1"}, store.updated)
	assert.Empty(t, store.applied)
}

func TestConfirmNoteStatsFailureIsAdvisory(t *testing.T) {
	store := &mockConfirmStore{statsErr: errors.New("disk full")}
	ruleID := int64(5)

	require.NoError(t, confirmNote(context.Background(), store, acceptedNote(&ruleID)))
	assert.Equal(t, []string{"note-1"}, store.updated)
}

func TestConfirmNoteUpdateFailureIsFatal(t *testing.T) {
	store := &mockConfirmStore{updateErr: errors.New("db locked")}
	ruleID := int64(5)

	err := confirmNote(context.Background(), store, acceptedNote(&ruleID))
	assert.Error(t, err)
	assert.Empty(t, store.applied)
}

func TestConfirmNoteWithoutVerdictIsNoop(t *testing.T) {
	store := &mockConfirmStore{}

	require.NoError(t, confirmNote(context.Background(), store, model.Note{ID: "note-2"}))
	assert.Empty(t, store.updated)
}
