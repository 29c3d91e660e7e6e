package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/notabene-app/notabene/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore records calls and serves configurable responses.
type mockStore struct {
	appendErr     error
	countErr      error
	incrementErr  error
	getErr        error
	replaceErr    error
	count         int
	patterns      map[string][]model.LearnedPattern
	appended      []model.FeedbackRecord
	incrementedID []int64
	nextID        int64
}

func newMockStore() *mockStore {
	return &mockStore{patterns: make(map[string][]model.LearnedPattern), nextID: 100}
}

func (m *mockStore) AppendFeedback(_ context.Context, record *model.FeedbackRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	record.ID = m.nextID
	m.nextID++
	m.appended = append(m.appended, *record)
	return nil
}

func (m *mockStore) CountFeedbackByTarget(_ context.Context, _, _ *int64) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

func (m *mockStore) IncrementRuleCorrected(_ context.Context, ruleID int64) error {
	if m.incrementErr != nil {
		return m.incrementErr
	}
	m.incrementedID = append(m.incrementedID, ruleID)
	return nil
}

func (m *mockStore) GetLearnedPatterns(_ context.Context, userID string) ([]model.LearnedPattern, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.patterns[userID], nil
}

func (m *mockStore) ReplaceLearnedPatterns(_ context.Context, userID string, patterns []model.LearnedPattern) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.patterns[userID] = patterns
	return nil
}

func newTestRecorder(store Store) *Recorder {
	r := NewRecorder(store, "internal.co")
	r.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func correctionFixture() (model.ClassificationResult, model.ClassificationResult, model.MeetingSnapshot) {
	clientID := int64(1)
	original := model.ClassificationResult{Type: model.TypeExternal, Confidence: 0.3, Method: model.MethodDefault}
	corrected := model.ClassificationResult{
		Type:       model.TypeClient,
		ClientID:   &clientID,
		ClientName: "Acme",
		Confidence: 1.0,
		Method:     model.MethodDefault,
	}
	snapshot := model.MeetingSnapshot{
		Title:          "Quarterly Planning Session",
		AttendeeEmails: []string{"alice@internal.co", "john@acme.com"},
	}
	return original, corrected, snapshot
}

func TestRecordPersistsFeedback(t *testing.T) {
	store := newMockStore()
	recorder := newTestRecorder(store)
	original, corrected, snapshot := correctionFixture()

	result, err := recorder.Record(context.Background(), "note-1", original, corrected, snapshot, "sam")
	require.NoError(t, err)

	require.Len(t, store.appended, 1)
	record := store.appended[0]
	assert.Equal(t, "note-1", record.NoteID)
	assert.Equal(t, "sam", record.Author)
	assert.Equal(t, []model.CorrectionType{model.CorrectionTypeChange, model.CorrectionClientChange}, record.CorrectionTypes)
	assert.Equal(t, int64(100), result.Record.ID)
	assert.Nil(t, result.SuggestedRule)
}

func TestRecordAppendFailureIsFatal(t *testing.T) {
	store := newMockStore()
	store.appendErr = errors.New("disk full")
	recorder := newTestRecorder(store)
	original, corrected, snapshot := correctionFixture()

	_, err := recorder.Record(context.Background(), "note-1", original, corrected, snapshot, "sam")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to append feedback record")
}

func TestRecordIncrementsCorrectedRule(t *testing.T) {
	store := newMockStore()
	recorder := newTestRecorder(store)
	original, corrected, snapshot := correctionFixture()
	ruleID := int64(7)
	original.MatchedRuleID = &ruleID

	result, err := recorder.Record(context.Background(), "note-1", original, corrected, snapshot, "sam")
	require.NoError(t, err)
	assert.True(t, result.RuleStatsUpdated)
	assert.Equal(t, []int64{7}, store.incrementedID)
}

func TestRecordRuleStatFailureIsAdvisory(t *testing.T) {
	store := newMockStore()
	store.incrementErr = errors.New("db locked")
	recorder := newTestRecorder(store)
	original, corrected, snapshot := correctionFixture()
	ruleID := int64(7)
	original.MatchedRuleID = &ruleID

	result, err := recorder.Record(context.Background(), "note-1", original, corrected, snapshot, "sam")
	require.NoError(t, err)
	assert.False(t, result.RuleStatsUpdated)
	require.Len(t, store.appended, 1, "the record itself still lands")
}

func TestRecordSuggestsRuleAfterThreshold(t *testing.T) {
	store := newMockStore()
	store.count = RuleSuggestionThreshold
	recorder := newTestRecorder(store)
	original, corrected, snapshot := correctionFixture()
	projectID := int64(10)
	corrected.ProjectID = &projectID
	corrected.ProjectName = "Phoenix"

	result, err := recorder.Record(context.Background(), "note-4", original, corrected, snapshot, "sam")
	require.NoError(t, err)

	require.NotNil(t, result.SuggestedRule)
	rule := result.SuggestedRule
	assert.Equal(t, "Auto-file Acme meetings", rule.Name)
	assert.Equal(t, model.RuleTesting, rule.Status)
	assert.Equal(t, 50, rule.Priority)
	assert.Empty(t, rule.Group.Conditions, "conditions are left for the author")
	assert.Equal(t, model.TargetRef{Mode: model.TargetExplicit, Value: "1"}, rule.Actions.Client)
	assert.Equal(t, model.TargetRef{Mode: model.TargetExplicit, Value: "10"}, rule.Actions.Project)
}

func TestRecordNoSuggestionBelowThreshold(t *testing.T) {
	store := newMockStore()
	store.count = RuleSuggestionThreshold - 1
	recorder := newTestRecorder(store)
	original, corrected, snapshot := correctionFixture()

	result, err := recorder.Record(context.Background(), "note-3", original, corrected, snapshot, "sam")
	require.NoError(t, err)
	assert.Nil(t, result.SuggestedRule)
}

func TestRecordNoSuggestionWithoutClientTarget(t *testing.T) {
	store := newMockStore()
	store.count = RuleSuggestionThreshold + 5
	recorder := newTestRecorder(store)
	original, _, snapshot := correctionFixture()
	corrected := model.ClassificationResult{Type: model.TypePersonal, Confidence: 1.0}

	result, err := recorder.Record(context.Background(), "note-1", original, corrected, snapshot, "sam")
	require.NoError(t, err)
	assert.Nil(t, result.SuggestedRule)
}

func TestRecordCountFailureSuppressesSuggestion(t *testing.T) {
	store := newMockStore()
	store.count = RuleSuggestionThreshold
	store.countErr = errors.New("db locked")
	recorder := newTestRecorder(store)
	original, corrected, snapshot := correctionFixture()

	result, err := recorder.Record(context.Background(), "note-1", original, corrected, snapshot, "sam")
	require.NoError(t, err)
	assert.Nil(t, result.SuggestedRule)
}

func TestRecordLearnsPattern(t *testing.T) {
	store := newMockStore()
	recorder := newTestRecorder(store)
	original, corrected, snapshot := correctionFixture()

	result, err := recorder.Record(context.Background(), "note-1", original, corrected, snapshot, "sam")
	require.NoError(t, err)
	assert.False(t, result.PatternUpdated, "first observation creates rather than updates")

	stored := store.patterns["sam"]
	require.Len(t, stored, 1)
	assert.Equal(t, "meetings with acme.com titled about quarterly planning session", stored[0].Pattern)
	assert.Equal(t, "file under client Acme", stored[0].Action)
	assert.InDelta(t, model.LearnedPatternInitialConfidence, stored[0].Confidence, 1e-9)

	// A second identical correction bumps the same pattern.
	result, err = recorder.Record(context.Background(), "note-2", original, corrected, snapshot, "sam")
	require.NoError(t, err)
	assert.True(t, result.PatternUpdated)

	stored = store.patterns["sam"]
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].TimesApplied)
	assert.InDelta(t, model.LearnedPatternInitialConfidence+model.LearnedPatternConfidenceStep, stored[0].Confidence, 1e-9)
}

func TestRecordPatternStoreFailureIsAdvisory(t *testing.T) {
	store := newMockStore()
	store.replaceErr = errors.New("db locked")
	recorder := newTestRecorder(store)
	original, corrected, snapshot := correctionFixture()

	result, err := recorder.Record(context.Background(), "note-1", original, corrected, snapshot, "sam")
	require.NoError(t, err)
	assert.False(t, result.PatternUpdated)
	require.Len(t, store.appended, 1)
}

func TestDerivePattern(t *testing.T) {
	recorder := newTestRecorder(newMockStore())

	tests := []struct {
		name     string
		snapshot model.MeetingSnapshot
		want     string
	}{
		{
			name: "domains and keywords",
			snapshot: model.MeetingSnapshot{
				Title:          "Phoenix Architecture Review",
				AttendeeEmails: []string{"a@internal.co", "b@acme.com"},
			},
			want: "meetings with acme.com titled about phoenix architecture",
		},
		{
			name: "domains only",
			snapshot: model.MeetingSnapshot{
				Title:          "1:1",
				AttendeeEmails: []string{"b@acme.com", "c@initech.io", "b2@acme.com"},
			},
			want: "meetings with acme.com, initech.io",
		},
		{
			name: "keywords only",
			snapshot: model.MeetingSnapshot{
				Title:          "Budget planning discussion",
				AttendeeEmails: []string{"a@internal.co"},
			},
			want: "titled about budget planning discussion",
		},
		{
			name:     "nothing usable",
			snapshot: model.MeetingSnapshot{Title: "1:1 sync", AttendeeEmails: []string{"a@internal.co"}},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recorder.derivePattern(tt.snapshot))
		})
	}
}

func TestTitleKeywords(t *testing.T) {
	// Stop words and short words are dropped; at most three survive.
	assert.Equal(t, []string{"phoenix", "rollout", "checkpoint"},
		titleKeywords("Weekly sync: Phoenix rollout checkpoint with vendors"))
	assert.Empty(t, titleKeywords("1:1 sync"))
}

func TestDescribeAction(t *testing.T) {
	clientOnly := model.ClassificationResult{Type: model.TypeClient, ClientName: "Acme"}
	assert.Equal(t, "file under client Acme", describeAction(clientOnly))

	withProject := clientOnly
	withProject.ProjectName = "Phoenix"
	assert.Equal(t, "file under client Acme / Phoenix", describeAction(withProject))

	team := model.ClassificationResult{Type: model.TypeInternal, InternalTeam: "Platform"}
	assert.Equal(t, "file under internal team Platform", describeAction(team))

	personal := model.ClassificationResult{Type: model.TypePersonal}
	assert.Equal(t, "file as personal", describeAction(personal))
}
