package crmvc

import (
	"context"
	"errors"
	"testing"

	basesvc "crm_pipeline/internal/api/base/service"
	crmdto "crm_pipeline/internal/api/crm/dto"
	crmmodels "crm_pipeline/internal/api/crm/models"
	"crm_pipeline/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActivityService() *ActivityService {
	return NewActivityService(basesvc.NewMemoryStore[crmmodels.CrmActivity]("crm_activities",
		basesvc.WithEventBus(nil), basesvc.WithClock(testClock)))
}

func activityInput(name, activityType string, daysAgo int) crmdto.ActivityCreateInput {
	return crmdto.ActivityCreateInput{
		Name:         name,
		ActivityType: activityType,
		ActivityDate: testNow.AddDate(0, 0, -daysAgo).UnixMilli(),
	}
}

func TestActivityService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	s := newActivityService()

	for _, in := range []crmdto.ActivityCreateInput{
		activityInput("old call", crmmodels.ActivityTypeCall, 10),
		activityInput("new email", crmmodels.ActivityTypeEmail, 1),
		activityInput("mid call", crmmodels.ActivityTypeCall, 5),
	} {
		in := in
		_, err := s.CreateActivity(ctx, &in)
		require.NoError(t, err)
	}

	all, err := s.ListActivities(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new email", all[0].Name)
	assert.Equal(t, "mid call", all[1].Name)
	assert.Equal(t, "old call", all[2].Name)

	calls, err := s.ListActivities(ctx, &crmdto.ActivityListFilter{ActivityType: crmmodels.ActivityTypeCall})
	require.NoError(t, err)
	assert.Len(t, calls, 2)
}

func TestActivityService_CreateRejectsInvalid(t *testing.T) {
	s := newActivityService()
	_, err := s.CreateActivity(context.Background(), &crmdto.ActivityCreateInput{Name: "  "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidationFailed))

	bad := activityInput("x", "", 0)
	bad.AssociatedItemType = "Company"
	_, err = s.CreateActivity(context.Background(), &bad)
	assert.True(t, errors.Is(err, common.ErrValidationFailed))

	assert.Equal(t, 0, s.Store().(*basesvc.MemoryStore[crmmodels.CrmActivity]).Len())
}

func TestActivityService_ImportReportsPerItem(t *testing.T) {
	ctx := context.Background()
	s := newActivityService()

	inputs := []crmdto.ActivityCreateInput{
		activityInput("ok 1", crmmodels.ActivityTypeMeeting, 1),
		{Name: "", ActivityDate: testNow.UnixMilli()},
		activityInput("ok 2", crmmodels.ActivityTypeTask, 2),
	}
	result, err := s.ImportActivities(ctx, inputs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrPartialBatch))
	require.NotNil(t, result)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.NotEmpty(t, result.Results[1].Message)
	assert.True(t, result.Results[2].Success)
	require.Len(t, result.Items, 2)
	assert.Equal(t, result.Results[2].ID, result.Items[1].ID)

	stored, err := s.ListActivities(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestActivityService_ImportAllValid(t *testing.T) {
	s := newActivityService()
	result, err := s.ImportActivities(context.Background(), []crmdto.ActivityCreateInput{
		activityInput("a", crmmodels.ActivityTypeCall, 0),
		activityInput("b", crmmodels.ActivityTypeCall, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.FailureCount)
}

func TestActivityService_ImportAllInvalidWritesNothing(t *testing.T) {
	s := newActivityService()
	result, err := s.ImportActivities(context.Background(), []crmdto.ActivityCreateInput{{}, {}})
	assert.True(t, errors.Is(err, common.ErrPartialBatch))
	assert.Equal(t, 2, result.FailureCount)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, s.Store().(*basesvc.MemoryStore[crmmodels.CrmActivity]).Len())
}
