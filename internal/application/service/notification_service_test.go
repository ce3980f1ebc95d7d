package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/print-order-tracker/internal/application/dispatcher"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	"github.com/garyjia/print-order-tracker/internal/domain/event"
)

func forwardedEvent() *event.Event {
	return event.NewEvent(event.TypeOrderForwarded, "o1", "Sara", clock, map[string]interface{}{
		event.KeyFromDepartment: "Sales",
		event.KeyToDepartment:   "Design",
	}).WithOrderNumber("PO-1")
}

func TestBuildNotification(t *testing.T) {
	tests := []struct {
		name     string
		evt      *event.Event
		wantNil  bool
		depts    []entity.Department
		priority entity.Priority
	}{
		{"forwarded goes to target", forwardedEvent(), false, []entity.Department{entity.DepartmentDesign}, entity.PriorityNormal},
		{
			"approval request goes to sales",
			event.NewEvent(event.TypeApprovalRequested, "o1", "Alice", clock, map[string]interface{}{
				event.KeyFromDepartment: "Design", event.KeyReason: "colours",
			}),
			false, []entity.Department{entity.DepartmentSales}, entity.PriorityHigh,
		},
		{
			"rejection goes back to requester",
			event.NewEvent(event.TypeApprovalRejected, "o1", "Sara", clock, map[string]interface{}{
				event.KeyToDepartment: "Prepress", event.KeyRemarks: "wrong logo",
			}),
			false, []entity.Department{entity.DepartmentPrepress}, entity.PriorityHigh,
		},
		{
			"issue alerts sales and owner",
			event.NewEvent(event.TypeStatusChanged, "o1", "Priya", clock, map[string]interface{}{
				event.KeyNewStatus: "Issue", event.KeyDepartment: "Production",
			}),
			false, []entity.Department{entity.DepartmentSales, entity.DepartmentProduction}, entity.PriorityHigh,
		},
		{
			"undo tells everyone",
			event.NewEvent(event.TypeStatusUpdateUndone, "o1", "Bob", clock, nil),
			false, entity.WorkflowDepartments, entity.PriorityLow,
		},
		{
			"routine status change is silent",
			event.NewEvent(event.TypeStatusChanged, "o1", "Priya", clock, map[string]interface{}{event.KeyNewStatus: "In Progress"}),
			true, nil, "",
		},
		{"edits are silent", event.NewEvent(event.TypeStatusUpdateEdited, "o1", "Bob", clock, nil), true, nil, ""},
		{"nil event", nil, true, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := BuildNotification(tt.evt)
			if tt.wantNil {
				assert.Nil(t, n)
				return
			}
			require.NotNil(t, n)
			assert.Equal(t, tt.depts, n.Departments)
			assert.Equal(t, tt.priority, n.Priority)
			assert.Equal(t, "o1", n.OrderID)
			assert.NotEmpty(t, n.Title)
			assert.Equal(t, clock, n.CreatedAt)
		})
	}
}

func TestNotificationService_HandleEventStoresAndSends(t *testing.T) {
	repo := &fakeNotificationRepo{}
	sink := new(mockSink)
	sink.On("Notify", mock.Anything, mock.MatchedBy(func(n *entity.Notification) bool {
		return n.AddressedTo(entity.DepartmentDesign)
	})).Return(nil).Once()

	svc := NewNotificationService(repo, sink, nopLogger{})
	require.NoError(t, svc.HandleEvent(context.Background(), forwardedEvent()))

	assert.Equal(t, 1, repo.count())
	sink.AssertExpectations(t)
}

func TestNotificationService_FailuresAreSwallowed(t *testing.T) {
	repo := &fakeNotificationRepo{createErr: errStoreDown}
	sink := new(mockSink)
	sink.On("Notify", mock.Anything, mock.Anything).Return(errors.New("lark unavailable"))

	svc := NewNotificationService(repo, sink, nopLogger{})
	assert.NoError(t, svc.HandleEvent(context.Background(), forwardedEvent()))
	sink.AssertNumberOfCalls(t, "Notify", 1)
}

func TestNotificationService_RegisterReceivesEveryEvent(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, nil, nopLogger{})
	d := dispatcher.NewDispatcher()
	svc.Register(d)

	d.DispatchAsync(context.Background(), forwardedEvent())
	d.DispatchAsync(context.Background(), event.NewEvent(event.TypeOrderDispatched, "o2", "Sara", clock, nil))
	require.NoError(t, d.Close())

	assert.Equal(t, 2, repo.count())
}

func TestNotificationService_Inbox(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, nil, nopLogger{})
	ctx := context.Background()

	require.NoError(t, svc.HandleEvent(ctx, forwardedEvent()))
	require.NoError(t, svc.HandleEvent(ctx, event.NewEvent(event.TypeReadyToDispatch, "o3", "Priya", clock.Add(time.Minute), nil)))

	designInbox, err := svc.ListForDepartment(ctx, designStaff, 0)
	require.NoError(t, err)
	require.Len(t, designInbox, 1)

	all, err := svc.ListForDepartment(ctx, adminUser, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.MarkRead(ctx, designStaff, designInbox[0].ID))
	assert.True(t, designInbox[0].IsReadBy(designStaff.ID))

	_, err = svc.ListForDepartment(ctx, nil, 10)
	assert.Error(t, err)
}
