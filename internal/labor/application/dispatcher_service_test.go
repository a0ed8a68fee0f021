package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/fulfillment/internal/labor/domain"
	"github.com/wms-platform/fulfillment/internal/labor/infrastructure/memory"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

type dispatcherFixture struct {
	dispatcher *DispatcherService
	staff      *memory.StaffRepository
	equipment  *memory.EquipmentRepository
	queues     *queue.Memory
	clock      *clock.Fake
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()
	logger := logging.New(logging.DefaultConfig("test"))
	clk := clock.NewFake(time.Date(2026, 3, 12, 7, 0, 0, 0, time.UTC))
	queues := queue.NewMemory(64)
	staff := memory.NewStaffRepository()
	equipment := memory.NewEquipmentRepository()

	return &dispatcherFixture{
		dispatcher: NewDispatcherService(staff, equipment, memory.NewAssignmentRepository(),
			queues, events.NewRecorder(), clk, logger),
		staff:     staff,
		equipment: equipment,
		queues:    queues,
		clock:     clk,
	}
}

func (f *dispatcherFixture) picker(t *testing.T, staffID string) {
	t.Helper()
	_, err := f.dispatcher.RegisterStaff(context.Background(), staffID, "Worker "+staffID,
		[]string{"picking", "packing"})
	require.NoError(t, err)
}

func (f *dispatcherFixture) forklift(t *testing.T, equipmentID string) {
	t.Helper()
	_, err := f.dispatcher.RegisterEquipment(context.Background(), equipmentID, "forklift")
	require.NoError(t, err)
}

func TestAssignTaskToIdleWorker(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-1")
	f.forklift(t, "FL-1")

	assignment, err := f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID:           "PT-100",
		TaskType:         domain.TaskPick,
		StaffID:          "EMP-1",
		EquipmentID:      "FL-1",
		RequiredSkill:    "picking",
		EstimatedMinutes: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentActive, assignment.Status)

	member, err := f.staff.FindByStaffID(ctx, "EMP-1")
	require.NoError(t, err)
	assert.Equal(t, assignment.AssignmentID, member.CurrentAssignment)

	item, err := f.equipment.FindByEquipmentID(ctx, "FL-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentInUse, item.Status)
	assert.Equal(t, assignment.AssignmentID, item.CurrentAssignment)
}

func TestAssignTaskToBusyWorkerFailsFast(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-1")

	first, err := f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-100", TaskType: domain.TaskPick, StaffID: "EMP-1",
	})
	require.NoError(t, err)

	_, err = f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-101", TaskType: domain.TaskPick, StaffID: "EMP-1",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeResourceBusy))

	// prior assignment untouched
	member, err := f.staff.FindByStaffID(ctx, "EMP-1")
	require.NoError(t, err)
	assert.Equal(t, first.AssignmentID, member.CurrentAssignment)
}

func TestAssignTaskWithBusyEquipmentFailsFast(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-1")
	f.picker(t, "EMP-2")
	f.forklift(t, "FL-1")

	_, err := f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-100", TaskType: domain.TaskPick, StaffID: "EMP-1", EquipmentID: "FL-1",
	})
	require.NoError(t, err)

	_, err = f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-101", TaskType: domain.TaskPick, StaffID: "EMP-2", EquipmentID: "FL-1",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeResourceBusy))

	// the second worker stays idle
	member, err := f.staff.FindByStaffID(ctx, "EMP-2")
	require.NoError(t, err)
	assert.False(t, member.Busy())
}

func TestAssignTaskRequiresSkill(t *testing.T) {
	f := newDispatcherFixture(t)
	f.picker(t, "EMP-1")

	_, err := f.dispatcher.AssignTask(context.Background(), AssignTaskCommand{
		TaskID: "CC-1", TaskType: domain.TaskCycleCount, StaffID: "EMP-1",
		RequiredSkill: "cycle_count",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestCompleteAssignmentRollsUpPerformance(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-1")
	f.forklift(t, "FL-1")

	assignment, err := f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-100", TaskType: domain.TaskPick, StaffID: "EMP-1",
		EquipmentID: "FL-1", EstimatedMinutes: 20,
	})
	require.NoError(t, err)

	f.clock.Advance(12 * time.Minute)
	completed, err := f.dispatcher.CompleteAssignment(ctx, assignment.AssignmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentCompleted, completed.Status)
	assert.InDelta(t, 12.0, completed.ActualMinutes, 0.001)
	assert.False(t, completed.OverEstimate())

	member, err := f.staff.FindByStaffID(ctx, "EMP-1")
	require.NoError(t, err)
	assert.False(t, member.Busy())
	assert.Equal(t, 1, member.Performance.TasksCompleted)
	assert.InDelta(t, 12.0, member.Performance.TotalMinutes, 0.001)
	assert.Equal(t, 1, member.Performance.OnEstimateCount)

	item, err := f.equipment.FindByEquipmentID(ctx, "FL-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentAvailable, item.Status)
	assert.InDelta(t, 12.0, item.UsageMinutes, 0.001)
}

func TestCompleteAssignmentPastEstimate(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-1")

	assignment, err := f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-100", TaskType: domain.TaskPick, StaffID: "EMP-1", EstimatedMinutes: 10,
	})
	require.NoError(t, err)

	f.clock.Advance(25 * time.Minute)
	completed, err := f.dispatcher.CompleteAssignment(ctx, assignment.AssignmentID)
	require.NoError(t, err)
	assert.True(t, completed.OverEstimate())

	member, err := f.staff.FindByStaffID(ctx, "EMP-1")
	require.NoError(t, err)
	assert.Equal(t, 0, member.Performance.OnEstimateCount)
	assert.InDelta(t, 25.0, member.Performance.AverageMinutes(), 0.001)
}

func TestCompleteAssignmentIsNotRepeatable(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-1")

	assignment, err := f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-100", TaskType: domain.TaskPick, StaffID: "EMP-1",
	})
	require.NoError(t, err)
	_, err = f.dispatcher.CompleteAssignment(ctx, assignment.AssignmentID)
	require.NoError(t, err)

	_, err = f.dispatcher.CompleteAssignment(ctx, assignment.AssignmentID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
}

func TestCancelAssignmentFreesResources(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-1")
	f.forklift(t, "FL-1")

	assignment, err := f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-100", TaskType: domain.TaskPick, StaffID: "EMP-1", EquipmentID: "FL-1",
	})
	require.NoError(t, err)
	require.NoError(t, f.dispatcher.CancelAssignment(ctx, assignment.AssignmentID))

	member, err := f.staff.FindByStaffID(ctx, "EMP-1")
	require.NoError(t, err)
	assert.False(t, member.Busy())
	assert.Equal(t, 0, member.Performance.TasksCompleted)

	item, err := f.equipment.FindByEquipmentID(ctx, "FL-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentAvailable, item.Status)
}

func TestScheduleMaintenanceEnqueuesWork(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.forklift(t, "FL-1")

	require.NoError(t, f.dispatcher.ScheduleMaintenance(ctx, "FL-1", "hydraulic leak"))

	item, err := f.equipment.FindByEquipmentID(ctx, "FL-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentMaintenance, item.Status)
	assert.Equal(t, 1, f.queues.Depth(queue.Maintenance))

	// not assignable while under maintenance
	f.picker(t, "EMP-1")
	_, err = f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-100", TaskType: domain.TaskPick, StaffID: "EMP-1", EquipmentID: "FL-1",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeResourceBusy))
}

func TestScheduleMaintenanceRejectsInUseEquipment(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-1")
	f.forklift(t, "FL-1")

	_, err := f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-100", TaskType: domain.TaskPick, StaffID: "EMP-1", EquipmentID: "FL-1",
	})
	require.NoError(t, err)

	err = f.dispatcher.ScheduleMaintenance(ctx, "FL-1", "scheduled service")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeResourceBusy))
}

func TestCompleteMaintenanceReturnsEquipmentToPool(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.forklift(t, "FL-1")
	require.NoError(t, f.dispatcher.ScheduleMaintenance(ctx, "FL-1", "scheduled service"))

	item, err := f.dispatcher.CompleteMaintenance(ctx, "FL-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentAvailable, item.Status)
	assert.Equal(t, 1, item.MaintenanceCount)
}

func TestDispatchTaskPicksFirstIdleWorker(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-2")
	f.picker(t, "EMP-1")

	assignment, err := f.dispatcher.DispatchTask(ctx, "PT-100", domain.TaskPick, "picking", 15)
	require.NoError(t, err)
	assert.Equal(t, "EMP-1", assignment.StaffID)

	// redelivered work reuses the active assignment
	again, err := f.dispatcher.DispatchTask(ctx, "PT-100", domain.TaskPick, "picking", 15)
	require.NoError(t, err)
	assert.Equal(t, assignment.AssignmentID, again.AssignmentID)
}

func TestDispatchTaskWithNoIdleWorkerStaysQueued(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-1")

	_, err := f.dispatcher.DispatchTask(ctx, "PT-100", domain.TaskPick, "picking", 15)
	require.NoError(t, err)

	_, err = f.dispatcher.DispatchTask(ctx, "PT-101", domain.TaskPick, "picking", 15)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeResourceBusy))
}

func TestFindAvailableFiltersBusyAndUnskilled(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()
	f.picker(t, "EMP-1")
	f.picker(t, "EMP-2")
	_, err := f.dispatcher.RegisterStaff(ctx, "EMP-3", "Worker EMP-3", []string{"receiving"})
	require.NoError(t, err)

	_, err = f.dispatcher.AssignTask(ctx, AssignTaskCommand{
		TaskID: "PT-100", TaskType: domain.TaskPick, StaffID: "EMP-1",
	})
	require.NoError(t, err)

	available, err := f.staff.FindAvailable(ctx, "picking")
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "EMP-2", available[0].StaffID)
}
