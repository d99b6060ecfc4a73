package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/types"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/bindings/gateway"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
)

func newTestRegistry() *RegistryManager {
	return NewRegistryManager(logging.NoopLogger{})
}

func request(id string) *types.SubscriptionRequest {
	return &types.SubscriptionRequest{
		RequestID:  id,
		Program:    gateway.DefaultProgramID.String(),
		Event:      gateway.ReceivedEventName,
		WebhookURL: "http://localhost:9999/hook",
	}
}

func TestRegisterCreatesEntry(t *testing.T) {
	rm := newTestRegistry()

	require.NoError(t, rm.Register(request("req-1")))

	entry, exists := rm.GetEntry(gateway.DefaultProgramID.String())
	require.True(t, exists)
	assert.Equal(t, gateway.DefaultProgramID, entry.Program)
	assert.Len(t, entry.Subscribers, 1)
	assert.Equal(t, types.StateRegistered, entry.Subscribers["req-1"].State)
}

func TestRegisterRejectsInvalidProgram(t *testing.T) {
	rm := newTestRegistry()

	req := request("req-1")
	req.Program = "not-a-base58-address"
	err := rm.Register(req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid program address")
}

func TestRegisterRejectsDuplicateRequestID(t *testing.T) {
	rm := newTestRegistry()

	require.NoError(t, rm.Register(request("req-1")))
	err := rm.Register(request("req-1"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, uint64(1), rm.RegisteredTotal())
}

func TestUnregisterRemovesSubscriberAndEntry(t *testing.T) {
	rm := newTestRegistry()

	require.NoError(t, rm.Register(request("req-1")))
	require.NoError(t, rm.Register(request("req-2")))

	require.NoError(t, rm.Unregister("req-1"))
	entry, exists := rm.GetEntry(gateway.DefaultProgramID.String())
	require.True(t, exists)
	assert.Len(t, entry.Subscribers, 1)

	// Last subscriber leaving removes the entry and cancels the worker ctx
	require.NoError(t, rm.Unregister("req-2"))
	_, exists = rm.GetEntry(gateway.DefaultProgramID.String())
	assert.False(t, exists)
	assert.Error(t, entry.WorkerCtx.Err())
}

func TestUnregisterUnknownRequestID(t *testing.T) {
	rm := newTestRegistry()

	err := rm.Unregister("ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestEveryRegistrationIsDeregistered(t *testing.T) {
	rm := newTestRegistry()

	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		require.NoError(t, rm.Register(request(id)))
	}
	for _, id := range ids {
		require.NoError(t, rm.Unregister(id))
	}

	assert.Equal(t, uint64(len(ids)), rm.RegisteredTotal())
	assert.Equal(t, rm.RegisteredTotal(), rm.UnregisteredTotal())
	assert.Zero(t, rm.GetActiveSubscriptionCount())
}

func TestSnapshotExcludesUnregisteredSubscriber(t *testing.T) {
	rm := newTestRegistry()
	key := gateway.DefaultProgramID.String()

	require.NoError(t, rm.Register(request("req-1")))
	require.NoError(t, rm.Register(request("req-2")))
	require.NoError(t, rm.Unregister("req-1"))

	subs := rm.SnapshotSubscribers(key)
	require.Len(t, subs, 1)
	assert.Equal(t, "req-2", subs[0].RequestID)
}

func TestSnapshotUnknownKey(t *testing.T) {
	rm := newTestRegistry()
	assert.Nil(t, rm.SnapshotSubscribers("missing"))
}

func TestRecordEvent(t *testing.T) {
	rm := newTestRegistry()
	key := gateway.DefaultProgramID.String()

	require.NoError(t, rm.Register(request("req-1")))
	rm.RecordEvent(key, 100)
	rm.RecordEvent(key, 99)

	entry, _ := rm.GetEntry(key)
	assert.Equal(t, uint64(2), entry.EventsSeen)
	assert.Equal(t, uint64(100), entry.LastSlot)
}

func TestGetMonitoredPrograms(t *testing.T) {
	rm := newTestRegistry()

	require.NoError(t, rm.Register(request("req-1")))
	programs := rm.GetMonitoredPrograms()

	require.Len(t, programs, 1)
	assert.Equal(t, gateway.DefaultProgramID.String(), programs[0])
}
