package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var out kgo.ProduceResults
	for _, r := range rs {
		f.records = append(f.records, r)
		out = append(out, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return out
}

func (f *fakeProducer) Close() { f.closed = true }

func TestSinkWritesKeyedJSONRecord(t *testing.T) {
	fake := &fakeProducer{}
	s := &Sink{client: fake, topic: "isms.audit"}

	e := audit.Event{
		ID:         "evt-1",
		Timestamp:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EntityType: audit.EntityFramework,
		EntityID:   "NIS2",
		Action:     audit.ActionFrameworkSynced,
		Details:    map[string]string{"created": "3"},
	}
	require.NoError(t, s.Write(context.Background(), e))
	require.Len(t, fake.records, 1)

	rec := fake.records[0]
	assert.Equal(t, "isms.audit", rec.Topic)
	assert.Equal(t, "ComplianceFramework:NIS2", string(rec.Key))
	assert.Equal(t, []kgo.RecordHeader{{Key: "action", Value: []byte(audit.ActionFrameworkSynced)}}, rec.Headers)

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, e, decoded)

	s.Close()
	assert.True(t, fake.closed)
}

func TestSinkSurfacesProduceError(t *testing.T) {
	fake := &fakeProducer{err: errors.New("broker down")}
	s := &Sink{client: fake, topic: "isms.audit"}
	err := s.Write(context.Background(), audit.Event{Action: audit.ActionAuditLogPurged, EntityType: audit.EntityAuditLog})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewSinkRequiresBrokersAndTopic(t *testing.T) {
	_, err := NewSink(nil, "t")
	assert.Error(t, err)
	_, err = NewSink([]string{"localhost:9092"}, "")
	assert.Error(t, err)
}

// stalledProducer never hears back from a broker; it only returns once ctx
// is done, as kgo does for records still waiting on an unreachable cluster.
type stalledProducer struct{}

func (stalledProducer) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	<-ctx.Done()
	var out kgo.ProduceResults
	for _, r := range rs {
		out = append(out, kgo.ProduceResult{Record: r, Err: ctx.Err()})
	}
	return out
}

func (stalledProducer) Close() {}

func TestSinkWriteIsBoundedWithoutCallerDeadline(t *testing.T) {
	s := &Sink{client: stalledProducer{}, topic: "isms.audit", timeout: 50 * time.Millisecond}
	done := make(chan error, 1)
	go func() {
		done <- s.Write(context.WithoutCancel(context.Background()), audit.Event{Action: audit.ActionFrameworkSynced})
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("write did not give up after its delivery timeout")
	}
}

func TestNewSinkSetsDeliveryTimeout(t *testing.T) {
	s, err := NewSink([]string{"127.0.0.1:1"}, "isms.audit")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, DeliveryTimeout, s.timeout)
}
