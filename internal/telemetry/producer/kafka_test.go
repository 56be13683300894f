package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"employee-management/backend/internal/telemetry/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewKafkaProducer_Disabled(t *testing.T) {
	if p := NewKafkaProducer(nil, "ems-activity"); p != nil {
		t.Error("no brokers should disable the producer")
	}
	if p := NewKafkaProducer([]string{"localhost:9092"}, ""); p != nil {
		t.Error("empty topic should disable the producer")
	}
	var nilProducer *KafkaProducer
	if err := nilProducer.Emit(context.Background(), domain.NewEvent("x", "", "", nil)); err != nil {
		t.Errorf("nil producer Emit: %v", err)
	}
	if err := nilProducer.Close(); err != nil {
		t.Errorf("nil producer Close: %v", err)
	}
}

func TestKafkaProducer_Emit(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, topic: "ems-activity"}
	ev := domain.NewEvent(domain.EventLoginSuccess, "p-1", "", nil)
	if err := p.Emit(context.Background(), ev); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "p-1" {
		t.Errorf("Key = %q, want principal id", w.msgs[0].Key)
	}
	var decoded domain.Event
	if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.PrincipalID != "p-1" || decoded.Type != domain.EventLoginSuccess {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestKafkaProducer_EmitError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := &KafkaProducer{writer: w, topic: "ems-activity"}
	if err := p.Emit(context.Background(), domain.NewEvent("x", "", "", nil)); err == nil {
		t.Error("Emit should surface the write error")
	}
	if string(w.msgs[0].Key) != "x" {
		t.Errorf("Key = %q, want event type when there is no principal", w.msgs[0].Key)
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close: err=%v closed=%v", err, w.closed)
	}
}
