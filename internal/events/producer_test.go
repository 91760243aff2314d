package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("producer", func() {
	It("wraps lookup events into envelopes", func() {
		w := newTestWriter()
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		p := NewEventProducer(w, WithOutputTopic("audit"), WithSource("test"))
		p.now = func() time.Time { return at }

		Expect(p.Publish(context.TODO(), LookupEvent{RequestID: "req-1", Surface: "method", Outcome: "ok", EnergyKWh: 300})).To(Succeed())
		Eventually(w.Len).Should(Equal(1))

		e := w.Events()[0]
		Expect(e.Type()).To(Equal(LookupEventType))
		Expect(e.Source()).To(Equal("test"))
		Expect(e.Time()).To(BeTemporally("==", at))
		Expect(e.Extensions()).To(HaveKeyWithValue("requestid", "req-1"))
		Expect(w.Topics()).To(ConsistOf("audit"))

		var ev LookupEvent
		Expect(e.DataAs(&ev)).To(Succeed())
		Expect(ev.Outcome).To(Equal("ok"))
		Expect(ev.EnergyKWh).To(Equal(300.0))

		Expect(p.Close()).To(Succeed())
		Expect(w.Closed()).To(BeTrue())
	})

	It("keeps order under bursts and flushes on close", func() {
		w := newTestWriter()
		p := NewEventProducer(w)
		for i := 0; i < 100; i++ {
			Expect(p.Publish(context.TODO(), LookupEvent{RequestID: fmt.Sprint(i), Outcome: "ok"})).To(Succeed())
		}
		Expect(p.Close()).To(Succeed())

		Expect(w.Len()).To(Equal(100))
		for i, e := range w.Events() {
			var ev LookupEvent
			Expect(e.DataAs(&ev)).To(Succeed())
			Expect(ev.RequestID).To(Equal(fmt.Sprint(i)))
		}
	})

	It("refuses events once closed", func() {
		p := NewEventProducer(newTestWriter())
		Expect(p.Close()).To(Succeed())
		Expect(p.Publish(context.TODO(), LookupEvent{})).To(MatchError(ErrProducerClosed))
	})

	It("keeps going when the writer fails", func() {
		w := newTestWriter()
		w.fail = true
		p := NewEventProducer(w)
		Expect(p.Publish(context.TODO(), LookupEvent{Outcome: "ok"})).To(Succeed())
		Expect(p.Close()).To(Succeed())
		Expect(w.Len()).To(BeZero())
	})

	It("drains the queue in one batch", func() {
		q := &queue{}
		Expect(q.drain()).To(BeEmpty())
		a, b := cloudevents.NewEvent(), cloudevents.NewEvent()
		a.SetID("a")
		b.SetID("b")
		q.push(a)
		q.push(b)
		Expect(q.len()).To(Equal(2))

		batch := q.drain()
		Expect(batch).To(HaveLen(2))
		Expect(batch[0].ID()).To(Equal("a"))
		Expect(q.len()).To(BeZero())
	})

	It("logs lookups through the stdout writer", func() {
		e := cloudevents.NewEvent()
		e.SetID("1")
		e.SetType(LookupEventType)
		e.SetSource("test")
		Expect(e.SetData(cloudevents.ApplicationJSON, LookupEvent{Outcome: "NoMatchFound"})).To(Succeed())

		w := NewStdoutWriter()
		Expect(w.Write(context.TODO(), "audit", e)).To(Succeed())
		Expect(w.Close(context.TODO())).To(Succeed())
	})
})

type testwriter struct {
	mu       sync.Mutex
	messages []cloudevents.Event
	topics   map[string]struct{}
	closed   bool
	fail     bool
}

func newTestWriter() *testwriter {
	return &testwriter{topics: map[string]struct{}{}}
}

func (t *testwriter) Write(_ context.Context, topic string, e cloudevents.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fail {
		return fmt.Errorf("broker unavailable")
	}
	t.messages = append(t.messages, e)
	t.topics[topic] = struct{}{}
	return nil
}

func (t *testwriter) Close(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *testwriter) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func (t *testwriter) Events() []cloudevents.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]cloudevents.Event(nil), t.messages...)
}

func (t *testwriter) Topics() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	res := make([]string, 0, len(t.topics))
	for k := range t.topics {
		res = append(res, k)
	}
	return res
}

func (t *testwriter) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
