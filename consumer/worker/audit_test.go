package worker_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-filestore-service/consumer/worker"
	"github.com/tnqbao/gau-filestore-service/entity"
	"github.com/tnqbao/gau-filestore-service/infra"
	"github.com/tnqbao/gau-filestore-service/infra/produce"
)

type fakeChannel struct {
	queue string
	msgs  chan amqp.Delivery
}

func (f *fakeChannel) Consume(queue, _ string, _, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	f.queue = queue
	return f.msgs, nil
}

type ackRecorder struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (a *ackRecorder) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *ackRecorder) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.acked), len(a.nacked)
}

var _ = Describe("AuditConsumer", func() {
	var (
		channel *fakeChannel
		acks    *ackRecorder
		cancel  context.CancelFunc
	)

	BeforeEach(func() {
		channel = &fakeChannel{msgs: make(chan amqp.Delivery, 4)}
		acks = &ackRecorder{}

		logger := infra.NewLoggerClient(slog.New(slog.NewTextHandler(io.Discard, nil)))
		consumer := worker.NewAuditConsumer(channel, logger)

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)

		Expect(consumer.Start(ctx)).To(Succeed())
		Expect(channel.queue).To(Equal(produce.FileAuditQueue))
	})

	deliver := func(tag uint64, body []byte) {
		channel.msgs <- amqp.Delivery{Acknowledger: acks, DeliveryTag: tag, Body: body}
	}

	It("acks well-formed file events", func() {
		originalName := "report.pdf"
		msg := produce.NewFileEventMessage(entity.FileEventStored, entity.FileRecord{
			Name:         "abcDEF1234",
			OriginalName: &originalName,
			Size:         42,
		})
		body, err := json.Marshal(msg)
		Expect(err).NotTo(HaveOccurred())

		deliver(1, body)
		Eventually(func() int { a, _ := acks.counts(); return a }).Should(Equal(1))
	})

	It("drops malformed messages without requeue", func() {
		deliver(2, []byte("{not json"))
		deliver(3, []byte(`{"event":"file.stored"}`))

		Eventually(func() int { _, n := acks.counts(); return n }).Should(Equal(2))
		Expect(acks.requeue).To(Equal([]bool{false, false}))
	})
})

var _ = Describe("NewFileEventMessage", func() {
	It("carries the record fields and a fresh id", func() {
		contentType := "text/plain"
		record := entity.FileRecord{Name: "n", ContentType: &contentType, Size: 3}

		a := produce.NewFileEventMessage(entity.FileEventDeleted, record)
		b := produce.NewFileEventMessage(entity.FileEventDeleted, record)

		Expect(a.Event).To(Equal("file.deleted"))
		Expect(a.Name).To(Equal("n"))
		Expect(*a.ContentType).To(Equal("text/plain"))
		Expect(a.Size).To(Equal(int64(3)))
		Expect(a.Timestamp).To(BeNumerically(">", 0))
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})
})
