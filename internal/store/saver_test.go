package store

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/marblejar/internal/marble"
)

func history(n int) []marble.Record {
	records := make([]marble.Record, n)
	for i := range records {
		c := marble.Red
		if i%2 == 1 {
			c = marble.Green
		}
		records[i] = marble.Record{Timestamp: int64(1000 + i), Color: c}
	}
	return records
}

var _ = Describe("Saver", func() {
	var (
		st     *Store
		saver  *Saver
		ctx    context.Context
		cancel context.CancelFunc
		done   chan error
	)

	BeforeEach(func() {
		st = New(GinkgoT().TempDir(), "marbles.json")
		saver = NewSaver(st, nil)
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
	})

	start := func() {
		go func() { done <- saver.Run(ctx) }()
	}

	stop := func() {
		cancel()
		Eventually(done).Should(Receive(BeNil()))
	}

	It("writes the submitted history", func() {
		start()
		saver.Submit(history(3))

		Eventually(st.Load).Should(HaveLen(3))
		stop()
		Expect(saver.Failed()).To(BeZero())
	})

	It("keeps only the newest pending snapshot", func() {
		for n := 1; n <= 20; n++ {
			saver.Submit(history(n))
		}
		start()

		Eventually(saver.Saved).Should(BeNumerically("==", 1))
		Consistently(saver.Saved, 50*time.Millisecond).Should(BeNumerically("==", 1))
		Expect(st.Load()).To(Equal(history(20)))
		stop()
	})

	It("ends with the last submitted history after a burst", func() {
		start()
		for n := 1; n <= 200; n++ {
			saver.Submit(history(n))
		}
		stop()

		Expect(st.Load()).To(Equal(history(200)))
	})

	It("flushes a pending snapshot on shutdown", func() {
		saver.Submit(history(4))
		cancel()
		Expect(saver.Run(ctx)).To(Succeed())

		Expect(st.Load()).To(HaveLen(4))
	})

	It("does not copy the caller's slice by reference", func() {
		records := history(2)
		saver.Submit(records)
		records[0].Color = marble.Green
		start()

		Eventually(st.Load).Should(HaveLen(2))
		loaded, err := st.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded[0].Color).To(Equal(marble.Red))
		stop()
	})

	It("counts failed writes and keeps the last good file", func() {
		start()
		saver.Submit(history(2))
		Eventually(saver.Saved).Should(BeNumerically("==", 1))

		saver.Submit([]marble.Record{{Timestamp: 1}})
		Eventually(saver.Failed).Should(BeNumerically("==", 1))

		Expect(st.Load()).To(Equal(history(2)))
		stop()
	})
})
