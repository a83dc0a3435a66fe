package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tnqbao/gau-filestore-service/service"
)

var _ = Describe("LocalLocker", func() {
	var (
		locker *service.LocalLocker
		ctx    context.Context
	)

	BeforeEach(func() {
		locker = service.NewLocalLocker()
		ctx = context.Background()
	})

	It("serialises holders of the same name", func() {
		var (
			wg      sync.WaitGroup
			inside  int32
			maxSeen int32
		)

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()

				unlock, err := locker.Lock(ctx, "same")
				Expect(err).NotTo(HaveOccurred())
				defer unlock()

				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxSeen)
					if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
			}()
		}
		wg.Wait()

		Expect(maxSeen).To(Equal(int32(1)))
	})

	It("does not block different names", func() {
		unlockA, err := locker.Lock(ctx, "a")
		Expect(err).NotTo(HaveOccurred())
		defer unlockA()

		unlockB, err := locker.Lock(ctx, "b")
		Expect(err).NotTo(HaveOccurred())
		unlockB()
	})

	It("returns when the context ends before the lock is free", func() {
		unlock, err := locker.Lock(ctx, "busy")
		Expect(err).NotTo(HaveOccurred())

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(cctx, "busy")
		Expect(err).To(MatchError(context.DeadlineExceeded))

		unlock()
		unlock() // second call is a no-op

		again, err := locker.Lock(ctx, "busy")
		Expect(err).NotTo(HaveOccurred())
		again()
	})
})
