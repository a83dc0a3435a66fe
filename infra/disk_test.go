package infra_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tnqbao/gau-filestore-service/infra"
	"github.com/tnqbao/gau-filestore-service/service"
)

var _ = Describe("DiskBlobStore", func() {
	var (
		ctx   context.Context
		root  string
		store *infra.DiskBlobStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		root = filepath.Join(GinkgoT().TempDir(), "storage")

		var err error
		store, err = infra.NewDiskBlobStore(root)
		Expect(err).NotTo(HaveOccurred())
	})

	It("provisions the root idempotently", func() {
		Expect(root).To(BeADirectory())
		_, err := infra.NewDiskBlobStore(root)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates, reads and removes a blob", func() {
		Expect(store.Create(ctx, "blob1", []byte("content"))).To(Succeed())

		exists, err := store.Exists(ctx, "blob1")
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())

		rc, err := store.Open(ctx, "blob1")
		Expect(err).NotTo(HaveOccurred())
		data, err := io.ReadAll(rc)
		Expect(err).NotTo(HaveOccurred())
		Expect(rc.Close()).To(Succeed())
		Expect(string(data)).To(Equal("content"))

		Expect(store.Remove(ctx, "blob1")).To(Succeed())
		exists, err = store.Exists(ctx, "blob1")
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeFalse())
	})

	It("never overwrites an existing blob", func() {
		Expect(store.Create(ctx, "taken", []byte("first"))).To(Succeed())
		Expect(store.Create(ctx, "taken", []byte("second"))).To(MatchError(service.ErrBlobExists))

		data, err := os.ReadFile(filepath.Join(root, "taken"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("first"))
	})

	It("lets exactly one concurrent create win", func() {
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				if err := store.Create(ctx, "race", []byte("x")); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				} else {
					Expect(err).To(MatchError(service.ErrBlobExists))
				}
			}()
		}
		wg.Wait()
		Expect(wins).To(Equal(1))
	})

	It("leaves no temp files behind", func() {
		Expect(store.Create(ctx, "clean", []byte("x"))).To(Succeed())
		Expect(store.Create(ctx, "clean", []byte("y"))).NotTo(Succeed())

		entries, err := os.ReadDir(filepath.Join(root, ".tmp"))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("removes idempotently", func() {
		Expect(store.Remove(ctx, "never-there")).To(Succeed())
		Expect(store.Remove(ctx, "never-there")).To(Succeed())
	})

	It("maps a missing blob to not found on open", func() {
		_, err := store.Open(ctx, "missing")
		Expect(err).To(MatchError(service.ErrNotFound))
	})

	It("lists blob names without bookkeeping entries", func() {
		Expect(store.Create(ctx, "one", []byte("1"))).To(Succeed())
		Expect(store.Create(ctx, "two", []byte("2"))).To(Succeed())
		Expect(os.Mkdir(filepath.Join(root, "subdir"), 0o755)).To(Succeed())

		names, err := store.Names(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(ConsistOf("one", "two"))
	})

	DescribeTable("rejects names outside the root",
		func(name string) {
			_, err := store.Path(name)
			Expect(err).To(MatchError(service.ErrInvalidName))
			Expect(store.Create(ctx, name, []byte("x"))).To(MatchError(service.ErrInvalidName))
			_, err = store.Exists(ctx, name)
			Expect(err).To(MatchError(service.ErrInvalidName))
		},
		Entry("parent", ".."),
		Entry("traversal", "../escape"),
		Entry("nested", "a/b"),
		Entry("temp dir", ".tmp"),
		Entry("empty", ""),
	)

	It("resolves paths inside the root", func() {
		p, err := store.Path("inside")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(filepath.Join(store.Root(), "inside")))
	})
})
