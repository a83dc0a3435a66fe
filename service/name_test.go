package service_test

import (
	"context"
	"regexp"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tnqbao/gau-filestore-service/service"
)

var generatedName = regexp.MustCompile(`^[A-Za-z0-9]{10}$`)

var _ = Describe("NameGenerator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("generates ten alphanumeric characters", func() {
		gen := service.NewNameGenerator(newMemBlobs(), 0)
		Expect(gen.MaxAttempts).To(Equal(service.MaxNameAttempts))

		seen := map[string]struct{}{}
		for i := 0; i < 50; i++ {
			name, err := gen.Generate(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(MatchRegexp(generatedName.String()))
			seen[name] = struct{}{}
		}
		Expect(len(seen)).To(BeNumerically(">", 45))
	})

	It("gives up once every candidate is taken", func() {
		blobs := newMemBlobs()
		blobs.existsAlways = true

		gen := service.NewNameGenerator(blobs, 5)
		_, err := gen.Generate(ctx)
		Expect(err).To(MatchError(service.ErrExhausted))
		Expect(blobs.existsCalls).To(Equal(5))
	})

	It("does not create anything while probing", func() {
		blobs := newMemBlobs()
		_, err := service.NewNameGenerator(blobs, 3).Generate(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(blobs.data).To(BeEmpty())
	})

	It("stops when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := service.NewNameGenerator(newMemBlobs(), 3).Generate(cctx)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = DescribeTable("ValidateName",
	func(name string, valid bool) {
		err := service.ValidateName(name)
		if valid {
			Expect(err).NotTo(HaveOccurred())
		} else {
			Expect(err).To(MatchError(service.ErrInvalidName))
		}
	},
	Entry("generated name", "aB3dE6gH9k", true),
	Entry("dots, dashes and underscores", "report_v1-final.pdf", true),
	Entry("empty", "", false),
	Entry("parent traversal", "../etc/passwd", false),
	Entry("double dot inside", "a..b", false),
	Entry("slash", "a/b", false),
	Entry("backslash", `a\b`, false),
	Entry("hidden name", ".tmp", false),
	Entry("NUL byte", "abc\x00", false),
	Entry("space", "a b", false),
	Entry("non ascii", "café", false),
	Entry("too long", strings.Repeat("a", 256), false),
	Entry("longest allowed", strings.Repeat("a", 255), true),
)
