package infra_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tnqbao/gau-filestore-service/infra"
)

var _ = Describe("LoggerClient", func() {
	var (
		buf    *bytes.Buffer
		logger *infra.LoggerClient
		ctx    context.Context
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		logger = infra.NewLoggerClient(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
		ctx = context.Background()
	})

	lastLine := func() map[string]interface{} {
		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		var out map[string]interface{}
		Expect(json.Unmarshal(lines[len(lines)-1], &out)).To(Succeed())
		return out
	}

	It("formats messages at the matching level", func() {
		logger.InfoWithContextf(ctx, "[Storage] Stored file '%s'", "abc")
		line := lastLine()
		Expect(line["level"]).To(Equal("INFO"))
		Expect(line["msg"]).To(Equal("[Storage] Stored file 'abc'"))

		logger.WarningWithContextf(ctx, "careful %d", 1)
		Expect(lastLine()["level"]).To(Equal("WARN"))
	})

	It("attaches the error to error records", func() {
		logger.ErrorWithContextf(ctx, errors.New("boom"), "[Storage] failed")
		line := lastLine()
		Expect(line["level"]).To(Equal("ERROR"))
		Expect(line["error"]).To(Equal("boom"))
	})

	It("accepts a nil error", func() {
		logger.ErrorWithContextf(ctx, nil, "no cause")
		Expect(lastLine()).NotTo(HaveKey("error"))
	})
})
