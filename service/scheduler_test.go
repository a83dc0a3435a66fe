package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tnqbao/gau-filestore-service/service"
)

var _ = Describe("ReconcileScheduler", func() {
	var storage *service.StorageService

	BeforeEach(func() {
		storage = service.NewStorageService(service.Options{
			Blobs:   newMemBlobs(),
			Records: newMemRecords(),
		})
	})

	It("rejects an invalid cron expression", func() {
		s := &service.ReconcileScheduler{Storage: storage, Logger: silentLogger{}, Cron: "not a cron"}
		Expect(s.Start(context.Background())).NotTo(Succeed())
		s.Stop()
	})

	It("starts and stops", func() {
		s := &service.ReconcileScheduler{Storage: storage, Logger: silentLogger{}, Cron: "*/5 * * * *"}
		Expect(s.Start(context.Background())).To(Succeed())
		s.Stop()
	})
})

type silentLogger struct{}

func (silentLogger) InfoWithContextf(context.Context, string, ...interface{})         {}
func (silentLogger) WarningWithContextf(context.Context, string, ...interface{})      {}
func (silentLogger) ErrorWithContextf(context.Context, error, string, ...interface{}) {}
