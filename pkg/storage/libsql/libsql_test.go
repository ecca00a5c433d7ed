package libsql_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Birmingham-AI/willAIam/pkg/storage"
	"github.com/Birmingham-AI/willAIam/pkg/storage/libsql"
)

var _ = Describe("Driver", func() {
	var (
		driver *libsql.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		dsn := "file:" + filepath.Join(GinkgoT().TempDir(), "willaiam.db")

		var err error
		driver, err = libsql.NewDriver(dsn)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	It("round-trips a record", func() {
		Expect(driver.Set(ctx, "conv", []byte(`{"turns":[]}`))).To(Succeed())

		data, err := driver.Get(ctx, "conv")
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte(`{"turns":[]}`)))
	})

	It("returns NotFoundError for an absent key", func() {
		_, err := driver.Get(ctx, "missing")
		Expect(err).To(MatchError(storage.NotFoundError{Key: "missing"}))
	})

	It("deletes a record", func() {
		Expect(driver.Set(ctx, "conv", []byte("data"))).To(Succeed())
		Expect(driver.Delete(ctx, "conv")).To(Succeed())

		_, err := driver.Get(ctx, "conv")
		Expect(err).To(BeAssignableToTypeOf(storage.NotFoundError{}))
	})
})
