package postgres_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Birmingham-AI/willAIam/pkg/storage"
	"github.com/Birmingham-AI/willAIam/pkg/storage/postgres"
)

var _ = Describe("Driver", func() {
	var (
		driver *postgres.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		dsn := os.Getenv("WILLAIAM_TEST_POSTGRES_DSN")
		if dsn == "" {
			Skip("WILLAIAM_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
		}

		ctx = context.Background()
		var err error
		driver, err = postgres.NewDriver(ctx, dsn)
		Expect(err).NotTo(HaveOccurred())

		// Start from a clean slate for each spec.
		Expect(driver.Delete(ctx, "conv")).To(Succeed())
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
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

	It("replaces an existing record on Set", func() {
		Expect(driver.Set(ctx, "conv", []byte("old"))).To(Succeed())
		Expect(driver.Set(ctx, "conv", []byte("new"))).To(Succeed())

		data, err := driver.Get(ctx, "conv")
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte("new")))
	})

	It("deletes a record", func() {
		Expect(driver.Set(ctx, "conv", []byte("data"))).To(Succeed())
		Expect(driver.Delete(ctx, "conv")).To(Succeed())

		_, err := driver.Get(ctx, "conv")
		Expect(err).To(BeAssignableToTypeOf(storage.NotFoundError{}))
	})
})
