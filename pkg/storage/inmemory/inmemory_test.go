package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Birmingham-AI/willAIam/pkg/storage"
	"github.com/Birmingham-AI/willAIam/pkg/storage/inmemory"
)

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx = context.Background()
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

	It("tolerates deleting an absent record", func() {
		Expect(driver.Delete(ctx, "missing")).To(Succeed())
	})

	It("returns a copy the caller cannot mutate", func() {
		Expect(driver.Set(ctx, "conv", []byte("abc"))).To(Succeed())

		data, err := driver.Get(ctx, "conv")
		Expect(err).NotTo(HaveOccurred())
		data[0] = 'z'

		again, err := driver.Get(ctx, "conv")
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(Equal([]byte("abc")))
	})
})
