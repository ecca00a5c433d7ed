package askcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	askcmder "github.com/Birmingham-AI/willAIam/cmd/willaiam/ask"
)

var _ = Describe("NewAskCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := askcmder.NewAskCmd()
		Expect(cmd.Use).To(Equal("ask <question>"))
	})

	It("has --target flag with default value", func() {
		cmd := askcmder.NewAskCmd()
		flag := cmd.Flags().Lookup("target")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("t"))
		Expect(flag.DefValue).To(Equal("http://localhost:8000"))
	})

	It("has --web-search flag defaulting to off", func() {
		cmd := askcmder.NewAskCmd()
		flag := cmd.Flags().Lookup("web-search")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("w"))
		Expect(flag.DefValue).To(Equal("false"))
	})

	It("has --render flag defaulting to on", func() {
		cmd := askcmder.NewAskCmd()
		flag := cmd.Flags().Lookup("render")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("true"))
	})

	It("requires at least one argument", func() {
		cmd := askcmder.NewAskCmd()
		cmd.SetArgs([]string{})
		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
	})
})
