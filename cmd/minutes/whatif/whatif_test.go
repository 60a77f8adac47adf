package whatifcmder

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestWhatIfCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "WhatIf Command Suite")
}

var _ = Describe("NewWhatIfCmd", func() {
	It("creates a command with correct use name", func() {
		cmd := NewWhatIfCmd()
		Expect(cmd.Use).To(Equal("whatif <topic> <change>"))
	})

	It("requires a topic and a change", func() {
		cmd := NewWhatIfCmd()
		err := cmd.Args(cmd, []string{"payments"})
		Expect(err).To(HaveOccurred())
	})

	It("accepts a multi-word change", func() {
		cmd := NewWhatIfCmd()
		err := cmd.Args(cmd, []string{"payments", "switch", "to", "paypal"})
		Expect(err).NotTo(HaveOccurred())
	})
})
