package ingestcmder

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIngestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ingest Command Suite")
}

var _ = Describe("NewIngestCmd", func() {
	It("creates a command with correct use name", func() {
		cmd := NewIngestCmd()
		Expect(cmd.Use).To(Equal("ingest <file|dir>"))
	})

	It("has the force flag", func() {
		cmd := NewIngestCmd()

		forceFlag := cmd.Flags().Lookup("force")
		Expect(forceFlag).NotTo(BeNil())
		Expect(forceFlag.Shorthand).To(Equal("f"))
	})

	It("requires exactly one argument", func() {
		cmd := NewIngestCmd()
		Expect(cmd.Args(cmd, []string{})).To(HaveOccurred())
		Expect(cmd.Args(cmd, []string{"a", "b"})).To(HaveOccurred())
		Expect(cmd.Args(cmd, []string{"meetings/"})).NotTo(HaveOccurred())
	})
})
