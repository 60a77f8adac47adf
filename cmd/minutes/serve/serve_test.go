package servecmder

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestServeCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Serve Command Suite")
}

var _ = Describe("NewServeCmd", func() {
	It("creates a command with correct use name", func() {
		cmd := NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	It("has the expected flags", func() {
		cmd := NewServeCmd()

		listenFlag := cmd.Flags().Lookup("listen")
		Expect(listenFlag).NotTo(BeNil())
		Expect(listenFlag.Shorthand).To(Equal("l"))

		watchFlag := cmd.Flags().Lookup("watch")
		Expect(watchFlag).NotTo(BeNil())
		Expect(watchFlag.Shorthand).To(Equal("w"))
	})
})
