package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/minutes/pkg/dotdir"
)

var _ = Describe("dotdir.Manager ledger", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-ledger-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadLedger", func() {
		It("returns an empty ledger when no file exists", func() {
			ledger, err := m.LoadLedger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(ledger).NotTo(BeNil())
			Expect(ledger.Entries).To(BeEmpty())
		})

		It("loads a persisted ledger", func() {
			data := `{"entries":{"abc123":{"path":"standup.json","ingested_at":"2026-01-15T10:00:00Z"}}}`
			err := os.WriteFile(filepath.Join(tmpDir, "ledger.json"), []byte(data), 0o644)
			Expect(err).NotTo(HaveOccurred())

			ledger, err := m.LoadLedger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(ledger.Seen("abc123")).To(BeTrue())
			Expect(ledger.Entries["abc123"].Path).To(Equal("standup.json"))
		})

		It("returns error for invalid JSON", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "ledger.json"), []byte("not json"), 0o644)
			Expect(err).NotTo(HaveOccurred())

			ledger, err := m.LoadLedger(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(ledger).To(BeNil())
		})
	})

	Describe("SaveLedger", func() {
		It("round-trips entries through disk", func() {
			ledger := &dotdir.Ledger{}
			ledger.Record("fp-1", "meetings/sprint.json")
			ledger.Record("fp-2", "meetings/retro.json")

			Expect(m.SaveLedger(ledger, tmpDir)).To(Succeed())

			loaded, err := m.LoadLedger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Seen("fp-1")).To(BeTrue())
			Expect(loaded.Seen("fp-2")).To(BeTrue())
			Expect(loaded.Seen("fp-3")).To(BeFalse())
			Expect(loaded.Entries["fp-1"].Path).To(Equal("meetings/sprint.json"))
		})

		It("returns error for nil ledger", func() {
			Expect(m.SaveLedger(nil, tmpDir)).NotTo(Succeed())
		})

		It("overwrites prior entries for the same fingerprint", func() {
			ledger := &dotdir.Ledger{}
			ledger.Record("fp", "old.json")
			ledger.Record("fp", "new.json")

			Expect(m.SaveLedger(ledger, tmpDir)).To(Succeed())

			loaded, err := m.LoadLedger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Entries).To(HaveLen(1))
			Expect(loaded.Entries["fp"].Path).To(Equal("new.json"))
		})
	})

	Describe("ClearLedger", func() {
		It("removes the ledger file", func() {
			ledger := &dotdir.Ledger{}
			ledger.Record("fp", "doc.json")
			Expect(m.SaveLedger(ledger, tmpDir)).To(Succeed())

			Expect(m.ClearLedger(tmpDir)).To(Succeed())

			loaded, err := m.LoadLedger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Entries).To(BeEmpty())
		})

		It("succeeds when no ledger file exists", func() {
			Expect(m.ClearLedger(tmpDir)).To(Succeed())
		})
	})

	Describe("Seen", func() {
		It("is safe on a nil ledger", func() {
			var ledger *dotdir.Ledger
			Expect(ledger.Seen("anything")).To(BeFalse())
		})
	})
})
