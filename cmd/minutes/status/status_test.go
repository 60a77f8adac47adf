package statuscmder_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	statuscmder "github.com/papercomputeco/minutes/cmd/minutes/status"
	"github.com/papercomputeco/minutes/pkg/graph"
	"github.com/papercomputeco/minutes/pkg/model"
)

var _ = Describe("NewStatusCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := statuscmder.NewStatusCmd()
		Expect(cmd.Use).To(Equal("status"))
	})

	It("accepts zero arguments", func() {
		cmd := statuscmder.NewStatusCmd()
		err := cmd.Args(cmd, []string{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects any arguments", func() {
		cmd := statuscmder.NewStatusCmd()
		err := cmd.Args(cmd, []string{"extra"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Status command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "minutes-status-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	It("runs without error when no snapshot exists", func() {
		// Create a local .minutes dir so the manager picks it up
		err := os.MkdirAll(filepath.Join(tmpDir, ".minutes"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		cmd := statuscmder.NewStatusCmd()
		cmd.SetArgs([]string{})
		err = cmd.Execute()
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs without error when a graph snapshot exists", func() {
		minutesDir := filepath.Join(tmpDir, ".minutes")
		err := os.MkdirAll(minutesDir, 0o755)
		Expect(err).NotTo(HaveOccurred())

		store := graph.NewStore()
		err = store.AddPerson(&model.Person{ID: "sarah", Name: "Sarah"})
		Expect(err).NotTo(HaveOccurred())
		err = store.AddDecision(&model.Decision{
			ID:        "d1",
			Content:   "Use Stripe for payments",
			Topic:     "payments",
			Status:    model.DecisionConfirmed,
			Timestamp: time.Now().UTC(),
		})
		Expect(err).NotTo(HaveOccurred())

		f, err := os.Create(filepath.Join(minutesDir, "graph.json"))
		Expect(err).NotTo(HaveOccurred())
		err = store.Snapshot(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Close()).To(Succeed())

		cmd := statuscmder.NewStatusCmd()
		cmd.SetArgs([]string{})
		err = cmd.Execute()
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs without error when the snapshot is corrupt", func() {
		minutesDir := filepath.Join(tmpDir, ".minutes")
		err := os.MkdirAll(minutesDir, 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.WriteFile(filepath.Join(minutesDir, "graph.json"), []byte("not json"), 0o644)
		Expect(err).NotTo(HaveOccurred())

		cmd := statuscmder.NewStatusCmd()
		cmd.SetArgs([]string{})
		err = cmd.Execute()
		Expect(err).NotTo(HaveOccurred())
	})
})
