package store_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"enquirysync/config"
	"enquirysync/store"
)

var _ = Describe("Ledger", func() {
	runLedgerTests := func(newBundle func() (*store.Bundle, func())) {
		var (
			bundle  *store.Bundle
			cleanup func()
		)

		BeforeEach(func() {
			bundle, cleanup = newBundle()
		})

		AfterEach(func() {
			cleanup()
		})

		It("records a cycle from start to finish", func() {
			Expect(bundle.Cycles.StartCycle("c1")).To(Succeed())

			c, err := bundle.Cycles.GetCycle("c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(store.StatusRunning))
			Expect(c.FinishedAt).To(BeNil())

			Expect(bundle.Cycles.SetCycleSelection("c1", 12, 3)).To(Succeed())
			Expect(bundle.Cycles.FinishCycle("c1", store.StatusCompleted, 3, nil)).To(Succeed())

			c, err = bundle.Cycles.GetCycle("c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(store.StatusCompleted))
			Expect(c.Rows).To(Equal(12))
			Expect(c.Selected).To(Equal(3))
			Expect(c.Answered).To(Equal(3))
			Expect(c.Error).To(BeNil())
			Expect(c.FinishedAt).NotTo(BeNil())
		})

		It("keeps the error of a failed cycle", func() {
			Expect(bundle.Cycles.StartCycle("c1")).To(Succeed())
			msg := "research row 3: status 502"
			Expect(bundle.Cycles.FinishCycle("c1", store.StatusFailed, 1, &msg)).To(Succeed())

			c, err := bundle.Cycles.GetCycle("c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(store.StatusFailed))
			Expect(*c.Error).To(Equal(msg))
		})

		It("fails for unknown cycles", func() {
			_, err := bundle.Cycles.GetCycle("nope")
			Expect(err).To(MatchError(ContainSubstring("not found")))
		})

		It("lists cycles newest first with paging", func() {
			for _, id := range []string{"c1", "c2", "c3"} {
				Expect(bundle.Cycles.StartCycle(id)).To(Succeed())
				time.Sleep(10 * time.Millisecond) // ensure different timestamps
			}

			cycles, total, err := bundle.Cycles.ListCycles(2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(3))
			Expect(cycles).To(HaveLen(2))
			Expect(cycles[0].ID).To(Equal("c3"))
			Expect(cycles[1].ID).To(Equal("c2"))

			cycles, _, err = bundle.Cycles.ListCycles(2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(cycles).To(HaveLen(1))
			Expect(cycles[0].ID).To(Equal("c1"))
		})

		It("records attempts in the order they started", func() {
			Expect(bundle.Cycles.StartCycle("c1")).To(Succeed())

			first, err := bundle.Attempts.StartAttempt("c1", 2, "best sushi in tokyo")
			Expect(err).NotTo(HaveOccurred())
			Expect(bundle.Attempts.SetAttemptStage(first, "write")).To(Succeed())
			Expect(bundle.Attempts.FinishAttempt(first, store.StatusAnswered, false, "Sushi Saito", nil)).To(Succeed())

			second, err := bundle.Attempts.StartAttempt("c1", 5, "beach clubs")
			Expect(err).NotTo(HaveOccurred())
			msg := "status 502"
			Expect(bundle.Attempts.FinishAttempt(second, store.StatusFailed, false, "", &msg)).To(Succeed())

			attempts, err := bundle.Attempts.GetAttemptsByCycle("c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(attempts).To(HaveLen(2))

			Expect(attempts[0].ID).To(Equal(first))
			Expect(attempts[0].Row).To(Equal(2))
			Expect(attempts[0].Query).To(Equal("best sushi in tokyo"))
			Expect(attempts[0].Stage).To(Equal("write"))
			Expect(attempts[0].Status).To(Equal(store.StatusAnswered))
			Expect(attempts[0].AnswerPreview).To(Equal("Sushi Saito"))
			Expect(attempts[0].Error).To(BeNil())
			Expect(attempts[0].FinishedAt).NotTo(BeNil())

			Expect(attempts[1].ID).To(Equal(second))
			Expect(attempts[1].Stage).To(Equal("research"))
			Expect(attempts[1].Status).To(Equal(store.StatusFailed))
			Expect(*attempts[1].Error).To(Equal("status 502"))
		})

		It("flags soft failures and shortens long answers", func() {
			Expect(bundle.Cycles.StartCycle("c1")).To(Succeed())
			id, err := bundle.Attempts.StartAttempt("c1", 2, "q")
			Expect(err).NotTo(HaveOccurred())

			long := "❌ Error: " + strings.Repeat("x", 1000)
			Expect(bundle.Attempts.FinishAttempt(id, store.StatusAnswered, true, long, nil)).To(Succeed())

			attempts, err := bundle.Attempts.GetAttemptsByCycle("c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(attempts[0].Soft).To(BeTrue())
			Expect(attempts[0].AnswerPreview).To(Equal(store.Preview(long)))
			Expect(len([]rune(attempts[0].AnswerPreview))).To(BeNumerically("<", 300))
		})

		It("returns no attempts for an unknown cycle", func() {
			attempts, err := bundle.Attempts.GetAttemptsByCycle("nope")
			Expect(err).NotTo(HaveOccurred())
			Expect(attempts).To(BeEmpty())
		})
	}

	Context("Memory backend", func() {
		runLedgerTests(func() (*store.Bundle, func()) {
			return store.NewMemoryBundle(), func() {}
		})
	})

	Context("SQLite backend", func() {
		runLedgerTests(func() (*store.Bundle, func()) {
			dir, err := os.MkdirTemp("", "store-test-*")
			Expect(err).NotTo(HaveOccurred())

			dbPath := filepath.Join(dir, "test.db")
			bundle, err := store.NewSQLiteBundle(dbPath)
			Expect(err).NotTo(HaveOccurred())

			return bundle, func() {
				bundle.Close()
				os.RemoveAll(dir)
			}
		})
	})

	// Runs only against a disposable database, e.g.
	// ENQUIRYSYNC_TEST_POSTGRES_DSN=postgres://postgres@localhost/enquirysync_test
	Context("Postgres backend", func() {
		runLedgerTests(func() (*store.Bundle, func()) {
			dsn := os.Getenv("ENQUIRYSYNC_TEST_POSTGRES_DSN")
			if dsn == "" {
				Skip("ENQUIRYSYNC_TEST_POSTGRES_DSN not set")
			}
			bundle, err := store.NewPostgresBundle(context.Background(), dsn)
			Expect(err).NotTo(HaveOccurred())

			conn, err := pgx.Connect(context.Background(), dsn)
			Expect(err).NotTo(HaveOccurred())
			_, err = conn.Exec(context.Background(), `TRUNCATE attempts, cycles`)
			Expect(err).NotTo(HaveOccurred())
			Expect(conn.Close(context.Background())).To(Succeed())

			return bundle, func() {
				bundle.Close()
			}
		})
	})
})

var _ = Describe("Memory retention", func() {
	It("evicts the oldest cycles and their attempts past the limit", func() {
		bundle := store.NewBoundedMemoryBundle(2)

		for _, id := range []string{"c1", "c2", "c3"} {
			Expect(bundle.Cycles.StartCycle(id)).To(Succeed())
			_, err := bundle.Attempts.StartAttempt(id, 2, "q-"+id)
			Expect(err).NotTo(HaveOccurred())
		}

		cycles, total, err := bundle.Cycles.ListCycles(10, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(2))
		Expect(cycles).To(HaveLen(2))
		Expect(cycles[0].ID).To(Equal("c3"))
		Expect(cycles[1].ID).To(Equal("c2"))

		_, err = bundle.Cycles.GetCycle("c1")
		Expect(err).To(HaveOccurred())
		attempts, err := bundle.Attempts.GetAttemptsByCycle("c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(attempts).To(BeEmpty())

		attempts, err = bundle.Attempts.GetAttemptsByCycle("c3")
		Expect(err).NotTo(HaveOccurred())
		Expect(attempts).To(HaveLen(1))
	})

	It("bounds the default memory bundle", func() {
		bundle := store.NewMemoryBundle()
		for i := 0; i < store.MemoryRetainedCycles+5; i++ {
			Expect(bundle.Cycles.StartCycle(fmt.Sprintf("c%d", i))).To(Succeed())
		}
		_, total, err := bundle.Cycles.ListCycles(1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(store.MemoryRetainedCycles))
	})
})

var _ = Describe("NewBundle", func() {
	It("uses memory without a storage block", func() {
		b, err := store.NewBundle(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Cycles).To(BeAssignableToTypeOf(&store.MemoryCycleStore{}))
	})

	It("creates the sqlite directory", func() {
		path := filepath.Join(GinkgoT().TempDir(), "nested", "ledger.db")
		b, err := store.NewBundle(context.Background(), &config.StorageConfig{Backend: config.BackendSQLite, Path: path})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(b.Close)
		Expect(path).To(BeAnExistingFile())
	})

	It("rejects unknown backends", func() {
		_, err := store.NewBundle(context.Background(), &config.StorageConfig{Backend: "redis"})
		Expect(err).To(MatchError(ContainSubstring("redis")))
	})
})
