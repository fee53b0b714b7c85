package streamers_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"enquirysync/store"
	"enquirysync/streamers"
	"enquirysync/streamers/cli"
)

var _ = Describe("StoringSyncHandler", func() {
	var (
		bundle  *store.Bundle
		out     *bytes.Buffer
		handler *streamers.StoringSyncHandler
	)

	BeforeEach(func() {
		bundle = store.NewMemoryBundle()
		out = &bytes.Buffer{}
		handler = streamers.NewStoringSyncHandler(cli.NewSyncHandlerTo(out, true), bundle, nil)
	})

	It("records a completed cycle and its attempts", func() {
		handler.CycleStarted("c1")
		handler.TasksSelected("c1", 4, 2)

		handler.TaskStarted("c1", 2, "best sushi in tokyo")
		handler.ResearchOutput("c1", 2, "planner: searching")
		handler.TaskResearched("c1", 2, false)
		handler.TaskAnswered("c1", 2, streamers.Answer{Target: "CustomerEnquiry!C2", Text: "Sushi Saito"})

		handler.TaskStarted("c1", 4, "beach clubs")
		handler.TaskResearched("c1", 4, true)
		handler.TaskAnswered("c1", 4, streamers.Answer{Target: "CustomerEnquiry!C4", Text: "⚠️ fallback", Soft: true})

		handler.CycleCompleted("c1", 2)

		c, err := bundle.Cycles.GetCycle("c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Status).To(Equal(store.StatusCompleted))
		Expect(c.Rows).To(Equal(4))
		Expect(c.Selected).To(Equal(2))
		Expect(c.Answered).To(Equal(2))

		attempts, err := bundle.Attempts.GetAttemptsByCycle("c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(attempts).To(HaveLen(2))
		Expect(attempts[0].Row).To(Equal(2))
		Expect(attempts[0].Status).To(Equal(store.StatusAnswered))
		Expect(attempts[0].Stage).To(Equal("write"))
		Expect(attempts[0].AnswerPreview).To(Equal("Sushi Saito"))
		Expect(attempts[1].Soft).To(BeTrue())
	})

	It("records the failing stage and the cycle error", func() {
		handler.CycleStarted("c1")
		handler.TasksSelected("c1", 3, 2)
		handler.TaskStarted("c1", 2, "q1")
		handler.TaskAnswered("c1", 2, streamers.Answer{Target: "S!B2", Text: "a1"})
		handler.TaskStarted("c1", 3, "q2")

		boom := errors.New("status 502")
		handler.TaskFailed("c1", 3, "research", boom)
		handler.CycleFailed("c1", boom)

		c, err := bundle.Cycles.GetCycle("c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Status).To(Equal(store.StatusFailed))
		Expect(c.Answered).To(Equal(1))
		Expect(*c.Error).To(Equal("status 502"))

		attempts, err := bundle.Attempts.GetAttemptsByCycle("c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(attempts[1].Status).To(Equal(store.StatusFailed))
		Expect(attempts[1].Stage).To(Equal("research"))
		Expect(*attempts[1].Error).To(Equal("status 502"))
	})

	It("records a fetch failure without attempts", func() {
		handler.CycleStarted("c1")
		handler.CycleFailed("c1", errors.New("403"))

		c, err := bundle.Cycles.GetCycle("c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Status).To(Equal(store.StatusFailed))

		attempts, err := bundle.Attempts.GetAttemptsByCycle("c1")
		Expect(err).NotTo(HaveOccurred())
		Expect(attempts).To(BeEmpty())
	})

	It("delegates every event to the inner handler", func() {
		handler.CycleStarted("c1")
		handler.TasksSelected("c1", 1, 1)
		handler.TaskStarted("c1", 2, "best sushi in tokyo")
		handler.ResearchOutput("c1", 2, "planner: searching")
		handler.TaskAnswered("c1", 2, streamers.Answer{Target: "CustomerEnquiry!C2", Text: "Sushi Saito"})
		handler.CycleCompleted("c1", 1)

		Expect(out.String()).To(ContainSubstring("Processing: best sushi in tokyo"))
		Expect(out.String()).To(ContainSubstring("planner: searching"))
		Expect(out.String()).To(ContainSubstring("Wrote answer to CustomerEnquiry!C2"))
		Expect(out.String()).To(ContainSubstring("1 answered"))
	})

	It("keeps delegating when the ledger rejects a write", func() {
		// the cycle was never started, so the ledger update fails
		handler.TasksSelected("missing", 1, 1)
		handler.CycleCompleted("missing", 0)
		Expect(out.String()).To(ContainSubstring("1 of 1 rows to answer"))
	})
})

var _ = Describe("MultiSyncHandler", func() {
	It("fans out to every handler", func() {
		var a, b bytes.Buffer
		multi := streamers.MultiSyncHandler{
			cli.NewSyncHandlerTo(&a, false),
			cli.NewSyncHandlerTo(&b, false),
		}
		multi.TaskStarted("c1", 2, "q")
		Expect(a.String()).To(ContainSubstring("Processing: q"))
		Expect(b.String()).To(ContainSubstring("Processing: q"))
	})
})
