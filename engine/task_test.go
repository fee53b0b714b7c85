package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"enquirysync/engine"
	"enquirysync/sheets"
)

var _ = Describe("Select", func() {
	Describe("deerflow schema", func() {
		It("picks rows with a query and no answer, in row order", func() {
			table := sheets.NewTable([][]string{
				{"Name", "DeerFlow", "Answer"},
				{"Ana", "Best sushi in Tokyo", ""},
				{"Ben", "", ""},
				{"Cy", "beach clubs in bali", "Already done"},
				{"Di", "  Rooftop bars in NYC  ", "   "},
			})

			tasks := engine.Select(table, engine.DeerFlowSchema)
			Expect(tasks).To(HaveLen(2))

			Expect(tasks[0].Query).To(Equal("best sushi in tokyo"))
			Expect(tasks[0].Position).To(Equal(0))
			Expect(tasks[0].SheetRow).To(Equal(2))
			Expect(tasks[0].Context).To(Equal(map[string]string{"Name": "Ana"}))

			Expect(tasks[1].Query).To(Equal("rooftop bars in nyc"))
			Expect(tasks[1].SheetRow).To(Equal(5))
		})

		It("treats a whitespace-only query as empty", func() {
			table := sheets.NewTable([][]string{
				{"DeerFlow", "Answer"},
				{"   ", ""},
			})
			Expect(engine.Select(table, engine.DeerFlowSchema)).To(BeEmpty())
		})

		It("returns nothing for an empty table", func() {
			Expect(engine.Select(sheets.NewTable(nil), engine.DeerFlowSchema)).To(BeEmpty())
		})

		It("returns nothing when the query column is missing", func() {
			table := sheets.NewTable([][]string{
				{"Question", "Answer"},
				{"q1", ""},
			})
			Expect(engine.Select(table, engine.DeerFlowSchema)).To(BeEmpty())
		})

		It("selects the same tasks from the same table", func() {
			table := sheets.NewTable([][]string{
				{"DeerFlow", "Answer"},
				{"q1", ""},
				{"q2", "a2"},
				{"q3", ""},
			})
			first := engine.Select(table, engine.DeerFlowSchema)
			second := engine.Select(table, engine.DeerFlowSchema)
			Expect(second).To(Equal(first))
		})
	})

	Describe("task schema", func() {
		It("joins type and info and carries the prompt", func() {
			table := sheets.NewTable([][]string{
				{"task_type", "task_info", "Answer", "Prompt"},
				{"Restaurant", "Sushi in Tokyo", "", "  Keep it under 100 words "},
				{"hotel", "", "", ""},
				{"", "", "", "orphan prompt"},
				{"flight", "LHR to JFK", "booked", ""},
			})

			tasks := engine.Select(table, engine.TaskSchema)
			Expect(tasks).To(HaveLen(2))

			Expect(tasks[0].Query).To(Equal("restaurant:sushi in tokyo"))
			Expect(tasks[0].Prompt).To(Equal("keep it under 100 words"))
			Expect(tasks[0].Context).To(HaveKeyWithValue("Prompt", "  Keep it under 100 words "))

			Expect(tasks[1].Query).To(Equal("hotel:"))
			Expect(tasks[1].Prompt).To(BeEmpty())
		})

		It("skips rows where both query parts are empty", func() {
			table := sheets.NewTable([][]string{
				{"task_type", "task_info", "Answer"},
				{"", " ", ""},
			})
			Expect(engine.Select(table, engine.TaskSchema)).To(BeEmpty())
		})
	})
})

var _ = Describe("SchemaFor", func() {
	It("knows both layouts", func() {
		s, err := engine.SchemaFor("deerflow")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.QueryColumns).To(Equal([]string{"DeerFlow"}))

		s, err = engine.SchemaFor("task")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.PromptColumn).To(Equal("Prompt"))

		_, err = engine.SchemaFor("csv")
		Expect(err).To(HaveOccurred())
	})
})
