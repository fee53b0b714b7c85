package sheets_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"enquirysync/sheets"
)

var _ = Describe("Addressing", func() {
	Describe("ColumnLetter", func() {
		It("maps single-letter columns", func() {
			Expect(sheets.ColumnLetter(0)).To(Equal("A"))
			Expect(sheets.ColumnLetter(2)).To(Equal("C"))
			Expect(sheets.ColumnLetter(25)).To(Equal("Z"))
		})

		It("rejects columns past Z", func() {
			_, err := sheets.ColumnLetter(26)
			Expect(err).To(HaveOccurred())
			_, err = sheets.ColumnLetter(-1)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("CellRange", func() {
		It("builds a qualified single-cell address", func() {
			r, err := sheets.CellRange("CustomerEnquiry", 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(r).To(Equal("CustomerEnquiry!C2"))
		})

		It("rejects row zero", func() {
			_, err := sheets.CellRange("S", 0, 0)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("FirstRow", func() {
		DescribeTable("range start rows",
			func(rng string, want int) {
				Expect(sheets.FirstRow(rng)).To(Equal(want))
			},
			Entry("qualified", "Sheet1!A1:Z1000", 1),
			Entry("unqualified", "B5:C9", 5),
			Entry("whole columns", "A:R", 1),
			Entry("sheet name with digits", "Q3 2024!A7:C10", 7),
		)
	})

	Describe("ParseCell", func() {
		It("splits sheet, column and row", func() {
			sheet, col, row, err := sheets.ParseCell("Enquiries!D12")
			Expect(err).NotTo(HaveOccurred())
			Expect(sheet).To(Equal("Enquiries"))
			Expect(col).To(Equal(3))
			Expect(row).To(Equal(12))
		})

		It("rejects multi-letter columns", func() {
			_, _, _, err := sheets.ParseCell("S!AA1")
			Expect(err).To(HaveOccurred())
		})
	})
})
