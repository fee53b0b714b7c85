package config_test

import (
	"enquirysync/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config Loading", func() {

	Describe("Load", func() {
		It("routes to LoadFile for a file path", func() {
			_, f := writeFixture("vars.hcl", `variable "x" { default = "val" }`)
			cfg, err := config.Load(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Variables).To(HaveLen(1))
			Expect(cfg.Variables[0].Name).To(Equal("x"))
		})

		It("routes to LoadDir for a directory path", func() {
			dir := writeFixtures(map[string]string{
				"variables.hcl": minimalVarsHCL(),
				"models.hcl":    minimalModelHCL(),
				"sync.hcl":      minimalSyncHCL(),
			})
			cfg, err := config.Load(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Variables).To(HaveLen(2))
			Expect(cfg.Models).To(HaveLen(1))
			Expect(cfg.Sheet).NotTo(BeNil())
			Expect(cfg.Validate()).To(Succeed())
		})

		It("returns error for nonexistent path", func() {
			_, err := config.Load("/nonexistent/path/config.hcl")
			Expect(err).To(HaveOccurred())
		})

		It("returns error for a directory without hcl files", func() {
			dir := writeFixtures(map[string]string{"notes.txt": "hello"})
			_, err := config.Load(dir)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no .hcl files"))
		})
	})

	Describe("LoadFile", func() {
		It("parses a complete configuration", func() {
			_, f := writeFixture("config.hcl", fullBaseHCL())
			cfg, err := config.LoadFile(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Sheet.SpreadsheetID).To(Equal("sheet-abc"))
			Expect(cfg.Sheet.ReadRange()).To(Equal("CustomerEnquiry!A1:R1000"))
			Expect(cfg.Executor.Kind).To(Equal(config.ExecutorStream))
			Expect(cfg.Rewriter.Model).To(Equal("gemini_2_0_flash"))
		})

		It("applies sync and storage defaults when the blocks are absent", func() {
			_, f := writeFixture("config.hcl", fullBaseHCL())
			cfg, err := config.LoadFile(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Sync.Interval).To(Equal(10))
			Expect(cfg.Storage.Backend).To(Equal(config.BackendSQLite))
			Expect(cfg.Storage.Path).To(Equal(".enquirysync/ledger.db"))
			Expect(cfg.Commander).To(BeNil())
		})

		It("returns parse error for invalid HCL syntax", func() {
			_, f := writeFixture("bad.hcl", `model { missing label and brace`)
			_, err := config.LoadFile(f)
			Expect(err).To(HaveOccurred())
		})

		It("rejects unknown block types", func() {
			_, f := writeFixture("bad.hcl", `agent "x" {}`)
			_, err := config.LoadFile(f)
			Expect(err).To(HaveOccurred())
		})

		It("rejects duplicate singleton blocks", func() {
			_, f := writeFixture("dup.hcl", fullBaseHCL()+`
sync { interval = 5 }
sync { interval = 6 }
`)
			_, err := config.LoadFile(f)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("duplicate sync block"))
		})
	})

	Describe("Validate", func() {
		It("requires a sheet block", func() {
			_, f := writeFixture("config.hcl", minimalVarsHCL()+minimalModelHCL())
			cfg, err := config.LoadFile(f)
			Expect(err).NotTo(HaveOccurred())
			err = cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("sheet"))
		})

		It("rejects a rewriter model that no model block allows", func() {
			_, f := writeFixture("config.hcl", minimalVarsHCL()+minimalModelHCL()+`
sheet {
  spreadsheet_id = "abc"
}

executor "stream" {
  url = "http://localhost:8000/api/chat/stream"
}

rewriter {
  model = "gpt_4o"
}
`)
			cfg, err := config.LoadFile(f)
			Expect(err).NotTo(HaveOccurred())
			err = cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("gpt_4o"))
		})

		It("rejects an unknown storage backend", func() {
			_, f := writeFixture("config.hcl", fullBaseHCL()+`
storage {
  backend = "redis"
}
`)
			cfg, err := config.LoadFile(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("unknown backend")))
		})

		It("requires a dsn for postgres", func() {
			_, f := writeFixture("config.hcl", fullBaseHCL()+`
storage {
  backend = "postgres"
}
`)
			cfg, err := config.LoadFile(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("dsn")))
		})
	})

	Describe("ResolveModel", func() {
		It("returns the provider model name", func() {
			_, f := writeFixture("config.hcl", fullBaseHCL())
			cfg, err := config.LoadFile(f)
			Expect(err).NotTo(HaveOccurred())

			m, name, err := cfg.ResolveModel("gemini_2_0_flash")
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Provider).To(Equal(config.ProviderGemini))
			Expect(m.APIKey).To(Equal("test-key-123"))
			Expect(name).To(Equal("gemini-2.0-flash"))
		})
	})
})
