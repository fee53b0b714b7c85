package config_test

import (
	"enquirysync/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Executor Config", func() {

	Describe("stream", func() {
		It("fills the research payload defaults", func() {
			_, f := writeFixture("config.hcl", fullBaseHCL())
			cfg, err := config.LoadFile(f)
			Expect(err).NotTo(HaveOccurred())

			e := cfg.Executor
			Expect(e.ThreadID).To(Equal("_default_"))
			Expect(e.MaxPlanIterations).To(Equal(5))
			Expect(e.MaxStepNum).To(Equal(5))
			Expect(*e.AutoAcceptedPlan).To(BeTrue())
			Expect(*e.EnableBackgroundInvestigation).To(BeTrue())
			Expect(e.Debug).To(BeFalse())
			Expect(e.MCPSettings.Tone).To(Equal("Polite, helpful, and detailed"))
			Expect(e.MCPSettings.PreferredSources).To(ContainElement("Michelin Guide"))
		})

		It("keeps explicit mcp settings and flags", func() {
			_, f := writeFixture("config.hcl", minimalVarsHCL()+minimalModelHCL()+`
sheet {
  spreadsheet_id = "abc"
}

executor "stream" {
  url                = "http://deerflow:8000/api/chat/stream"
  auto_accepted_plan = false
  max_step_num       = 3

  mcp_settings {
    role  = "Hotel concierge"
    tools = ["web_search"]
  }
}

rewriter {
  model = models.gemini.gemini_2_0_flash
}
`)
			cfg, err := config.LoadFile(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Validate()).To(Succeed())

			e := cfg.Executor
			Expect(*e.AutoAcceptedPlan).To(BeFalse())
			Expect(e.MaxStepNum).To(Equal(3))
			Expect(e.MCPSettings.Role).To(Equal("Hotel concierge"))
			Expect(e.MCPSettings.Tools).To(Equal([]string{"web_search"}))
			Expect(e.MCPSettings.ContextualGoals).NotTo(BeEmpty())
		})

		It("requires a url", func() {
			e := config.ExecutorConfig{Kind: config.ExecutorStream}
			e.Defaults()
			Expect(e.Validate()).To(MatchError(ContainSubstring("url")))
		})
	})

	Describe("process", func() {
		It("defaults the runner and the marker", func() {
			e := config.ExecutorConfig{Kind: config.ExecutorProcess, Script: "/opt/deer-flow/main.py"}
			e.Defaults()
			Expect(e.Validate()).To(Succeed())
			Expect(e.Runner).To(Equal("uv"))
			Expect(e.Args).To(Equal([]string{"run"}))
			Expect(e.Marker).To(Equal("reporter response:"))
		})

		It("leaves args alone for a custom runner", func() {
			e := config.ExecutorConfig{Kind: config.ExecutorProcess, Runner: "python3", Script: "main.py"}
			e.Defaults()
			Expect(e.Args).To(BeNil())
		})

		It("requires a script", func() {
			e := config.ExecutorConfig{Kind: config.ExecutorProcess}
			e.Defaults()
			Expect(e.Validate()).To(MatchError(ContainSubstring("script")))
		})
	})

	It("rejects unknown kinds", func() {
		e := config.ExecutorConfig{Kind: "grpc"}
		Expect(e.Validate()).To(MatchError(ContainSubstring("unknown executor kind")))
	})
})
