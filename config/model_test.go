package config_test

import (
	"enquirysync/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Model", func() {
	It("accepts supported models", func() {
		m := config.Model{Name: "g", Provider: config.ProviderGemini, AllowedModels: []string{"gemini_2_0_flash"}}
		Expect(m.Validate()).To(Succeed())
	})

	It("rejects an unknown provider", func() {
		m := config.Model{Name: "x", Provider: "mistral"}
		Expect(m.Validate()).To(MatchError(ContainSubstring("mistral")))
	})

	It("rejects a model the provider does not offer", func() {
		m := config.Model{Name: "g", Provider: config.ProviderGemini, AllowedModels: []string{"gpt_4o"}}
		err := m.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("gpt_4o"))
		Expect(err.Error()).To(ContainSubstring("gemini_2_0_flash"))
	})
})

var _ = Describe("Pricing", func() {
	It("prices known models per million tokens", func() {
		Expect(config.CalculateCost("gemini-2.0-flash", 1_000_000, 1_000_000)).To(BeNumerically("~", 0.50, 1e-9))
	})

	It("returns zero for unknown models", func() {
		Expect(config.CalculateCost("mystery-model", 1000, 1000)).To(BeZero())
	})
})
