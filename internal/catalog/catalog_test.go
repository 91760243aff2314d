package catalog_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/envtest/energy-planner/internal/catalog"
	"github.com/envtest/energy-planner/internal/estimation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("catalog", func() {
	var c *catalog.Catalog

	BeforeEach(func() {
		var err error
		c, err = catalog.Default()
		Expect(err).To(BeNil())
	})

	Context("default", func() {
		It("knows every test method", func() {
			Expect(c.Methods()).To(HaveLen(7))
			Expect(c.Datasets()).To(HaveKeyWithValue("2-14: Nb (Change of temp.)", "2-14-Nb_test.csv"))
			Expect(c.Fields()[0]).To(Equal(catalog.FieldMapping{Field: "testType", Column: "Test Type"}))
		})
	})

	Context("resolve method", func() {
		DescribeTable("ignores case and whitespace",
			func(raw string) {
				m, err := c.ResolveMethod(raw)
				Expect(err).To(BeNil())
				Expect(m.Dataset).To(Equal("2-1_test.csv"))
				Expect(m.MethodValue).To(Equal("2-1 : Test A"))
				Expect(m.Label).To(Equal("2-1: A (Cold)"))
			},
			Entry("canonical alias", "2-1: A"),
			Entry("no space", "2-1:A"),
			Entry("padded lower case", "  2-1: a "),
			Entry("tabs", "2-1:\tA"),
		)

		It("falls back to the raw value as label", func() {
			m, err := c.ResolveMethod("2-30: Db (Damp heat, cyclic)")
			Expect(err).To(BeNil())
			Expect(m.Dataset).To(Equal("2-30_test.csv"))
		})

		It("rejects unknown methods", func() {
			_, err := c.ResolveMethod("9-9: Z")
			var im *catalog.ErrInvalidMethod
			Expect(errors.As(err, &im)).To(BeTrue())
			Expect(im.Method).To(Equal("9-9: Z"))
		})

		It("rejects an empty method", func() {
			_, err := c.ResolveMethod("")
			var im *catalog.ErrInvalidMethod
			Expect(errors.As(err, &im)).To(BeTrue())
		})

		It("reports a dataset without table method value", func() {
			broken, err := catalog.Parse([]byte(`
methods:
  - alias: "X: 1"
    label: "X: 1 (Broken)"
    dataset: x.csv
  - alias: "X: 2"
    label: "X: 2 (Nothing)"
`))
			Expect(err).To(BeNil())

			_, err = broken.ResolveMethod("x:1")
			var mm *catalog.ErrInvalidMethodMapping
			Expect(errors.As(err, &mm)).To(BeTrue())
			Expect(mm.Label).To(Equal("X: 1 (Broken)"))

			_, err = broken.ResolveMethod("x:2")
			var im *catalog.ErrInvalidMethod
			Expect(errors.As(err, &im)).To(BeTrue())
		})
	})

	Context("criteria", func() {
		header := []string{"Method", "Initial Temp (°C)", "Humidity (%)", "Output Power (W)"}

		It("keeps only specified fields present in the header", func() {
			body := map[string]any{
				"method":       "2-1: A",
				"initialTemp":  json.Number("-40"),
				"humidity":     "undefined",
				"lowTemp":      json.Number("-10"),
				"variant":      "",
				"rateOfChange": nil,
			}
			Expect(c.Criteria(body, header, "2-1 : Test A")).To(Equal(estimation.Criteria{
				{Column: "Method", Value: "2-1 : Test A"},
				{Column: "Initial Temp (°C)", Value: "-40"},
			}))
		})

		It("forces the method value even when the body has none", func() {
			criteria := c.Criteria(map[string]any{"humidity": 93.5}, header, "2-1 : Test A")
			Expect(criteria).To(Equal(estimation.Criteria{
				{Column: "Humidity (%)", Value: "93.5"},
				{Column: "Method", Value: "2-1 : Test A"},
			}))
		})

		It("skips the method when the table has no Method column", func() {
			criteria := c.Criteria(map[string]any{"method": "2-1: A"}, []string{"Power"}, "2-1 : Test A")
			Expect(criteria).To(BeEmpty())
		})
	})

	Context("load", func() {
		It("returns the embedded catalog without a path", func() {
			loaded, err := catalog.Load("")
			Expect(err).To(BeNil())
			Expect(loaded.Methods()).To(Equal(c.Methods()))
		})

		It("reads an override file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "catalog.yaml")
			Expect(os.WriteFile(path, []byte(`
methods:
  - alias: "Custom"
    label: "Custom method"
    dataset: custom.csv
    methodValue: "custom"
fields:
  - field: humidity
    column: RH
`), 0o600)).To(Succeed())

			loaded, err := catalog.Load(path)
			Expect(err).To(BeNil())
			m, err := loaded.ResolveMethod(" custom ")
			Expect(err).To(BeNil())
			Expect(m.Dataset).To(Equal("custom.csv"))
			Expect(loaded.Criteria(map[string]any{"humidity": "50"}, []string{"RH"}, "custom")).
				To(Equal(estimation.Criteria{{Column: "RH", Value: "50"}}))
		})

		It("fails on a missing file", func() {
			_, err := catalog.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
			Expect(err).ToNot(BeNil())
		})

		DescribeTable("rejects invalid documents",
			func(doc string) {
				_, err := catalog.Parse([]byte(doc))
				Expect(err).ToNot(BeNil())
			},
			Entry("missing label", "methods:\n  - alias: a\n"),
			Entry("duplicate label", "methods:\n  - label: a\n  - label: a\n"),
			Entry("colliding aliases", "methods:\n  - alias: 'A B'\n    label: x\n  - alias: ab\n    label: y\n"),
			Entry("incomplete field", "fields:\n  - field: a\n"),
			Entry("unknown key", "methods:\n  - label: a\n    unknown: b\n"),
		)
	})
})
