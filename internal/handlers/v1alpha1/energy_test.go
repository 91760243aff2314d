package v1alpha1_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/envtest/energy-planner/internal/catalog"
	"github.com/envtest/energy-planner/internal/dataset"
	handlers "github.com/envtest/energy-planner/internal/handlers/v1alpha1"
	"github.com/envtest/energy-planner/internal/handlers/v1alpha1/mappers"
	"github.com/envtest/energy-planner/internal/service"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const coldTable = "Method,Initial Temp (°C),Output Power (W)\n" +
	"\"2-1 : Test A\",-40,150\n" +
	"\"2-1 : Test A\",-55,N/A\n"

func post(fn http.HandlerFunc, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	fn(rr, req)

	var payload map[string]any
	Expect(json.Unmarshal(rr.Body.Bytes(), &payload)).To(Succeed())
	return rr, payload
}

var _ = Describe("energy handlers", Ordered, func() {
	var h *handlers.ServiceHandler

	BeforeAll(func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "2-1_test.csv"), []byte(coldTable), 0o600)).To(Succeed())
		tables := map[string]string{
			"generic.csv": "Chamber,Low Temp,Power (kW)\nChamber,-40,0.5\n",
			"nan.csv":     "Chamber,Power (kW)\nChamber,NaN\n",
			"inf.csv":     "Chamber,Power (kW)\nChamber,Inf\n",
		}
		for name, content := range tables {
			Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600)).To(Succeed())
		}

		cat, err := catalog.Default()
		Expect(err).To(BeNil())
		srv := service.NewEnergyService(cat, dataset.NewLoader(dataset.NewFileSource(dir)))
		h = handlers.NewServiceHandler(srv)
	})

	Context("calculate test energy", func() {
		It("returns power, energy, cost and carbon", func() {
			rr, payload := post(h.CalculateTestEnergy, "/api/calculate-test-energy/",
				`{"method":"2-1: A","initialTemp":-40,"duration":2}`)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(payload["power_kw"]).To(BeNumerically("==", 150))
			Expect(payload["energy_consumption_kwh"]).To(BeNumerically("==", 300))
			Expect(payload["energy_cost_eur"]).To(BeNumerically("~", 40.5, 1e-9))
			Expect(payload["carbon_footprint_kg_co2"]).To(BeNumerically("~", 174, 1e-9))
			Expect(payload["fixed_costs_eur"]).To(BeNumerically("~", 360, 1e-9))
			Expect(payload["additional_cost_eur"]).To(BeNumerically("==", 0))
			Expect(payload["total_cost_eur"]).To(BeNumerically("~", 400.5, 1e-9))
		})

		It("charges the equipment operation time", func() {
			rr, payload := post(h.CalculateTestEnergy, "/api/calculate-test-energy/",
				`{"method":"2-1: A","initialTemp":-40,"duration":2,"equipment":"vibrating_pot"}`)
			Expect(rr.Code).To(Equal(http.StatusOK))
			// 360 + 100/h for 2h
			Expect(payload["fixed_costs_eur"]).To(BeNumerically("~", 560, 1e-9))
			Expect(payload["total_cost_eur"]).To(BeNumerically("~", 600.5, 1e-9))
		})

		It("answers a non finite duration with JSON", func() {
			rr, payload := post(h.CalculateTestEnergy, "/api/calculate-test-energy/",
				`{"method":"2-1: A","initialTemp":-40,"durationHours":"Infinity"}`)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Header().Get("Content-Type")).To(HavePrefix("application/json"))
			Expect(payload["energy_consumption_kwh"]).To(BeNumerically("==", 0))
		})

		It("returns zero energy when the duration is omitted", func() {
			rr, payload := post(h.CalculateTestEnergy, "/api/calculate-test-energy/",
				`{"method":"2-1:A","initialTemp":"-40"}`)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(payload["energy_consumption_kwh"]).To(BeNumerically("==", 0))
			Expect(payload["energy_cost_eur"]).To(BeNumerically("==", 0))
		})

		It("echoes the search context when no row matches", func() {
			rr, payload := post(h.CalculateTestEnergy, "/api/calculate-test-energy/",
				`{"method":"2-1: A","initialTemp":-99,"duration":2}`)
			Expect(rr.Code).To(Equal(http.StatusNotFound))
			Expect(payload["kind"]).To(Equal(string(service.KindNoMatchFound)))
			Expect(payload["csv_file"]).To(Equal("2-1_test.csv"))
			Expect(payload["headers"]).To(ConsistOf("Method", "Initial Temp (°C)", "Output Power (W)"))
			Expect(payload["search_criteria"]).To(HaveKeyWithValue("Initial Temp (°C)", "-99"))
			Expect(payload["search_criteria"]).To(HaveKeyWithValue("Method", "2-1 : Test A"))
			Expect(payload["received_data"]).To(HaveKeyWithValue("method", "2-1: A"))
		})

		It("rejects an unknown method with the received data", func() {
			rr, payload := post(h.CalculateTestEnergy, "/api/calculate-test-energy/", `{"method":"nope"}`)
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(payload["kind"]).To(Equal(string(service.KindInvalidMethod)))
			Expect(payload["received_data"]).To(HaveKeyWithValue("method", "nope"))
		})

		It("reports a non numeric power cell as a server fault", func() {
			rr, payload := post(h.CalculateTestEnergy, "/api/calculate-test-energy/", `{"method":"2-1: A","initialTemp":-55}`)
			Expect(rr.Code).To(Equal(http.StatusInternalServerError))
			Expect(payload["kind"]).To(Equal(string(service.KindInvalidPowerValue)))
		})

		It("rejects malformed JSON", func() {
			rr, payload := post(h.CalculateTestEnergy, "/api/calculate-test-energy/", `{"method":`)
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(payload["kind"]).To(Equal(string(service.KindInvalidInput)))
			Expect(payload).ToNot(HaveKey("received_data"))
		})
	})

	Context("calculate energy", func() {
		It("returns energy and cost", func() {
			rr, payload := post(h.CalculateEnergy, "/api/calculate-energy/",
				`{"csv_file":"generic.csv","field1":"Chamber","column":"Power (kW)","duration":4}`)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(payload).To(HaveLen(2))
			Expect(payload["energy_consumption_kwh"]).To(BeNumerically("==", 2))
			Expect(payload["energy_cost_eur"]).To(BeNumerically("~", 0.27, 1e-9))
		})

		DescribeTable("maps failures to statuses",
			func(body string, status int, kind service.ErrorKind) {
				rr, payload := post(h.CalculateEnergy, "/api/calculate-energy/", body)
				Expect(rr.Code).To(Equal(status))
				Expect(payload["kind"]).To(Equal(string(kind)))
				Expect(payload).ToNot(HaveKey("received_data"))
			},
			Entry("missing csv_file", `{"field1":"Power (kW)"}`, http.StatusBadRequest, service.KindInvalidInput),
			Entry("path traversal", `{"csv_file":"../generic.csv"}`, http.StatusBadRequest, service.KindInvalidInput),
			Entry("bad duration", `{"csv_file":"generic.csv","duration":"x"}`, http.StatusBadRequest, service.KindInvalidInput),
			Entry("no power field", `{"csv_file":"generic.csv","field1":"Chamber"}`, http.StatusBadRequest, service.KindPowerColumnNotSpecified),
			Entry("unknown dataset", `{"csv_file":"absent.csv","column":"Power (kW)"}`, http.StatusNotFound, service.KindDatasetNotFound),
			Entry("no match", `{"csv_file":"generic.csv","field1":"Power (kW)"}`, http.StatusNotFound, service.KindNoMatchFound),
			Entry("no match and no power field", `{"csv_file":"generic.csv","field1":"Low Temp"}`, http.StatusNotFound, service.KindNoMatchFound),
			Entry("negative duration", `{"csv_file":"generic.csv","column":"Power (kW)","duration":-3}`, http.StatusBadRequest, service.KindInvalidInput),
			Entry("nan duration", `{"csv_file":"generic.csv","column":"Power (kW)","duration":"NaN"}`, http.StatusBadRequest, service.KindInvalidInput),
			Entry("nan power cell", `{"csv_file":"nan.csv","column":"Power (kW)"}`, http.StatusInternalServerError, service.KindInvalidPowerValue),
			Entry("infinite power cell", `{"csv_file":"inf.csv","column":"Power (kW)"}`, http.StatusInternalServerError, service.KindInvalidPowerValue),
			Entry("not an object", `[1,2]`, http.StatusBadRequest, service.KindInvalidInput),
		)
	})

	Context("auxiliary", func() {
		It("answers health checks", func() {
			rr := httptest.NewRecorder()
			h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(`{"status":"healthy"}`))
		})

		It("rejects other methods", func() {
			rr := httptest.NewRecorder()
			handlers.MethodNotAllowed(rr, httptest.NewRequest(http.MethodGet, "/api/calculate-energy/", nil))
			Expect(rr.Code).To(Equal(http.StatusMethodNotAllowed))
		})
	})
})

var _ = Describe("body decoding", func() {
	It("keeps key order and number literals", func() {
		body, err := mappers.BodyFromJSON(strings.NewReader(`{"z":1.50,"a":"x","m":null,"n":{"k":2}}`))
		Expect(err).To(BeNil())
		Expect(body.Keys()).To(Equal([]string{"z", "a", "m", "n"}))
		z, _ := body.Get("z")
		Expect(z).To(Equal(json.Number("1.50")))
	})

	DescribeTable("rejects non objects",
		func(input string) {
			_, err := mappers.BodyFromJSON(strings.NewReader(input))
			Expect(err).ToNot(BeNil())
		},
		Entry("empty", ``),
		Entry("array", `[]`),
		Entry("string", `"x"`),
		Entry("truncated", `{"a":1`),
		Entry("trailing data", `{"a":1} {}`),
	)
})

var _ = Describe("status mapping", func() {
	DescribeTable("maps every kind",
		func(kind service.ErrorKind, status int) {
			Expect(handlers.StatusFor(service.SurfaceFields, kind)).To(Equal(status))
			if kind != service.KindUnknown {
				Expect(handlers.StatusFor(service.SurfaceMethod, kind)).To(Equal(status))
			}
		},
		Entry(nil, service.KindInvalidInput, http.StatusBadRequest),
		Entry(nil, service.KindInvalidMethod, http.StatusBadRequest),
		Entry(nil, service.KindInvalidMethodMapping, http.StatusBadRequest),
		Entry(nil, service.KindPowerColumnNotSpecified, http.StatusBadRequest),
		Entry(nil, service.KindPowerColumnNotFound, http.StatusBadRequest),
		Entry(nil, service.KindDatasetNotFound, http.StatusNotFound),
		Entry(nil, service.KindNoMatchFound, http.StatusNotFound),
		Entry(nil, service.KindDataSourceError, http.StatusInternalServerError),
		Entry(nil, service.KindInvalidPowerValue, http.StatusInternalServerError),
		Entry(nil, service.KindUnknown, http.StatusInternalServerError),
	)

	It("reports unclassified method lookup failures as bad requests", func() {
		Expect(handlers.StatusFor(service.SurfaceMethod, service.KindUnknown)).To(Equal(http.StatusBadRequest))
	})
})
