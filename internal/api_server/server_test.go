package apiserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apiserver "github.com/envtest/energy-planner/internal/api_server"
	"github.com/envtest/energy-planner/internal/catalog"
	"github.com/envtest/energy-planner/internal/config"
	"github.com/envtest/energy-planner/internal/dataset"
	"github.com/envtest/energy-planner/internal/events"
	"github.com/envtest/energy-planner/internal/service"
	"github.com/envtest/energy-planner/pkg/requestid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("api server", Ordered, func() {
	var (
		ts  *httptest.Server
		cfg *config.Config
		srv *service.EnergyService
	)

	BeforeAll(func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "2-1_test.csv"),
			[]byte("Method,Initial Temp (°C),Output Power (W)\n\"2-1 : Test A\",-40,150\n"), 0o600)).To(Succeed())

		var err error
		cfg, err = config.Load()
		Expect(err).To(BeNil())
		cat, err := catalog.Default()
		Expect(err).To(BeNil())
		srv = service.NewEnergyService(cat, dataset.NewLoader(dataset.NewFileSource(dir)))

		ts = httptest.NewServer(apiserver.NewRouter(cfg, srv))
		DeferCleanup(ts.Close)
	})

	It("serves the test energy route", func() {
		resp, err := http.Post(ts.URL+"/api/calculate-test-energy/", "application/json",
			strings.NewReader(`{"method":"2-1: A","initialTemp":-40,"duration":2}`))
		Expect(err).To(BeNil())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get(requestid.Header)).ToNot(BeEmpty())

		var payload map[string]float64
		Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
		Expect(payload["energy_consumption_kwh"]).To(BeNumerically("==", 300))
	})

	It("echoes the caller's request id", func() {
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/calculate-test-energy/", strings.NewReader(`{"method":"x"}`))
		req.Header.Set(requestid.Header, "req-123")
		resp, err := http.DefaultClient.Do(req)
		Expect(err).To(BeNil())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(resp.Header.Get(requestid.Header)).To(Equal("req-123"))

		var payload map[string]any
		Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
		Expect(payload["request_id"]).To(Equal("req-123"))
	})

	DescribeTable("rejects non POST requests with 405",
		func(path string) {
			resp, err := http.Get(ts.URL + path)
			Expect(err).To(BeNil())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(ContainSubstring("Only POST allowed"))
		},
		Entry("generic surface", "/api/calculate-energy/"),
		Entry("test surface", "/api/calculate-test-energy/"),
	)

	It("answers health checks", func() {
		resp, err := http.Get(ts.URL + "/health")
		Expect(err).To(BeNil())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("builds the router twice without registering metrics twice", func() {
		Expect(func() { apiserver.NewRouter(cfg, srv) }).ToNot(Panic())
	})

	It("shuts down when the context ends", func() {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(BeNil())
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- apiserver.New(cfg, srv, listener).Run(ctx) }()

		Eventually(func() error {
			resp, err := http.Get("http://" + listener.Addr().String() + "/health")
			if err == nil {
				resp.Body.Close()
			}
			return err
		}, 2*time.Second, 50*time.Millisecond).Should(Succeed())

		cancel()
		Eventually(done, 10*time.Second).Should(Receive(BeNil()))
	})

	It("drains in-flight lookups before returning", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "2-1_test.csv"),
			[]byte("Method,Initial Temp (°C),Output Power (W)\n\"2-1 : Test A\",-40,150\n"), 0o600)).To(Succeed())
		cat, err := catalog.Default()
		Expect(err).To(BeNil())

		loader := &slowLoader{delegate: dataset.NewLoader(dataset.NewFileSource(dir)), entered: make(chan struct{}), delay: 300 * time.Millisecond}
		audit := &countingWriter{}
		slowSrv := service.NewEnergyService(cat, loader, service.WithEventPublisher(audit))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(BeNil())
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- apiserver.New(cfg, slowSrv, listener).Run(ctx) }()

		status := make(chan int, 1)
		go func() {
			defer GinkgoRecover()
			Eventually(func() error {
				resp, err := http.Post("http://"+listener.Addr().String()+"/api/calculate-test-energy/", "application/json",
					strings.NewReader(`{"method":"2-1: A","initialTemp":-40,"duration":2}`))
				if err != nil {
					return err
				}
				resp.Body.Close()
				status <- resp.StatusCode
				return nil
			}, 2*time.Second, 50*time.Millisecond).Should(Succeed())
		}()

		Eventually(loader.entered, 2*time.Second).Should(BeClosed())
		cancel()
		Eventually(done, 10*time.Second).Should(Receive(BeNil()))
		Expect(audit.Count()).To(Equal(1))
		Eventually(status, 2*time.Second).Should(Receive(Equal(http.StatusOK)))
	})

	It("serves metrics", func() {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(BeNil())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = apiserver.NewMetricServer(listener.Addr().String(), listener, "info").Run(ctx) }()

		Eventually(func() (string, error) {
			resp, err := http.Get("http://" + listener.Addr().String() + "/metrics")
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			b, err := io.ReadAll(resp.Body)
			return string(b), err
		}, 2*time.Second, 50*time.Millisecond).Should(ContainSubstring("energy_planner_lookups_total"))
	})
})

type slowLoader struct {
	delegate dataset.TableLoader
	entered  chan struct{}
	once     sync.Once
	delay    time.Duration
}

func (l *slowLoader) Load(ctx context.Context, name string) (*dataset.Table, error) {
	l.once.Do(func() { close(l.entered) })
	time.Sleep(l.delay)
	return l.delegate.Load(ctx, name)
}

type countingWriter struct {
	mu    sync.Mutex
	count int
}

func (w *countingWriter) Publish(_ context.Context, _ events.LookupEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.count++
	return nil
}

func (w *countingWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
