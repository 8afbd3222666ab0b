package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/spa-booking/internal/auth"
	"github.com/hackgods/spa-booking/internal/catalog"
	"github.com/hackgods/spa-booking/internal/config"
	"github.com/hackgods/spa-booking/internal/logging"
)

type SimConfig struct {
	APIBaseURL  string
	Duration    time.Duration
	Workers     int
	Users       int
	DaysAhead   int
	CancelRatio float64
	AdminRatio  float64
	ReadRatio   float64
	// RaceWorkers > 0 runs the single-slot race instead of the mixed load.
	RaceWorkers int
	JWTSecret   string
}

type bookable struct {
	ServiceID  uuid.UUID
	DurationID uuid.UUID
}

// DataPool is what the workers draw requests from.
type DataPool struct {
	Bookables []bookable
	Masseurs  []uuid.UUID
	Slots     []string
	Dates     []string

	mu           sync.RWMutex
	appointments []createdAppointment
}

type createdAppointment struct {
	ID    uuid.UUID
	Token string
}

func (dp *DataPool) AddAppointment(a createdAppointment) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, a)
}

func (dp *DataPool) RandomAppointment(rng *rand.Rand) (createdAppointment, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return createdAppointment{}, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95, worst time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0
	}

	latencies := append([]time.Duration(nil), om.Latencies...)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	n := len(latencies)
	return sum / time.Duration(n), latencies[n*50/100], latencies[min(n*95/100, n-1)], latencies[n-1]
}

type Metrics struct {
	Booking OperationMetrics
	Confirm OperationMetrics
	Cancel  OperationMetrics
	Read    OperationMetrics
	List    OperationMetrics
}

type Simulator struct {
	config     SimConfig
	pool       *DataPool
	client     *http.Client
	metrics    Metrics
	logger     *zap.Logger
	userTokens []string
	adminToken string
}

func main() {
	cfg := loadConfig()

	logger, err := logging.New(getEnv("APP_ENV", "dev"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := validateConfig(cfg); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
	if err := sim.mintTokens(); err != nil {
		logger.Fatal("mint tokens", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sim.pool, err = sim.loadDataPool(ctx)
	if err != nil {
		logger.Fatal("load data pool", zap.Error(err))
	}
	logger.Info("data pool loaded",
		zap.Int("bookables", len(sim.pool.Bookables)),
		zap.Int("masseurs", len(sim.pool.Masseurs)),
		zap.Int("slots_per_day", len(sim.pool.Slots)),
	)

	if cfg.RaceWorkers > 0 {
		if !sim.RunRace(context.Background()) {
			os.Exit(1)
		}
		return
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	secret := os.Getenv("JWT_SECRET")
	if base, err := config.Load(); err == nil {
		secret = base.JWTSecret
	}

	cfg := SimConfig{
		APIBaseURL:  strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:    getDuration("SIM_DURATION", 30*time.Second),
		Workers:     getInt("SIM_WORKERS", 10),
		Users:       getInt("SIM_USERS", 50),
		DaysAhead:   getInt("SIM_DAYS_AHEAD", 14),
		CancelRatio: getFloat("SIM_CANCEL_RATIO", 0.15),
		AdminRatio:  getFloat("SIM_ADMIN_RATIO", 0.15),
		ReadRatio:   getFloat("SIM_READ_RATIO", 0.3),
		RaceWorkers: getInt("SIM_RACE_WORKERS", 0),
		JWTSecret:   secret,
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Users <= 0 {
		return fmt.Errorf("SIM_USERS must be > 0")
	}
	if cfg.CancelRatio+cfg.AdminRatio+cfg.ReadRatio >= 1 {
		return fmt.Errorf("cancel, admin and read ratios must leave room for bookings")
	}
	return nil
}

func (s *Simulator) mintTokens() error {
	users := max(s.config.Users, s.config.RaceWorkers)
	s.userTokens = make([]string, users)
	for i := range users {
		tok, err := auth.Sign(s.config.JWTSecret, auth.Principal{ID: fmt.Sprintf("sim-user-%d", i), Role: auth.RoleUser}, 2*time.Hour)
		if err != nil {
			return err
		}
		s.userTokens[i] = tok
	}

	tok, err := auth.Sign(s.config.JWTSecret, auth.Principal{ID: "sim-admin", Role: auth.RoleAdmin}, 2*time.Hour)
	if err != nil {
		return err
	}
	s.adminToken = tok
	return nil
}

// loadDataPool reads the public catalog and the slot grid of the first masseur.
func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	dp := &DataPool{}

	var services []catalog.ServiceWithDurations
	if err := s.getJSON(ctx, "/services", &services); err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	for _, svc := range services {
		for _, d := range svc.Durations {
			dp.Bookables = append(dp.Bookables, bookable{ServiceID: svc.ID, DurationID: d.ID})
		}
	}

	var masseurs []catalog.Masseur
	if err := s.getJSON(ctx, "/masseurs", &masseurs); err != nil {
		return nil, fmt.Errorf("load masseurs: %w", err)
	}
	for _, m := range masseurs {
		dp.Masseurs = append(dp.Masseurs, m.ID)
	}

	if len(dp.Bookables) == 0 {
		return nil, fmt.Errorf("no bookable services, run cmd/seed first")
	}
	if len(dp.Masseurs) == 0 {
		return nil, fmt.Errorf("no masseurs, run cmd/seed first")
	}

	// start tomorrow so no slot is already in the past
	today := time.Now()
	for d := 1; d <= s.config.DaysAhead; d++ {
		dp.Dates = append(dp.Dates, today.AddDate(0, 0, d).Format(catalog.DateLayout))
	}

	var grid struct {
		Slots []struct {
			Time string `json:"time"`
		} `json:"slots"`
	}
	path := fmt.Sprintf("/slots?masseurId=%s&date=%s", dp.Masseurs[0], dp.Dates[0])
	if err := s.getJSON(ctx, path, &grid); err != nil {
		return nil, fmt.Errorf("load slot grid: %w", err)
	}
	for _, sl := range grid.Slots {
		dp.Slots = append(dp.Slots, sl.Time)
	}
	if len(dp.Slots) == 0 {
		return nil, fmt.Errorf("empty slot grid")
	}

	return dp, nil
}

// RunRace sends RaceWorkers simultaneous bookings for one slot. Exactly one
// must succeed and every other attempt must be rejected with 409.
func (s *Simulator) RunRace(ctx context.Context) bool {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := s.pool.Bookables[rng.Intn(len(s.pool.Bookables))]
	body := map[string]string{
		"serviceId":         b.ServiceID.String(),
		"serviceDurationId": b.DurationID.String(),
		"masseurId":         s.pool.Masseurs[rng.Intn(len(s.pool.Masseurs))].String(),
		"date":              s.pool.Dates[len(s.pool.Dates)-1],
		"time":              s.pool.Slots[rng.Intn(len(s.pool.Slots))],
	}
	s.logger.Info("racing for one slot",
		zap.Int("workers", s.config.RaceWorkers),
		zap.String("masseur", body["masseurId"]),
		zap.String("date", body["date"]),
		zap.String("time", body["time"]),
	)

	var (
		wg      sync.WaitGroup
		metrics OperationMetrics
	)
	start := make(chan struct{})
	for i := range s.config.RaceWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			began := time.Now()
			status, _, err := s.send(ctx, http.MethodPost, "/appointments", s.userTokens[i], body)
			if err != nil {
				status = 0
			}
			metrics.Record(time.Since(began), status)
		}()
	}
	close(start)
	wg.Wait()

	printOperationReport("Race", &metrics)
	ok := metrics.Success == 1 && metrics.Conflict == int64(s.config.RaceWorkers-1)
	if ok {
		s.logger.Info("race passed: exactly one booking won")
	} else {
		s.logger.Error("race failed",
			zap.Int64("success", metrics.Success),
			zap.Int64("conflict", metrics.Conflict),
			zap.Int64("error", metrics.Error),
		)
	}
	return ok
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info("starting simulation",
		zap.Duration("duration", s.config.Duration),
		zap.Int("workers", s.config.Workers),
	)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r := rng.Float64()
		switch {
		case r < s.config.ReadRatio:
			if rng.Intn(2) == 0 {
				s.doRead(ctx, rng)
			} else {
				s.doList(ctx, rng)
			}
		case r < s.config.ReadRatio+s.config.AdminRatio:
			s.doConfirm(ctx, rng)
		case r < s.config.ReadRatio+s.config.AdminRatio+s.config.CancelRatio:
			s.doCancel(ctx, rng)
		default:
			s.doBooking(ctx, rng)
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	b := s.pool.Bookables[rng.Intn(len(s.pool.Bookables))]
	tok := s.userTokens[rng.Intn(s.config.Users)]
	body := map[string]string{
		"serviceId":         b.ServiceID.String(),
		"serviceDurationId": b.DurationID.String(),
		"masseurId":         s.pool.Masseurs[rng.Intn(len(s.pool.Masseurs))].String(),
		"date":              s.pool.Dates[rng.Intn(len(s.pool.Dates))],
		"time":              s.pool.Slots[rng.Intn(len(s.pool.Slots))],
	}

	start := time.Now()
	status, respBody, err := s.send(ctx, http.MethodPost, "/appointments", tok, body)
	if err != nil {
		return
	}
	s.metrics.Booking.Record(time.Since(start), status)

	if status == http.StatusCreated {
		var created struct {
			ID uuid.UUID `json:"id"`
		}
		if json.Unmarshal(respBody, &created) == nil && created.ID != uuid.Nil {
			s.pool.AddAppointment(createdAppointment{ID: created.ID, Token: tok})
		}
	}
}

func (s *Simulator) doConfirm(ctx context.Context, rng *rand.Rand) {
	appt, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}

	start := time.Now()
	status, _, err := s.send(ctx, http.MethodPatch, "/appointments/"+appt.ID.String(), s.adminToken,
		map[string]string{"status": "CONFIRMED"})
	if err != nil {
		return
	}
	s.metrics.Confirm.Record(time.Since(start), status)
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	appt, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}

	start := time.Now()
	status, _, err := s.send(ctx, http.MethodPost, "/appointments/"+appt.ID.String()+"/cancel", appt.Token, nil)
	if err != nil {
		return
	}
	s.metrics.Cancel.Record(time.Since(start), status)
}

func (s *Simulator) doRead(ctx context.Context, rng *rand.Rand) {
	appt, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}

	start := time.Now()
	status, _, err := s.send(ctx, http.MethodGet, "/appointments/"+appt.ID.String(), appt.Token, nil)
	if err != nil {
		return
	}
	s.metrics.Read.Record(time.Since(start), status)
}

func (s *Simulator) doList(ctx context.Context, rng *rand.Rand) {
	tok := s.userTokens[rng.Intn(s.config.Users)]
	path := "/appointments?limit=20"
	if rng.Intn(2) == 0 {
		path += "&date=" + s.pool.Dates[rng.Intn(len(s.pool.Dates))]
	}

	start := time.Now()
	status, _, err := s.send(ctx, http.MethodGet, path, tok, nil)
	if err != nil {
		return
	}
	s.metrics.List.Record(time.Since(start), status)
}

func (s *Simulator) send(ctx context.Context, method, path, token string, body any) (int, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp.StatusCode, out.Bytes(), nil
}

func (s *Simulator) getJSON(ctx context.Context, path string, dst any) error {
	status, body, err := s.send(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", path, status, body)
	}
	return json.Unmarshal(body, dst)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Confirm (admin)", &s.metrics.Confirm)
	printOperationReport("Cancel (owner)", &s.metrics.Cancel)
	printOperationReport("Read by ID", &s.metrics.Read)
	printOperationReport("List", &s.metrics.List)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, p50, p95, worst := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s p50=%s p95=%s max=%s\n",
		avg.Round(time.Millisecond), p50.Round(time.Millisecond),
		p95.Round(time.Millisecond), worst.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
