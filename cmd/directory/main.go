// Command directory runs the bootstrap and liveness service a dishmap
// fleet uses to agree on its fixed membership before any locality
// starts serving distributed-map traffic.
//
// Every locality registers its public address with the directory
// service exactly once, at startup. Once the configured locality
// count has registered, the directory service assigns each of them a
// dense ID and broadcasts the finalized member list back to every
// locality. From then on localities talk to each other directly
// through internal/rpc; the directory service's remaining job is
// periodic liveness probing so operators can see a locality go dark.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/fernglade/dishmap/internal/cluster"
	"github.com/fernglade/dishmap/internal/config"
	"github.com/fernglade/dishmap/internal/locality"
)

func main() {
	var (
		listen        = pflag.String("listen", ":9000", "address the directory service listens on")
		localityCount = pflag.Int("locality-count", 0, "number of localities this run expects to register (required)")
		configPath    = pflag.String("config", "", "optional JSONC bootstrap config file")
		healthPeriod  = pflag.Duration("health-period", 5*time.Second, "how often to probe registered localities")
	)
	pflag.Parse()

	cfg, err := config.LoadFile(*configPath, config.Default())
	if err != nil {
		log.Fatalf("directory: %v", err)
	}
	if *localityCount <= 0 && cfg.LocalityCount > 0 {
		*localityCount = cfg.LocalityCount
	}
	if *localityCount <= 0 {
		log.Fatal("directory: --locality-count must be positive")
	}
	if !pflag.CommandLine.Changed("listen") && cfg.Listen != "" {
		*listen = cfg.Listen
	}

	srv := newDirectoryServer(*localityCount, *healthPeriod)

	mux := http.NewServeMux()
	mux.HandleFunc("/register", srv.handleRegister)
	mux.HandleFunc("/members", srv.handleMembers)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	httpSrv := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("directory listening on %s, waiting for %d localities", *listen, *localityCount)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("directory: listen: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go srv.health.Start(ctx, srv.readyMembers)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cancel()
	srv.health.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	log.Println("directory stopped")
}

type directoryServer struct {
	mu     sync.RWMutex
	table  *locality.RegistrationTable
	ready  bool
	health *locality.HealthMonitor
}

func newDirectoryServer(want int, healthPeriod time.Duration) *directoryServer {
	return &directoryServer{
		table:  locality.NewRegistrationTable(want),
		health: locality.NewHealthMonitor(healthPeriod),
	}
}

func (s *directoryServer) readyMembers() []locality.Locality {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil
	}
	return s.table.Snapshot()
}

func (s *directoryServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req locality.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Addr == "" {
		http.Error(w, "missing addr", http.StatusBadRequest)
		return
	}

	id, allRegistered, err := s.table.Register(req.Addr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if allRegistered {
		s.mu.Lock()
		first := !s.ready
		s.ready = true
		members := s.table.Snapshot()
		s.mu.Unlock()
		if first {
			log.Printf("directory: all localities registered, fleet is ready")
			go broadcastDirectory(members)
		}
	}

	encodeJSON(w, locality.RegisterResponse{ID: id, Ready: allRegistered})
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func encodeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *directoryServer) handleMembers(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()
	if !ready {
		http.Error(w, "fleet not finalized yet", http.StatusServiceUnavailable)
		return
	}
	encodeJSON(w, locality.DirectoryPayload{Members: s.table.Snapshot()})
}

// broadcastDirectory pushes the finalized member list to every
// registered locality's /directory endpoint. It is invoked once,
// right after the last registration completes.
func broadcastDirectory(members []locality.Locality) {
	payload := locality.DirectoryPayload{Members: members}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, m := range members {
		if err := cluster.PostJSON(ctx, m.Addr+"/directory", payload, nil); err != nil {
			log.Printf("directory: failed to push member list to locality %d (%s): %v", m.ID, m.Addr, err)
		}
	}
}
