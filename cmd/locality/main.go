// Command locality runs one node of a dishmap fleet: it registers
// with the directory service, waits to learn the finalized member
// list, then serves distributed-map RPC traffic for whatever maps the
// process creates.
//
// This binary only wires up the bootstrap handshake and the RPC
// listener; the actual internal/dmap.Map[K,V] instances a deployment
// needs are created by whatever embeds this process's package, since
// K and V are chosen at compile time and cannot be selected from the
// command line the way SPEC_FULL's ambient config layer can.
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
	"github.com/fernglade/dishmap/internal/registry"
	"github.com/fernglade/dishmap/internal/rpc"
)

func main() {
	var (
		listen        = pflag.String("listen", ":9001", "local address this process's RPC server binds")
		publicAddr    = pflag.String("public-addr", "", "address other localities use to reach this process (required)")
		directoryAddr = pflag.String("directory-addr", "", "base URL of the directory service (required)")
		configPath    = pflag.String("config", "", "optional JSONC bootstrap config file")
	)
	pflag.Parse()

	base := config.Default()
	base.Listen = *listen
	cfg, err := config.LoadFile(*configPath, base)
	if err != nil {
		log.Fatalf("locality: %v", err)
	}
	cfg = config.LoadEnv(cfg)
	if !pflag.CommandLine.Changed("listen") && cfg.Listen != "" {
		*listen = cfg.Listen
	}
	if *publicAddr != "" {
		cfg.PublicAddr = *publicAddr
	}
	if *directoryAddr != "" {
		cfg.DirectoryAddr = *directoryAddr
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("locality: %v", err)
	}
	*publicAddr, *directoryAddr = cfg.PublicAddr, cfg.DirectoryAddr

	reg := registry.New()
	rt := rpc.New(nil, reg)
	waiter := newDirectoryWaiter()

	mux := http.NewServeMux()
	mux.Handle("/rpc/", rt)
	mux.HandleFunc("/directory", waiter.handleDirectory)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	httpSrv := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("locality listening on %s (public %s)", *listen, *publicAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("locality: listen: %v", err)
		}
	}()

	selfID := registerWithDirectory(context.Background(), *directoryAddr, *publicAddr)
	members := waiter.wait()
	dir := locality.NewDirectory(selfID, members)
	rt.SetDirectory(dir)
	log.Printf("locality %d joined a fleet of %d, directory finalized", selfID, dir.N())

	// reg backs rt's inbound dispatch (Runtime.ServeHTTP consults it via
	// registry.Registry.Lookup) and is also the registry every
	// internal/dmap.Create call on this process must share, so a
	// distributed map created here is actually reachable over RPC.

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	log.Println("locality stopped")
}

// registerWithDirectory registers with the directory service, via
// cluster.PostJSONRetry, to absorb the directory service's own startup
// delay: the two processes are typically launched together, so the
// first several attempts racing an unstarted listener are expected,
// not exceptional.
func registerWithDirectory(ctx context.Context, directoryAddr, publicAddr string) int {
	var resp locality.RegisterResponse
	req := locality.RegisterRequest{Addr: publicAddr}
	err := cluster.PostJSONRetry(ctx, directoryAddr+"/register", req, &resp, 10, 400*time.Millisecond,
		func(attempt int, err error) { log.Printf("locality: register retry %d: %v", attempt, err) })
	if err != nil {
		log.Fatalf("locality: failed to register with directory: %v", err)
	}
	return resp.ID
}

// directoryWaiter blocks main until the directory service's finalized
// member list arrives on POST /directory.
type directoryWaiter struct {
	mu      sync.Mutex
	cond    *sync.Cond
	members []locality.Locality
	got     bool
}

func newDirectoryWaiter() *directoryWaiter {
	w := &directoryWaiter{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *directoryWaiter) handleDirectory(wr http.ResponseWriter, r *http.Request) {
	var payload locality.DirectoryPayload
	if err := decodeJSON(r, &payload); err != nil {
		http.Error(wr, "bad json", http.StatusBadRequest)
		return
	}
	w.mu.Lock()
	w.members = payload.Members
	w.got = true
	w.cond.Broadcast()
	w.mu.Unlock()
	wr.WriteHeader(http.StatusNoContent)
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func (w *directoryWaiter) wait() []locality.Locality {
	w.mu.Lock()
	defer w.mu.Unlock()
	for !w.got {
		w.cond.Wait()
	}
	return w.members
}
