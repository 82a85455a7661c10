// Package cache implements the shared handle-cache daemon and its client.
// The daemon keeps derived store keys warm across process invocations for
// a bounded TTL, so repeated sync runs do not re-prompt for passwords. It
// listens on an owner-only unix socket; communication is gRPC with a JSON
// codec.
package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"time"

	"google.golang.org/grpc"

	"github.com/jrabinow/kpsync/internal/common"
	"github.com/jrabinow/kpsync/internal/logging"
)

// sweepInterval is how often the daemon prunes expired keys in the
// background; lookups also prune lazily.
const sweepInterval = 30 * time.Second

type cachedKey struct {
	key       []byte
	expiresAt time.Time
}

// Server is the daemon: a TTL-bounded table of derived store keys indexed
// by store file path.
type Server struct {
	socketPath string
	log        logging.Logger

	mu   sync.Mutex
	keys map[string]cachedKey

	// now is a test seam for TTL expiry.
	now func() time.Time
}

func NewServer(socketPath string, log logging.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		log:        log.With("module", "cache_server"),
		keys:       make(map[string]cachedKey),
		now:        time.Now,
	}
}

// Lookup returns the cached key for a store path, expiring it lazily.
func (s *Server) Lookup(ctx context.Context, req *LookupRequest) (*LookupResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ck, ok := s.keys[req.Path]
	if !ok {
		return &LookupResponse{Found: false}, nil
	}
	if !s.now().Before(ck.expiresAt) {
		s.evictLocked(ctx, req.Path, ck)
		return &LookupResponse{Found: false}, nil
	}

	s.log.Debug(ctx, "cache hit", "path", req.Path)
	return &LookupResponse{Found: true, Key: ck.key}, nil
}

// Register stores a derived key under the given TTL, replacing any
// previous registration for the same path.
func (s *Server) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	ttl := time.Duration(req.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = common.DefaultCacheTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.keys[req.Path]; ok {
		common.WipeByteArray(old.key)
	}
	s.keys[req.Path] = cachedKey{
		key:       append([]byte(nil), req.Key...),
		expiresAt: s.now().Add(ttl),
	}

	s.log.Info(ctx, "registered store key", "path", req.Path, "ttl", ttl)
	return &RegisterResponse{}, nil
}

func (s *Server) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (s *Server) evictLocked(ctx context.Context, path string, ck cachedKey) {
	common.WipeByteArray(ck.key)
	delete(s.keys, path)
	s.log.Info(ctx, "evicted expired store key", "path", path)
}

func (s *Server) sweep(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, ck := range s.keys {
		if !s.now().Before(ck.expiresAt) {
			s.evictLocked(ctx, path, ck)
		}
	}
}

// Run listens on the unix socket and serves until ctx is cancelled. Any
// stale socket from a previous daemon is replaced.
func (s *Server) Run(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	listen, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listen.Close()
		return err
	}

	srv := grpc.NewServer(grpc.ForceServerCodec(jsonCodec{}))
	srv.RegisterService(&serviceDesc, s)

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "stopping handle cache daemon...")
		srv.GracefulStop()
	}()

	s.log.Info(ctx, "handle cache daemon listening", "socket", s.socketPath)
	return srv.Serve(listen)
}
