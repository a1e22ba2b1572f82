// ABOUTME: Streamable HTTP front end: routes /mcp requests to per-session transports
// ABOUTME: New sessions start only from an initialize request; unknown ids get JSON-RPC or text 400s

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	pilog "github.com/mauromedda/api-tryit-go/internal/log"
)

// Endpoint is the path every protocol request is served on.
const Endpoint = "/mcp"

// maxBodyBytes caps a single POST body.
const maxBodyBytes = 4 << 20

// FrontEnd is the HTTP handler in front of the protocol server.
type FrontEnd struct {
	server   *mcp.Server
	sessions *Sessions
	base     context.Context
	router   chi.Router
}

// FrontEndOption configures a FrontEnd.
type FrontEndOption func(*FrontEnd)

// WithBaseContext sets the context sessions run under. Canceling it closes
// every live session and refuses new ones. It defaults to context.Background.
func WithBaseContext(ctx context.Context) FrontEndOption {
	return func(f *FrontEnd) { f.base = ctx }
}

// NewFrontEnd wires server behind an HTTP router. Sessions are tracked in
// sessions, which the caller closes on shutdown.
func NewFrontEnd(server *mcp.Server, sessions *Sessions, opts ...FrontEndOption) *FrontEnd {
	f := &FrontEnd{server: server, sessions: sessions, base: context.Background()}
	for _, o := range opts {
		o(f)
	}
	context.AfterFunc(f.base, func() { _ = f.sessions.CloseAll() })

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogging)
	r.Use(recoverJSON)
	r.Post(Endpoint, f.handlePost)
	r.Get(Endpoint, f.handleStream)
	r.Delete(Endpoint, f.handleDelete)
	r.Get("/healthz", f.handleHealth)
	f.router = r
	return f
}

// ServeHTTP implements http.Handler.
func (f *FrontEnd) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.router.ServeHTTP(w, r)
}

// Sessions returns the session table.
func (f *FrontEnd) Sessions() *Sessions { return f.sessions }

func (f *FrontEnd) handlePost(w http.ResponseWriter, r *http.Request) {
	if sess, ok := f.sessions.get(r.Header.Get(HeaderSessionID)); ok {
		sess.transport.ServeHTTP(w, r)
		return
	}

	if r.Header.Get(HeaderSessionID) != "" {
		writeRPCError(w, http.StatusBadRequest, CodeServerError, msgNoValidSession)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		pilog.Warn("mcp: reading request body: %v", err)
		writeRPCError(w, http.StatusBadRequest, CodeServerError, msgNoValidSession)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if !isInitializeRequest(body) {
		writeRPCError(w, http.StatusBadRequest, CodeServerError, msgNoValidSession)
		return
	}

	sess, err := f.open()
	if err != nil {
		pilog.Error("mcp: opening session: %v", err)
		writeRPCError(w, http.StatusInternalServerError, CodeInternalError, msgInternalError)
		return
	}
	w.Header().Set(HeaderSessionID, sess.id)
	sess.transport.ServeHTTP(w, r)
}

// open creates a transport with a fresh id, connects it to the server
// exactly once and registers it. The entry is removed when the session ends.
func (f *FrontEnd) open() (*session, error) {
	if err := f.base.Err(); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	transport := &mcp.StreamableServerTransport{SessionID: id.String()}
	ss, err := f.server.Connect(f.base, transport, nil)
	if err != nil {
		return nil, err
	}

	sess := &session{id: id.String(), transport: transport, conn: ss}
	if err := f.sessions.add(sess); err != nil {
		_ = ss.Close()
		return nil, err
	}
	go func() {
		_ = ss.Wait()
		f.sessions.remove(sess.id)
	}()
	// Lost a race with shutdown.
	if err := f.base.Err(); err != nil {
		_ = f.sessions.Close(sess.id)
		return nil, err
	}
	return sess, nil
}

func (f *FrontEnd) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := f.sessions.get(r.Header.Get(HeaderSessionID))
	if !ok {
		writeText(w, http.StatusBadRequest, msgInvalidSession)
		return
	}
	sess.transport.ServeHTTP(w, r)
}

func (f *FrontEnd) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(HeaderSessionID)
	if _, ok := f.sessions.get(id); !ok {
		writeText(w, http.StatusBadRequest, msgInvalidSession)
		return
	}
	if err := f.sessions.Close(id); err != nil {
		pilog.Error("mcp: %v", err)
		writeText(w, http.StatusInternalServerError, msgTerminationFailure)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *FrontEnd) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("X-Active-Sessions", strconv.Itoa(f.sessions.Len()))
	writeText(w, http.StatusOK, "ok")
}

// isInitializeRequest reports whether body is an initialize request, alone
// or inside a batch.
func isInitializeRequest(body []byte) bool {
	type methodOnly struct {
		Method string `json:"method"`
	}
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var batch []methodOnly
		if json.Unmarshal(body, &batch) != nil {
			return false
		}
		for _, p := range batch {
			if p.Method == "initialize" {
				return true
			}
		}
		return false
	}
	var p methodOnly
	return json.Unmarshal(body, &p) == nil && p.Method == "initialize"
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		pilog.Debug("http: %s %s %d %s session=%q remote=%s",
			r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond),
			r.Header.Get(HeaderSessionID), r.RemoteAddr)
	})
}

// recoverJSON turns a handler panic into a JSON-RPC internal error, unless
// the response has already started.
func recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			pilog.Error("mcp: handling %s %s: %v", r.Method, r.URL.Path, rec)
			if ww.Status() == 0 {
				writeRPCError(ww, http.StatusInternalServerError, CodeInternalError, msgInternalError)
			}
		}()
		next.ServeHTTP(ww, r)
	})
}
