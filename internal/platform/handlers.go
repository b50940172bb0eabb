package platform

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jacobpanov/compiler-explorer/internal/compilers"
	"github.com/jacobpanov/compiler-explorer/internal/shortener"
	"github.com/jacobpanov/compiler-explorer/internal/state"
)

// Health returns 200 OK.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ListLanguages returns the language registry.
func ListLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, compilers.Default.Languages())
}

// ListCompilers returns every compiler of every language.
func ListCompilers(w http.ResponseWriter, r *http.Request) {
	var out []compilers.Compiler
	for _, lang := range compilers.Default.Languages() {
		out = append(out, compilers.Default.CompilersFor(lang.ID)...)
	}
	writeJSON(w, out)
}

// ListCompilersForLanguage returns the compilers of one language.
func ListCompilersForLanguage(w http.ResponseWriter, r *http.Request) {
	langID := chi.URLParam(r, "lang")
	list := compilers.Default.CompilersFor(langID)
	if list == nil {
		http.Error(w, "unknown language", http.StatusNotFound)
		return
	}
	writeJSON(w, list)
}

// EncodeState serialises a posted session state into a URL fragment.
// The body is schema-validated before it reaches the codec.
func EncodeState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	if err := validateStateDocument(body); err != nil {
		http.Error(w, "invalid state: "+err.Error(), http.StatusBadRequest)
		return
	}

	var s state.SessionState
	if err := json.Unmarshal(body, &s); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	fragment, err := state.SerialiseState(&s)
	if err != nil {
		slog.Error("EncodeState: serialise failed", "err", err)
		http.Error(w, "serialise failed", http.StatusUnprocessableEntity)
		return
	}

	form := "uncompressed"
	if strings.HasPrefix(fragment, "(z:") {
		form = "compressed"
	}
	StateEncodesTotal.WithLabelValues(form).Inc()
	EncodedLength.Observe(float64(len(fragment)))

	writeJSON(w, map[string]any{
		"fragment": fragment,
		"length":   len(fragment),
		"form":     form,
	})
}

// fragmentRequest is the body of decode and shortener requests. The
// fragment travels in a JSON body rather than the URL path so no second
// layer of percent-decoding touches it.
type fragmentRequest struct {
	Fragment string `json:"fragment"`
}

// DecodeState decodes a URL fragment into the canonical session state,
// annotated with what the compiler registry knows about each referenced
// compiler id.
func DecodeState(w http.ResponseWriter, r *http.Request) {
	req, ok := readFragment(w, r)
	if !ok {
		return
	}

	s, err := state.DeserialiseState(req.Fragment)
	if err != nil {
		var perr *state.ProtocolError
		var derr *state.DecodeError
		switch {
		case errors.As(err, &perr):
			StateDecodesTotal.WithLabelValues("protocol_error").Inc()
			http.Error(w, perr.Error(), http.StatusBadRequest)
		case errors.As(err, &derr):
			StateDecodesTotal.WithLabelValues("decode_error").Inc()
			http.Error(w, derr.Error(), http.StatusBadRequest)
		default:
			StateDecodesTotal.WithLabelValues("error").Inc()
			http.Error(w, "decode failed", http.StatusBadRequest)
		}
		return
	}
	StateDecodesTotal.WithLabelValues("ok").Inc()

	type compilerRef struct {
		ID      string `json:"id"`
		Options string `json:"options"`
		Name    string `json:"name,omitempty"`
		Known   bool   `json:"known"`
	}
	var refs []compilerRef
	for _, cs := range s.Compilers() {
		ref := compilerRef{ID: cs.Compiler, Options: cs.Options}
		if c, ok := compilers.Default.Lookup(cs.Compiler); ok {
			ref.Name = c.Name
			ref.Known = true
		}
		refs = append(refs, ref)
	}

	writeJSON(w, map[string]any{
		"state":     s,
		"compilers": refs,
	})
}

// CreateShortLink stores a fragment under a short id. The fragment must
// decode cleanly; the shortener never stores a link that cannot be opened.
func CreateShortLink(links *shortener.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := readFragment(w, r)
		if !ok {
			return
		}
		if _, err := state.DeserialiseState(req.Fragment); err != nil {
			http.Error(w, "fragment does not decode: "+err.Error(), http.StatusBadRequest)
			return
		}

		id, err := links.Save(r.Context(), req.Fragment, SessionID(r))
		if err != nil {
			slog.Error("CreateShortLink: save failed", "err", err)
			http.Error(w, "store failed", http.StatusInternalServerError)
			return
		}
		ShortLinksCreated.Inc()
		writeJSON(w, map[string]string{
			"id":  id,
			"url": "/z/" + id,
		})
	}
}

// ResolveShortLink redirects a short link to the full-fragment URL.
func ResolveShortLink(links *shortener.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		fragment, err := links.Resolve(r.Context(), id)
		if err != nil {
			if errors.Is(err, shortener.ErrNotFound) {
				ShortLinksResolved.WithLabelValues("miss").Inc()
				http.Error(w, "unknown link", http.StatusNotFound)
				return
			}
			slog.Error("ResolveShortLink: lookup failed", "id", id, "err", err)
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
		ShortLinksResolved.WithLabelValues("hit").Inc()
		http.Redirect(w, r, "/#"+fragment, http.StatusFound)
	}
}

func readFragment(w http.ResponseWriter, r *http.Request) (fragmentRequest, bool) {
	var req fragmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return req, false
	}
	if req.Fragment == "" {
		http.Error(w, "missing fragment", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writeJSON failed", "err", err)
	}
}
