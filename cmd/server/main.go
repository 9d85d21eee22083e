// Command server is the host-owned HTTP tool surface: a thin JSON-in,
// JSON-out adapter over package ldc.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"

	ldc "github.com/ldcrun/ldc"
	"github.com/ldcrun/ldc/internal/document"
)

var allowedOrigins = []string{
	"http://localhost:5173",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	optionsFile := flag.String("options", "", "path to a YAML options file")
	flag.Parse()

	var e *ldc.LDC
	if *optionsFile != "" {
		var err error
		e, err = ldc.LoadOptionsFile(*optionsFile)
		if err != nil {
			fmt.Printf("invalid options file: %v\n", err)
			return
		}
	} else {
		e = ldc.New()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/evaluate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var body struct {
			Document json.RawMessage `json:"document"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(body.Document) == 0 {
			writeError(w, http.StatusBadRequest, "missing field: document")
			return
		}

		doc, err := document.ParseJSONBytes(body.Document)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid document: %v", err))
			return
		}

		res, err := e.Evaluate(r.Context(), doc)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		sig, err := e.Sign(res)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		b, err := ldc.MarshalResultJSON(res, sig)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Trace-Id", res.TraceID)
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	})

	addr := fmt.Sprintf(":%d", *port)
	fmt.Printf("ldc server listening on %s\n", addr)
	if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
		fmt.Fprintf(flag.CommandLine.Output(), "server error: %v\n", err)
	}
}
