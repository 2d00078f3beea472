// Package remotetest provides an in-memory record tree for tests.
package remotetest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Memory is a path-addressed JSON tree with the same read semantics as the
// hosted store: reading a collection returns an object of its children.
type Memory struct {
	mu       sync.Mutex
	nodes    map[string]json.RawMessage
	failures map[string]error
	calls    []string
}

func NewMemory() *Memory {
	return &Memory{
		nodes:    make(map[string]json.RawMessage),
		failures: make(map[string]error),
	}
}

// FailOn makes every call of method on path return err until cleared with a
// nil err.
func (m *Memory) FailOn(method, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := method + " " + path
	if err == nil {
		delete(m.failures, key)
		return
	}
	m.failures[key] = err
}

// Seed stores v at path without recording a call.
func (m *Memory) Seed(path string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[strings.Trim(path, "/")] = b
}

func (m *Memory) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.nodes[strings.Trim(path, "/")]
	return ok
}

// Decode reads the record at path into out. It reports false when absent.
func (m *Memory) Decode(path string, out any) bool {
	m.mu.Lock()
	raw, ok := m.nodes[strings.Trim(path, "/")]
	m.mu.Unlock()

	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}

	return true
}

// Children lists the record keys directly below path.
func (m *Memory) Children(path string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := strings.Trim(path, "/") + "/"
	var out []string
	for k := range m.nodes {
		if rest, ok := strings.CutPrefix(k, prefix); ok && !strings.Contains(rest, "/") {
			out = append(out, rest)
		}
	}

	return out
}

// Calls returns the recorded "METHOD path" log.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.calls...)
}

func (m *Memory) record(method, path string) error {
	m.calls = append(m.calls, method+" "+path)
	return m.failures[method+" "+path]
}

func (m *Memory) read(path string) (json.RawMessage, bool) {
	if raw, ok := m.nodes[path]; ok {
		return raw, true
	}

	prefix := path + "/"
	children := make(map[string]json.RawMessage)
	for k, v := range m.nodes {
		if rest, ok := strings.CutPrefix(k, prefix); ok && !strings.Contains(rest, "/") {
			children[rest] = v
		}
	}

	if len(children) == 0 {
		return nil, false
	}

	b, err := json.Marshal(children)
	if err != nil {
		panic(err)
	}

	return b, true
}

func (m *Memory) Get(ctx context.Context, path string, out any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	path = strings.Trim(path, "/")
	if err := m.record(http.MethodGet, path); err != nil {
		m.mu.Unlock()
		return false, err
	}
	raw, ok := m.read(path)
	m.mu.Unlock()

	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(raw, out)
}

func (m *Memory) Put(ctx context.Context, path string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := json.Marshal(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	path = strings.Trim(path, "/")
	if err := m.record(http.MethodPut, path); err != nil {
		return err
	}
	m.nodes[path] = b

	return nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	path = strings.Trim(path, "/")
	if err := m.record(http.MethodDelete, path); err != nil {
		return err
	}

	delete(m.nodes, path)
	prefix := path + "/"
	for k := range m.nodes {
		if strings.HasPrefix(k, prefix) {
			delete(m.nodes, k)
		}
	}

	return nil
}

// Handler serves the tree over the REST protocol ({path}.json).
func (m *Memory) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(strings.Trim(r.URL.EscapedPath(), "/"), ".json")

		switch r.Method {
		case http.MethodGet:
			var raw json.RawMessage
			found, err := m.Get(r.Context(), path, &raw)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if !found {
				_, _ = w.Write([]byte("null"))
				return
			}
			_, _ = w.Write(raw)
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if err := m.Put(r.Context(), path, json.RawMessage(body)); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			_, _ = w.Write(body)
		case http.MethodDelete:
			if err := m.Delete(r.Context(), path); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte("null"))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}
