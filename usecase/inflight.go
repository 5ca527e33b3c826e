package usecase

import (
	"context"
	"sync"
)

// inflightEntry identifica una petición remota en curso. El token distingue
// la petición vigente de una ya reemplazada que todavía no terminó.
type inflightEntry struct {
	cancel context.CancelFunc
	token  uint64
}

// inflightRegistry mantiene como máximo una petición remota viva por clave:
// cuando llega una nueva con la misma clave, la anterior se cancela y pierde
// el derecho a escribir en caché.
type inflightRegistry struct {
	mu      sync.Mutex
	seq     uint64
	entries map[string]inflightEntry
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{entries: make(map[string]inflightEntry)}
}

// begin cancela cualquier petición previa para key y registra la nueva.
// Devuelve el contexto derivado bajo el que debe correr la petición y su
// token para el finish posterior.
func (r *inflightRegistry) begin(ctx context.Context, key string) (context.Context, uint64) {
	fetchCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	if prev, ok := r.entries[key]; ok && prev.cancel != nil {
		prev.cancel()
	}
	r.seq++
	token := r.seq
	r.entries[key] = inflightEntry{cancel: cancel, token: token}
	r.mu.Unlock()

	return fetchCtx, token
}

// finish da de baja la petición si todavía es la vigente. Solo la última
// registrada para esa clave recibe true; una reemplazada recibe false y no
// debe tocar la caché.
func (r *inflightRegistry) finish(key string, token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.entries[key]
	if !ok || cur.token != token {
		return false
	}
	cur.cancel()
	delete(r.entries, key)
	return true
}

// cancel aborta la petición en curso para key, si existe.
func (r *inflightRegistry) cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.entries[key]
	if !ok {
		return false
	}
	cur.cancel()
	delete(r.entries, key)
	return true
}
