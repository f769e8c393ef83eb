package notify

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tarefo/tarefo/internal/storage"
)

// SpoolKey is the key-value entry holding the pending request spool.
const SpoolKey = "notificacoes_agendadas"

// SpoolPlatform keeps pending requests in the key-value store. It does
// not deliver anything itself; it is the durable queue a host-specific
// delivery agent drains.
type SpoolPlatform struct {
	mu      sync.Mutex
	store   storage.Store
	logger  *log.Logger
	pending map[int]Request
}

// NewSpoolPlatform loads the spool from the store. A corrupt spool is
// logged and treated as empty.
func NewSpoolPlatform(st storage.Store, logger *log.Logger) *SpoolPlatform {
	if logger == nil {
		logger = log.Default()
	}
	p := &SpoolPlatform{
		store:   st,
		logger:  logger,
		pending: make(map[int]Request),
	}
	p.load()
	return p
}

func (p *SpoolPlatform) load() {
	data, ok, err := p.store.Get(SpoolKey)
	if err != nil {
		p.logger.Error("load notification spool", "err", err)
		return
	}
	if !ok {
		return
	}
	var reqs []Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		p.logger.Warn("notification spool is corrupt, starting empty", "err", err)
		return
	}
	for _, req := range reqs {
		p.pending[req.ID] = req
	}
}

// persist is called with the mutex held.
func (p *SpoolPlatform) persist() error {
	reqs := p.snapshot()
	data, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal notification spool: %w", err)
	}
	if err := p.store.Put(SpoolKey, data); err != nil {
		return fmt.Errorf("save notification spool: %w", err)
	}
	return nil
}

// snapshot returns the pending requests ordered by id. Callers hold
// the mutex.
func (p *SpoolPlatform) snapshot() []Request {
	reqs := make([]Request, 0, len(p.pending))
	for _, req := range p.pending {
		reqs = append(reqs, req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	return reqs
}

func (p *SpoolPlatform) Available() bool { return true }

func (p *SpoolPlatform) Schedule(req Request) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[req.ID] = req
	return p.persist()
}

func (p *SpoolPlatform) Cancel(id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pending[id]; !ok {
		return nil
	}
	delete(p.pending, id)
	return p.persist()
}

func (p *SpoolPlatform) Pending() ([]Request, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot(), nil
}
