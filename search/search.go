// Package search scans a region of the calling process for a byte pattern
// with wildcards. The region is cut into pages, pages run in batches of
// worker goroutines, and the first match recorded wins.
package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"tsearch/pattern"
	"tsearch/process"
	"tsearch/reader"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/google/uuid"
)

// DefaultPageSize is the number of bytes assigned to one worker
const DefaultPageSize process.ProcessMemorySize = 4 * 1024

// ErrInvalidConfig is returned for a null base, a zero size, a zero page
// size or a zero thread count
var ErrInvalidConfig = errors.New("invalid search config")

// Config describes what to scan and how wide to fan out
type Config struct {
	Region     process.Region
	PageSize   process.ProcessMemorySize
	MaxThreads int
}

// DefaultConfig returns a config for region with a 4 KiB page and one
// thread per CPU
func DefaultConfig(region process.Region) Config {
	return Config{
		Region:     region,
		PageSize:   DefaultPageSize,
		MaxThreads: max(runtime.NumCPU(), 1),
	}
}

// Outcome is the result of one search
type Outcome struct {
	Found   bool
	Address process.ProcessMemoryAddress

	Batches      int // batches started
	UnitsScanned int // units that ran the matcher
	UnitsSkipped int // units not scanned because a match was already recorded
}

func (o Outcome) String() string {
	if !o.Found {
		return "not found"
	}
	return "found at " + o.Address.ToString()
}

// Searcher holds configuration for the search
type Searcher struct {
	config      Config
	reader      reader.ByteReader
	onUnitStart func(WorkUnit)
	log         *logger.Logger
}

// Option is a function that configures a Searcher
type Option func(*Searcher)

func WithPageSize(size process.ProcessMemorySize) Option {
	return func(s *Searcher) {
		s.config.PageSize = size
	}
}

// WithMaxThreads bounds the number of concurrently running workers. Values
// above the CPU count are clamped; zero is a configuration error.
func WithMaxThreads(n int) Option {
	return func(s *Searcher) {
		s.config.MaxThreads = n
	}
}

func WithReader(r reader.ByteReader) Option {
	return func(s *Searcher) {
		s.reader = r
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Searcher) {
		s.log = l
	}
}

// WithUnitHook registers fn to be called by each worker right before it
// scans its unit. fn is called concurrently.
func WithUnitHook(fn func(WorkUnit)) Option {
	return func(s *Searcher) {
		s.onUnitStart = fn
	}
}

// New creates a Searcher over region
func New(region process.Region, options ...Option) *Searcher {
	s := &Searcher{
		config: DefaultConfig(region),
		reader: reader.NewDirect(),
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "tsearch")),
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// NewWithConfig creates a Searcher from an explicit config
func NewWithConfig(config Config, options ...Option) *Searcher {
	useConfig := func(s *Searcher) {
		s.config = config
	}
	return New(config.Region, append([]Option{useConfig}, options...)...)
}

// Config returns the searcher configuration
func (s *Searcher) Config() Config {
	return s.config
}

// SearchPattern searches for the pattern text and returns the first match
// recorded. Configuration and pattern errors are logged and reported as
// not found.
func (s *Searcher) SearchPattern(text string) Outcome {
	outcome, err := s.Search(context.Background(), text)
	if err != nil {
		s.log.Warn("search failed: ", err)
	}
	return outcome
}

// Search is SearchPattern with errors returned. ctx is only checked before
// a batch starts; a running batch always completes.
func (s *Searcher) Search(ctx context.Context, text string) (Outcome, error) {
	if err := s.validate(); err != nil {
		return Outcome{}, err
	}

	p, err := pattern.Compile(text)
	if err != nil {
		return Outcome{}, fmt.Errorf("compile %q: %w", text, err)
	}

	threads := s.clampThreads(s.config.MaxThreads)

	plan, err := NewPlan(s.config.Region, s.config.PageSize, threads)
	if err != nil {
		return Outcome{}, err
	}

	id := uuid.NewString()[:8]
	s.log.Infoln("search", id, "for", p.String(), "in", s.config.Region.String(),
		"pages:", plan.Pages(), "batches:", plan.Batches(), "threads:", threads)

	state := &searchState{}
	started := 0
	for i := 0; i < plan.Batches(); i++ {
		if state.found() {
			state.skip(plan.Pages() - started)
			s.log.Debugln("search", id, "match recorded, skipping batches", i, "to", plan.Batches()-1)
			break
		}
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		batch := plan.Batch(i)
		started += len(batch)
		state.batchStarted()
		s.runBatch(id, state, batch, p)
	}

	outcome := state.snapshot()
	s.log.Infoln("search", id, "complete:", outcome.String())
	return outcome, nil
}

func (s *Searcher) validate() error {
	if !s.config.Region.IsValid() {
		return fmt.Errorf("%w: region %s", ErrInvalidConfig, s.config.Region)
	}
	if s.config.PageSize == 0 {
		return fmt.Errorf("%w: page size is zero", ErrInvalidConfig)
	}
	if s.config.MaxThreads <= 0 {
		return fmt.Errorf("%w: max threads is %d", ErrInvalidConfig, s.config.MaxThreads)
	}
	if s.reader == nil {
		return fmt.Errorf("%w: no reader", ErrInvalidConfig)
	}
	return nil
}

// Limit threads to number of CPUs if it's too large
func (s *Searcher) clampThreads(n int) int {
	numCPU := max(runtime.NumCPU(), 1)
	if n > numCPU {
		s.log.Debugln("Limiting threads to number of CPUs:", numCPU)
		return numCPU
	}
	return n
}

// runBatch starts one worker per unit and waits for all of them
func (s *Searcher) runBatch(id string, state *searchState, batch Batch, p pattern.Pattern) {
	var wg sync.WaitGroup
	for _, unit := range batch {
		wg.Add(1)
		go func(unit WorkUnit) {
			defer wg.Done()
			s.scanUnit(id, state, unit, p)
		}(unit)
	}
	wg.Wait()
}

func (s *Searcher) scanUnit(id string, state *searchState, unit WorkUnit, p pattern.Pattern) {
	if !state.begin() {
		s.log.Debugln("search", id, "unit", unit.String(), "skipped, match already recorded")
		return
	}

	if s.onUnitStart != nil {
		s.onUnitStart(unit)
	}

	addr, ok := Match(s.reader, unit.Address, s.window(unit, p), p)
	if !ok {
		return
	}

	if state.publish(addr) {
		s.log.Debugln("search", id, "unit", unit.String(), "recorded match at", addr.ToString())
	} else {
		s.log.Debugln("search", id, "unit", unit.String(), "discarded match at", addr.ToString())
	}
}

// window extends a unit by len(p)-1 bytes, clipped to the region end, so a
// match starting in the unit may run into the next page
func (s *Searcher) window(unit WorkUnit, p pattern.Pattern) process.ProcessMemorySize {
	length := unit.Length + process.ProcessMemorySize(p.Len()-1)
	if remaining := process.ProcessMemorySize(s.config.Region.End() - unit.Address); length > remaining {
		length = remaining
	}
	return length
}

// searchState is the outcome shared by the workers of one search. The lock
// is never held while memory is scanned.
type searchState struct {
	mu      sync.Mutex
	outcome Outcome
}

func (st *searchState) found() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.outcome.Found
}

// begin reports whether a worker should scan, counting the unit either way
func (st *searchState) begin() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.outcome.Found {
		st.outcome.UnitsSkipped++
		return false
	}
	st.outcome.UnitsScanned++
	return true
}

// publish records addr unless a match was already recorded
func (st *searchState) publish(addr process.ProcessMemoryAddress) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.outcome.Found {
		return false
	}
	st.outcome.Found = true
	st.outcome.Address = addr
	return true
}

func (st *searchState) batchStarted() {
	st.mu.Lock()
	st.outcome.Batches++
	st.mu.Unlock()
}

func (st *searchState) skip(units int) {
	st.mu.Lock()
	st.outcome.UnitsSkipped += units
	st.mu.Unlock()
}

func (st *searchState) snapshot() Outcome {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.outcome
}
